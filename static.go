package sidebar

import (
	"slices"
	"sync"

	"github.com/google/uuid"
)

// StaticGlobalBoard is a [GlobalBoard] whose content is set by method call
// rather than computed. Every setter pushes immediately.
type StaticGlobalBoard struct {
	*GlobalBoard

	contentMu sync.RWMutex
	title     string
	lines     []string
}

// NewStaticGlobalBoard creates a board with an empty title and no lines.
// Nothing is shown until [StaticGlobalBoard.SetLines] is called.
func NewStaticGlobalBoard(host Host, opts ...Option) (*StaticGlobalBoard, error) {
	sb := &StaticGlobalBoard{}
	g, err := NewGlobalBoard(host, sb.Title, sb.Lines, opts...)
	if err != nil {
		return nil, err
	}
	sb.GlobalBoard = g
	return sb, nil
}

// Title returns the current title.
func (sb *StaticGlobalBoard) Title() string {
	sb.contentMu.RLock()
	defer sb.contentMu.RUnlock()
	return sb.title
}

// Lines returns a copy of the current lines, or nil if never set.
func (sb *StaticGlobalBoard) Lines() []string {
	sb.contentMu.RLock()
	defer sb.contentMu.RUnlock()
	return slices.Clone(sb.lines)
}

// SetTitle replaces the title and pushes.
func (sb *StaticGlobalBoard) SetTitle(title string) error {
	sb.contentMu.Lock()
	sb.title = title
	sb.contentMu.Unlock()
	return sb.UpdateScoreboard()
}

// SetLines replaces the lines and pushes.
func (sb *StaticGlobalBoard) SetLines(lines ...string) error {
	if lines == nil {
		lines = []string{}
	}
	sb.contentMu.Lock()
	sb.lines = slices.Clone(lines)
	sb.contentMu.Unlock()
	return sb.UpdateScoreboard()
}

// StaticPersonalBoard is a [PersonalBoard] whose per-viewer content is set
// by method call. Every setter pushes to all viewers.
type StaticPersonalBoard struct {
	*PersonalBoard

	contentMu sync.RWMutex
	titles    map[uuid.UUID]string
	lines     map[uuid.UUID][]string
}

// NewStaticPersonalBoard creates a board where every viewer starts with an
// empty title and no lines.
func NewStaticPersonalBoard(host Host, opts ...Option) (*StaticPersonalBoard, error) {
	sb := &StaticPersonalBoard{
		titles: make(map[uuid.UUID]string),
		lines:  make(map[uuid.UUID][]string),
	}
	p, err := NewPersonalBoard(host,
		func(v Viewer) string { return sb.Title(v.ID()) },
		func(v Viewer) []string { return sb.Lines(v.ID()) },
		opts...,
	)
	if err != nil {
		return nil, err
	}
	sb.PersonalBoard = p
	return sb, nil
}

// Title returns the title set for viewer id.
func (sb *StaticPersonalBoard) Title(id uuid.UUID) string {
	sb.contentMu.RLock()
	defer sb.contentMu.RUnlock()
	return sb.titles[id]
}

// Lines returns a copy of the lines set for viewer id.
func (sb *StaticPersonalBoard) Lines(id uuid.UUID) []string {
	sb.contentMu.RLock()
	defer sb.contentMu.RUnlock()
	return slices.Clone(sb.lines[id])
}

// SetTitle sets the title for viewer id and pushes.
func (sb *StaticPersonalBoard) SetTitle(id uuid.UUID, title string) error {
	sb.contentMu.Lock()
	sb.titles[id] = title
	sb.contentMu.Unlock()
	return sb.UpdateScoreboard()
}

// SetLines sets the lines for viewer id and pushes.
func (sb *StaticPersonalBoard) SetLines(id uuid.UUID, lines ...string) error {
	sb.contentMu.Lock()
	sb.lines[id] = slices.Clone(lines)
	sb.contentMu.Unlock()
	return sb.UpdateScoreboard()
}

// RemoveViewer forgets the viewer's content as well as its surface.
func (sb *StaticPersonalBoard) RemoveViewer(id uuid.UUID) {
	sb.PersonalBoard.RemoveViewer(id)
	sb.contentMu.Lock()
	delete(sb.titles, id)
	delete(sb.lines, id)
	sb.contentMu.Unlock()
}
