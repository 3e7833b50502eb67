package sidebar

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// PersonalBoard gives every viewer a surface of its own, with content
// computed per viewer.
type PersonalBoard struct {
	*board
	title func(Viewer) string
	lines func(Viewer) []string
	// owned maps each active viewer to the surface this board created for it.
	owned map[uuid.UUID]Surface
}

// NewPersonalBoard creates a board whose content is computed for each
// viewer by title and lines.
//
// Both functions are called without the board lock held. A nil title renders
// as empty, and a nil lines function or nil result renders zero lines.
func NewPersonalBoard(host Host, title func(Viewer) string, lines func(Viewer) []string, opts ...Option) (*PersonalBoard, error) {
	b, err := newBoard(host, opts)
	if err != nil {
		return nil, err
	}
	p := &PersonalBoard{
		board: b,
		title: title,
		lines: lines,
		owned: make(map[uuid.UUID]Surface),
	}
	b.resolve = p.resolveLocked
	return p, nil
}

// SurfaceFor returns the surface created for viewer id.
func (p *PersonalBoard) SurfaceFor(id uuid.UUID) (Surface, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.owned[id]
	return s, ok
}

// AddViewer registers id, gives it a fresh surface and pushes content to
// every viewer.
//
// Unresolvable viewers are registered but receive no surface. Returns
// [ErrSurfaceUnavailable] if the host cannot create one.
func (p *PersonalBoard) AddViewer(id uuid.UUID) error {
	p.mu.Lock()
	p.addViewerLocked(id)
	v, ok := p.host.Viewer(id)
	if !ok {
		p.mu.Unlock()
		p.logger.Debug("viewer not resolvable, no surface created", "viewer", id)
		return nil
	}
	s, ok := p.host.NewSurface()
	if !ok {
		p.mu.Unlock()
		return fmt.Errorf("%w: viewer %s", ErrSurfaceUnavailable, id)
	}
	if old, had := p.owned[id]; had {
		p.forgetLocked(old)
	}
	v.SetSurface(s)
	p.owned[id] = s
	p.mu.Unlock()

	return p.UpdateScoreboard()
}

// RemoveViewer returns the viewer to the main surface, drops it from every
// team and forgets its surface.
func (p *PersonalBoard) RemoveViewer(id uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.removeViewerLocked(id)
	if s, ok := p.owned[id]; ok {
		p.forgetLocked(s)
		delete(p.owned, id)
	}
}

type personalTarget struct {
	viewer  Viewer
	surface Surface
	title   string
	lines   []string
}

// UpdateScoreboard recomputes and pushes content for every active viewer.
//
// A failure for one viewer does not stop the others; all failures are
// returned joined.
func (p *PersonalBoard) UpdateScoreboard() error {
	p.mu.Lock()
	targets := make([]personalTarget, 0, len(p.viewers))
	for _, id := range p.viewers {
		s, ok := p.owned[id]
		if !ok {
			continue
		}
		v, ok := p.host.Viewer(id)
		if !ok {
			p.logger.Debug("skipping unresolvable viewer", "viewer", id)
			continue
		}
		targets = append(targets, personalTarget{viewer: v, surface: s})
	}
	p.mu.Unlock()

	for i := range targets {
		if p.title != nil {
			targets[i].title = p.title(targets[i].viewer)
		}
		if p.lines != nil {
			targets[i].lines = p.lines(targets[i].viewer)
		}
	}

	var errs []error
	results := make([]PushResult, 0, len(targets))

	p.mu.Lock()
	for _, tg := range targets {
		id := tg.viewer.ID()
		if p.owned[id] != tg.surface {
			continue
		}
		result, err := p.pushLocked(tg.surface, id, tg.title, tg.lines)
		if err != nil {
			result.Err = err
			errs = append(errs, fmt.Errorf("viewer %s: %w", id, err))
		}
		results = append(results, result)
	}
	p.mu.Unlock()

	p.notify(results)
	return errors.Join(errs...)
}

// Destroy tears the board down. Teams are removed, viewers return to the
// main surface and every per-viewer surface is forgotten.
func (p *PersonalBoard) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.destroyLocked()
	clear(p.owned)
}

// resolveLocked returns every surface this board owns, in viewer order. Teams
// never render on a surface a member is looking at unless the board owns it.
func (p *PersonalBoard) resolveLocked(*Team) []Surface {
	out := make([]Surface, 0, len(p.owned))
	for _, id := range p.viewers {
		if s, ok := p.owned[id]; ok {
			out = append(out, s)
		}
	}
	return out
}
