package sidebar

import "github.com/google/uuid"

// GlobalBoard shows the same content to every viewer through one shared
// surface.
//
// The shared surface is created lazily: if the host cannot create surfaces
// yet, viewers are still tracked and attached as soon as a later call
// succeeds in creating it.
type GlobalBoard struct {
	*board
	title   func() string
	lines   func() []string
	surface Surface
}

// NewGlobalBoard creates a board whose content comes from title and lines.
//
// Both functions are called on every [GlobalBoard.UpdateScoreboard] without
// the board lock held. A nil title renders as empty. A nil lines function, or
// one returning nil, makes updates a no-op.
func NewGlobalBoard(host Host, title func() string, lines func() []string, opts ...Option) (*GlobalBoard, error) {
	b, err := newBoard(host, opts)
	if err != nil {
		return nil, err
	}
	g := &GlobalBoard{board: b, title: title, lines: lines}
	b.resolve = g.resolveLocked
	return g, nil
}

// Surface returns the shared surface, or nil before it has been created.
func (g *GlobalBoard) Surface() Surface {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.surface
}

// AddViewer registers id and attaches it to the shared surface.
func (g *GlobalBoard) AddViewer(id uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.addViewerLocked(id)
	if !g.ensureSurfaceLocked() {
		return
	}
	if v, ok := g.host.Viewer(id); ok {
		v.SetSurface(g.surface)
	}
}

// RemoveViewer returns the viewer to the main surface and drops it from
// every team.
func (g *GlobalBoard) RemoveViewer(id uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removeViewerLocked(id)
}

// UpdateScoreboard pushes the current title and lines to the shared surface.
func (g *GlobalBoard) UpdateScoreboard() error {
	if g.lines == nil {
		return nil
	}
	lines := g.lines()
	if lines == nil {
		return nil
	}
	var title string
	if g.title != nil {
		title = g.title()
	}

	g.mu.Lock()
	if !g.ensureSurfaceLocked() {
		g.mu.Unlock()
		return nil
	}
	result, err := g.pushLocked(g.surface, uuid.Nil, title, lines)
	g.mu.Unlock()

	result.Err = err
	g.notify([]PushResult{result})
	return err
}

// Destroy tears the board down. Teams are removed from the shared surface,
// viewers return to the main surface and the shared surface is released.
func (g *GlobalBoard) Destroy() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.destroyLocked()
	g.surface = nil
}

// ensureSurfaceLocked creates the shared surface on first use and attaches
// every active viewer to it.
func (g *GlobalBoard) ensureSurfaceLocked() bool {
	if g.surface != nil {
		return true
	}
	s, ok := g.host.NewSurface()
	if !ok {
		g.logger.Debug("surface creation deferred, host not ready")
		return false
	}
	g.surface = s
	for _, id := range g.viewers {
		if v, ok := g.host.Viewer(id); ok {
			v.SetSurface(s)
		}
	}
	return true
}

func (g *GlobalBoard) resolveLocked(*Team) []Surface {
	if g.surface == nil {
		return nil
	}
	return []Surface{g.surface}
}
