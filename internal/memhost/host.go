package memhost

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/jpalmerr/sidebar"
)

// ViewerID derives a stable id from a viewer name.
func ViewerID(name string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("sidebar-viewer:"+name))
}

// Host is an in-memory [sidebar.Host].
type Host struct {
	mu       sync.Mutex
	main     *Surface
	viewers  map[uuid.UUID]*Viewer
	order    []uuid.UUID
	notReady bool
	created  int
}

// New creates a ready host with an empty main surface.
func New() *Host {
	return &Host{
		main:    NewSurface(),
		viewers: make(map[uuid.UUID]*Viewer),
	}
}

// SetReady controls whether [Host.NewSurface] succeeds.
func (h *Host) SetReady(ready bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notReady = !ready
}

// Join brings a viewer online, looking at the main surface. Joining a name
// that is already online returns the existing viewer.
func (h *Host) Join(name string) *Viewer {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := ViewerID(name)
	if v, ok := h.viewers[id]; ok {
		return v
	}
	v := &Viewer{id: id, name: name, surface: h.main}
	h.viewers[id] = v
	h.order = append(h.order, id)
	return v
}

// Leave takes a viewer offline. It is no longer resolvable.
func (h *Host) Leave(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.viewers, id)
	h.order = slices.DeleteFunc(h.order, func(v uuid.UUID) bool { return v == id })
}

// Online returns the online viewers in join order.
func (h *Host) Online() []*Viewer {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Viewer, 0, len(h.order))
	for _, id := range h.order {
		out = append(out, h.viewers[id])
	}
	return out
}

// Viewer implements [sidebar.Host].
func (h *Host) Viewer(id uuid.UUID) (sidebar.Viewer, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	v, ok := h.viewers[id]
	if !ok {
		return nil, false
	}
	return v, true
}

// NewSurface implements [sidebar.Host].
func (h *Host) NewSurface() (sidebar.Surface, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.notReady {
		return nil, false
	}
	h.created++
	return NewSurface(), true
}

// MainSurface implements [sidebar.Host].
func (h *Host) MainSurface() sidebar.Surface {
	return h.main
}

// Main returns the main surface with its concrete type.
func (h *Host) Main() *Surface {
	return h.main
}

// SurfacesCreated counts successful [Host.NewSurface] calls.
func (h *Host) SurfacesCreated() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.created
}

// Viewer is an in-memory [sidebar.Viewer].
type Viewer struct {
	mu      sync.Mutex
	id      uuid.UUID
	name    string
	surface sidebar.Surface
}

// ID implements [sidebar.Viewer].
func (v *Viewer) ID() uuid.UUID { return v.id }

// Name implements [sidebar.Viewer].
func (v *Viewer) Name() string { return v.name }

// Surface implements [sidebar.Viewer].
func (v *Viewer) Surface() sidebar.Surface {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.surface
}

// SetSurface implements [sidebar.Viewer].
func (v *Viewer) SetSurface(s sidebar.Surface) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.surface = s
}

// Looking returns the viewer's surface as a *Surface, or nil if it is
// attached to a foreign implementation.
func (v *Viewer) Looking() *Surface {
	s, _ := v.Surface().(*Surface)
	return s
}
