package store

import "time"

// Team is a roster team as rendered on a surface.
type Team struct {
	Name    string   `json:"name"`
	Prefix  string   `json:"prefix"`
	Members []string `json:"members"`
}

// Frame is a snapshot of one surface, optimized for JSON serialization.
type Frame struct {
	// Surface identifies the surface: "global" for a shared board, or the
	// viewer name for a personal one.
	Surface string `json:"surface"`

	// Viewer is the owning viewer's id, empty for a shared board.
	Viewer string `json:"viewer,omitempty"`

	// Title and Lines are plain text with color codes removed.
	Title string   `json:"title"`
	Lines []string `json:"lines"`

	Teams []Team `json:"teams"`

	// Version increases by one each time the surface's frame is replaced.
	// It is assigned by the store.
	Version uint64 `json:"version"`

	RenderedAt time.Time `json:"rendered_at"`

	// Error holds the last update error for this surface, if any.
	Error *string `json:"error"`
}

// Store defines storage and subscription for frames.
//
// Implementations must be safe for concurrent access.
type Store interface {
	// Update stores a frame keyed by Surface, assigns its Version and
	// notifies subscribers. It returns the stored frame.
	Update(frame Frame) Frame

	// Get returns the current frame for a surface.
	Get(surface string) (Frame, bool)

	// GetAll returns every stored frame ordered by Surface.
	GetAll() []Frame

	// Remove deletes a surface's frame.
	Remove(surface string)

	// Subscribe returns a buffered channel that receives frame updates.
	// Caller must call Unsubscribe when done.
	Subscribe() <-chan Frame

	// Unsubscribe removes a subscription and closes the channel.
	Unsubscribe(ch <-chan Frame)
}
