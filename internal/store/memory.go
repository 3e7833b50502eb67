package store

import (
	"cmp"
	"slices"
	"sync"
)

const subscriberBuffer = 100

// MemoryStore is an in-memory implementation of [Store].
//
// Frames are keyed by surface. Subscribers receive updates via buffered
// channels (buffer size 100); if a subscriber's buffer is full the update is
// dropped for that subscriber.
type MemoryStore struct {
	mu          sync.RWMutex
	frames      map[string]Frame
	subscribers map[chan Frame]struct{}
	subMu       sync.RWMutex
}

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		frames:      make(map[string]Frame),
		subscribers: make(map[chan Frame]struct{}),
	}
}

// Update implements [Store].
func (m *MemoryStore) Update(frame Frame) Frame {
	m.mu.Lock()
	frame.Version = m.frames[frame.Surface].Version + 1
	frame.Lines = slices.Clone(frame.Lines)
	frame.Teams = slices.Clone(frame.Teams)
	m.frames[frame.Surface] = frame
	m.mu.Unlock()

	m.notifySubscribers(frame)
	return frame
}

// Get implements [Store].
func (m *MemoryStore) Get(surface string) (Frame, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.frames[surface]
	return f, ok
}

// GetAll implements [Store].
func (m *MemoryStore) GetAll() []Frame {
	m.mu.RLock()
	defer m.mu.RUnlock()

	frames := make([]Frame, 0, len(m.frames))
	for _, f := range m.frames {
		frames = append(frames, f)
	}
	slices.SortFunc(frames, func(a, b Frame) int { return cmp.Compare(a.Surface, b.Surface) })
	return frames
}

// Remove implements [Store].
func (m *MemoryStore) Remove(surface string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.frames, surface)
}

// Subscribe implements [Store].
func (m *MemoryStore) Subscribe() <-chan Frame {
	ch := make(chan Frame, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe implements [Store]. Safe to call multiple times or with an
// unknown channel.
func (m *MemoryStore) Unsubscribe(ch <-chan Frame) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

func (m *MemoryStore) notifySubscribers(frame Frame) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- frame:
		default:
			// subscriber is slow, drop the frame
		}
	}
}
