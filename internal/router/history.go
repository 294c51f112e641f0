package router

import "sync"

// History models a navigation stack with back/forward movement. Push and
// Replace signal listeners synchronously before returning, exactly as a
// back/forward event would; callers must not assume any delay.
type History struct {
	mu        sync.Mutex
	stack     []string
	idx       int
	listeners []func(path string)
}

// NewHistory creates a history positioned at the initial path.
func NewHistory(initial string) *History {
	return &History{
		stack: []string{Normalize(initial)},
	}
}

// Listen registers a listener invoked on every navigation event.
func (h *History) Listen(fn func(path string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, fn)
}

// Current returns the path at the current position.
func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stack[h.idx]
}

// Push appends a new entry, discarding any forward entries, and notifies
// listeners.
func (h *History) Push(path string) {
	h.mu.Lock()
	path = Normalize(path)
	h.stack = append(h.stack[:h.idx+1], path)
	h.idx = len(h.stack) - 1
	listeners := h.snapshotListeners()
	h.mu.Unlock()

	notify(listeners, path)
}

// Replace swaps the current entry in place and notifies listeners.
func (h *History) Replace(path string) {
	h.mu.Lock()
	path = Normalize(path)
	h.stack[h.idx] = path
	listeners := h.snapshotListeners()
	h.mu.Unlock()

	notify(listeners, path)
}

// Back moves one entry backwards. It reports whether a move happened;
// listeners are only notified on an actual move.
func (h *History) Back() bool {
	h.mu.Lock()
	if h.idx == 0 {
		h.mu.Unlock()
		return false
	}
	h.idx--
	path := h.stack[h.idx]
	listeners := h.snapshotListeners()
	h.mu.Unlock()

	notify(listeners, path)
	return true
}

// Forward moves one entry forwards, if a forward entry exists.
func (h *History) Forward() bool {
	h.mu.Lock()
	if h.idx >= len(h.stack)-1 {
		h.mu.Unlock()
		return false
	}
	h.idx++
	path := h.stack[h.idx]
	listeners := h.snapshotListeners()
	h.mu.Unlock()

	notify(listeners, path)
	return true
}

// snapshotListeners must be called with the mutex held. Listeners run outside
// the lock so they may navigate again without deadlocking.
func (h *History) snapshotListeners() []func(string) {
	out := make([]func(string), len(h.listeners))
	copy(out, h.listeners)
	return out
}

func notify(listeners []func(string), path string) {
	for _, fn := range listeners {
		fn(path)
	}
}
