package adapter

import "sync"

// Handle counts the holders of a native resource and finalizes it when the
// last one lets go. A statement and every Result it produced each hold one
// reference.
type Handle struct {
	mu       sync.Mutex
	refs     int
	finalize func() error
}

// NewHandle returns a Handle with a single reference held by the caller.
func NewHandle(finalize func() error) *Handle {
	return &Handle{refs: 1, finalize: finalize}
}

// Acquire adds a reference. It reports false if the resource is already
// finalized.
func (h *Handle) Acquire() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.refs == 0 {
		return false
	}
	h.refs++
	return true
}

// Release drops a reference and runs the finalizer when it was the last.
// Extra releases are ignored.
func (h *Handle) Release() error {
	h.mu.Lock()
	if h.refs == 0 {
		h.mu.Unlock()
		return nil
	}
	h.refs--
	last := h.refs == 0
	h.mu.Unlock()

	if last && h.finalize != nil {
		return h.finalize()
	}
	return nil
}

// Refs returns the current number of holders.
func (h *Handle) Refs() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.refs
}

// Alive reports whether the resource has not been finalized.
func (h *Handle) Alive() bool {
	return h.Refs() > 0
}
