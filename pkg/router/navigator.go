package router

import "sync"

// Location is one navigation event: the requested path and the generation
// that identifies the page instance mounted for it.
type Location struct {
	Path       string
	Generation uint64
}

// Navigator tracks the current location and the navigation generation
// counter. Every navigation starts a new generation, so work issued for an
// older page instance can check Guard and drop its result.
//
// Navigator deliberately does not resolve paths: whether the router runs
// at all is decided by the auth gate.
//
// Navigator is owned by the event loop and is not safe for concurrent use.
type Navigator struct {
	current   Location
	listeners []func(Location)
}

// NewNavigator creates a Navigator at the given initial path, generation 1.
func NewNavigator(initial string) *Navigator {
	if initial == "" {
		initial = "/"
	}
	return &Navigator{current: Location{Path: initial, Generation: 1}}
}

// Navigate moves to path, starting a new generation, and notifies
// listeners. It returns the new location.
func (n *Navigator) Navigate(path string) Location {
	n.current = Location{Path: path, Generation: n.current.Generation + 1}
	for _, fn := range n.listeners {
		fn(n.current)
	}
	return n.current
}

// Current returns the current location.
func (n *Navigator) Current() Location {
	return n.current
}

// Generation returns the current navigation generation.
func (n *Navigator) Generation() uint64 {
	return n.current.Generation
}

// Guard returns a check that stays true only while gen is the current
// generation.
func (n *Navigator) Guard(gen uint64) func() bool {
	return func() bool {
		return n.current.Generation == gen
	}
}

// OnNavigate registers fn to run after every navigation.
func (n *Navigator) OnNavigate(fn func(Location)) {
	if fn != nil {
		n.listeners = append(n.listeners, fn)
	}
}

// History is the host's URL/history integration. The router never owns
// history; the host reports the current path and navigation events.
type History interface {
	CurrentPath() string
	OnNavigate(fn func(path string))
}

// MemoryHistory is an in-memory History. The websocket host and tests use
// it; Push and Replace notify subscribers synchronously.
type MemoryHistory struct {
	mu        sync.Mutex
	entries   []string
	listeners []func(string)
}

// NewMemoryHistory creates a history with one entry.
func NewMemoryHistory(initial string) *MemoryHistory {
	if initial == "" {
		initial = "/"
	}
	return &MemoryHistory{entries: []string{initial}}
}

// CurrentPath implements History.
func (h *MemoryHistory) CurrentPath() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[len(h.entries)-1]
}

// OnNavigate implements History.
func (h *MemoryHistory) OnNavigate(fn func(path string)) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	h.listeners = append(h.listeners, fn)
	h.mu.Unlock()
}

// Push appends a history entry and notifies subscribers.
func (h *MemoryHistory) Push(path string) {
	h.mu.Lock()
	h.entries = append(h.entries, path)
	listeners := append([]func(string){}, h.listeners...)
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(path)
	}
}

// Replace overwrites the current entry without notifying subscribers.
func (h *MemoryHistory) Replace(path string) {
	h.mu.Lock()
	h.entries[len(h.entries)-1] = path
	h.mu.Unlock()
}

// Back pops the current entry and notifies subscribers of the previous
// one. It reports false when there is nothing to go back to.
func (h *MemoryHistory) Back() bool {
	h.mu.Lock()
	if len(h.entries) < 2 {
		h.mu.Unlock()
		return false
	}
	h.entries = h.entries[:len(h.entries)-1]
	path := h.entries[len(h.entries)-1]
	listeners := append([]func(string){}, h.listeners...)
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(path)
	}
	return true
}

// Len returns the number of entries.
func (h *MemoryHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
