package fragment

import "sync"

// Location is the addressable URL of a session. Writers replace the whole
// fragment; readers always see a complete value.
type Location interface {
	Fragment() string
	SetFragment(fragment string)
}

// MemoryLocation is an in-process Location that also records every fragment
// it was set to, oldest first.
type MemoryLocation struct {
	mu       sync.RWMutex
	fragment string
	history  []string
}

// NewMemoryLocation creates a location holding the given initial fragment
func NewMemoryLocation(initial string) *MemoryLocation {
	return &MemoryLocation{fragment: initial}
}

// Fragment returns the current fragment
func (l *MemoryLocation) Fragment() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.fragment
}

// SetFragment replaces the current fragment
func (l *MemoryLocation) SetFragment(fragment string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fragment = fragment
	l.history = append(l.history, fragment)
}

// History returns a copy of every fragment written so far
func (l *MemoryLocation) History() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, len(l.history))
	copy(out, l.history)
	return out
}
