package cache

import "sync"

var (
	defaultMu      sync.Mutex
	defaultManager *Manager
)

// Default returns the process-wide manager, constructing one with default
// TTLs on first use. The server wires an explicit Manager through its
// collaborators; this accessor is a convenience for callers without one, and
// it behaves identically to New.
func Default() *Manager {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultManager == nil {
		defaultManager = New()
	}
	return defaultManager
}

// Initialize replaces the process-wide manager with one built from opts and
// returns it.
func Initialize(opts ...Option) *Manager {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultManager = New(opts...)
	return defaultManager
}
