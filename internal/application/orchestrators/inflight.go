package orchestrators

import "sync"

// InFlight allows at most one operation per key at a time.
type InFlight struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

// NewInFlight creates an empty guard.
func NewInFlight() *InFlight {
	return &InFlight{keys: make(map[string]struct{})}
}

// Acquire claims key. It returns a release func and true, or nil and false
// when key is already held.
// POST: release is idempotent
func (g *InFlight) Acquire(key string) (func(), bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.keys[key]; busy {
		return nil, false
	}
	g.keys[key] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.keys, key)
			g.mu.Unlock()
		})
	}, true
}

// Busy reports whether key is currently held.
func (g *InFlight) Busy(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.keys[key]
	return busy
}
