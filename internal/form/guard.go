package form

import "sync"

// Guard tracks which form tokens have a submission in flight. A token can
// be held by one submission at a time.
type Guard struct {
	mu      sync.Mutex
	pending map[string]struct{}
}

func NewGuard() *Guard {
	return &Guard{pending: make(map[string]struct{})}
}

// Acquire marks key as in flight. It returns false if key is already held.
func (g *Guard) Acquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.pending[key]; busy {
		return false
	}
	g.pending[key] = struct{}{}
	return true
}

// Release clears key. Releasing a key that is not held is a no-op.
func (g *Guard) Release(key string) {
	g.mu.Lock()
	delete(g.pending, key)
	g.mu.Unlock()
}

// held reports whether key is currently held.
func (g *Guard) held(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.pending[key]
	return busy
}

// size returns the number of submissions in flight.
func (g *Guard) size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}
