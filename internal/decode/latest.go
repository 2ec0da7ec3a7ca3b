package decode

import "sync"

// latestGate drops decode results that complete after a newer one. Decoding
// is asynchronous and may finish out of order relative to message arrival;
// only the most recently completed decode may be delivered.
type latestGate struct {
	mu        sync.Mutex
	submitted uint64
	delivered uint64
}

// next reserves a generation for a new decode attempt.
func (g *latestGate) next() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.submitted++
	return g.submitted
}

// deliver runs fn when gen is newer than everything delivered so far and
// reports whether it ran. Stale completions are discarded.
func (g *latestGate) deliver(gen uint64, fn func()) bool {
	g.mu.Lock()
	if gen <= g.delivered {
		g.mu.Unlock()
		return false
	}
	g.delivered = gen
	g.mu.Unlock()
	fn()
	return true
}
