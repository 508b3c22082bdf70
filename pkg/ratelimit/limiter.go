package ratelimit

import (
	"context"
	"strings"
	"sync"
)

// Limiter serializes access per partition key.
//
// Each key owns a single permit: Acquire returns immediately while the
// permit is free and otherwise queues the caller in FIFO order until the
// current holder's lease is released. Keys are independent; requests for
// different keys never contend with each other.
//
// Keys are matched case-insensitively. Per-key state is created lazily on
// first use and never evicted: cardinality is bounded by the number of
// distinct hosts contacted, not by request volume.
//
// # Thread Safety
//
// Limiter is safe for concurrent use from multiple goroutines.
type Limiter struct {
	mu      sync.Mutex
	gates   map[string]*gate
	metrics *Metrics
}

// gate is the mutual-exclusion state for a single key.
//
// busy stays true across a hand-off: when a release finds waiters, slot
// ownership transfers directly to the head of the queue.
type gate struct {
	mu      sync.Mutex
	busy    bool
	waiters []chan struct{}
}

// Lease represents one held permit for a key. It is returned by
// Limiter.Acquire and must be released exactly once; Release is idempotent
// and never blocks.
type Lease struct {
	key  string
	g    *gate
	once sync.Once

	onRelease func()
}

// NewLimiter creates a new per-key limiter. metrics may be nil.
func NewLimiter(metrics *Metrics) *Limiter {
	return &Limiter{
		gates:   make(map[string]*gate),
		metrics: metrics,
	}
}

// Acquire blocks until the permit for key is free and returns a lease for
// it. Queued acquirers are granted the permit in FIFO order.
//
// If ctx is cancelled while queued, the caller is removed from the queue
// and ctx.Err() is returned; no permit is consumed. Cancellation after the
// lease has been granted has no effect on the lease.
func (l *Limiter) Acquire(ctx context.Context, key string) (*Lease, error) {
	key = strings.ToLower(key)
	g := l.gate(key)

	g.mu.Lock()
	if !g.busy {
		g.busy = true
		g.mu.Unlock()
		l.metrics.recordAcquire(key, resultImmediate)
		return l.newLease(key, g), nil
	}

	ch := make(chan struct{})
	g.waiters = append(g.waiters, ch)
	g.mu.Unlock()
	l.metrics.recordQueued(key, 1)

	select {
	case <-ch:
		l.metrics.recordQueued(key, -1)
		l.metrics.recordAcquire(key, resultQueued)
		return l.newLease(key, g), nil

	case <-ctx.Done():
		l.metrics.recordQueued(key, -1)
		if g.removeWaiter(ch) {
			l.metrics.recordAcquire(key, resultCancelled)
			return nil, ctx.Err()
		}
		// The slot was handed to us between cancellation and removal.
		// Pass it on so the permit is not leaked.
		g.release()
		l.metrics.recordAcquire(key, resultCancelled)
		return nil, ctx.Err()
	}
}

// gate returns the gate for key, creating it on first use.
func (l *Limiter) gate(key string) *gate {
	l.mu.Lock()
	defer l.mu.Unlock()

	g, ok := l.gates[key]
	if !ok {
		g = &gate{}
		l.gates[key] = g
	}
	return g
}

func (l *Limiter) newLease(key string, g *gate) *Lease {
	return &Lease{key: key, g: g, onRelease: func() { l.metrics.recordRelease(key) }}
}

// Key returns the partition key this lease was acquired for.
func (le *Lease) Key() string {
	return le.key
}

// Release returns the permit to the limiter, granting it to the oldest
// queued acquirer if any. Release is idempotent; only the first call has an
// effect. It never blocks.
func (le *Lease) Release() {
	le.once.Do(func() {
		le.g.release()
		if le.onRelease != nil {
			le.onRelease()
		}
	})
}

// release frees the slot or hands it to the head of the FIFO queue.
func (g *gate) release() {
	g.mu.Lock()
	if len(g.waiters) > 0 {
		ch := g.waiters[0]
		g.waiters = g.waiters[1:]
		g.mu.Unlock()
		// Ownership transfers to the waiter; busy stays true.
		close(ch)
		return
	}
	g.busy = false
	g.mu.Unlock()
}

// removeWaiter removes ch from the queue. It reports false when ch is no
// longer queued, which means the slot was already granted to it.
func (g *gate) removeWaiter(ch chan struct{}) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i, w := range g.waiters {
		if w == ch {
			g.waiters = append(g.waiters[:i], g.waiters[i+1:]...)
			return true
		}
	}
	return false
}
