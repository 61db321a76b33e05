package quiz

import (
	"context"
	"sync"
)

// Ticket identifies one generation request. A result is only applied if
// its ticket is still current when it arrives.
type Ticket struct {
	key    string
	id     uint64
	ctx    context.Context
	cancel context.CancelFunc
}

// Context is cancelled when the ticket is superseded or abandoned.
func (t *Ticket) Context() context.Context { return t.ctx }

// Inflight tracks the current generation per view slot (for example one
// quiz screen per skill). Starting a new generation for a slot supersedes
// the previous one.
type Inflight struct {
	mu      sync.Mutex
	next    uint64
	current map[string]*Ticket
}

// NewInflight creates an empty tracker.
func NewInflight() *Inflight {
	return &Inflight{current: make(map[string]*Ticket)}
}

// Start issues a ticket for key, cancelling any earlier ticket for it.
func (f *Inflight) Start(parent context.Context, key string) *Ticket {
	f.mu.Lock()
	defer f.mu.Unlock()

	if prev, ok := f.current[key]; ok {
		prev.cancel()
	}
	f.next++
	ctx, cancel := context.WithCancel(parent)
	t := &Ticket{key: key, id: f.next, ctx: ctx, cancel: cancel}
	f.current[key] = t
	return t
}

// Abandon cancels the ticket for key, as when the user navigates away.
func (f *Inflight) Abandon(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.current[key]; ok {
		t.cancel()
		delete(f.current, key)
	}
}

// Finish reports whether t is still the current ticket for its key and
// releases it. A false result means the caller must discard its result.
func (f *Inflight) Finish(t *Ticket) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	cur, ok := f.current[t.key]
	t.cancel()
	if !ok || cur.id != t.id {
		return false
	}
	delete(f.current, t.key)
	return true
}

// Run generates a test under a fresh ticket for key and returns it only if
// the ticket was not superseded or abandoned meanwhile; ok is false when
// the result was discarded.
func (f *Inflight) Run(ctx context.Context, key string, gen Generator, topic string) (test *Test, ok bool, err error) {
	t := f.Start(ctx, key)
	test, err = gen.Generate(t.Context(), topic)
	if !f.Finish(t) {
		return nil, false, nil
	}
	if err != nil {
		return nil, true, err
	}
	return test, true, nil
}
