// Package syncbus propagates "something changed, re-read" signals between
// the open views of one profile. Invalidations never carry state: every
// consumer reloads from the progress store and ledger, so missed,
// duplicated or reordered signals are harmless.
package syncbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Scope says which area of state changed. Consumers may ignore it and
// reload everything.
type Scope string

const (
	ScopeGap      Scope = "gap"
	ScopeProgress Scope = "progress"
	ScopeFinal    Scope = "final"
	ScopePoints   Scope = "points"
	ScopeAll      Scope = "all"
)

// Invalidation is the typed change signal.
type Invalidation struct {
	Origin string // view that caused the change
	Scope  Scope
	Epoch  int64 // profile epoch after the change; 0 when not persisted
}

// SubscriberChannelSize is the default per-subscriber buffer.
const SubscriberChannelSize = 64

// Subscriber receives invalidations on C. When C overflows the signal is
// dropped and Resync is set; since every signal means "reload", one
// pending reload covers the dropped ones.
type Subscriber struct {
	C <-chan Invalidation

	ch     chan Invalidation
	resync atomic.Bool
	done   chan struct{}
	once   sync.Once
}

// Resync reports and clears the overflow flag.
func (s *Subscriber) Resync() bool {
	return s.resync.Swap(false)
}

// Done is closed when the subscriber is removed from the bus.
func (s *Subscriber) Done() <-chan struct{} { return s.done }

func (s *Subscriber) close() {
	s.once.Do(func() { close(s.done) })
}

// trySend never blocks the publisher.
func (s *Subscriber) trySend(inv Invalidation) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.ch <- inv:
	default:
		s.resync.Store(true)
	}
	return true
}

// Bus fans invalidations out to in-process subscribers and, when an
// Epochs store is attached, persists an epoch bump so other processes
// watching the same profile notice.
type Bus struct {
	origin string
	epochs *Epochs
	logger *slog.Logger

	mu   sync.Mutex
	subs map[*Subscriber]struct{}

	seen atomic.Int64 // highest epoch delivered locally
}

// NewBus creates a bus for one view. origin identifies the view in
// published invalidations; empty picks a random id. epochs may be nil for
// purely in-process use.
func NewBus(origin string, epochs *Epochs, logger *slog.Logger) *Bus {
	if origin == "" {
		origin = uuid.NewString()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Bus{
		origin: origin,
		epochs: epochs,
		logger: logger,
		subs:   make(map[*Subscriber]struct{}),
	}
}

// Origin returns this view's id.
func (b *Bus) Origin() string { return b.origin }

// Subscribe registers a subscriber with the given buffer (0 means
// SubscriberChannelSize).
func (b *Bus) Subscribe(buffer int) *Subscriber {
	if buffer <= 0 {
		buffer = SubscriberChannelSize
	}
	ch := make(chan Invalidation, buffer)
	s := &Subscriber{C: ch, ch: ch, done: make(chan struct{})}

	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()
	return s
}

// Unsubscribe removes s and closes its Done channel.
func (b *Bus) Unsubscribe(s *Subscriber) {
	b.mu.Lock()
	delete(b.subs, s)
	b.mu.Unlock()
	s.close()
}

// Publish announces a change made by this view. The local fan-out always
// happens; an epoch persistence failure is returned after it.
func (b *Bus) Publish(ctx context.Context, scope Scope) error {
	inv := Invalidation{Origin: b.origin, Scope: scope}

	var perr error
	if b.epochs != nil {
		e, err := b.epochs.Bump(ctx, b.origin, scope)
		if err != nil {
			perr = fmt.Errorf("persist invalidation: %w", err)
			b.logger.Warn("invalidation not persisted", "scope", scope, "error", err)
		} else {
			inv.Epoch = e
			b.markSeen(e)
		}
	}

	b.deliver(inv)
	return perr
}

// deliver fans inv out to every live subscriber.
func (b *Bus) deliver(inv Invalidation) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for s := range b.subs {
		if !s.trySend(inv) {
			delete(b.subs, s)
		}
	}
	b.logger.Debug("invalidation delivered", "origin", inv.Origin, "scope", inv.Scope, "epoch", inv.Epoch, "subscribers", len(b.subs))
}

// markSeen raises the seen epoch to e and reports whether it advanced.
func (b *Bus) markSeen(e int64) bool {
	for {
		cur := b.seen.Load()
		if e <= cur {
			return false
		}
		if b.seen.CompareAndSwap(cur, e) {
			return true
		}
	}
}
