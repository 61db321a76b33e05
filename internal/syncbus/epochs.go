package syncbus

import (
	"context"
	"log/slog"
	"time"

	"github.com/abhisek/skillpath/internal/store"
)

// Epochs is the profile's persisted invalidation counter. Every process
// sharing the database sees the same counter.
type Epochs struct {
	repo    store.SyncRepo
	profile string
}

// NewEpochs binds the counter to one profile.
func NewEpochs(repo store.SyncRepo, profile string) *Epochs {
	return &Epochs{repo: repo, profile: profile}
}

// Bump advances the counter and returns the new value.
func (e *Epochs) Bump(ctx context.Context, origin string, scope Scope) (int64, error) {
	ep, err := e.repo.Bump(ctx, e.profile, origin, string(scope))
	if err != nil {
		return 0, err
	}
	return ep.Value, nil
}

// Current returns the counter and who last advanced it.
func (e *Epochs) Current(ctx context.Context) (store.Epoch, error) {
	return e.repo.Current(ctx, e.profile)
}

// DefaultPollInterval is how often a Watcher checks for other processes.
const DefaultPollInterval = time.Second

// Watcher turns epoch advances made by other processes into local
// invalidations on a Bus.
type Watcher struct {
	bus      *Bus
	epochs   *Epochs
	interval time.Duration
	logger   *slog.Logger
}

// NewWatcher creates a watcher. interval <= 0 uses DefaultPollInterval.
func NewWatcher(bus *Bus, epochs *Epochs, interval time.Duration, logger *slog.Logger) *Watcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Watcher{bus: bus, epochs: epochs, interval: interval, logger: logger}
}

// Prime records the current epoch as seen without delivering, so a new
// view does not treat history as a change.
func (w *Watcher) Prime(ctx context.Context) error {
	e, err := w.epochs.Current(ctx)
	if err != nil {
		return err
	}
	w.bus.markSeen(e.Value)
	return nil
}

// Poll checks once and delivers an invalidation if another process
// advanced the epoch. It reports whether one was delivered.
func (w *Watcher) Poll(ctx context.Context) (bool, error) {
	e, err := w.epochs.Current(ctx)
	if err != nil {
		return false, err
	}
	if !w.bus.markSeen(e.Value) {
		return false, nil
	}
	if e.Origin == w.bus.Origin() {
		return false, nil
	}
	w.bus.deliver(Invalidation{Origin: e.Origin, Scope: Scope(e.Scope), Epoch: e.Value})
	return true, nil
}

// Run polls until ctx is done. Poll errors are logged and retried on the
// next tick.
func (w *Watcher) Run(ctx context.Context) error {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if _, err := w.Poll(ctx); err != nil && ctx.Err() == nil {
				w.logger.Warn("epoch poll failed", "error", err)
			}
		}
	}
}
