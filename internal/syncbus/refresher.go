package syncbus

import (
	"context"
	"log/slog"
)

// Refresher drives a view's full reload. Notify (an invalidation arrived)
// and Focus (the view regained the foreground) both request a reload;
// requests made while one is pending coalesce into it.
type Refresher struct {
	reload  func(ctx context.Context) error
	pending chan struct{}
	logger  *slog.Logger
}

// NewRefresher creates a Refresher around reload.
func NewRefresher(reload func(ctx context.Context) error, logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Refresher{reload: reload, pending: make(chan struct{}, 1), logger: logger}
}

// Notify requests a reload after an invalidation.
func (r *Refresher) Notify() { r.request() }

// Focus requests a reload when the view regains focus, covering any
// invalidation that was missed.
func (r *Refresher) Focus() { r.request() }

func (r *Refresher) request() {
	select {
	case r.pending <- struct{}{}:
	default:
	}
}

// Attach forwards every invalidation on sub to Notify until sub is done or
// ctx ends.
func (r *Refresher) Attach(ctx context.Context, sub *Subscriber) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-sub.Done():
				return
			case <-sub.C:
				sub.Resync()
				r.Notify()
			}
		}
	}()
}

// Run performs requested reloads until ctx is done.
func (r *Refresher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.pending:
			if err := r.reload(ctx); err != nil && ctx.Err() == nil {
				r.logger.Warn("view reload failed", "error", err)
			}
		}
	}
}
