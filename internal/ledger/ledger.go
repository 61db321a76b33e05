// Package ledger is the server-of-record points accumulator. Totals only
// change through an atomic increment inside a store transaction and are
// never decremented.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/skillpath/internal/store"
)

// Receipt confirms an applied award.
type Receipt struct {
	EventID string
	UserID  string
	Points  int64
	Reason  string
	Key     string
	Total   int64 // account total after the award
	At      time.Time
}

// Ledger applies awards against durable account totals.
type Ledger struct {
	repo   store.AccountRepo
	logger *slog.Logger
}

// New creates a Ledger.
func New(repo store.AccountRepo, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Ledger{repo: repo, logger: logger}
}

// Award adds points to the user's total without deduplication.
func (l *Ledger) Award(ctx context.Context, userID string, points int64) (Receipt, error) {
	return l.AwardOnce(ctx, userID, points, "", "")
}

// AwardOnce adds points unless key was already applied, in which case it
// returns ErrDuplicateAward and changes nothing. An empty key disables
// deduplication.
func (l *Ledger) AwardOnce(ctx context.Context, userID string, points int64, key, reason string) (Receipt, error) {
	if strings.TrimSpace(userID) == "" {
		return Receipt{}, &InvalidAwardError{Field: "user", Reason: "empty"}
	}
	if points <= 0 {
		return Receipt{}, &InvalidAwardError{Field: "points", Reason: fmt.Sprintf("%d is not a positive integer", points)}
	}

	ev, total, err := l.repo.Award(ctx, store.AwardRequest{
		UserID:         userID,
		Points:         points,
		Reason:         reason,
		IdempotencyKey: key,
	})
	switch {
	case errors.Is(err, store.ErrDuplicateKey):
		l.logger.Info("duplicate award ignored", "user", userID, "key", key)
		return Receipt{}, fmt.Errorf("award %q: %w", key, ErrDuplicateAward)
	case errors.Is(err, store.ErrNotFound):
		l.logger.Warn("award to missing account", "user", userID, "points", points)
		return Receipt{}, fmt.Errorf("award to %s: %w", userID, ErrUserNotFound)
	case err != nil:
		l.logger.Error("award failed", "user", userID, "points", points, "error", err)
		return Receipt{}, &UnavailableError{Op: "award", Err: err}
	}

	l.logger.Info("points awarded", "user", userID, "points", points, "total", total, "reason", reason)
	return Receipt{
		EventID: ev.ID,
		UserID:  userID,
		Points:  points,
		Reason:  reason,
		Key:     key,
		Total:   total,
		At:      ev.CreatedAt,
	}, nil
}

// EnsureAccount creates the user's account at zero on first sign-in. It is
// idempotent and never resets an existing total.
func (l *Ledger) EnsureAccount(ctx context.Context, userID, displayName, email string) (store.Account, bool, error) {
	if strings.TrimSpace(userID) == "" {
		return store.Account{}, false, &InvalidAwardError{Field: "user", Reason: "empty"}
	}
	acct, created, err := l.repo.Ensure(ctx, store.Account{UserID: userID, DisplayName: displayName, Email: email})
	if err != nil {
		return store.Account{}, false, &UnavailableError{Op: "ensure account", Err: err}
	}
	if created {
		l.logger.Info("account created", "user", userID)
	}
	return acct, created, nil
}

// Account returns the user's account.
func (l *Ledger) Account(ctx context.Context, userID string) (store.Account, error) {
	acct, err := l.repo.Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return store.Account{}, fmt.Errorf("account %s: %w", userID, ErrUserNotFound)
	}
	if err != nil {
		return store.Account{}, &UnavailableError{Op: "get account", Err: err}
	}
	return acct, nil
}

// Total returns the user's points total.
func (l *Ledger) Total(ctx context.Context, userID string) (int64, error) {
	acct, err := l.Account(ctx, userID)
	if err != nil {
		return 0, err
	}
	return acct.TotalPoints, nil
}

// History returns up to limit accepted awards, newest first. limit <= 0
// returns all.
func (l *Ledger) History(ctx context.Context, userID string, limit int) ([]store.AwardEvent, error) {
	if _, err := l.Account(ctx, userID); err != nil {
		return nil, err
	}
	events, err := l.repo.History(ctx, userID, store.QueryOpts{Limit: limit})
	if err != nil {
		return nil, &UnavailableError{Op: "history", Err: err}
	}
	return events, nil
}
