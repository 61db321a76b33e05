package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/abhisek/skillpath/internal/cache"
	"github.com/abhisek/skillpath/internal/catalog"
	"github.com/abhisek/skillpath/internal/ledger"
	"github.com/abhisek/skillpath/internal/syncbus"
)

// PendingAward is an award the engine granted but the ledger has not
// confirmed. Pending points are never part of the earned total.
type PendingAward struct {
	Key       string    `json:"key"`
	UserID    string    `json:"userId"`
	Points    int64     `json:"points"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"createdAt"`
	Attempts  int       `json:"attempts"`
	LastError string    `json:"lastError,omitempty"`
}

// PendingAwardType is the cache record for a pending award.
var PendingAwardType = cache.RecordType{
	Kind:    "pending-award",
	Version: "v1.0.0",
	Schema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"key":       map[string]any{"type": "string", "minLength": 1},
			"userId":    map[string]any{"type": "string", "minLength": 1},
			"points":    map[string]any{"type": "integer", "minimum": 1},
			"reason":    map[string]any{"type": "string"},
			"createdAt": map[string]any{"type": "string"},
			"attempts":  map[string]any{"type": "integer", "minimum": 0},
			"lastError": map[string]any{"type": "string"},
		},
		"required": []any{"key", "userId", "points", "createdAt", "attempts"},
	},
}

// SkillAwardKey is the idempotency key for mastering one skill of a role.
func SkillAwardKey(user, role, skill string) string {
	return fmt.Sprintf("skill/%s/%s/%s", user, catalog.Key(role), catalog.Key(skill))
}

// RoleAwardKey is the idempotency key for mastering a role.
func RoleAwardKey(user, role string) string {
	return fmt.Sprintf("role/%s/%s", user, catalog.Key(role))
}

func pendingKey(awardKey string) string { return "pending/" + awardKey }

func (e *Engine) newPending(key string, points int64, reason string) PendingAward {
	return PendingAward{
		Key:       key,
		UserID:    e.user,
		Points:    points,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}
}

// putPending stores pa unless an award with the same key is already
// pending, in which case the older record is kept. created reports whether
// pa was written; only the caller that created a record may roll it back.
func (e *Engine) putPending(ctx context.Context, pa PendingAward) (created bool, err error) {
	_, created, err = cache.Update(ctx, e.cache, PendingAwardType, pendingKey(pa.Key),
		func(cur PendingAward, found bool) (PendingAward, bool, error) {
			if found {
				return cur, false, nil
			}
			return pa, true, nil
		})
	if err != nil {
		return false, fmt.Errorf("store pending award: %w", err)
	}
	return created, nil
}

func (e *Engine) dropPending(ctx context.Context, key string) {
	if err := e.cache.Delete(ctx, pendingKey(key)); err != nil {
		e.logger.Warn("remove pending award", "key", key, "error", err)
	}
}

// settle sends pa to the ledger. Success and duplicate both clear the
// pending record; a duplicate means an earlier attempt already applied it.
// Any other failure keeps it pending and is returned.
func (e *Engine) settle(ctx context.Context, pa PendingAward) (*ledger.Receipt, error) {
	r, err := e.ledger.AwardOnce(ctx, pa.UserID, pa.Points, pa.Key, pa.Reason)
	switch {
	case err == nil:
		e.dropPending(ctx, pa.Key)
		e.publish(ctx, syncbus.ScopePoints)
		return &r, nil
	case errors.Is(err, ledger.ErrDuplicateAward):
		e.dropPending(ctx, pa.Key)
		return nil, nil
	}

	e.logger.Warn("award kept pending", "key", pa.Key, "points", pa.Points, "error", err)
	_, _, uerr := cache.Update(ctx, e.cache, PendingAwardType, pendingKey(pa.Key),
		func(cur PendingAward, found bool) (PendingAward, bool, error) {
			if !found {
				cur = pa
			}
			cur.Attempts++
			cur.LastError = err.Error()
			return cur, true, nil
		})
	if uerr != nil {
		e.logger.Warn("update pending award", "key", pa.Key, "error", uerr)
	}
	return nil, err
}

// PendingAwards lists this user's unconfirmed awards, oldest first.
func (e *Engine) PendingAwards(ctx context.Context) ([]PendingAward, error) {
	all, err := cache.List[PendingAward](ctx, e.cache, PendingAwardType)
	if err != nil {
		return nil, err
	}
	out := make([]PendingAward, 0, len(all))
	for _, pa := range all {
		if pa.UserID == e.user {
			out = append(out, pa)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Key < out[j].Key
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// RetryReport summarizes a RetryPendingAwards run.
type RetryReport struct {
	Applied    []ledger.Receipt
	Duplicates int
	Remaining  int
}

// RetryPendingAwards sends every pending award to the ledger again. A
// failed award stays pending and the loop moves on; the first failure is
// returned with the report.
func (e *Engine) RetryPendingAwards(ctx context.Context) (RetryReport, error) {
	pending, err := e.PendingAwards(ctx)
	if err != nil {
		return RetryReport{}, err
	}

	var rep RetryReport
	var firstErr error
	for _, pa := range pending {
		r, err := e.settle(ctx, pa)
		switch {
		case err != nil:
			rep.Remaining++
			if firstErr == nil {
				firstErr = err
			}
		case r != nil:
			rep.Applied = append(rep.Applied, *r)
		default:
			rep.Duplicates++
		}
		if ctx.Err() != nil {
			rep.Remaining = len(pending) - len(rep.Applied) - rep.Duplicates
			return rep, ctx.Err()
		}
	}
	return rep, firstErr
}
