package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var accountColumns = []string{"user_id", "display_name", "email", "total_points", "created_at"}

var awardEventColumns = []string{"id", "sequence", "user_id", "points", "reason", "idempotency_key", "created_at"}

// accountRepo implements AccountRepo.
type accountRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *accountRepo) Ensure(ctx context.Context, acct Account) (Account, bool, error) {
	if acct.CreatedAt.IsZero() {
		acct.CreatedAt = time.Now().UTC()
	}
	query, args := builder.Insert(AccountsTable.Name).
		Columns(accountColumns...).
		Values(acct.UserID, acct.DisplayName, acct.Email, 0, acct.CreatedAt).
		OnConflict(entsql.ConflictColumns("user_id"), entsql.DoNothing()).
		Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return Account{}, false, fmt.Errorf("insert account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Account{}, false, fmt.Errorf("insert account: %w", err)
	}

	got, err := r.Get(ctx, acct.UserID)
	if err != nil {
		return Account{}, false, err
	}
	return got, n == 1, nil
}

func (r *accountRepo) Get(ctx context.Context, userID string) (Account, error) {
	return getAccount(ctx, r.db, userID)
}

func getAccount(ctx context.Context, q queryRower, userID string) (Account, error) {
	query, args := builder.Select(accountColumns...).
		From(entsql.Table(AccountsTable.Name)).
		Where(entsql.EQ("user_id", userID)).
		Query()

	var a Account
	err := q.QueryRowContext(ctx, query, args...).
		Scan(&a.UserID, &a.DisplayName, &a.Email, &a.TotalPoints, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	if err != nil {
		return Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (r *accountRepo) Award(ctx context.Context, req AwardRequest) (AwardEvent, int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return AwardEvent{}, 0, fmt.Errorf("begin award: %w", err)
	}
	defer tx.Rollback()

	seqNum, err := r.seq.NextTx(ctx, tx)
	if err != nil {
		return AwardEvent{}, 0, err
	}

	ev := AwardEvent{
		ID:             uuid.NewString(),
		Sequence:       seqNum,
		UserID:         req.UserID,
		Points:         req.Points,
		Reason:         req.Reason,
		IdempotencyKey: req.IdempotencyKey,
		CreatedAt:      time.Now().UTC(),
	}

	var key any
	if ev.IdempotencyKey != "" {
		key = ev.IdempotencyKey
	}
	ins := builder.Insert(AwardEventsTable.Name).
		Columns(awardEventColumns...).
		Values(ev.ID, ev.Sequence, ev.UserID, ev.Points, ev.Reason, key, ev.CreatedAt)
	if key != nil {
		ins.OnConflict(entsql.ConflictColumns("idempotency_key"), entsql.DoNothing())
	}
	query, args := ins.Query()
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return AwardEvent{}, 0, fmt.Errorf("insert award event: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return AwardEvent{}, 0, fmt.Errorf("insert award event: %w", err)
	} else if n == 0 {
		return AwardEvent{}, 0, ErrDuplicateKey
	}

	query, args = builder.Update(AccountsTable.Name).
		Add("total_points", ev.Points).
		Where(entsql.EQ("user_id", ev.UserID)).
		Query()
	res, err = tx.ExecContext(ctx, query, args...)
	if err != nil {
		return AwardEvent{}, 0, fmt.Errorf("increment total: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return AwardEvent{}, 0, fmt.Errorf("increment total: %w", err)
	} else if n == 0 {
		return AwardEvent{}, 0, ErrNotFound
	}

	acct, err := getAccount(ctx, tx, ev.UserID)
	if err != nil {
		return AwardEvent{}, 0, err
	}

	if err := tx.Commit(); err != nil {
		return AwardEvent{}, 0, fmt.Errorf("commit award: %w", err)
	}
	return ev, acct.TotalPoints, nil
}

func (r *accountRepo) History(ctx context.Context, userID string, opts QueryOpts) ([]AwardEvent, error) {
	sel := builder.Select(awardEventColumns...).
		From(entsql.Table(AwardEventsTable.Name)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("sequence"))
	applyQueryOpts(sel, opts, "created_at")

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query award history: %w", err)
	}
	defer rows.Close()

	var out []AwardEvent
	for rows.Next() {
		var (
			ev  AwardEvent
			key sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ev.Sequence, &ev.UserID, &ev.Points, &ev.Reason, &key, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan award event: %w", err)
		}
		ev.IdempotencyKey = key.String
		out = append(out, ev)
	}
	return out, rows.Err()
}

// applyQueryOpts adds the QueryOpts filters to sel. tsCol names the
// timestamp column used for From/To.
func applyQueryOpts(sel *entsql.Selector, opts QueryOpts, tsCol string) {
	if opts.After > 0 {
		sel.Where(entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		sel.Where(entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE(tsCol, opts.From))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE(tsCol, opts.To))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
}
