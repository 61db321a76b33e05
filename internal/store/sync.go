package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// syncRepo implements SyncRepo.
type syncRepo struct {
	db *sql.DB
}

func (r *syncRepo) Bump(ctx context.Context, profile, origin, scope string) (Epoch, error) {
	// The upsert both creates the row and increments it, so the epoch
	// advances atomically whichever process gets there first.
	query, args := builder.Insert(SyncEpochsTable.Name).
		Columns("profile", "epoch", "origin", "scope").
		Values(profile, 1, origin, scope).
		OnConflict(
			entsql.ConflictColumns("profile"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.Add("epoch", 1)
				u.SetExcluded("origin")
				u.SetExcluded("scope")
			}),
		).
		Returning("profile", "epoch", "origin", "scope").
		Query()

	var e Epoch
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&e.Profile, &e.Value, &e.Origin, &e.Scope)
	if err != nil {
		return Epoch{}, fmt.Errorf("bump epoch for %s: %w", profile, err)
	}
	return e, nil
}

func (r *syncRepo) Current(ctx context.Context, profile string) (Epoch, error) {
	query, args := builder.Select("profile", "epoch", "origin", "scope").
		From(entsql.Table(SyncEpochsTable.Name)).
		Where(entsql.EQ("profile", profile)).
		Query()

	var e Epoch
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&e.Profile, &e.Value, &e.Origin, &e.Scope)
	if errors.Is(err, sql.ErrNoRows) {
		return Epoch{Profile: profile}, nil
	}
	if err != nil {
		return Epoch{}, fmt.Errorf("read epoch for %s: %w", profile, err)
	}
	return e, nil
}
