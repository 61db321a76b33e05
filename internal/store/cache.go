package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var cacheColumns = []string{"profile", "key", "kind", "schema_version", "data", "updated_at"}

// cacheRepo implements CacheRepo.
type cacheRepo struct {
	db *sql.DB
}

func (r *cacheRepo) Get(ctx context.Context, profile, key string) (*CacheEntry, error) {
	return getCacheEntry(ctx, r.db, profile, key)
}

func getCacheEntry(ctx context.Context, q queryRower, profile, key string) (*CacheEntry, error) {
	query, args := builder.Select(cacheColumns...).
		From(entsql.Table(CacheEntriesTable.Name)).
		Where(entsql.And(entsql.EQ("profile", profile), entsql.EQ("key", key))).
		Query()

	var (
		e    CacheEntry
		data string
	)
	err := q.QueryRowContext(ctx, query, args...).
		Scan(&e.Profile, &e.Key, &e.Kind, &e.SchemaVersion, &data, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cache entry %s/%s: %w", profile, key, err)
	}
	e.Data = []byte(data)
	return &e, nil
}

func (r *cacheRepo) Update(ctx context.Context, profile, key string, fn CacheUpdateFunc) (*CacheEntry, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin cache update: %w", err)
	}
	defer tx.Rollback()

	cur, err := getCacheEntry(ctx, tx, profile, key)
	if err != nil {
		return nil, err
	}

	next, err := fn(cur, func(k string) (*CacheEntry, error) {
		return getCacheEntry(ctx, tx, profile, k)
	})
	if err != nil {
		return nil, err
	}
	if next == nil {
		return cur, nil
	}

	next.Profile = profile
	next.Key = key
	next.UpdatedAt = time.Now().UTC()

	query, args := builder.Insert(CacheEntriesTable.Name).
		Columns(cacheColumns...).
		Values(next.Profile, next.Key, next.Kind, next.SchemaVersion, string(next.Data), next.UpdatedAt).
		OnConflict(
			entsql.ConflictColumns("profile", "key"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("write cache entry %s/%s: %w", profile, key, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit cache update: %w", err)
	}
	return next, nil
}

func (r *cacheRepo) List(ctx context.Context, profile, kind string) ([]CacheEntry, error) {
	query, args := builder.Select(cacheColumns...).
		From(entsql.Table(CacheEntriesTable.Name)).
		Where(entsql.And(entsql.EQ("profile", profile), entsql.EQ("kind", kind))).
		OrderBy("key").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cache entries: %w", err)
	}
	defer rows.Close()

	var out []CacheEntry
	for rows.Next() {
		var (
			e    CacheEntry
			data string
		)
		if err := rows.Scan(&e.Profile, &e.Key, &e.Kind, &e.SchemaVersion, &data, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan cache entry: %w", err)
		}
		e.Data = []byte(data)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *cacheRepo) Delete(ctx context.Context, profile, key string) error {
	query, args := builder.Delete(CacheEntriesTable.Name).
		Where(entsql.And(entsql.EQ("profile", profile), entsql.EQ("key", key))).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete cache entry %s/%s: %w", profile, key, err)
	}
	return nil
}

func (r *cacheRepo) Clear(ctx context.Context, profile string) error {
	query, args := builder.Delete(CacheEntriesTable.Name).
		Where(entsql.EQ("profile", profile)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear cache for %s: %w", profile, err)
	}
	return nil
}
