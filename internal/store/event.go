package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// sequenceCounter hands out a global, monotonically increasing sequence
// shared by every append-only table (award events, mastery events, LLM
// events). Per-table auto-increment ids cannot order rows across tables.
//
// The counter lives in its own single-row table outside the migrated
// schema; the UPDATE ... RETURNING makes each increment atomic in the
// database, so separate processes never receive the same value.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

// queryRower is satisfied by both *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{db: db}, nil
}

// Next returns the next sequence number outside any transaction.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.nextOn(ctx, sc.db)
}

// NextTx returns the next sequence number inside tx. Callers already
// holding the write lock must use this; taking a second connection would
// wait on their own lock.
func (sc *sequenceCounter) NextTx(ctx context.Context, tx *sql.Tx) (int64, error) {
	return sc.nextOn(ctx, tx)
}

func (sc *sequenceCounter) nextOn(ctx context.Context, q queryRower) (int64, error) {
	var seq int64
	err := q.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

// eventRepo implements EventRepo on the shared database.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}
