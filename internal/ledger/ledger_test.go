package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/skillpath/internal/store"
)

func newLedger(t *testing.T) (*Ledger, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return New(s.AccountRepo(), nil), s
}

func TestAwardRejectsNonPositive(t *testing.T) {
	l, _ := newLedger(t)
	ctx := context.Background()
	_, _, err := l.EnsureAccount(ctx, "u1", "", "")
	require.NoError(t, err)

	for _, pts := range []int64{0, -5} {
		_, err := l.Award(ctx, "u1", pts)
		var inv *InvalidAwardError
		require.ErrorAs(t, err, &inv, "points %d", pts)
		assert.True(t, inv.IsValidation())
	}

	total, err := l.Total(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestAwardMissingUser(t *testing.T) {
	l, _ := newLedger(t)
	_, err := l.Award(context.Background(), "ghost", 10)
	require.ErrorIs(t, err, ErrUserNotFound)
	assert.False(t, IsUnavailable(err))
}

func TestConcurrentAwardsBothApply(t *testing.T) {
	l, _ := newLedger(t)
	ctx := context.Background()
	_, _, err := l.EnsureAccount(ctx, "u1", "", "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = l.Award(ctx, "u1", 10)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	total, err := l.Total(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(20), total)
}

func TestAwardOnceDeduplicates(t *testing.T) {
	l, _ := newLedger(t)
	ctx := context.Background()
	_, _, err := l.EnsureAccount(ctx, "u1", "Ada", "ada@example.com")
	require.NoError(t, err)

	r, err := l.AwardOnce(ctx, "u1", 10, "skill/u1/web/react", "Mastered React")
	require.NoError(t, err)
	assert.Equal(t, int64(10), r.Total)
	assert.NotEmpty(t, r.EventID)

	_, err = l.AwardOnce(ctx, "u1", 10, "skill/u1/web/react", "Mastered React")
	require.ErrorIs(t, err, ErrDuplicateAward)

	r, err = l.AwardOnce(ctx, "u1", 50, "role/u1/web", "Mastered Web Developer")
	require.NoError(t, err)
	assert.Equal(t, int64(60), r.Total)

	hist, err := l.History(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	var sum int64
	for _, ev := range hist {
		sum += ev.Points
	}
	assert.Equal(t, r.Total, sum, "total equals the sum of accepted awards")
	assert.Equal(t, "role/u1/web", hist[0].IdempotencyKey)
}

func TestEnsureAccountIdempotent(t *testing.T) {
	l, _ := newLedger(t)
	ctx := context.Background()

	acct, created, err := l.EnsureAccount(ctx, "u1", "Ada", "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(0), acct.TotalPoints)

	_, err = l.Award(ctx, "u1", 15)
	require.NoError(t, err)

	acct, created, err = l.EnsureAccount(ctx, "u1", "Ada", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(15), acct.TotalPoints)

	_, _, err = l.EnsureAccount(ctx, " ", "", "")
	var inv *InvalidAwardError
	require.ErrorAs(t, err, &inv)
}

type brokenRepo struct{ store.AccountRepo }

func (brokenRepo) Award(context.Context, store.AwardRequest) (store.AwardEvent, int64, error) {
	return store.AwardEvent{}, 0, errors.New("database is locked")
}

func TestAwardStoreFailureIsUnavailable(t *testing.T) {
	l := New(brokenRepo{}, nil)
	_, err := l.Award(context.Background(), "u1", 10)
	require.Error(t, err)
	assert.True(t, IsUnavailable(err))
	assert.False(t, errors.Is(err, ErrUserNotFound))
}

func TestHistoryMissingUser(t *testing.T) {
	l, _ := newLedger(t)
	_, err := l.History(context.Background(), "ghost", 10)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestRewardsFor(t *testing.T) {
	st := RewardsFor(120)
	require.Len(t, st, 3)
	assert.True(t, st[0].Eligible)
	assert.False(t, st[1].Eligible)
	assert.Equal(t, int64(380), st[1].Needed)

	next, ok := NextReward(120)
	require.True(t, ok)
	assert.Equal(t, "play-50", next.ID)

	_, ok = NextReward(1000)
	assert.False(t, ok)
}
