package syncbus

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/skillpath/internal/store"
)

func openEpochs(t *testing.T) (*store.Store, *Epochs) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "sync.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, NewEpochs(s.SyncRepo(), "default")
}

func TestPublishFansOut(t *testing.T) {
	b := NewBus("view-a", nil, nil)
	s1 := b.Subscribe(0)
	s2 := b.Subscribe(0)

	require.NoError(t, b.Publish(context.Background(), ScopeProgress))

	for _, s := range []*Subscriber{s1, s2} {
		select {
		case inv := <-s.C:
			assert.Equal(t, "view-a", inv.Origin)
			assert.Equal(t, ScopeProgress, inv.Scope)
		default:
			t.Fatal("subscriber did not receive invalidation")
		}
	}
}

func TestOverflowSetsResync(t *testing.T) {
	b := NewBus("v", nil, nil)
	s := b.Subscribe(1)
	ctx := context.Background()

	require.NoError(t, b.Publish(ctx, ScopeProgress))
	require.NoError(t, b.Publish(ctx, ScopePoints)) // dropped

	assert.True(t, s.Resync())
	assert.False(t, s.Resync(), "Resync clears the flag")
	assert.Len(t, s.C, 1)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBus("v", nil, nil)
	s := b.Subscribe(0)
	b.Unsubscribe(s)

	require.NoError(t, b.Publish(context.Background(), ScopeAll))
	assert.Len(t, s.C, 0)
	select {
	case <-s.Done():
	default:
		t.Fatal("Done not closed")
	}
}

func TestPublishPersistsEpoch(t *testing.T) {
	_, epochs := openEpochs(t)
	b := NewBus("view-a", epochs, nil)
	s := b.Subscribe(0)
	ctx := context.Background()

	require.NoError(t, b.Publish(ctx, ScopeProgress))
	require.NoError(t, b.Publish(ctx, ScopeFinal))

	<-s.C
	inv := <-s.C
	assert.Equal(t, int64(2), inv.Epoch)

	cur, err := epochs.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cur.Value)
	assert.Equal(t, "view-a", cur.Origin)
}

func TestWatcherSeesOtherProcess(t *testing.T) {
	_, epochs := openEpochs(t)
	ctx := context.Background()

	a := NewBus("view-a", epochs, nil)
	b := NewBus("view-b", epochs, nil)
	wa := NewWatcher(a, epochs, time.Millisecond, nil)
	wb := NewWatcher(b, epochs, time.Millisecond, nil)
	require.NoError(t, wa.Prime(ctx))
	require.NoError(t, wb.Prime(ctx))

	subB := b.Subscribe(0)

	require.NoError(t, a.Publish(ctx, ScopePoints))

	// A ignores its own bump.
	got, err := wa.Poll(ctx)
	require.NoError(t, err)
	assert.False(t, got)

	got, err = wb.Poll(ctx)
	require.NoError(t, err)
	require.True(t, got)
	inv := <-subB.C
	assert.Equal(t, "view-a", inv.Origin)
	assert.Equal(t, ScopePoints, inv.Scope)

	// Nothing new: no duplicate delivery.
	got, err = wb.Poll(ctx)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestWatcherPrimeSkipsHistory(t *testing.T) {
	_, epochs := openEpochs(t)
	ctx := context.Background()
	_, err := epochs.Bump(ctx, "old-view", ScopeAll)
	require.NoError(t, err)

	b := NewBus("fresh", epochs, nil)
	w := NewWatcher(b, epochs, 0, nil)
	require.NoError(t, w.Prime(ctx))
	got, err := w.Poll(ctx)
	require.NoError(t, err)
	assert.False(t, got)
}

type failingSync struct{ store.SyncRepo }

func (failingSync) Bump(context.Context, string, string, string) (store.Epoch, error) {
	return store.Epoch{}, errors.New("disk full")
}

func TestPublishDeliversLocallyWhenPersistFails(t *testing.T) {
	b := NewBus("v", NewEpochs(failingSync{}, "p"), nil)
	s := b.Subscribe(0)

	err := b.Publish(context.Background(), ScopeProgress)
	require.Error(t, err)
	assert.Len(t, s.C, 1)
}

func TestRefresherCoalescesAndReloads(t *testing.T) {
	var reloads atomic.Int32
	done := make(chan struct{}, 8)
	r := NewRefresher(func(context.Context) error {
		reloads.Add(1)
		done <- struct{}{}
		return nil
	}, nil)

	// Three requests before Run starts collapse into one.
	r.Notify()
	r.Focus()
	r.Notify()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	<-done
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(1), reloads.Load())

	r.Focus()
	<-done
	assert.Equal(t, int32(2), reloads.Load())
}

func TestRefresherAttach(t *testing.T) {
	b := NewBus("v", nil, nil)
	sub := b.Subscribe(0)
	done := make(chan struct{}, 1)
	r := NewRefresher(func(context.Context) error {
		done <- struct{}{}
		return nil
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Attach(ctx, sub)
	go r.Run(ctx)

	require.NoError(t, b.Publish(ctx, ScopeGap))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reload not triggered by invalidation")
	}
}
