package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/skillpath/internal/store"
)

type note struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

var noteV1 = RecordType{
	Kind:    "note",
	Version: "v1.1.0",
	Schema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text":  map[string]any{"type": "string"},
			"count": map[string]any{"type": "integer", "minimum": 0},
		},
		"required": []any{"text", "count"},
	},
}

func openCache(t *testing.T) (*Cache, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return New(s.CacheRepo(), "default", nil), s
}

func TestPutGet(t *testing.T) {
	c, _ := openCache(t)
	ctx := context.Background()

	_, found, err := Get[note](ctx, c, noteV1, "a")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, Put(ctx, c, noteV1, "a", note{Text: "hi", Count: 2}))

	got, found, err := Get[note](ctx, c, noteV1, "a")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, note{Text: "hi", Count: 2}, got)
}

func TestUpdateUnchangedSkipsWrite(t *testing.T) {
	c, s := openCache(t)
	ctx := context.Background()
	require.NoError(t, Put(ctx, c, noteV1, "a", note{Text: "hi", Count: 1}))

	before, err := s.CacheRepo().Get(ctx, "default", "a")
	require.NoError(t, err)

	_, changed, err := Update(ctx, c, noteV1, "a", func(cur note, found bool) (note, bool, error) {
		assert.True(t, found)
		return cur, false, nil
	})
	require.NoError(t, err)
	assert.False(t, changed)

	after, err := s.CacheRepo().Get(ctx, "default", "a")
	require.NoError(t, err)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
}

func TestWriteRejectsSchemaViolation(t *testing.T) {
	c, _ := openCache(t)
	err := Put(context.Background(), c, noteV1, "a", note{Text: "x", Count: -1})
	require.Error(t, err)
}

func TestUnreadableRecordIsNoData(t *testing.T) {
	c, s := openCache(t)
	ctx := context.Background()
	repo := s.CacheRepo()

	cases := map[string]store.CacheEntry{
		"garbage":     {Kind: "note", SchemaVersion: "v1.0.0", Data: []byte(`{not json`)},
		"wrong-shape": {Kind: "note", SchemaVersion: "v1.0.0", Data: []byte(`{"text":5}`)},
		"newer-minor": {Kind: "note", SchemaVersion: "v1.2.0", Data: []byte(`{"text":"a","count":1}`)},
		"other-major": {Kind: "note", SchemaVersion: "v2.0.0", Data: []byte(`{"text":"a","count":1}`)},
		"bad-version": {Kind: "note", SchemaVersion: "one", Data: []byte(`{"text":"a","count":1}`)},
		"wrong-kind":  {Kind: "other", SchemaVersion: "v1.0.0", Data: []byte(`{"text":"a","count":1}`)},
	}
	for key, entry := range cases {
		e := entry
		_, err := repo.Update(ctx, "default", key, func(*store.CacheEntry, store.CacheReader) (*store.CacheEntry, error) { return &e, nil })
		require.NoError(t, err)

		_, found, err := Get[note](ctx, c, noteV1, key)
		require.NoError(t, err, key)
		assert.False(t, found, key)
	}

	// Older minor of the same major stays readable.
	_, err := repo.Update(ctx, "default", "older", func(*store.CacheEntry, store.CacheReader) (*store.CacheEntry, error) {
		return &store.CacheEntry{Kind: "note", SchemaVersion: "v1.0.0", Data: []byte(`{"text":"a","count":1}`)}, nil
	})
	require.NoError(t, err)
	_, found, err := Get[note](ctx, c, noteV1, "older")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestUpdateOverUnreadableStartsFresh(t *testing.T) {
	c, s := openCache(t)
	ctx := context.Background()
	_, err := s.CacheRepo().Update(ctx, "default", "a", func(*store.CacheEntry, store.CacheReader) (*store.CacheEntry, error) {
		return &store.CacheEntry{Kind: "note", SchemaVersion: "v1.0.0", Data: []byte(`junk`)}, nil
	})
	require.NoError(t, err)

	got, changed, err := Update(ctx, c, noteV1, "a", func(cur note, found bool) (note, bool, error) {
		assert.False(t, found)
		cur.Text = "fresh"
		return cur, true, nil
	})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "fresh", got.Text)
}

func TestListAndClear(t *testing.T) {
	c, _ := openCache(t)
	ctx := context.Background()
	require.NoError(t, Put(ctx, c, noteV1, "a", note{Text: "a"}))
	require.NoError(t, Put(ctx, c, noteV1, "b", note{Text: "b"}))

	all, err := List[note](ctx, c, noteV1)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "b", all["b"].Text)

	require.NoError(t, c.Delete(ctx, "a"))
	all, err = List[note](ctx, c, noteV1)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, c.Clear(ctx))
	all, err = List[note](ctx, c, noteV1)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCompatible(t *testing.T) {
	assert.True(t, Compatible("v1.0.0", "v1.1.0"))
	assert.True(t, Compatible("v1.1.0", "v1.1.0"))
	assert.False(t, Compatible("v1.2.0", "v1.1.0"))
	assert.False(t, Compatible("v2.0.0", "v1.1.0"))
	assert.False(t, Compatible("", "v1.0.0"))
}

func TestUpdateTxReadsOtherRecords(t *testing.T) {
	c, _ := openCache(t)
	ctx := context.Background()
	require.NoError(t, Put(ctx, c, noteV1, "limit", note{Text: "cap", Count: 3}))

	bump := func() (note, bool, error) {
		return UpdateTx(ctx, c, noteV1, "counter", func(tx Tx, cur note, _ bool) (note, bool, error) {
			limit, found, err := Read[note](tx, noteV1, "limit")
			if err != nil || !found {
				return cur, false, err
			}
			if cur.Count >= limit.Count {
				return cur, false, nil
			}
			return note{Text: "counter", Count: cur.Count + 1}, true, nil
		})
	}
	for range 5 {
		_, _, err := bump()
		require.NoError(t, err)
	}
	got, _, err := Get[note](ctx, c, noteV1, "counter")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Count)

	_, found, err := Read[note](Tx{c: c, read: func(string) (*store.CacheEntry, error) { return nil, nil }}, noteV1, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}
