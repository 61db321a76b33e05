// Package cache is the per-profile client cache. Every record carries a
// kind and a semantic schema version and is validated against its JSON
// schema on read and on write. A record that fails to decode is treated as
// absent.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"

	"github.com/abhisek/skillpath/internal/store"
)

// RecordType describes one persisted record shape.
type RecordType struct {
	// Kind groups records for listing, e.g. "progress".
	Kind string

	// Version is the semver of the shape written today, e.g. "v1.1.0".
	// Records with the same major version and a minor version no newer
	// than this are readable.
	Version string

	// Schema is the JSON Schema a record must satisfy.
	Schema map[string]any
}

// Cache reads and writes typed records for one profile.
type Cache struct {
	repo    store.CacheRepo
	profile string
	logger  *slog.Logger
}

// New creates a Cache scoped to profile.
func New(repo store.CacheRepo, profile string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cache{repo: repo, profile: profile, logger: logger}
}

// Profile returns the profile this cache is scoped to.
func (c *Cache) Profile() string { return c.profile }

// ErrIncompatible marks a record written under a schema version this build
// cannot read.
var ErrIncompatible = errors.New("cache: incompatible schema version")

// Get loads the record at key into a T. found is false when the record is
// missing or unreadable; unreadable records are logged, not returned as
// errors.
func Get[T any](ctx context.Context, c *Cache, rt RecordType, key string) (v T, found bool, err error) {
	entry, err := c.repo.Get(ctx, c.profile, key)
	if err != nil {
		return v, false, err
	}
	return decode[T](c, rt, key, entry)
}

// Update merges into the record at key inside one store transaction. fn
// gets the current value (found=false if absent or unreadable) and reports
// whether it changed anything; unchanged values are not written.
func Update[T any](ctx context.Context, c *Cache, rt RecordType, key string, fn func(cur T, found bool) (T, bool, error)) (result T, changed bool, err error) {
	return UpdateTx(ctx, c, rt, key, func(_ Tx, cur T, found bool) (T, bool, error) {
		return fn(cur, found)
	})
}

// Tx reads other records of the cache inside an UpdateTx callback. What it
// returns stays current until the update commits.
type Tx struct {
	c    *Cache
	read store.CacheReader
}

// Read is Get through a Tx.
func Read[T any](tx Tx, rt RecordType, key string) (v T, found bool, err error) {
	entry, err := tx.read(key)
	if err != nil {
		return v, false, err
	}
	return decode[T](tx.c, rt, key, entry)
}

// UpdateTx is Update for merges that depend on other records, such as a
// gate that must hold at the moment of the write.
func UpdateTx[T any](ctx context.Context, c *Cache, rt RecordType, key string, fn func(tx Tx, cur T, found bool) (T, bool, error)) (result T, changed bool, err error) {
	_, err = c.repo.Update(ctx, c.profile, key, func(entry *store.CacheEntry, read store.CacheReader) (*store.CacheEntry, error) {
		cur, found, _ := decode[T](c, rt, key, entry)
		next, ch, err := fn(Tx{c: c, read: read}, cur, found)
		if err != nil {
			return nil, err
		}
		result, changed = next, ch
		if !ch {
			return nil, nil
		}
		data, err := encode(rt, next)
		if err != nil {
			return nil, err
		}
		return &store.CacheEntry{Kind: rt.Kind, SchemaVersion: rt.Version, Data: data}, nil
	})
	if err != nil {
		var zero T
		return zero, false, err
	}
	return result, changed, nil
}

// Put overwrites the record at key.
func Put[T any](ctx context.Context, c *Cache, rt RecordType, key string, v T) error {
	_, _, err := Update(ctx, c, rt, key, func(T, bool) (T, bool, error) { return v, true, nil })
	return err
}

// List decodes every readable record of rt's kind, keyed by cache key.
func List[T any](ctx context.Context, c *Cache, rt RecordType) (map[string]T, error) {
	entries, err := c.repo.List(ctx, c.profile, rt.Kind)
	if err != nil {
		return nil, err
	}
	out := make(map[string]T, len(entries))
	for i := range entries {
		v, ok, _ := decode[T](c, rt, entries[i].Key, &entries[i])
		if ok {
			out[entries[i].Key] = v
		}
	}
	return out, nil
}

// Delete removes the record at key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.repo.Delete(ctx, c.profile, key)
}

// Clear removes every record in the profile.
func (c *Cache) Clear(ctx context.Context) error {
	return c.repo.Clear(ctx, c.profile)
}

func decode[T any](c *Cache, rt RecordType, key string, entry *store.CacheEntry) (v T, found bool, err error) {
	if entry == nil {
		return v, false, nil
	}
	if err := readable(rt, entry); err != nil {
		c.logger.Warn("cache record unreadable", "profile", c.profile, "key", key, "error", err)
		return v, false, nil
	}
	if err := json.Unmarshal(entry.Data, &v); err != nil {
		c.logger.Warn("cache record undecodable", "profile", c.profile, "key", key, "error", err)
		var zero T
		return zero, false, nil
	}
	return v, true, nil
}

// readable checks kind, version compatibility and schema conformance.
func readable(rt RecordType, entry *store.CacheEntry) error {
	if entry.Kind != rt.Kind {
		return fmt.Errorf("kind %q, want %q", entry.Kind, rt.Kind)
	}
	if !Compatible(entry.SchemaVersion, rt.Version) {
		return fmt.Errorf("%w: %s (reader %s)", ErrIncompatible, entry.SchemaVersion, rt.Version)
	}
	return validate(rt, entry.Data)
}

// Compatible reports whether a record written at version written can be
// read by a reader at version reader: same major, not newer.
func Compatible(written, reader string) bool {
	if !semver.IsValid(written) || !semver.IsValid(reader) {
		return false
	}
	return semver.Major(written) == semver.Major(reader) && semver.Compare(written, reader) <= 0
}

func encode(rt RecordType, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s record: %w", rt.Kind, err)
	}
	if err := validate(rt, data); err != nil {
		return nil, fmt.Errorf("encode %s record: %w", rt.Kind, err)
	}
	return data, nil
}

var compiled sync.Map // map[string]*jsonschema.Schema, keyed by kind@version

func validate(rt RecordType, data []byte) error {
	if rt.Schema == nil {
		return nil
	}
	sch, err := compile(rt)
	if err != nil {
		return err
	}
	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := sch.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func compile(rt RecordType) (*jsonschema.Schema, error) {
	id := rt.Kind + "@" + rt.Version
	if s, ok := compiled.Load(id); ok {
		return s.(*jsonschema.Schema), nil
	}

	raw, err := json.Marshal(rt.Schema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %s: %w", id, err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", id, err)
	}

	comp := jsonschema.NewCompiler()
	url := fmt.Sprintf("cache://%s/%s.json", rt.Kind, rt.Version)
	if err := comp.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", id, err)
	}
	s, err := comp.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", id, err)
	}
	compiled.Store(id, s)
	return s, nil
}
