package schema_test

import (
	"sort"
	"testing"

	"entgo.io/ent"
	entschema "entgo.io/ent/dialect/sql/schema"
	"github.com/stretchr/testify/assert"

	"github.com/abhisek/skillpath/ent/schema"
	"github.com/abhisek/skillpath/internal/store"
)

type entity interface {
	Fields() []ent.Field
	Mixin() []ent.Mixin
}

func columns(e entity) []string {
	var fields []ent.Field
	for _, m := range e.Mixin() {
		fields = append(fields, m.Fields()...)
	}
	fields = append(fields, e.Fields()...)

	var out []string
	for _, f := range fields {
		d := f.Descriptor()
		name := d.Name
		if d.StorageKey != "" {
			name = d.StorageKey
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func tableColumns(t *entschema.Table) []string {
	var out []string
	for _, c := range t.Columns {
		// Auto-increment ids are implicit in the ent schema.
		if c.Increment {
			continue
		}
		out = append(out, c.Name)
	}
	sort.Strings(out)
	return out
}

// The store migrates from hand-declared tables; these schemas describe the
// same tables and must not drift from them.
func TestSchemaMatchesStoreTables(t *testing.T) {
	tests := []struct {
		entity entity
		table  *entschema.Table
	}{
		{schema.Account{}, store.AccountsTable},
		{schema.AwardEvent{}, store.AwardEventsTable},
		{schema.CacheEntry{}, store.CacheEntriesTable},
		{schema.SyncEpoch{}, store.SyncEpochsTable},
		{schema.LLMRequestEvent{}, store.LlmRequestEventsTable},
		{schema.MasteryEvent{}, store.MasteryEventsTable},
	}
	for _, tt := range tests {
		t.Run(tt.table.Name, func(t *testing.T) {
			assert.Equal(t, tableColumns(tt.table), columns(tt.entity))
		})
	}
}
