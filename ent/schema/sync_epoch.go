package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// SyncEpoch is the per-profile invalidation counter polled by other
// processes.
type SyncEpoch struct {
	ent.Schema
}

func (SyncEpoch) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("profile").
			NotEmpty(),
		field.Int64("epoch").Default(0),
		field.String("origin").Default(""),
		field.String("scope").Default(""),
	}
}
