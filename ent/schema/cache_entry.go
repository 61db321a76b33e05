package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// CacheEntry is one versioned client cache record, keyed by profile and
// key.
type CacheEntry struct {
	ent.Schema
}

func (CacheEntry) Fields() []ent.Field {
	return []ent.Field{
		field.String("profile").NotEmpty(),
		field.String("key").NotEmpty(),
		field.String("kind").NotEmpty(),
		field.String("schema_version").
			Comment("Semver of the record type that wrote data"),
		field.Text("data"),
		field.Time("updated_at"),
	}
}

func (CacheEntry) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("profile", "key").Unique(),
		index.Fields("profile", "kind"),
	}
}
