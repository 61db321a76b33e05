package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// AwardEvent is one accepted award. An account's total is the sum of its
// award events.
type AwardEvent struct {
	ent.Schema
}

func (AwardEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").Immutable(),
		field.Int64("sequence").Unique().Immutable(),
		field.String("user_id").NotEmpty().Immutable(),
		field.Int64("points").Positive().Immutable(),
		field.String("reason").Default(""),
		field.String("idempotency_key").
			Optional().
			Nillable().
			Unique().
			Immutable().
			Comment("Awards sharing a key apply once"),
		field.Time("created_at").Immutable(),
	}
}

func (AwardEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id"),
	}
}
