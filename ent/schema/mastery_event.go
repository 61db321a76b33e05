package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// MasteryEvent records a gate or skill state transition for audit.
type MasteryEvent struct {
	ent.Schema
}

func (MasteryEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (MasteryEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("profile").NotEmpty(),
		field.String("role_key").NotEmpty(),
		field.String("skill_key").
			Default("").
			Comment("Empty for role-level transitions"),
		field.String("from_state").NotEmpty(),
		field.String("to_state").NotEmpty(),
		field.String("trigger").NotEmpty(),
		field.Int("score").Default(0),
		field.Int("total").Default(0),
	}
}

func (MasteryEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("profile", "role_key"),
	}
}
