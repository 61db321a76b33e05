package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// Account is one user's points ledger row. total_points only grows.
type Account struct {
	ent.Schema
}

func (Account) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("user_id").
			NotEmpty().
			Immutable(),
		field.String("display_name").Default(""),
		field.String("email").Default(""),
		field.Int64("total_points").
			Default(0).
			NonNegative(),
		field.Time("created_at").Immutable(),
	}
}
