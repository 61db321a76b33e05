package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table declarations for auto-migration. Each table is owned by one repo;
// column order here is the column order on disk.

var (
	// AccountsColumns holds the durable points ledger, one row per user.
	AccountsColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeString},
		{Name: "display_name", Type: field.TypeString, Default: ""},
		{Name: "email", Type: field.TypeString, Default: ""},
		{Name: "total_points", Type: field.TypeInt64, Default: 0},
		{Name: "created_at", Type: field.TypeTime},
	}
	AccountsTable = &schema.Table{
		Name:       "accounts",
		Columns:    AccountsColumns,
		PrimaryKey: []*schema.Column{AccountsColumns[0]},
	}

	// AwardEventsColumns is the append-only log of accepted awards.
	AwardEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "points", Type: field.TypeInt64},
		{Name: "reason", Type: field.TypeString, Default: ""},
		{Name: "idempotency_key", Type: field.TypeString, Nullable: true, Unique: true},
		{Name: "created_at", Type: field.TypeTime},
	}
	AwardEventsTable = &schema.Table{
		Name:       "award_events",
		Columns:    AwardEventsColumns,
		PrimaryKey: []*schema.Column{AwardEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "awardevent_user_id", Columns: []*schema.Column{AwardEventsColumns[2]}},
		},
	}

	// CacheEntriesColumns backs the per-profile client cache.
	CacheEntriesColumns = []*schema.Column{
		{Name: "profile", Type: field.TypeString},
		{Name: "key", Type: field.TypeString},
		{Name: "kind", Type: field.TypeString},
		{Name: "schema_version", Type: field.TypeString},
		{Name: "data", Type: field.TypeString, Size: 1 << 20},
		{Name: "updated_at", Type: field.TypeTime},
	}
	CacheEntriesTable = &schema.Table{
		Name:       "cache_entries",
		Columns:    CacheEntriesColumns,
		PrimaryKey: []*schema.Column{CacheEntriesColumns[0], CacheEntriesColumns[1]},
		Indexes: []*schema.Index{
			{Name: "cacheentry_profile_kind", Columns: []*schema.Column{CacheEntriesColumns[0], CacheEntriesColumns[2]}},
		},
	}

	// SyncEpochsColumns holds the cross-process invalidation counter.
	SyncEpochsColumns = []*schema.Column{
		{Name: "profile", Type: field.TypeString},
		{Name: "epoch", Type: field.TypeInt64, Default: 0},
		{Name: "origin", Type: field.TypeString, Default: ""},
		{Name: "scope", Type: field.TypeString, Default: ""},
	}
	SyncEpochsTable = &schema.Table{
		Name:       "sync_epochs",
		Columns:    SyncEpochsColumns,
		PrimaryKey: []*schema.Column{SyncEpochsColumns[0]},
	}

	// LlmRequestEventsColumns records every LLM call for inspection.
	LlmRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt},
		{Name: "output_tokens", Type: field.TypeInt},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 1 << 20, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 1 << 20, Default: ""},
	}
	LlmRequestEventsTable = &schema.Table{
		Name:       "llm_request_events",
		Columns:    LlmRequestEventsColumns,
		PrimaryKey: []*schema.Column{LlmRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{LlmRequestEventsColumns[5]}},
		},
	}

	// MasteryEventsColumns audits gate and skill transitions.
	MasteryEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "profile", Type: field.TypeString},
		{Name: "role_key", Type: field.TypeString},
		{Name: "skill_key", Type: field.TypeString, Default: ""},
		{Name: "from_state", Type: field.TypeString},
		{Name: "to_state", Type: field.TypeString},
		{Name: "trigger", Type: field.TypeString},
		{Name: "score", Type: field.TypeInt, Default: 0},
		{Name: "total", Type: field.TypeInt, Default: 0},
	}
	MasteryEventsTable = &schema.Table{
		Name:       "mastery_events",
		Columns:    MasteryEventsColumns,
		PrimaryKey: []*schema.Column{MasteryEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "masteryevent_profile_role_key", Columns: []*schema.Column{MasteryEventsColumns[3], MasteryEventsColumns[4]}},
		},
	}

	// Tables lists every table created by Open.
	Tables = []*schema.Table{
		AccountsTable,
		AwardEventsTable,
		CacheEntriesTable,
		SyncEpochsTable,
		LlmRequestEventsTable,
		MasteryEventsTable,
	}
)
