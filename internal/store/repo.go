package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrDuplicateKey is returned when a keyed append collides with an
	// existing row carrying the same idempotency key.
	ErrDuplicateKey = errors.New("store: duplicate idempotency key")
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// Account is one user's durable ledger row.
type Account struct {
	UserID      string
	DisplayName string
	Email       string
	TotalPoints int64
	CreatedAt   time.Time
}

// AwardEvent is one accepted award. The account total is the sum of its
// award events.
type AwardEvent struct {
	ID             string
	Sequence       int64
	UserID         string
	Points         int64
	Reason         string
	IdempotencyKey string
	CreatedAt      time.Time
}

// AwardRequest describes an increment to apply. An empty IdempotencyKey
// means the award is not deduplicated.
type AwardRequest struct {
	UserID         string
	Points         int64
	Reason         string
	IdempotencyKey string
}

// AccountRepo owns the accounts and award_events tables.
type AccountRepo interface {
	// Ensure creates the account with a zero total if it does not exist.
	// Existing accounts are returned untouched; created reports which case
	// applied.
	Ensure(ctx context.Context, acct Account) (got Account, created bool, err error)

	// Get returns the account or ErrNotFound.
	Get(ctx context.Context, userID string) (Account, error)

	// Award applies req in a single transaction: keyed event insert,
	// atomic increment of total_points, commit. Returns ErrDuplicateKey if
	// the key was already used and ErrNotFound if the account does not
	// exist; in both cases nothing is applied.
	Award(ctx context.Context, req AwardRequest) (AwardEvent, int64, error)

	// History returns the user's award events, newest first.
	History(ctx context.Context, userID string, opts QueryOpts) ([]AwardEvent, error)
}

// CacheEntry is one versioned record in the per-profile client cache.
type CacheEntry struct {
	Profile       string
	Key           string
	Kind          string
	SchemaVersion string
	Data          []byte
	UpdatedAt     time.Time
}

// CacheReader loads another entry of the same profile inside the running
// write transaction, or nil if it does not exist.
type CacheReader func(key string) (*CacheEntry, error)

// CacheUpdateFunc receives the current entry (nil if absent) and returns
// the entry to write. Returning nil leaves the row unchanged. Entries read
// through read cannot change before the write commits.
type CacheUpdateFunc func(cur *CacheEntry, read CacheReader) (*CacheEntry, error)

// CacheRepo owns the cache_entries table.
type CacheRepo interface {
	// Get returns the entry, or nil if none exists.
	Get(ctx context.Context, profile, key string) (*CacheEntry, error)

	// Update runs fn inside a write transaction so concurrent processes
	// merging into the same key serialize.
	Update(ctx context.Context, profile, key string, fn CacheUpdateFunc) (*CacheEntry, error)

	// List returns every entry of the given kind for profile, ordered by key.
	List(ctx context.Context, profile, kind string) ([]CacheEntry, error)

	// Delete removes one entry. Deleting a missing entry is not an error.
	Delete(ctx context.Context, profile, key string) error

	// Clear removes every entry for profile.
	Clear(ctx context.Context, profile string) error
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLMRequestEventData.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates token usage for one purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// MasteryEventData records a gate or skill state transition.
type MasteryEventData struct {
	Profile   string
	RoleKey   string
	SkillKey  string
	FromState string
	ToState   string
	Trigger   string
	Score     int
	Total     int
}

// MasteryEvent is a stored MasteryEventData.
type MasteryEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	MasteryEventData
}

// EventRepo provides append and query access to the audit events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns one event by id, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	// LLMUsageByPurpose aggregates usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates usage per model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)

	// AppendMasteryEvent records a mastery transition.
	AppendMasteryEvent(ctx context.Context, data MasteryEventData) error

	// MasteryEvents returns the transitions for one role, oldest first.
	MasteryEvents(ctx context.Context, profile, roleKey string, opts QueryOpts) ([]MasteryEvent, error)
}

// Epoch is the latest invalidation recorded for a profile.
type Epoch struct {
	Profile string
	Value   int64
	Origin  string
	Scope   string
}

// SyncRepo owns the sync_epochs table.
type SyncRepo interface {
	// Bump atomically increments the profile's epoch and returns it.
	Bump(ctx context.Context, profile, origin, scope string) (Epoch, error)

	// Current returns the profile's epoch; zero value if never bumped.
	Current(ctx context.Context, profile string) (Epoch, error)
}
