// Package engine ties the skill gap, progress store, quiz pipeline and
// points ledger together for one user and profile. It decides when points
// are earned and makes sure each award reaches the ledger exactly once.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/abhisek/skillpath/internal/cache"
	"github.com/abhisek/skillpath/internal/catalog"
	"github.com/abhisek/skillpath/internal/ledger"
	"github.com/abhisek/skillpath/internal/mastery"
	"github.com/abhisek/skillpath/internal/progress"
	"github.com/abhisek/skillpath/internal/quiz"
	"github.com/abhisek/skillpath/internal/skillgap"
	"github.com/abhisek/skillpath/internal/syncbus"
)

// Points granted for each kind of mastery.
const (
	SkillMasteryPoints int64 = 10
	RoleMasteryPoints  int64 = 50
)

var (
	// ErrSubmitInFlight is returned when the same quiz is submitted again
	// while an earlier submission is still being processed.
	ErrSubmitInFlight = errors.New("a submission for this quiz is already in progress")

	// ErrGateLocked is returned when the final test is requested before
	// every skill in the gap has a passed quiz.
	ErrGateLocked = progress.ErrGateLocked

	// ErrSkillNotInGap is returned for skills outside the role's current
	// gap.
	ErrSkillNotInGap = progress.ErrSkillNotInGap

	// ErrAlreadyMastered is returned when a final test is requested for a
	// role that is already mastered.
	ErrAlreadyMastered = errors.New("role is already mastered")
)

// Options configures an Engine. Catalog, Progress, Ledger and Cache are
// required.
type Options struct {
	UserID    string
	Catalog   *catalog.Catalog
	Progress  *progress.Store
	Ledger    *ledger.Ledger
	Cache     *cache.Cache
	Evaluator *quiz.Evaluator
	Generator quiz.Generator
	Bus       progress.Publisher
	Logger    *slog.Logger
}

// Engine runs the mastery workflow for one user.
type Engine struct {
	user      string
	catalog   *catalog.Catalog
	progress  *progress.Store
	ledger    *ledger.Ledger
	cache     *cache.Cache
	evaluator *quiz.Evaluator
	generator quiz.Generator
	bus       progress.Publisher
	logger    *slog.Logger

	inflight *quiz.Inflight

	mu         sync.Mutex
	submitting map[string]bool
}

// New creates an Engine.
func New(opts Options) (*Engine, error) {
	if strings.TrimSpace(opts.UserID) == "" {
		return nil, fmt.Errorf("engine: user id is required")
	}
	if opts.Catalog == nil || opts.Progress == nil || opts.Ledger == nil || opts.Cache == nil {
		return nil, fmt.Errorf("engine: catalog, progress, ledger and cache are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	evaluator := opts.Evaluator
	if evaluator == nil {
		evaluator = quiz.NewEvaluator(nil, logger)
	}
	return &Engine{
		user:       opts.UserID,
		catalog:    opts.Catalog,
		progress:   opts.Progress,
		ledger:     opts.Ledger,
		cache:      opts.Cache,
		evaluator:  evaluator,
		generator:  opts.Generator,
		bus:        opts.Bus,
		logger:     logger.With("user", opts.UserID),
		inflight:   quiz.NewInflight(),
		submitting: make(map[string]bool),
	}, nil
}

// UserID returns the user the engine awards points to.
func (e *Engine) UserID() string { return e.user }

// SignIn creates the user's ledger account on first use.
func (e *Engine) SignIn(ctx context.Context, displayName, email string) (created bool, err error) {
	_, created, err = e.ledger.EnsureAccount(ctx, e.user, displayName, email)
	return created, err
}

// Analyze computes the gap between userSkills and role and saves it as the
// role's current gap. An unknown role yields an empty gap and saves
// nothing.
func (e *Engine) Analyze(ctx context.Context, userSkills []string, role string) (skillgap.Record, error) {
	rec := skillgap.Calculate(e.catalog, userSkills, role)
	if !rec.Known() {
		e.logger.Info("gap requested for unknown role", "role", role)
		return rec, nil
	}
	if _, err := e.progress.SaveGap(ctx, rec); err != nil {
		return rec, err
	}
	return rec, nil
}

// CompleteStep records a finished learning step for a gap skill.
func (e *Engine) CompleteStep(ctx context.Context, role, skill, step string) (progress.SkillProgress, bool, error) {
	return e.progress.RecordStepCompletion(ctx, role, skill, step)
}

// GenerateSkillQuiz generates the quiz for one gap skill. ok is false when
// the request was superseded or abandoned and its result discarded.
func (e *Engine) GenerateSkillQuiz(ctx context.Context, role, skill string) (test *quiz.Test, ok bool, err error) {
	if e.generator == nil {
		return nil, false, fmt.Errorf("engine: no quiz generator configured")
	}
	gap, found, err := e.progress.Gap(ctx, role)
	if err != nil {
		return nil, false, err
	}
	name, inGap := gapSkillName(gap, skill)
	if !found || !inGap {
		return nil, false, fmt.Errorf("quiz for %s/%s: %w", catalog.Key(role), catalog.Key(skill), ErrSkillNotInGap)
	}
	return e.inflight.Run(ctx, skillQuizKey(role, skill), e.generator, name)
}

// GenerateFinalQuiz generates the final mastery test for role. The gate
// must be Unlocked.
func (e *Engine) GenerateFinalQuiz(ctx context.Context, role string) (test *quiz.Test, ok bool, err error) {
	if e.generator == nil {
		return nil, false, fmt.Errorf("engine: no quiz generator configured")
	}
	view, err := e.progress.View(ctx, role)
	if err != nil {
		return nil, false, err
	}
	switch view.State {
	case mastery.StateMastered:
		return nil, false, fmt.Errorf("final for %s: %w", view.RoleKey, ErrAlreadyMastered)
	case mastery.StateLocked:
		return nil, false, fmt.Errorf("final for %s: %w", view.RoleKey, ErrGateLocked)
	}
	topic := quiz.FinalTopic(view.Gap.DesiredRole, view.Gap.MissingSkills)
	return e.inflight.Run(ctx, finalQuizKey(role), e.generator, topic)
}

// AbandonSkillQuiz discards any in-flight generation for the skill quiz.
func (e *Engine) AbandonSkillQuiz(role, skill string) {
	e.inflight.Abandon(skillQuizKey(role, skill))
}

// AbandonFinalQuiz discards any in-flight generation for the final test.
func (e *Engine) AbandonFinalQuiz(role string) {
	e.inflight.Abandon(finalQuizKey(role))
}

// SkillOutcome is the result of a skill quiz submission.
type SkillOutcome struct {
	Result      quiz.Result
	Progress    progress.SkillProgress
	NewlyPassed bool
	State       mastery.State

	// Receipt is set when points were applied by this submission.
	Receipt *ledger.Receipt

	// AwardErr is set when points were earned but the ledger did not
	// confirm them. The award stays pending until RetryPendingAwards
	// applies it.
	AwardErr error
}

// SubmitSkillQuiz scores answers, records the result and, when the quiz
// is passed, awards SkillMasteryPoints once per user, role and skill.
func (e *Engine) SubmitSkillQuiz(ctx context.Context, role, skill string, test *quiz.Test, answers []string) (SkillOutcome, error) {
	key := skillQuizKey(role, skill)
	if !e.beginSubmit(key) {
		return SkillOutcome{}, ErrSubmitInFlight
	}
	defer e.endSubmit(key)

	res, err := e.evaluator.Evaluate(ctx, test, answers)
	if err != nil {
		return SkillOutcome{}, err
	}

	// An award already pending under the same key belongs to an earlier
	// recorded pass and must survive this submission failing.
	var (
		pending    *PendingAward
		ownPending bool
	)
	if res.Passed {
		pa := e.newPending(SkillAwardKey(e.user, role, skill), SkillMasteryPoints,
			fmt.Sprintf("skill mastered: %s / %s", role, skill))
		created, err := e.putPending(ctx, pa)
		if err != nil {
			return SkillOutcome{}, err
		}
		pending, ownPending = &pa, created
	}

	rec, err := e.progress.RecordQuizResult(ctx, role, skill, res.Score, res.Total, res.Passed)
	if err != nil {
		if ownPending {
			e.dropPending(ctx, pending.Key)
		}
		return SkillOutcome{}, err
	}

	out := SkillOutcome{Result: res, Progress: rec.Progress, NewlyPassed: rec.NewlyPassed}
	if pending != nil {
		out.Receipt, out.AwardErr = e.settle(ctx, *pending)
	}
	if view, err := e.progress.View(ctx, role); err == nil {
		out.State = view.State
	}
	return out, nil
}

// FinalOutcome is the result of a final test submission.
type FinalOutcome struct {
	Result  quiz.Result
	Final   progress.FinalRecord
	Changed bool
	State   mastery.State

	Receipt  *ledger.Receipt
	AwardErr error
}

// SubmitFinalTest scores the final test. A Locked role is rejected with
// ErrGateLocked before scoring. On a pass the role is Mastered and
// RoleMasteryPoints are awarded once per user and role.
func (e *Engine) SubmitFinalTest(ctx context.Context, role string, test *quiz.Test, answers []string) (FinalOutcome, error) {
	key := finalQuizKey(role)
	if !e.beginSubmit(key) {
		return FinalOutcome{}, ErrSubmitInFlight
	}
	defer e.endSubmit(key)

	view, err := e.progress.View(ctx, role)
	if err != nil {
		return FinalOutcome{}, err
	}
	if view.State == mastery.StateLocked {
		return FinalOutcome{}, fmt.Errorf("final for %s: %w", view.RoleKey, ErrGateLocked)
	}

	res, err := e.evaluator.Evaluate(ctx, test, answers)
	if err != nil {
		return FinalOutcome{}, err
	}

	// An award already pending under the same key belongs to an earlier
	// recorded pass and must survive this submission failing.
	var (
		pending    *PendingAward
		ownPending bool
	)
	if res.Passed {
		pa := e.newPending(RoleAwardKey(e.user, role), RoleMasteryPoints,
			fmt.Sprintf("role mastered: %s", role))
		created, err := e.putPending(ctx, pa)
		if err != nil {
			return FinalOutcome{}, err
		}
		pending, ownPending = &pa, created
	}

	final, changed, err := e.progress.RecordFinalResult(ctx, role, res.Score, res.Total, res.Passed, res.Feedback)
	if err != nil {
		if ownPending {
			e.dropPending(ctx, pending.Key)
		}
		return FinalOutcome{}, err
	}

	out := FinalOutcome{Result: res, Final: final, Changed: changed}
	if pending != nil {
		out.Receipt, out.AwardErr = e.settle(ctx, *pending)
	}
	if view, err := e.progress.View(ctx, role); err == nil {
		out.State = view.State
	}
	return out, nil
}

func (e *Engine) beginSubmit(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.submitting[key] {
		return false
	}
	e.submitting[key] = true
	return true
}

func (e *Engine) endSubmit(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.submitting, key)
}

func (e *Engine) publish(ctx context.Context, scope syncbus.Scope) {
	if e.bus == nil {
		return
	}
	if err := e.bus.Publish(ctx, scope); err != nil {
		e.logger.Warn("publish invalidation", "scope", scope, "error", err)
	}
}

func gapSkillName(gap skillgap.Record, skill string) (string, bool) {
	k := catalog.Key(skill)
	for _, name := range gap.MissingSkills {
		if catalog.Key(name) == k {
			return name, true
		}
	}
	return "", false
}

func skillQuizKey(role, skill string) string {
	return "skill/" + catalog.Key(role) + "/" + catalog.Key(skill)
}

func finalQuizKey(role string) string {
	return "final/" + catalog.Key(role)
}
