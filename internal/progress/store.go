package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/abhisek/skillpath/internal/cache"
	"github.com/abhisek/skillpath/internal/catalog"
	"github.com/abhisek/skillpath/internal/mastery"
	"github.com/abhisek/skillpath/internal/quiz"
	"github.com/abhisek/skillpath/internal/skillgap"
	"github.com/abhisek/skillpath/internal/store"
	"github.com/abhisek/skillpath/internal/syncbus"
)

// Publisher announces that state changed.
type Publisher interface {
	Publish(ctx context.Context, scope syncbus.Scope) error
}

// Store records progress for one profile.
type Store struct {
	cache  *cache.Cache
	bus    Publisher
	events store.EventRepo
	logger *slog.Logger

	// beforeFinalWrite runs between the unlocked read and the final write.
	// Tests use it to interleave another writer.
	beforeFinalWrite func()
}

// New creates a Store. events may be nil to skip the transition audit log.
func New(c *cache.Cache, bus Publisher, events store.EventRepo, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{cache: c, bus: bus, events: events, logger: logger}
}

// SaveGap stores rec as the role's current gap. Progress for skills that
// left the gap is kept but no longer counts toward the gate.
func (s *Store) SaveGap(ctx context.Context, rec skillgap.Record) (bool, error) {
	if !rec.Known() {
		return false, fmt.Errorf("save gap for %q: %w", rec.DesiredRole, ErrUnknownRole)
	}
	before, err := s.View(ctx, rec.RoleKey)
	if err != nil {
		return false, err
	}

	_, changed, err := cache.Update(ctx, s.cache, GapType, gapKey(rec.RoleKey),
		func(cur skillgap.Record, found bool) (skillgap.Record, bool, error) {
			if found && sameGap(cur, rec) {
				return cur, false, nil
			}
			return rec, true, nil
		})
	if err != nil {
		return false, fmt.Errorf("save gap: %w", err)
	}
	if !changed {
		return false, nil
	}

	s.afterChange(ctx, rec.RoleKey, before.State, "gap-change", syncbus.ScopeGap)
	return true, nil
}

func sameGap(a, b skillgap.Record) bool {
	return a.DesiredRole == b.DesiredRole &&
		slices.Equal(a.MissingSkills, b.MissingSkills) &&
		slices.Equal(a.UserSkills, b.UserSkills)
}

// RecordStepCompletion marks a learning step done. Completing a step never
// un-completes another.
func (s *Store) RecordStepCompletion(ctx context.Context, role, skill, step string) (SkillProgress, bool, error) {
	step = strings.TrimSpace(step)
	if step == "" {
		return SkillProgress{}, false, &ValidationError{Field: "step", Reason: "empty"}
	}
	roleKey, skillKey, skillName, err := s.resolveSkill(ctx, role, skill)
	if err != nil {
		return SkillProgress{}, false, err
	}

	var out SkillProgress
	_, changed, err := cache.Update(ctx, s.cache, RoleProgressType, progressKey(roleKey),
		func(cur RoleProgress, _ bool) (RoleProgress, bool, error) {
			cur = ensureRole(cur, roleKey)
			p, ok := cur.Skills[skillKey]
			if !ok {
				p = newSkillProgress(skillName)
			}
			added := p.addStep(step)
			out = p
			if !added {
				return cur, false, nil
			}
			cur.Skills[skillKey] = p
			return cur, true, nil
		})
	if err != nil {
		return SkillProgress{}, false, fmt.Errorf("record step: %w", err)
	}
	if changed {
		s.publish(ctx, syncbus.ScopeProgress)
	}
	return out, changed, nil
}

// QuizRecord is the outcome of RecordQuizResult.
type QuizRecord struct {
	Progress    SkillProgress
	Changed     bool
	NewlyPassed bool
}

// RecordQuizResult merges a quiz attempt. A lower score or a failed
// attempt after a pass is a no-op.
func (s *Store) RecordQuizResult(ctx context.Context, role, skill string, score, total int, passed bool) (QuizRecord, error) {
	if err := checkScore(score, total, passed); err != nil {
		return QuizRecord{}, err
	}
	roleKey, skillKey, skillName, err := s.resolveSkill(ctx, role, skill)
	if err != nil {
		return QuizRecord{}, err
	}
	before, err := s.View(ctx, roleKey)
	if err != nil {
		return QuizRecord{}, err
	}

	var rec QuizRecord
	_, changed, err := cache.Update(ctx, s.cache, RoleProgressType, progressKey(roleKey),
		func(cur RoleProgress, _ bool) (RoleProgress, bool, error) {
			cur = ensureRole(cur, roleKey)
			p, ok := cur.Skills[skillKey]
			if !ok {
				p = newSkillProgress(skillName)
			}
			ch, np := p.mergeQuiz(score, total, passed)
			rec = QuizRecord{Progress: p, Changed: ch || !ok, NewlyPassed: np}
			if !rec.Changed {
				return cur, false, nil
			}
			cur.Skills[skillKey] = p
			return cur, true, nil
		})
	if err != nil {
		return QuizRecord{}, fmt.Errorf("record quiz result: %w", err)
	}
	if !changed {
		return rec, nil
	}

	if rec.NewlyPassed {
		s.emit(ctx, mastery.Transition{
			Role: roleKey, Skill: skillKey,
			From: mastery.SkillLearning, To: mastery.SkillMastered,
			Trigger: "quiz-pass", Score: score, Total: total,
		})
	}
	s.afterChange(ctx, roleKey, before.State, "quiz-pass", syncbus.ScopeProgress)
	return rec, nil
}

// RecordFinalResult stores a final mastery test result. A passing result
// requires the gate to be Unlocked; once a pass is recorded the record is
// frozen and later results are no-ops.
func (s *Store) RecordFinalResult(ctx context.Context, role string, score, total int, passed bool, feedback string) (FinalRecord, bool, error) {
	if err := checkScore(score, total, passed); err != nil {
		return FinalRecord{}, false, err
	}
	roleKey := catalog.Key(role)
	view, err := s.View(ctx, roleKey)
	if err != nil {
		return FinalRecord{}, false, err
	}
	if view.State == mastery.StateMastered {
		return view.Final, false, nil
	}
	if passed && view.State != mastery.StateUnlocked {
		return FinalRecord{}, false, fmt.Errorf("record final for %s: %w", roleKey, ErrGateLocked)
	}

	if s.beforeFinalWrite != nil {
		s.beforeFinalWrite()
	}

	// The gate is checked again under the write lock: another process may
	// have widened the gap since the read above.
	out, changed, err := cache.UpdateTx(ctx, s.cache, FinalType, finalKey(roleKey),
		func(tx cache.Tx, cur FinalRecord, found bool) (FinalRecord, bool, error) {
			if cur.Passed {
				return cur, false, nil
			}
			if passed {
				state, err := gateInTx(tx, roleKey, cur, found)
				if err != nil {
					return cur, false, err
				}
				if state != mastery.StateUnlocked {
					return cur, false, fmt.Errorf("record final for %s: %w", roleKey, ErrGateLocked)
				}
			}
			return FinalRecord{
				Passed:     passed,
				Score:      score,
				Total:      total,
				Feedback:   feedback,
				Attempts:   cur.Attempts + 1,
				RecordedAt: time.Now().UTC(),
			}, true, nil
		})
	if err != nil {
		if errors.Is(err, ErrGateLocked) {
			return FinalRecord{}, false, err
		}
		return FinalRecord{}, false, fmt.Errorf("record final result: %w", err)
	}
	if changed {
		s.afterChange(ctx, roleKey, view.State, "final-pass", syncbus.ScopeFinal)
	}
	return out, changed, nil
}

// gateInTx evaluates the role's gate from records read through tx.
func gateInTx(tx cache.Tx, roleKey string, final FinalRecord, hasFinal bool) (mastery.State, error) {
	v := View{RoleKey: roleKey, Final: final, HasFinal: hasFinal}
	var err error
	if v.Gap, v.HasGap, err = cache.Read[skillgap.Record](tx, GapType, gapKey(roleKey)); err != nil {
		return "", err
	}
	rp, _, err := cache.Read[RoleProgress](tx, RoleProgressType, progressKey(roleKey))
	if err != nil {
		return "", err
	}
	v.Progress = ensureRole(rp, roleKey)
	return mastery.Evaluate(v.GateInput()), nil
}

func checkScore(score, total int, passed bool) error {
	if total <= 0 {
		return &ValidationError{Field: "total", Reason: "must be positive"}
	}
	if score < 0 || score > total {
		return &ValidationError{Field: "score", Reason: fmt.Sprintf("%d not in 0..%d", score, total)}
	}
	if passed && !quiz.Passed(score, total) {
		return &ValidationError{Field: "passed", Reason: fmt.Sprintf("%d/%d is below the pass threshold", score, total)}
	}
	return nil
}

// resolveSkill normalizes role and skill and checks the skill is in the
// role's current gap.
func (s *Store) resolveSkill(ctx context.Context, role, skill string) (roleKey, skillKey, skillName string, err error) {
	roleKey, skillKey = catalog.Key(role), catalog.Key(skill)
	if roleKey == "" {
		return "", "", "", &ValidationError{Field: "role", Reason: "empty"}
	}
	if skillKey == "" {
		return "", "", "", &ValidationError{Field: "skill", Reason: "empty"}
	}
	gap, ok, err := s.Gap(ctx, roleKey)
	if err != nil {
		return "", "", "", err
	}
	if ok {
		for _, name := range gap.MissingSkills {
			if catalog.Key(name) == skillKey {
				return roleKey, skillKey, name, nil
			}
		}
	}
	return "", "", "", fmt.Errorf("%s/%s: %w", roleKey, skillKey, ErrSkillNotInGap)
}

func ensureRole(rp RoleProgress, roleKey string) RoleProgress {
	rp.Role = roleKey
	if rp.Skills == nil {
		rp.Skills = make(map[string]SkillProgress)
	}
	return rp
}

// afterChange logs the gate transition, if any, and publishes.
func (s *Store) afterChange(ctx context.Context, roleKey string, before mastery.State, trigger string, scope syncbus.Scope) {
	if after, err := s.View(ctx, roleKey); err != nil {
		s.logger.Warn("re-evaluate gate", "role", roleKey, "error", err)
	} else if t := mastery.Diff(roleKey, before, after.State, trigger); t != nil {
		if t.Trigger == "final-pass" {
			t.Score, t.Total = after.Final.Score, after.Final.Total
		}
		s.emit(ctx, *t)
	}
	s.publish(ctx, scope)
}

func (s *Store) emit(ctx context.Context, t mastery.Transition) {
	s.logger.Info("mastery transition",
		"role", t.Role, "skill", t.Skill, "from", t.From, "to", t.To, "trigger", t.Trigger)
	if s.events == nil {
		return
	}
	err := s.events.AppendMasteryEvent(ctx, store.MasteryEventData{
		Profile:   s.cache.Profile(),
		RoleKey:   t.Role,
		SkillKey:  t.Skill,
		FromState: string(t.From),
		ToState:   string(t.To),
		Trigger:   t.Trigger,
		Score:     t.Score,
		Total:     t.Total,
	})
	if err != nil {
		s.logger.Warn("mastery event not recorded", "role", t.Role, "error", err)
	}
}

func (s *Store) publish(ctx context.Context, scope syncbus.Scope) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, scope); err != nil {
		s.logger.Warn("publish invalidation", "scope", scope, "error", err)
	}
}
