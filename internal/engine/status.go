package engine

import (
	"context"

	"github.com/abhisek/skillpath/internal/catalog"
	"github.com/abhisek/skillpath/internal/ledger"
	"github.com/abhisek/skillpath/internal/mastery"
	"github.com/abhisek/skillpath/internal/progress"
)

// SkillStatus is one gap skill as shown to the user.
type SkillStatus struct {
	Name     string
	Key      string
	Progress progress.SkillProgress
	State    mastery.State // SkillLearning or SkillMastered
}

// Status is the full view model for one role, re-derived from storage on
// every call.
type Status struct {
	Role      string
	RoleKey   string
	Known     bool // the role is in the catalog
	HasGap    bool
	State     mastery.State
	Skills    []SkillStatus
	Passed    int
	Remaining []string
	Final     *progress.FinalRecord

	// Points is the confirmed ledger total. PointsErr is set, and Points
	// is zero, when the ledger could not be read.
	Points    int64
	PointsErr error

	Pending    []PendingAward
	NextReward *ledger.RewardStatus
}

// Status re-derives the view model for role.
func (e *Engine) Status(ctx context.Context, role string) (Status, error) {
	view, err := e.progress.View(ctx, role)
	if err != nil {
		return Status{}, err
	}

	st := Status{
		Role:    role,
		RoleKey: view.RoleKey,
		HasGap:  view.HasGap,
		State:   view.State,
		Passed:  view.PassedCount(),
	}
	if r, ok := e.catalog.Lookup(role); ok {
		st.Role, st.Known = r.Name, true
	}
	if view.HasGap && view.Gap.DesiredRole != "" {
		st.Role = view.Gap.DesiredRole
	}
	if view.HasFinal {
		f := view.Final
		st.Final = &f
	}

	for _, name := range view.Gap.MissingSkills {
		k := catalog.Key(name)
		p, ok := view.Progress.Skills[k]
		if !ok {
			p = progress.SkillProgress{Skill: name, CompletedSteps: []string{}}
		}
		state := mastery.SkillLearning
		if p.QuizPassed {
			state = mastery.SkillMastered
		}
		st.Skills = append(st.Skills, SkillStatus{Name: name, Key: k, Progress: p, State: state})
	}
	st.Remaining = mastery.Remaining(view.GateInput())

	st.Points, st.PointsErr = e.ledger.Total(ctx, e.user)
	if st.PointsErr == nil {
		if next, ok := ledger.NextReward(st.Points); ok {
			st.NextReward = &next
		}
	}

	if st.Pending, err = e.PendingAwards(ctx); err != nil {
		return Status{}, err
	}
	return st, nil
}
