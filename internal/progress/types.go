// Package progress is the per-profile record of what a user has done:
// completed learning steps, quiz results and final mastery results per
// role. Every mutation is a monotonic merge; a regression is a silent
// no-op.
package progress

import (
	"slices"
	"time"

	"github.com/abhisek/skillpath/internal/mastery"
	"github.com/abhisek/skillpath/internal/skillgap"
)

// SkillProgress is one skill's record under a role.
type SkillProgress struct {
	Skill          string   `json:"skill"`
	CompletedSteps []string `json:"completedSteps"`
	QuizPassed     bool     `json:"quizPassed"`
	BestScore      int      `json:"bestScore"`
	BestTotal      int      `json:"bestTotal"`
}

func newSkillProgress(name string) SkillProgress {
	return SkillProgress{Skill: name, CompletedSteps: []string{}}
}

// HasStep reports whether step is completed.
func (p SkillProgress) HasStep(step string) bool {
	_, ok := slices.BinarySearch(p.CompletedSteps, step)
	return ok
}

// addStep inserts step keeping the set sorted. Reports whether it was new.
func (p *SkillProgress) addStep(step string) bool {
	i, ok := slices.BinarySearch(p.CompletedSteps, step)
	if ok {
		return false
	}
	p.CompletedSteps = slices.Insert(p.CompletedSteps, i, step)
	return true
}

// mergeQuiz applies a quiz attempt. bestScore only grows on a strictly
// greater score; quizPassed only goes false to true.
func (p *SkillProgress) mergeQuiz(score, total int, passed bool) (changed, newlyPassed bool) {
	if score > p.BestScore {
		p.BestScore = score
		p.BestTotal = total
		changed = true
	}
	if passed && !p.QuizPassed {
		p.QuizPassed = true
		changed, newlyPassed = true, true
	}
	return changed, newlyPassed
}

// RoleProgress holds every tracked skill of one role, by skill key.
type RoleProgress struct {
	Role   string                   `json:"role"`
	Skills map[string]SkillProgress `json:"skills"`
}

// FinalRecord is the final mastery test result for a role. Once Passed it
// is frozen.
type FinalRecord struct {
	Passed     bool      `json:"passed"`
	Score      int       `json:"score"`
	Total      int       `json:"total"`
	Feedback   string    `json:"feedback"`
	Attempts   int       `json:"attempts"`
	RecordedAt time.Time `json:"recordedAt"`
}

// Tracker is the full progress map: role key to skill key to progress.
type Tracker map[string]map[string]SkillProgress

// View is a role's re-derived state: gap, progress, final and gate.
type View struct {
	RoleKey  string
	Gap      skillgap.Record
	HasGap   bool
	Progress RoleProgress
	Final    FinalRecord
	HasFinal bool
	State    mastery.State
}

// GateInput builds the mastery gate input from the view.
func (v View) GateInput() mastery.Input {
	in := mastery.Input{
		HasGap:      v.HasGap,
		QuizPassed:  make(map[string]bool, len(v.Progress.Skills)),
		FinalPassed: v.HasFinal && v.Final.Passed,
	}
	if v.HasGap {
		in.Missing = v.Gap.MissingKeys()
	}
	for k, p := range v.Progress.Skills {
		in.QuizPassed[k] = p.QuizPassed
	}
	return in
}

// PassedCount returns how many skills of the current gap have a passed
// quiz.
func (v View) PassedCount() int {
	n := 0
	for _, k := range v.Gap.MissingKeys() {
		if v.Progress.Skills[k].QuizPassed {
			n++
		}
	}
	return n
}
