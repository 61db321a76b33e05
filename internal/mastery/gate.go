package mastery

// Input is everything the gate looks at for one role.
type Input struct {
	// HasGap is false when no gap was ever computed for the role (unknown
	// role, or never analyzed).
	HasGap bool

	// Missing holds the skill keys of the current gap.
	Missing []string

	// QuizPassed maps skill key to whether its quiz was passed.
	QuizPassed map[string]bool

	// FinalPassed is true once a passing final result is recorded.
	FinalPassed bool
}

// Evaluate derives the gate state from scratch. It is never cached, so it
// cannot drift from the progress it is computed over.
//
// Mastered wins over everything: a recorded final pass is terminal even
// if the gap later grows. Otherwise the role is Unlocked iff every skill
// of the current gap has a passed quiz; skills passed against an older
// gap that are no longer missing do not count, and new unpassed skills
// re-lock the gate. A role with an empty current gap is Unlocked.
func Evaluate(in Input) State {
	if in.FinalPassed {
		return StateMastered
	}
	if !in.HasGap {
		return StateLocked
	}
	for _, k := range in.Missing {
		if !in.QuizPassed[k] {
			return StateLocked
		}
	}
	return StateUnlocked
}

// Remaining returns the skill keys of the current gap still lacking a
// passed quiz, in gap order.
func Remaining(in Input) []string {
	var out []string
	for _, k := range in.Missing {
		if !in.QuizPassed[k] {
			out = append(out, k)
		}
	}
	return out
}

// Diff returns the role-level transition from before to after, or nil if
// the state did not change.
func Diff(role string, before, after State, trigger string) *Transition {
	if before == after {
		return nil
	}
	return &Transition{Role: role, From: before, To: after, Trigger: trigger}
}
