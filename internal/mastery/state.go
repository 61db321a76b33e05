package mastery

// State is a role's position in the mastery lifecycle.
type State string

const (
	// StateLocked: some skill of the current gap has no passed quiz.
	StateLocked State = "locked"
	// StateUnlocked: every skill of the current gap is passed; the final
	// test is available.
	StateUnlocked State = "unlocked"
	// StateMastered: the final test was passed. Terminal.
	StateMastered State = "mastered"
)

// Skill-level states used in transitions.
const (
	SkillLearning State = "learning"
	SkillMastered State = "mastered"
)

// Icon returns a compact display marker for the state.
func (s State) Icon() string {
	switch s {
	case StateMastered:
		return "★"
	case StateUnlocked:
		return "◆"
	default:
		return "🔒"
	}
}

// Label returns a human-readable name.
func (s State) Label() string {
	switch s {
	case StateMastered:
		return "Mastered"
	case StateUnlocked:
		return "Final test unlocked"
	default:
		return "Locked"
	}
}

// Transition records a state change for display and event logging.
type Transition struct {
	Role    string
	Skill   string // empty for role-level transitions
	From    State
	To      State
	Trigger string // "step", "quiz-pass", "gap-change", "final-pass"
	Score   int
	Total   int
}
