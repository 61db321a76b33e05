package mastery

import (
	"slices"
	"testing"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want State
	}{
		{"no gap", Input{}, StateLocked},
		{"empty gap", Input{HasGap: true}, StateUnlocked},
		{"none passed", Input{HasGap: true, Missing: []string{"a", "b"}}, StateLocked},
		{"a passed", Input{HasGap: true, Missing: []string{"a", "b"}, QuizPassed: map[string]bool{"a": true}}, StateLocked},
		{"both passed", Input{HasGap: true, Missing: []string{"a", "b"}, QuizPassed: map[string]bool{"a": true, "b": true}}, StateUnlocked},
		{"final passed", Input{HasGap: true, Missing: []string{"a"}, QuizPassed: map[string]bool{"a": true}, FinalPassed: true}, StateMastered},
		{"stale pass ignored", Input{HasGap: true, Missing: []string{"c"}, QuizPassed: map[string]bool{"a": true, "b": true}}, StateLocked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(tt.in); got != tt.want {
				t.Errorf("Evaluate = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestGateScenario(t *testing.T) {
	in := Input{HasGap: true, Missing: []string{"a", "b"}, QuizPassed: map[string]bool{}}

	in.QuizPassed["a"] = true
	if got := Evaluate(in); got != StateLocked {
		t.Fatalf("after A = %s, want locked", got)
	}

	in.QuizPassed["b"] = true
	if got := Evaluate(in); got != StateUnlocked {
		t.Fatalf("after B = %s, want unlocked", got)
	}

	in.FinalPassed = true
	if got := Evaluate(in); got != StateMastered {
		t.Fatalf("after final = %s, want mastered", got)
	}
}

func TestGapChangeRelocks(t *testing.T) {
	in := Input{HasGap: true, Missing: []string{"a"}, QuizPassed: map[string]bool{"a": true}}
	if Evaluate(in) != StateUnlocked {
		t.Fatal("expected unlocked")
	}

	in.Missing = []string{"a", "c"}
	if got := Evaluate(in); got != StateLocked {
		t.Errorf("new unpassed skill should re-lock, got %s", got)
	}
	if r := Remaining(in); !slices.Equal(r, []string{"c"}) {
		t.Errorf("Remaining = %v", r)
	}

	// Removing the not-yet-mastered skill unlocks again with no staleness.
	in.Missing = []string{"a"}
	if got := Evaluate(in); got != StateUnlocked {
		t.Errorf("after removing c = %s, want unlocked", got)
	}
}

func TestMasteredSurvivesGapGrowth(t *testing.T) {
	in := Input{HasGap: true, Missing: []string{"a", "z"}, QuizPassed: map[string]bool{"a": true}, FinalPassed: true}
	if got := Evaluate(in); got != StateMastered {
		t.Errorf("mastered must be terminal, got %s", got)
	}
}

func TestDiff(t *testing.T) {
	if Diff("r", StateLocked, StateLocked, "x") != nil {
		t.Error("no change should be nil")
	}
	tr := Diff("r", StateLocked, StateUnlocked, "quiz-pass")
	if tr == nil || tr.From != StateLocked || tr.To != StateUnlocked || tr.Trigger != "quiz-pass" {
		t.Errorf("Diff = %+v", tr)
	}
}
