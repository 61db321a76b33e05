package dashboard

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/skillpath/internal/engine"
	"github.com/abhisek/skillpath/internal/ledger"
	"github.com/abhisek/skillpath/internal/mastery"
	"github.com/abhisek/skillpath/internal/progress"
	"github.com/abhisek/skillpath/internal/ui"
)

type countingRequester struct {
	notify, focus int
}

func (c *countingRequester) Notify() { c.notify++ }
func (c *countingRequester) Focus()  { c.focus++ }

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func lockedStatus() engine.Status {
	return engine.Status{
		Role:   "Backend Developer",
		HasGap: true,
		State:  mastery.StateLocked,
		Skills: []engine.SkillStatus{
			{Name: "Docker", State: mastery.SkillMastered, Progress: progress.SkillProgress{
				Skill: "Docker", CompletedSteps: []string{"install"}, QuizPassed: true, BestScore: 4, BestTotal: 5,
			}},
			{Name: "Kubernetes", State: mastery.SkillLearning, Progress: progress.SkillProgress{Skill: "Kubernetes"}},
		},
		Passed:     1,
		Remaining:  []string{"Kubernetes"},
		Points:     10,
		NextReward: &ledger.RewardStatus{Reward: ledger.Rewards[0], Needed: 90},
	}
}

func sized(m Model) Model {
	m.frame = ui.Frame{Width: 100, Height: 40}
	return m
}

func TestStatusMsgRendersProgress(t *testing.T) {
	m := sized(New([]string{"Backend Developer"}, "Backend Developer", nil))
	m = update(t, m, Loaded("Backend Developer", lockedStatus(), nil))

	assert.False(t, m.Loading())
	out := m.View().Content
	require.NotNil(t, out)

	body := m.body()
	assert.Contains(t, body, "Docker")
	assert.Contains(t, body, "best 4/5")
	assert.Contains(t, body, "Final test locked: Kubernetes")
	assert.Contains(t, body, "90 pts to")
}

func TestFocusRequestsReload(t *testing.T) {
	req := &countingRequester{}
	m := New([]string{"Backend Developer"}, "Backend Developer", req)
	m = update(t, m, Loaded("Backend Developer", lockedStatus(), nil))
	require.False(t, m.Loading())

	m = update(t, m, tea.BlurMsg{})
	m = update(t, m, tea.FocusMsg{})

	assert.Equal(t, 1, req.focus)
	assert.True(t, m.Loading())
}

func TestRefreshKey(t *testing.T) {
	req := &countingRequester{}
	m := New([]string{"Backend Developer"}, "Backend Developer", req)

	m = update(t, m, tea.KeyPressMsg{Code: 'r', Text: "r"})
	assert.Equal(t, 1, req.notify)
}

func TestRoleSwitchDropsStaleStatus(t *testing.T) {
	req := &countingRequester{}
	roles := []string{"Backend Developer", "Data Scientist"}
	m := New(roles, "Backend Developer", req)

	m = update(t, m, tea.KeyPressMsg{Code: tea.KeyTab})
	assert.Equal(t, "Data Scientist", m.Role())
	assert.Equal(t, 1, req.notify)

	// A reload that started before the switch lands late.
	m = update(t, m, Loaded("Backend Developer", lockedStatus(), nil))
	assert.True(t, m.Loading())

	m = update(t, m, Loaded("Data Scientist", engine.Status{Role: "Data Scientist"}, nil))
	assert.False(t, m.Loading())
	assert.Contains(t, m.body(), "No gap analysis yet for Data Scientist")

	m = update(t, m, tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})
	assert.Equal(t, "Backend Developer", m.Role())
}

func TestSingleRoleIgnoresSwitch(t *testing.T) {
	req := &countingRequester{}
	m := New([]string{"Backend Developer"}, "Backend Developer", req)
	m = update(t, m, tea.KeyPressMsg{Code: tea.KeyTab})
	assert.Equal(t, "Backend Developer", m.Role())
	assert.Zero(t, req.notify)
}

func TestLoadErrorShown(t *testing.T) {
	m := New([]string{"Backend Developer"}, "Backend Developer", nil)
	m = update(t, m, Loaded("Backend Developer", engine.Status{}, errors.New("db locked")))

	_, err := m.Status()
	require.Error(t, err)
	assert.Contains(t, m.body(), "db locked")
}

func TestPointsErrorAndPending(t *testing.T) {
	st := lockedStatus()
	st.Points, st.NextReward = 0, nil
	st.PointsErr = errors.New("ledger offline")
	st.Pending = []engine.PendingAward{{Key: "skill/u/backend developer/docker", Points: 10, Reason: "Mastered Docker", Attempts: 2}}

	m := New([]string{"Backend Developer"}, "Backend Developer", nil)
	m = update(t, m, Loaded("Backend Developer", st, nil))

	body := m.body()
	assert.Contains(t, body, "Points unavailable: ledger offline")
	assert.Contains(t, body, "pending +10 Mastered Docker (2 attempts)")
}

func TestMasteredFinalLine(t *testing.T) {
	st := lockedStatus()
	st.State = mastery.StateMastered
	assert.True(t, strings.Contains(finalLine(st), "Final test passed"))

	st.State = mastery.StateUnlocked
	st.Final = &progress.FinalRecord{Score: 2, Total: 5}
	assert.Contains(t, finalLine(st), "last attempt 2/5")
}

func TestQuitKey(t *testing.T) {
	m := New([]string{"Backend Developer"}, "Backend Developer", nil)
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'q', Text: "q"})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestViewSetsFocusReporting(t *testing.T) {
	m := sized(New([]string{"Backend Developer"}, "Backend Developer", nil))
	v := m.View()
	assert.True(t, v.ReportFocus)
	assert.True(t, v.AltScreen)
}

func TestSkillListFitsHeight(t *testing.T) {
	st := lockedStatus()
	st.Skills = nil
	for i := 0; i < 20; i++ {
		st.Skills = append(st.Skills, engine.SkillStatus{Name: fmt.Sprintf("Skill %02d", i), State: mastery.SkillLearning})
	}

	m := New([]string{"Backend Developer"}, "Backend Developer", nil)
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	m = update(t, m, Loaded("Backend Developer", st, nil))

	body := m.body()
	assert.Contains(t, body, "Skill 00")
	assert.NotContains(t, body, "Skill 19")
	assert.Contains(t, body, "+13 more")
}
