// Package dashboard is the live terminal view of a user's role progress.
// It never caches derived state: every redraw comes from a full reload of
// engine.Status, requested on invalidation, on focus, or by the user.
package dashboard

import (
	"fmt"
	"strings"
	"sync"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/skillpath/internal/engine"
	"github.com/abhisek/skillpath/internal/mastery"
	"github.com/abhisek/skillpath/internal/ui"
)

// Requester asks for a reload. syncbus.Refresher satisfies it.
type Requester interface {
	Notify()
	Focus()
}

// statusMsg carries a finished reload into the program.
type statusMsg struct {
	role   string
	status engine.Status
	err    error
}

// selection is the role being shown. It is shared between the model and
// the reload goroutine.
type selection struct {
	mu    sync.Mutex
	roles []string
	idx   int
}

func newSelection(roles []string, current string) *selection {
	s := &selection{roles: roles}
	for i, r := range roles {
		if r == current {
			s.idx = i
		}
	}
	return s
}

func (s *selection) current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.roles) == 0 {
		return ""
	}
	return s.roles[s.idx]
}

func (s *selection) move(delta int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.roles) == 0 {
		return ""
	}
	s.idx = (s.idx + delta + len(s.roles)) % len(s.roles)
	return s.roles[s.idx]
}

func (s *selection) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.roles)
}

// Model is the dashboard's bubbletea model.
type Model struct {
	sel     *selection
	req     Requester
	keys    keyMap
	spinner spinner.Model

	status  engine.Status
	err     error
	loaded  bool
	loading bool
	focused bool

	frame ui.Frame
}

// New creates a dashboard over roles, starting at current. req receives
// reload requests; results must come back as messages from Loaded.
func New(roles []string, current string, req Requester) Model {
	return Model{
		sel:  newSelection(roles, current),
		req:  req,
		keys: defaultKeys(),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(ui.Spinner),
		),
		loading: true,
		focused: true,
		frame:   ui.Frame{Width: ui.MinWidth, Height: ui.MinHeight},
	}
}

// Loaded wraps a reload result as a message for the program.
func Loaded(role string, st engine.Status, err error) tea.Msg {
	return statusMsg{role: role, status: st, err: err}
}

// Role returns the role currently shown.
func (m Model) Role() string { return m.sel.current() }

// Status returns the last loaded status and its error.
func (m Model) Status() (engine.Status, error) { return m.status, m.err }

// Loading reports whether a reload is outstanding.
func (m Model) Loading() bool { return m.loading }

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.frame = ui.Frame{Width: msg.Width, Height: msg.Height}
		return m, nil

	case tea.FocusMsg:
		m.focused = true
		return m.reload(true)

	case tea.BlurMsg:
		m.focused = false
		return m, nil

	case statusMsg:
		// A reload for a role we've since switched away from.
		if msg.role != m.sel.current() {
			return m, nil
		}
		m.status, m.err = msg.status, msg.err
		m.loaded = true
		m.loading = false
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyPressMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			return m.reload(false)
		case key.Matches(msg, m.keys.NextRole) && m.sel.count() > 1:
			m.sel.move(1)
			m.loaded = false
			return m.reload(false)
		case key.Matches(msg, m.keys.PrevRole) && m.sel.count() > 1:
			m.sel.move(-1)
			m.loaded = false
			return m.reload(false)
		}
	}
	return m, nil
}

func (m Model) reload(focus bool) (tea.Model, tea.Cmd) {
	if m.req != nil {
		if focus {
			m.req.Focus()
		} else {
			m.req.Notify()
		}
	}
	wasLoading := m.loading
	m.loading = true
	if wasLoading {
		return m, nil
	}
	return m, m.spinner.Tick
}

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	v.ReportFocus = true
	v.WindowTitle = "SkillPath: " + m.sel.current()

	if m.frame.TooSmall() {
		v.SetContent(m.frame.TooSmallMessage())
		return v
	}

	title := m.sel.current()
	if m.loaded && m.status.Role != "" {
		title = m.status.Role
	}
	header := m.frame.Header(title, m.status.Points, len(m.status.Pending))
	footer := m.frame.Footer(m.keys.hints(m.sel.count() > 1)...)
	v.SetContent(m.frame.Compose(header, m.body(), footer))
	return v
}

func (m Model) body() string {
	var b strings.Builder
	b.WriteString("\n")

	if m.loading {
		b.WriteString("  " + m.spinner.View() + ui.Muted.Render(" loading"))
		b.WriteString("\n\n")
	}
	if m.err != nil {
		b.WriteString("  " + ui.Failure.Render("Could not load progress: "+m.err.Error()))
		b.WriteString("\n")
		return b.String()
	}
	if !m.loaded {
		return b.String()
	}

	st := m.status
	if !st.HasGap {
		b.WriteString("  " + ui.Text.Render("No gap analysis yet for "+st.Role+"."))
		b.WriteString("\n  " + ui.Muted.Render("Run `skillpath gap` to start."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString("  " + ui.Role.Render(fmt.Sprintf("%s %s", st.State.Icon(), st.Role)))
	b.WriteString("  " + ui.Muted.Render(st.State.Label()))
	b.WriteString("\n\n")

	b.WriteString("  " + ui.Bar("Skills passed", st.Passed, len(st.Skills), m.frame.Width-8))
	b.WriteString("\n\n")

	nameWidth := 28
	if m.frame.Compact() {
		nameWidth = 18
	}
	shown := st.Skills
	if limit := m.frame.BodyRows() - reservedRows; limit > 0 && len(shown) > limit {
		shown = shown[:limit-1]
	}
	for _, s := range shown {
		b.WriteString("  " + skillLine(s, nameWidth))
		b.WriteString("\n")
	}
	if hidden := len(st.Skills) - len(shown); hidden > 0 {
		b.WriteString("  " + ui.Muted.Render(fmt.Sprintf("+%d more", hidden)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString("  " + finalLine(st))
	b.WriteString("\n")

	if st.PointsErr != nil {
		b.WriteString("  " + ui.Failure.Render("Points unavailable: "+st.PointsErr.Error()))
		b.WriteString("\n")
	} else if st.NextReward != nil {
		b.WriteString("  " + ui.Points.Render(fmt.Sprintf("%d pts to %s", st.NextReward.Needed, st.NextReward.Name)))
		b.WriteString("\n")
	}
	for _, p := range st.Pending {
		b.WriteString("  " + ui.Muted.Render(fmt.Sprintf("pending +%d %s (%d attempts)", p.Points, p.Reason, p.Attempts)))
		b.WriteString("\n")
	}
	return b.String()
}

// reservedRows is the body height taken by everything except the skill
// list.
const reservedRows = 10

func skillLine(s engine.SkillStatus, nameWidth int) string {
	mark := ui.Mark(s.State == mastery.SkillMastered)
	name := s.Name
	if len(name) > nameWidth {
		name = name[:nameWidth-1] + "…"
	}
	line := fmt.Sprintf("%s %-*s %d steps", mark, nameWidth, name, len(s.Progress.CompletedSteps))
	if s.Progress.BestTotal > 0 {
		line += fmt.Sprintf("   best %d/%d", s.Progress.BestScore, s.Progress.BestTotal)
	}
	return line
}

func finalLine(st engine.Status) string {
	switch {
	case st.State == mastery.StateMastered:
		return ui.Passed.Render("Final test passed")
	case st.State == mastery.StateUnlocked && st.Final != nil:
		return ui.Text.Render(fmt.Sprintf("Final test: last attempt %d/%d, retake available", st.Final.Score, st.Final.Total))
	case st.State == mastery.StateUnlocked:
		return ui.Text.Render("Final test unlocked")
	default:
		return ui.Muted.Render(fmt.Sprintf("Final test locked: %s", strings.Join(st.Remaining, ", ")))
	}
}
