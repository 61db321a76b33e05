// Package ui holds the lipgloss styles and frame helpers shared by the
// terminal views.
package ui

import "charm.land/lipgloss/v2"

var (
	violet = lipgloss.Color("#8B5CF6")
	teal   = lipgloss.Color("#14B8A6")
	amber  = lipgloss.Color("#F59E0B")
	green  = lipgloss.Color("#22C55E")
	rose   = lipgloss.Color("#F43F5E")
	ink    = lipgloss.Color("#F8FAFC")
	slate  = lipgloss.Color("#94A3B8")
	panel  = lipgloss.Color("#1E293B")
	track  = lipgloss.Color("#334155")
)

var (
	Text     = lipgloss.NewStyle().Foreground(ink)
	Muted    = lipgloss.NewStyle().Foreground(slate).Italic(true)
	Role     = lipgloss.NewStyle().Foreground(violet).Bold(true)
	Passed   = lipgloss.NewStyle().Foreground(green).Bold(true)
	Failure  = lipgloss.NewStyle().Foreground(rose).Bold(true)
	Points   = lipgloss.NewStyle().Foreground(amber)
	Spinner  = lipgloss.NewStyle().Foreground(teal)
	barDone  = lipgloss.NewStyle().Background(teal)
	barTodo  = lipgloss.NewStyle().Background(track)
	boxStyle = lipgloss.NewStyle().
			Background(panel).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(track)
)

// Mark renders the checkbox shown next to a skill.
func Mark(passed bool) string {
	if passed {
		return Passed.Render("✓")
	}
	return Text.Render("○")
}
