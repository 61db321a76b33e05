package ui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/lipgloss/v2"
)

const (
	MinWidth  = 80
	MinHeight = 24

	// header and footer boxes are one line of text plus a border
	chromeRows   = 6
	compactWidth = 100
)

// Frame is the terminal area a view renders into.
type Frame struct {
	Width, Height int
}

func (f Frame) TooSmall() bool { return f.Width < MinWidth || f.Height < MinHeight }

// Compact reports a width where long labels should be shortened.
func (f Frame) Compact() bool { return f.Width < compactWidth }

// BodyRows is the number of lines left between header and footer.
func (f Frame) BodyRows() int { return max(f.Height-chromeRows, 0) }

// TooSmallMessage asks the user to resize.
func (f Frame) TooSmallMessage() string {
	return Text.Align(lipgloss.Center).Width(f.Width).Height(f.Height).Render(fmt.Sprintf(
		"Terminal too small\n\nNeed at least %d x %d, have %d x %d",
		MinWidth, MinHeight, f.Width, f.Height))
}

// Header renders the app name, the title centred, and the points balance on
// the right. Awards waiting for the ledger are counted after the balance.
func (f Frame) Header(title string, points int64, pending int) string {
	left := Role.Render("  SkillPath")
	center := Text.Render(title)
	right := Points.Render(fmt.Sprintf("★ %d pts", points))
	if pending > 0 {
		right += "   " + Failure.Render(fmt.Sprintf("⧗ %d pending", pending))
	}

	inner := max(f.Width-4, 0)
	lw, cw, rw := lipgloss.Width(left), lipgloss.Width(center), lipgloss.Width(right)
	leftGap := max((inner-cw)/2-lw, 1)
	rightGap := max(inner-lw-leftGap-cw-rw, 1)

	return boxStyle.Width(f.Width).Render(
		left + strings.Repeat(" ", leftGap) + center + strings.Repeat(" ", rightGap) + right)
}

// Footer lists the help text of the given bindings.
func (f Frame) Footer(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, Text.Bold(true).Render(h.Key)+" "+Muted.Italic(false).Render(h.Desc))
	}
	return boxStyle.Width(f.Width).Render("  " + strings.Join(parts, "   "))
}

// Compose stacks header, body and footer, padding the body to fill the
// frame.
func (f Frame) Compose(header, body, footer string) string {
	rows := max(f.Height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	return header + "\n" + lipgloss.NewStyle().Width(f.Width).Height(rows).Render(body) + "\n" + footer
}

// Bar renders "label  ████░░░░  NN%" in width cells. A zero total draws an
// empty bar.
func Bar(label string, done, total, width int) string {
	var frac float64
	if total > 0 {
		frac = min(max(float64(done)/float64(total), 0), 1)
	}
	prefix := ""
	if label != "" {
		prefix = Text.Render(label) + "  "
	}
	pct := fmt.Sprintf("  %d%%", int(frac*100))

	cells := max(width-lipgloss.Width(prefix)-len(pct), 4)
	filled := int(float64(cells) * frac)
	return prefix +
		barDone.Render(strings.Repeat(" ", filled)) +
		barTodo.Render(strings.Repeat(" ", cells-filled)) +
		Muted.Italic(false).Render(pct)
}
