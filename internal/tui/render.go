package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Menu is one full frame: a title, selectable lines and footer lines.
type Menu struct {
	Title  string
	Lines  []string
	Cursor int
	Footer []string
}

// MenuRenderer paints menus. It keeps no state between calls.
type MenuRenderer struct {
	indicator string
}

// NewMenuRenderer creates a renderer that marks the cursor line with ▶.
func NewMenuRenderer() *MenuRenderer {
	return &MenuRenderer{indicator: "▶ "}
}

// Render returns the whole frame for m, top to bottom. The line at m.Cursor
// is highlighted; a cursor outside the lines highlights nothing.
func (r *MenuRenderer) Render(m Menu) string {
	var b strings.Builder

	if m.Title != "" {
		b.WriteString(TitleStyle.Render(m.Title))
		b.WriteString("\n")
		b.WriteString(TitleRuleStyle.Render(strings.Repeat("=", lipgloss.Width(m.Title))))
		b.WriteString("\n\n")
	}

	pad := strings.Repeat(" ", lipgloss.Width(r.indicator))
	for i, line := range m.Lines {
		if i == m.Cursor {
			b.WriteString(CursorLineStyle.Render(r.indicator + line))
		} else {
			b.WriteString(MenuLineStyle.Render(pad + line))
		}
		b.WriteString("\n")
	}

	if len(m.Footer) > 0 {
		b.WriteString("\n")
		for _, line := range m.Footer {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	return b.String()
}
