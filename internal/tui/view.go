package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the current state of the application
func (m Model) View() string {
	if m.err != nil {
		return m.renderApp(ErrorStyle.Render(fmt.Sprintf("Error: %s\n\nPress any key to continue...", m.err)))
	}
	if m.loading {
		return m.renderApp(BorderStyle.Render("⠋ " + m.loadingMessage))
	}
	if len(m.selections) == 0 {
		return m.renderApp(BorderStyle.Render("No plans loaded"))
	}

	var content string
	switch m.currentScene {
	case ScenePlans:
		content = m.plansModel.View()
	case SceneMatrix:
		content = m.matrixModel.View()
	case SceneImpact:
		content = m.impactModel.View()
	case SceneHelp:
		content = m.renderHelp()
	default:
		content = "Unknown scene"
	}

	return m.renderApp(content)
}

// renderApp wraps content with title bar and status bar
func (m Model) renderApp(content string) string {
	contentHeight := max(0, m.height-4)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderTitleBar(),
		lipgloss.NewStyle().Height(contentHeight).Render(content),
		m.renderStatusBar(),
	)
}

func (m Model) renderTitleBar() string {
	title := TitleStyle.Render("ratesim - premium and subsidy what-if")

	sel := m.Selection()
	breadcrumb := SubtitleStyle.Render(fmt.Sprintf("%s / %s rating area %s (%d of %d)",
		m.currentScene, sel.StateCode, sel.RatingAreaID, m.selectionIdx+1, len(m.selections)))
	if m.status != "" {
		breadcrumb += "  " + InfoStyle.Render(m.status)
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, breadcrumb)
}

func (m Model) renderStatusBar() string {
	shortcuts := []string{
		formatShortcut("1", "plans"),
		formatShortcut("2", "rate changes"),
		formatShortcut("3", "impact"),
		formatShortcut("[/]", "area"),
		formatShortcut("?", "help"),
		formatShortcut("q", "quit"),
	}

	return StatusBarStyle.Width(m.width).Render(strings.Join(shortcuts, " • "))
}

func formatShortcut(key, desc string) string {
	return StatusKeyStyle.Render(key) + " " + desc
}

func (m Model) renderHelp() string {
	lines := []struct{ key, desc string }{
		{"1 / 2 / 3", "plans, rate changes, impact"},
		{"tab", "next scene"},
		{"[ / ]", "previous / next state and rating area"},
		{"+ / -", "plans: next / previous income level"},
		{"← / →", "rate changes: choose metal level"},
		{"enter", "rate changes: edit cell, enter again to keep"},
		{"s", "rate changes: submit and recompute"},
		{"u", "rate changes: discard pending edits"},
		{"esc", "cancel edit, leave help"},
		{"q / ctrl+c", "quit"},
	}

	var sb strings.Builder
	sb.WriteString(TitleStyle.Render("Keyboard shortcuts") + "\n\n")
	for _, l := range lines {
		sb.WriteString(fmt.Sprintf("  %s  %s\n", HelpKeyStyle.Render(fmt.Sprintf("%-12s", l.key)), HelpDescStyle.Render(l.desc)))
	}
	sb.WriteString("\nRate changes are percentages applied to every plan of an insurer and metal level\n")
	sb.WriteString("in the selected rating area. Subsidies follow the second-lowest silver plan.")

	return BorderStyle.Render(sb.String())
}
