package scenes

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"

	"github.com/rgehrsitz/ratesim/internal/tui/tuistyles"
)

func tableStyles() table.Styles {
	return table.Styles{
		Header:   tuistyles.TableHeaderStyle,
		Cell:     tuistyles.TableCellStyle,
		Selected: tuistyles.TableHighlightStyle,
	}
}

// renderHelp renders "key description" pairs on one line
func renderHelp(pairs ...string) string {
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, tuistyles.HelpKeyStyle.Render(pairs[i])+" "+tuistyles.HelpDescStyle.Render(pairs[i+1]))
	}
	return strings.Join(parts, " • ")
}

// tableHeight leaves room for the scene header and help lines
func tableHeight(height, reserved int) int {
	h := height - reserved
	if h < 3 {
		return 3
	}
	return h
}
