package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1F6FEB"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8B949E"))
)

// ConsoleFormatter renders bordered tables for a terminal
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(report *Report) ([]byte, error) {
	var b strings.Builder
	if report.Title != "" {
		b.WriteString(titleStyle.Render(report.Title))
		b.WriteString("\n\n")
	}

	if t := report.Table; t != nil {
		rows := make([][]string, 0, len(t.Rows))
		for _, r := range t.Rows {
			rows = append(rows, summaryValues(r))
		}
		b.WriteString(renderTable(summaryColumns, rows, 4))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%d rows from %d plans (%d without a silver benchmark)",
			len(t.Rows), t.PlansMatched, t.PlansWithoutBenchmark)))
		b.WriteString("\n")
	}

	if m := report.Matrix; m != nil {
		if report.Table != nil {
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("Rate changes (%%) for %s / %s\n", m.StateCode, m.RatingAreaID))
		rows := make([][]string, 0, len(m.Rows))
		for _, row := range m.Rows {
			rows = append(rows, matrixValues(m, row))
		}
		b.WriteString(renderTable(matrixHeader(m), rows, 1))
		b.WriteString("\n")
	}

	return []byte(b.String()), nil
}

// renderTable right-aligns every column from firstNumeric on
func renderTable(headers []string, rows [][]string, firstNumeric int) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col >= firstNumeric:
				return numberStyle
			default:
				return cellStyle
			}
		}).
		String()
}
