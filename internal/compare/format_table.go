package compare

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TableFormatter formats an impact summary as a console table
type TableFormatter struct{}

// Format generates a table of before/after averages per insurer tier
func (tf *TableFormatter) Format(set *ImpactSet) string {
	var sb strings.Builder

	title := "RATE CHANGE IMPACT"
	if set.Preview {
		title += " (PREVIEW)"
	}
	sb.WriteString(title + "\n")
	sb.WriteString(strings.Repeat("=", 96) + "\n")
	sb.WriteString(fmt.Sprintf("States: %s   Rating Areas: %s\n", strings.Join(set.States, ", "), strings.Join(set.RatingAreas, ", ")))
	if len(set.Incomes) > 0 {
		incomes := make([]string, len(set.Incomes))
		for i, income := range set.Incomes {
			incomes[i] = income.String()
		}
		sb.WriteString(fmt.Sprintf("Incomes (%% of poverty level): %s\n", strings.Join(incomes, ", ")))
	}
	if set.ConfigPath != "" {
		sb.WriteString(fmt.Sprintf("Configuration: %s\n", set.ConfigPath))
	}
	sb.WriteString("\n")

	nameWidth := 34
	numWidth := 12

	sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s %*s %*s\n",
		nameWidth, "Insurer / Metal",
		numWidth, "Premium",
		numWidth, "Premium New",
		numWidth, "Net",
		numWidth, "Net New",
		numWidth, "Net Change"))
	sb.WriteString(strings.Repeat("-", 96) + "\n")

	for _, r := range set.Results {
		sb.WriteString(tf.formatRow(r, r.Label(), nameWidth, numWidth))
	}
	if len(set.Results) == 0 {
		sb.WriteString("No plans with a silver benchmark in this selection\n")
	} else {
		sb.WriteString(strings.Repeat("-", 96) + "\n")
		sb.WriteString(tf.formatRow(set.Overall, "All insurers", nameWidth, numWidth))
	}
	sb.WriteString(strings.Repeat("=", 96) + "\n")

	if len(set.Recommendations) > 0 {
		sb.WriteString("\nHIGHLIGHTS\n")
		sb.WriteString(strings.Repeat("-", 96) + "\n")
		for _, rec := range set.Recommendations {
			sb.WriteString(fmt.Sprintf("• %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func (tf *TableFormatter) formatRow(r ImpactResult, name string, nameWidth, numWidth int) string {
	return fmt.Sprintf("%-*s %*s %*s %*s %*s %*s\n",
		nameWidth, tf.truncate(name, nameWidth),
		numWidth, "$"+r.AvgPremiumBefore.StringFixed(2),
		numWidth, "$"+r.AvgPremiumAfter.StringFixed(2),
		numWidth, "$"+r.AvgNetBefore.StringFixed(2),
		numWidth, "$"+r.AvgNetAfter.StringFixed(2),
		numWidth, tf.formatDelta(r.NetDiff))
}

// formatDelta renders a signed dollar change; zero is rendered as "="
func (tf *TableFormatter) formatDelta(delta decimal.Decimal) string {
	if delta.IsZero() {
		return "="
	}
	return tf.deltaSymbol(delta) + "$" + delta.Abs().StringFixed(2)
}

func (tf *TableFormatter) deltaSymbol(delta decimal.Decimal) string {
	if delta.IsPositive() {
		return "+"
	} else if delta.IsNegative() {
		return "-"
	}
	return " "
}

func (tf *TableFormatter) truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// FormatCompact creates a single-line summary of the net premium changes
func (tf *TableFormatter) FormatCompact(set *ImpactSet) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Overall: %s", tf.formatDelta(set.Overall.NetDiff)))
	for _, r := range set.Results {
		sb.WriteString(fmt.Sprintf(" | %s: %s", r.Label(), tf.formatDelta(r.NetDiff)))
	}

	return sb.String()
}
