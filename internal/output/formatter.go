package output

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/rgehrsitz/ratesim/internal/domain"
	"github.com/shopspring/decimal"
)

// Report is what a formatter renders: a computed rate table, a rate-change matrix,
// or both. Nil parts are skipped.
type Report struct {
	Title  string             `json:"title,omitempty" yaml:"title,omitempty"`
	Table  *domain.RateTable  `json:"table,omitempty" yaml:"table,omitempty"`
	Matrix *domain.RateMatrix `json:"matrix,omitempty" yaml:"matrix,omitempty"`
}

// Formatter renders a report in one output format
type Formatter interface {
	Name() string
	Format(report *Report) ([]byte, error)
}

// FormatterFunc adapts a function to the Formatter interface
type FormatterFunc struct {
	ID string
	F  func(report *Report) ([]byte, error)
}

func (f FormatterFunc) Name() string { return f.ID }

func (f FormatterFunc) Format(report *Report) ([]byte, error) { return f.F(report) }

var formatters = map[string]Formatter{}

var aliases = map[string]string{
	"table": "console",
	"text":  "console",
	"yml":   "yaml",
}

func register(f Formatter) {
	formatters[f.Name()] = f
}

func init() {
	register(ConsoleFormatter{})
	register(CSVFormatter{})
	register(JSONFormatter{})
	register(YAMLFormatter{})
	register(PDFFormatter{})
}

// GetFormatterByName returns the formatter registered under name or one of its
// aliases, or nil.
func GetFormatterByName(name string) Formatter {
	if target, ok := aliases[name]; ok {
		name = target
	}
	return formatters[name]
}

// AvailableFormatterNames lists the registered formatter names, sorted
func AvailableFormatterNames() []string {
	names := make([]string, 0, len(formatters))
	for name := range formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AvailableFormatAliases lists the accepted alternative format names, sorted
func AvailableFormatAliases() []string {
	names := make([]string, 0, len(aliases))
	for name := range aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteFormatted renders the report and writes it to a timestamped file in the
// working directory. It returns the file name.
func WriteFormatted(f Formatter, report *Report, ext string) (string, error) {
	data, err := f.Format(report)
	if err != nil {
		return "", fmt.Errorf("failed to format %s report: %w", f.Name(), err)
	}
	filename := fmt.Sprintf("ratesim_report_%s.%s", time.Now().Format("20060102_150405"), ext)
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return filename, nil
}

// FormatCurrency formats a decimal as currency
func FormatCurrency(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

// FormatPercentage formats a decimal as percentage
func FormatPercentage(amount decimal.Decimal) string {
	return amount.StringFixed(2) + "%"
}

// summaryColumns are the DisplayRow columns shown by the narrow renderings
var summaryColumns = []string{"Issuer", "Plan", "Metal", "Age", "Income", "Net", "Net (new)", "Subsidy", "Subsidy (new)"}

func summaryValues(r domain.DisplayRow) []string {
	return []string{
		r.Issuer,
		r.PlanMarketingName,
		string(r.MetalLevel),
		r.Age,
		r.Income.StringFixed(1),
		FormatCurrency(r.NetMonthlyRate),
		FormatCurrency(r.NetMonthlyRateNew),
		FormatCurrency(r.Subsidy),
		FormatCurrency(r.SubsidyNew),
	}
}

func matrixHeader(m *domain.RateMatrix) []string {
	header := []string{"Issuer"}
	for _, level := range m.MetalLevels {
		header = append(header, string(level))
	}
	return header
}

func matrixValues(m *domain.RateMatrix, row domain.MatrixRow) []string {
	values := []string{row.Issuer}
	for _, level := range m.MetalLevels {
		values = append(values, row.Percentages[level].String())
	}
	return values
}
