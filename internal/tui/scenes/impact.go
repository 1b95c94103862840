package scenes

import (
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/ratesim/internal/compare"
	"github.com/rgehrsitz/ratesim/internal/tui/components"
	"github.com/rgehrsitz/ratesim/internal/tui/tuistyles"
)

var impactColumns = []table.Column{
	{Title: "Issuer / Metal", Width: 34},
	{Title: "Premium", Width: 10},
	{Title: "Premium New", Width: 11},
	{Title: "Net", Width: 10},
	{Title: "Net New", Width: 10},
	{Title: "Net Change", Width: 11},
	{Title: "%", Width: 7},
}

// ImpactModel shows how the stored rate changes move average premiums
type ImpactModel struct {
	set    *compare.ImpactSet
	table  table.Model
	width  int
	height int
}

// NewImpactModel creates an empty impact scene
func NewImpactModel() *ImpactModel {
	t := table.New(
		table.WithColumns(impactColumns),
		table.WithFocused(true),
		table.WithHeight(8),
	)
	t.SetStyles(tableStyles())
	return &ImpactModel{table: t}
}

// SetImpact replaces the summary shown
func (m *ImpactModel) SetImpact(set *compare.ImpactSet) {
	m.set = set
	rows := make([]table.Row, 0, len(set.Results))
	for _, r := range set.Results {
		rows = append(rows, table.Row{
			r.Label(),
			r.AvgPremiumBefore.StringFixed(2),
			r.AvgPremiumAfter.StringFixed(2),
			r.AvgNetBefore.StringFixed(2),
			r.AvgNetAfter.StringFixed(2),
			tuistyles.FormatCurrency(r.NetDiff),
			r.NetPctChange.StringFixed(1),
		})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.GotoTop()
	}
}

// SetSize updates the scene dimensions
func (m *ImpactModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(tableHeight(height, 14))
}

// Update handles messages for the impact scene
func (m *ImpactModel) Update(msg tea.Msg) (*ImpactModel, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the impact scene
func (m *ImpactModel) View() string {
	if m.set == nil {
		return tuistyles.SubtitleStyle.Render("Computing impact...")
	}

	overall := m.set.Overall
	cards := []*components.MetricCard{
		components.NewMetricCard("Avg Premium", tuistyles.FormatCurrency(overall.AvgPremiumAfter)).
			WithChange(overall.PremiumDiff, overall.PremiumPctChange).
			WithDescription("was " + tuistyles.FormatCurrency(overall.AvgPremiumBefore)),
		components.NewMetricCard("Avg Net Premium", tuistyles.FormatCurrency(overall.AvgNetAfter)).
			WithChange(overall.NetDiff, overall.NetPctChange).
			WithDescription("was " + tuistyles.FormatCurrency(overall.AvgNetBefore)),
	}

	sections := []string{
		tuistyles.TitleStyle.Render("Rate change impact across the income grid"),
		components.MetricGrid(cards, 2),
		m.table.View(),
	}
	for _, rec := range m.set.Recommendations {
		sections = append(sections, tuistyles.InfoStyle.Render("• "+rec))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
