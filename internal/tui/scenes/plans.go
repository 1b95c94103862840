package scenes

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/ratesim/internal/domain"
	"github.com/rgehrsitz/ratesim/internal/tui/tuimsg"
	"github.com/rgehrsitz/ratesim/internal/tui/tuistyles"
)

var planColumns = []table.Column{
	{Title: "Issuer", Width: 20},
	{Title: "Plan", Width: 28},
	{Title: "Metal", Width: 15},
	{Title: "Age", Width: 6},
	{Title: "Premium", Width: 10},
	{Title: "Premium New", Width: 11},
	{Title: "Subsidy", Width: 10},
	{Title: "Subsidy New", Width: 11},
	{Title: "Net", Width: 10},
	{Title: "Net New", Width: 10},
}

// PlansModel shows the subsidy table of the selection at one income level
type PlansModel struct {
	table     table.Model
	rates     *domain.RateTable
	incomes   []decimal.Decimal
	incomeIdx int
	width     int
	height    int
}

// NewPlansModel creates a plans scene over the income grid
func NewPlansModel(incomes []decimal.Decimal) *PlansModel {
	t := table.New(
		table.WithColumns(planColumns),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	t.SetStyles(tableStyles())

	return &PlansModel{table: t, incomes: incomes}
}

// Income returns the income level currently shown
func (m *PlansModel) Income() decimal.Decimal {
	if len(m.incomes) == 0 {
		return decimal.Zero
	}
	return m.incomes[m.incomeIdx]
}

// SetRates replaces the rows with a freshly computed table
func (m *PlansModel) SetRates(rates *domain.RateTable) {
	m.rates = rates
	rows := make([]table.Row, 0, len(rates.Rows))
	for _, r := range rates.Rows {
		rows = append(rows, table.Row{
			r.Issuer,
			r.PlanMarketingName,
			string(r.MetalLevel),
			r.Age,
			r.IndividualRate.StringFixed(2),
			r.IndividualRateNew.StringFixed(2),
			r.Subsidy.StringFixed(2),
			r.SubsidyNew.StringFixed(2),
			r.NetMonthlyRate.StringFixed(2),
			r.NetMonthlyRateNew.StringFixed(2),
		})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.GotoTop()
	}
}

// SetSize updates the scene dimensions
func (m *PlansModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(tableHeight(height, 4))
}

// Update handles messages for the plans scene
func (m *PlansModel) Update(msg tea.Msg) (*PlansModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("+", "="))):
			return m, m.shiftIncome(1)
		case key.Matches(msg, key.NewBinding(key.WithKeys("-", "_"))):
			return m, m.shiftIncome(-1)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *PlansModel) shiftIncome(delta int) tea.Cmd {
	next := m.incomeIdx + delta
	if next < 0 || next >= len(m.incomes) {
		return nil
	}
	m.incomeIdx = next
	income := m.incomes[next]
	return func() tea.Msg {
		return tuimsg.IncomeChangedMsg{Income: income}
	}
}

// View renders the plans scene
func (m *PlansModel) View() string {
	header := tuistyles.TitleStyle.Render(fmt.Sprintf("Plans at %s × poverty level", m.Income().StringFixed(1)))
	summary := ""
	if m.rates != nil {
		summary = tuistyles.SubtitleStyle.Render(fmt.Sprintf("%d rows from %d plans (%d without a silver benchmark)",
			len(m.rates.Rows), m.rates.PlansMatched, m.rates.PlansWithoutBenchmark))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		summary,
		m.table.View(),
		renderHelp("↑/↓", "move", "+/-", "income"),
	)
}
