// Package tui is the interactive terminal front end: a plans table, an editable
// rate-change matrix and an impact summary for one state and rating area at a time.
package tui

import (
	"context"
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/ratesim/internal/compare"
	"github.com/rgehrsitz/ratesim/internal/domain"
	"github.com/rgehrsitz/ratesim/internal/query"
	"github.com/rgehrsitz/ratesim/internal/tui/scenes"
)

// Selection is one state and rating area
type Selection struct {
	StateCode    string
	RatingAreaID string
}

// Model represents the entire application state
type Model struct {
	// Navigation
	currentScene  Scene
	previousScene Scene

	// Terminal dimensions
	width  int
	height int

	svc    *query.Service
	impact *compare.CompareEngine

	selections   []Selection
	selectionIdx int

	plansModel  *scenes.PlansModel
	matrixModel *scenes.MatrixModel
	impactModel *scenes.ImpactModel

	// Error state
	err error

	// Loading state
	loading        bool
	loadingMessage string
	status         string
}

// NewModel creates a new application model over svc
func NewModel(svc *query.Service) Model {
	opts := svc.Options()
	return Model{
		currentScene: ScenePlans,
		svc:          svc,
		impact:       compare.NewCompareEngine(svc),
		selections:   selections(svc.Plans()),
		plansModel:   scenes.NewPlansModel(opts.Incomes),
		matrixModel:  scenes.NewMatrixModel(),
		impactModel:  scenes.NewImpactModel(),
		width:        80,
		height:       24,
	}
}

// Init initializes the model (required by tea.Model interface)
func (m Model) Init() tea.Cmd {
	return m.reloadCmd()
}

// Selection returns the state and rating area on screen
func (m Model) Selection() Selection {
	if len(m.selections) == 0 {
		return Selection{}
	}
	return m.selections[m.selectionIdx]
}

func (m Model) reloadCmd() tea.Cmd {
	if len(m.selections) == 0 {
		return nil
	}
	sel := m.Selection()
	return tea.Batch(
		loadRatesCmd(m.svc, sel, m.plansModel.Income()),
		loadMatrixCmd(m.svc, sel),
		loadImpactCmd(m.impact, sel),
	)
}

// loadRatesCmd returns a command that recomputes the plans table at one income
func loadRatesCmd(svc *query.Service, sel Selection, income decimal.Decimal) tea.Cmd {
	return func() tea.Msg {
		table, err := svc.QueryRates(context.Background(), domain.RateFilter{
			States:      []string{sel.StateCode},
			RatingAreas: []string{sel.RatingAreaID},
			Incomes:     []decimal.Decimal{income},
		})
		return RatesLoadedMsg{Table: table, Err: err}
	}
}

func loadMatrixCmd(svc *query.Service, sel Selection) tea.Cmd {
	return func() tea.Msg {
		matrix, err := svc.GetRateChangeMatrix(context.Background(), []string{sel.StateCode}, []string{sel.RatingAreaID})
		return MatrixLoadedMsg{Matrix: matrix, Err: err}
	}
}

func loadImpactCmd(engine *compare.CompareEngine, sel Selection) tea.Cmd {
	return func() tea.Msg {
		set, err := engine.Compare(context.Background(), compare.CompareOptions{
			States:      []string{sel.StateCode},
			RatingAreas: []string{sel.RatingAreaID},
		})
		return ImpactLoadedMsg{Set: set, Err: err}
	}
}

func submitEditsCmd(svc *query.Service, sel Selection, edits domain.RateEdits) tea.Cmd {
	return func() tea.Msg {
		err := svc.SubmitRateChangeEdits(context.Background(), edits, []string{sel.StateCode}, []string{sel.RatingAreaID})
		return EditsSubmittedMsg{Err: err}
	}
}

// selections lists the distinct state and rating area pairs of the plan table
func selections(plans []domain.Plan) []Selection {
	seen := make(map[Selection]bool)
	var out []Selection
	for _, p := range plans {
		sel := Selection{StateCode: p.StateCode, RatingAreaID: p.RatingAreaID}
		if !seen[sel] {
			seen[sel] = true
			out = append(out, sel)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StateCode != out[j].StateCode {
			return out[i].StateCode < out[j].StateCode
		}
		return out[i].RatingAreaID < out[j].RatingAreaID
	})
	return out
}

func (s Scene) String() string {
	switch s {
	case ScenePlans:
		return "Plans"
	case SceneMatrix:
		return "Rate Changes"
	case SceneImpact:
		return "Impact"
	case SceneHelp:
		return "Help"
	default:
		return "Unknown"
	}
}
