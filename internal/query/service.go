// Package query answers rate queries and rate-change edits over a loaded plan
// table.
package query

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"unicode"

	"github.com/rgehrsitz/ratesim/internal/calculation"
	"github.com/rgehrsitz/ratesim/internal/domain"
	"github.com/rgehrsitz/ratesim/internal/logging"
	"github.com/rgehrsitz/ratesim/internal/ratechange"
	"github.com/shopspring/decimal"
)

// Service owns the plan table of a session together with its rate-change store.
// The plan table is never modified after construction and may be shared.
type Service struct {
	plans  []domain.Plan
	store  *ratechange.Store
	engine *calculation.CalculationEngine
	logger logging.Logger

	states []string
	areas  []string
}

// NewService creates a service over plans. A nil store gets an in-memory one.
func NewService(plans []domain.Plan, store *ratechange.Store) *Service {
	if store == nil {
		store = ratechange.NewStore(nil)
	}
	s := &Service{
		plans:  plans,
		store:  store,
		engine: calculation.NewCalculationEngine(),
		logger: logging.NopLogger{},
	}
	s.states = distinct(plans, func(p domain.Plan) string { return p.StateCode })
	s.areas = distinct(plans, func(p domain.Plan) string { return p.RatingAreaID })
	return s
}

// SetLogger sets the logger of the service and its engine; nil installs a no-op logger
func (s *Service) SetLogger(l logging.Logger) {
	s.logger = logging.OrNop(l)
	s.engine.SetLogger(l)
}

// Engine exposes the calculation engine, e.g. to enable debug output
func (s *Service) Engine() *calculation.CalculationEngine {
	return s.engine
}

// Store returns the rate-change store
func (s *Service) Store() *ratechange.Store {
	return s.store
}

// Plans returns the plan table
func (s *Service) Plans() []domain.Plan {
	return s.plans
}

// QueryRates computes the subsidy table for the filter. States and rating areas
// default to every known value.
func (s *Service) QueryRates(ctx context.Context, filter domain.RateFilter) (*domain.RateTable, error) {
	states, areas := s.selection(filter.States, filter.RatingAreas)
	filter.States, filter.RatingAreas = states, areas

	result, plansMatched, err := s.Compute(ctx, states, areas, filter.MetalLevels)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.DisplayRow, 0, len(result.Rows))
	keep := newRowFilter(filter)
	for _, row := range result.Rows {
		if keep(row) {
			rows = append(rows, project(row))
		}
	}
	s.logger.Debugf("query: %d plans in selection, %d rows after filters", plansMatched, len(rows))

	return &domain.RateTable{
		Filter:                filter,
		Rows:                  rows,
		PlansMatched:          plansMatched,
		PlansWithoutBenchmark: result.PlansWithoutBenchmark,
	}, nil
}

// Compute runs the pipeline over the plans of a selection with the stored rate
// changes of that selection. It also returns the number of plans selected.
func (s *Service) Compute(ctx context.Context, states, areas []string, metals []domain.MetalLevel) (*calculation.PipelineResult, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	selected := s.selectPlans(states, areas)

	changes, err := s.store.Changes(ctx, states, areas)
	if err != nil {
		return nil, 0, err
	}

	result, err := s.engine.Run(selected, changes, metals)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to compute rates: %w", err)
	}
	return result, len(selected), nil
}

// SubmitRateChangeEdits stores an edited matrix for the first state and rating
// area of the selection.
func (s *Service) SubmitRateChangeEdits(ctx context.Context, edits domain.RateEdits, states, areas []string) error {
	states, areas = s.selection(states, areas)
	if _, err := s.store.Upsert(ctx, edits, states, areas); err != nil {
		return fmt.Errorf("failed to submit rate changes: %w", err)
	}
	return nil
}

// GetRateChangeMatrix returns the editable matrix for the selection. Insurers
// selling plans in the selection are offered when nothing is stored yet.
func (s *Service) GetRateChangeMatrix(ctx context.Context, states, areas []string) (*domain.RateMatrix, error) {
	states, areas = s.selection(states, areas)
	insurers := distinct(s.selectPlans(states, areas), func(p domain.Plan) string { return p.Issuer })

	matrix, err := s.store.MaterializeMatrix(ctx, states, areas, insurers)
	if err != nil {
		return nil, fmt.Errorf("failed to build rate change matrix: %w", err)
	}
	return matrix, nil
}

// Options lists the values each query filter can take
func (s *Service) Options() domain.FilterOptions {
	ages := distinct(s.plans, func(p domain.Plan) string { return p.Age })
	sort.SliceStable(ages, func(i, j int) bool { return ageLess(ages[i], ages[j]) })

	var metals []domain.MetalLevel
	present := make(map[domain.MetalLevel]bool)
	for _, p := range s.plans {
		present[p.MetalLevel] = true
	}
	for _, level := range domain.LoadableMetalLevels {
		if present[level] {
			metals = append(metals, level)
		}
	}

	return domain.FilterOptions{
		Ages:          ages,
		States:        append([]string(nil), s.states...),
		RatingAreas:   append([]string(nil), s.areas...),
		MetalLevels:   metals,
		CSRVariations: distinct(s.plans, func(p domain.Plan) string { return p.CSRVariationType }),
		Incomes:       calculation.IncomeGrid(),
	}
}

func (s *Service) selection(states, areas []string) ([]string, []string) {
	if len(states) == 0 {
		states = s.states
	}
	if len(areas) == 0 {
		areas = s.areas
	}
	return states, areas
}

func (s *Service) selectPlans(states, areas []string) []domain.Plan {
	inStates := toSet(states)
	inAreas := toSet(areas)

	var selected []domain.Plan
	for _, p := range s.plans {
		if inStates[p.StateCode] && inAreas[p.RatingAreaID] {
			selected = append(selected, p)
		}
	}
	return selected
}

func newRowFilter(filter domain.RateFilter) func(domain.SubsidyRow) bool {
	ages := toSet(filter.Ages)
	csrs := toSet(filter.CSRVariations)
	return func(row domain.SubsidyRow) bool {
		if len(ages) > 0 && !ages[row.Age] {
			return false
		}
		if len(csrs) > 0 && !csrs[row.CSRVariationType] {
			return false
		}
		if len(filter.Incomes) > 0 && !containsDecimal(filter.Incomes, row.Income) {
			return false
		}
		return true
	}
}

func project(row domain.SubsidyRow) domain.DisplayRow {
	return domain.DisplayRow{
		StateCode:                  row.StateCode,
		RatingAreaID:               row.RatingAreaID,
		Issuer:                     row.Issuer,
		PlanMarketingName:          row.PlanMarketingName,
		PlanType:                   row.PlanType,
		MetalLevel:                 row.MetalLevel,
		CSRVariationType:           row.CSRVariationType,
		Age:                        row.Age,
		Income:                     row.Income,
		NetMonthlyRate:             row.NetMonthlyRate.Round(2),
		NetMonthlyRateNew:          row.NetMonthlyRateNew.Round(2),
		IndividualRate:             row.IndividualRate,
		IndividualRateBenchmark:    row.IndividualRateBenchmark,
		IndividualRateNew:          row.IndividualRateNew,
		IndividualRateNewBenchmark: row.IndividualRateNewBenchmark,
		MaxMonthlyRate:             row.MaxMonthlyRate,
		Subsidy:                    row.Subsidy,
		SubsidyNew:                 row.SubsidyNew,
	}
}

func distinct(plans []domain.Plan, field func(domain.Plan) string) []string {
	seen := make(map[string]bool)
	var values []string
	for _, p := range plans {
		v := field(p)
		if !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}
	sort.Strings(values)
	return values
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func containsDecimal(values []decimal.Decimal, v decimal.Decimal) bool {
	for _, candidate := range values {
		if candidate.Equal(v) {
			return true
		}
	}
	return false
}

// ageLess orders age bands by their leading number ("0-14" < "21" < "64 and over")
func ageLess(a, b string) bool {
	na, okA := leadingInt(a)
	nb, okB := leadingInt(b)
	if okA && okB && na != nb {
		return na < nb
	}
	if okA != okB {
		return okA
	}
	return a < b
}

func leadingInt(s string) (int, bool) {
	end := 0
	for end < len(s) && unicode.IsDigit(rune(s[end])) {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	return n, err == nil
}
