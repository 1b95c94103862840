package compare

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/ratesim/internal/domain"
	"github.com/rgehrsitz/ratesim/internal/query"
	"github.com/rgehrsitz/ratesim/internal/ratechange"
	"github.com/shopspring/decimal"
)

// CompareEngine measures how rate changes move premiums and net premiums
type CompareEngine struct {
	Service           *query.Service
	MetricsCalculator *MetricsCalculator
}

// NewCompareEngine creates a new comparison engine
func NewCompareEngine(svc *query.Service) *CompareEngine {
	return &CompareEngine{
		Service:           svc,
		MetricsCalculator: NewMetricsCalculator(),
	}
}

// CompareOptions configures comparison behavior
type CompareOptions struct {
	States      []string            // Defaults to every known state
	RatingAreas []string            // Defaults to every known rating area
	MetalLevels []domain.MetalLevel // Empty keeps every tier
	Incomes     []decimal.Decimal   // Empty averages across the whole income grid
	ConfigPath  string
}

// Compare summarizes the impact of the stored rate changes
func (ce *CompareEngine) Compare(ctx context.Context, options CompareOptions) (*ImpactSet, error) {
	return ce.compare(ctx, ce.Service, options, false)
}

// Preview summarizes the impact the stored rate changes would have with edits
// applied on top of them. The store itself is left untouched.
func (ce *CompareEngine) Preview(ctx context.Context, edits domain.RateEdits, options CompareOptions) (*ImpactSet, error) {
	current, err := ce.Service.Store().Changes(ctx, nil, nil)
	if err != nil {
		return nil, err
	}

	scratch := ratechange.NewStore(ratechange.NewMemoryBackend())
	if err := scratch.Seed(ctx, current); err != nil {
		return nil, err
	}
	preview := query.NewService(ce.Service.Plans(), scratch)
	if err := preview.SubmitRateChangeEdits(ctx, edits, options.States, options.RatingAreas); err != nil {
		return nil, fmt.Errorf("failed to apply preview edits: %w", err)
	}

	return ce.compare(ctx, preview, options, true)
}

func (ce *CompareEngine) compare(ctx context.Context, svc *query.Service, options CompareOptions, preview bool) (*ImpactSet, error) {
	opts := svc.Options()
	states, areas := options.States, options.RatingAreas
	if len(states) == 0 {
		states = opts.States
	}
	if len(areas) == 0 {
		areas = opts.RatingAreas
	}

	result, _, err := svc.Compute(ctx, states, areas, options.MetalLevels)
	if err != nil {
		return nil, fmt.Errorf("failed to compute impact: %w", err)
	}

	rows := result.Rows
	if len(options.Incomes) > 0 {
		rows = filterIncomes(rows, options.Incomes)
	}

	results, overall := ce.MetricsCalculator.CalculateMetrics(rows)
	set := &ImpactSet{
		States:      states,
		RatingAreas: areas,
		Incomes:     options.Incomes,
		Preview:     preview,
		Results:     results,
		Overall:     overall,
		ConfigPath:  options.ConfigPath,
	}
	set.Recommendations = GenerateRecommendations(set)
	return set, nil
}

func filterIncomes(rows []domain.SubsidyRow, incomes []decimal.Decimal) []domain.SubsidyRow {
	kept := make([]domain.SubsidyRow, 0, len(rows))
	for _, row := range rows {
		for _, income := range incomes {
			if row.Income.Equal(income) {
				kept = append(kept, row)
				break
			}
		}
	}
	return kept
}
