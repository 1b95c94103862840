package calculation

import (
	"fmt"

	"github.com/rgehrsitz/ratesim/internal/domain"
	"github.com/rgehrsitz/ratesim/internal/logging"
)

// CalculationEngine runs the premium pipeline: rate changes, benchmarks, then the
// income grid.
type CalculationEngine struct {
	Logger logging.Logger
	Debug  bool // Log per-group benchmark detail
}

// NewCalculationEngine creates a new calculation engine
func NewCalculationEngine() *CalculationEngine {
	return &CalculationEngine{Logger: logging.NopLogger{}}
}

// SetLogger sets the engine logger; nil installs a no-op logger
func (ce *CalculationEngine) SetLogger(l logging.Logger) {
	ce.Logger = logging.OrNop(l)
}

// PipelineResult is the outcome of one pipeline run
type PipelineResult struct {
	Benchmarks []domain.BenchmarkRow
	Rows       []domain.SubsidyRow

	// PlansIn is the number of plans handed to the pipeline.
	PlansIn int
	// PlansWithoutBenchmark is the number of plans dropped by the benchmark join.
	PlansWithoutBenchmark int
}

// Run applies the rate changes to the plans, benchmarks them, keeps the requested
// metal levels (all when empty) and expands the survivors across the income grid.
// Benchmarks are computed before the metal filter so that every tier is measured
// against the silver benchmark of its group.
func (ce *CalculationEngine) Run(plans []domain.Plan, changes []domain.RateChange, metals []domain.MetalLevel) (*PipelineResult, error) {
	logger := logging.OrNop(ce.Logger)

	adjusted := ApplyRateChanges(plans, changes)

	benchmarks, err := ComputeBenchmarks(adjusted)
	if err != nil {
		return nil, fmt.Errorf("failed to compute benchmarks: %w", err)
	}
	if ce.Debug {
		for _, b := range benchmarks {
			logger.Debugf("benchmark %s/%s age %s: %s -> %s", b.Key.StateCode, b.Key.RatingAreaID, b.Key.Age,
				b.IndividualRateBenchmark.StringFixed(2), b.IndividualRateNewBenchmark.StringFixed(2))
		}
	}

	base := JoinBenchmarks(adjusted, benchmarks)
	dropped := len(adjusted) - len(base)
	if dropped > 0 {
		logger.Infof("%d of %d plans have no silver benchmark in their age/rating area and were excluded", dropped, len(adjusted))
	}

	base = filterMetalLevels(base, metals)
	rows := ExpandIncomeGrid(base)
	logger.Debugf("pipeline: %d plans, %d rate changes, %d benchmarks, %d grid rows", len(plans), len(changes), len(benchmarks), len(rows))

	return &PipelineResult{
		Benchmarks:            benchmarks,
		Rows:                  rows,
		PlansIn:               len(plans),
		PlansWithoutBenchmark: dropped,
	}, nil
}

func filterMetalLevels(base []domain.SubsidyBasePlan, metals []domain.MetalLevel) []domain.SubsidyBasePlan {
	if len(metals) == 0 {
		return base
	}
	keep := make(map[domain.MetalLevel]bool, len(metals))
	for _, m := range metals {
		keep[m] = true
	}

	filtered := make([]domain.SubsidyBasePlan, 0, len(base))
	for _, plan := range base {
		if keep[plan.MetalLevel] {
			filtered = append(filtered, plan)
		}
	}
	return filtered
}
