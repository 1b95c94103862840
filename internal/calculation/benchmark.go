package calculation

import (
	"fmt"

	"github.com/rgehrsitz/ratesim/internal/domain"
	"github.com/shopspring/decimal"
)

// ComputeBenchmarks derives the benchmark rates of every (age, state, rating area)
// group that has at least one standard on-exchange silver plan. Groups are returned
// in the order they are first seen.
func ComputeBenchmarks(adjusted []domain.AdjustedPlan) ([]domain.BenchmarkRow, error) {
	type group struct {
		rates    []decimal.Decimal
		newRates []decimal.Decimal
	}

	var order []domain.BenchmarkKey
	groups := make(map[domain.BenchmarkKey]*group)

	for _, plan := range adjusted {
		if !plan.IsBenchmarkCandidate() {
			continue
		}
		key := plan.BenchmarkKey()
		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
			order = append(order, key)
		}
		g.rates = append(g.rates, plan.IndividualRate)
		g.newRates = append(g.newRates, plan.IndividualRateNew)
	}

	rows := make([]domain.BenchmarkRow, 0, len(order))
	for _, key := range order {
		g := groups[key]
		rate, err := SecondLowest(g.rates)
		if err != nil {
			return nil, fmt.Errorf("benchmark for %s/%s age %s: %w", key.StateCode, key.RatingAreaID, key.Age, err)
		}
		newRate, err := SecondLowest(g.newRates)
		if err != nil {
			return nil, fmt.Errorf("new benchmark for %s/%s age %s: %w", key.StateCode, key.RatingAreaID, key.Age, err)
		}
		rows = append(rows, domain.BenchmarkRow{
			Key:                        key,
			IndividualRateBenchmark:    rate,
			IndividualRateNewBenchmark: newRate,
		})
	}
	return rows, nil
}

// JoinBenchmarks inner-joins plans with their benchmark group. Plans whose group
// has no benchmark are left out of the result.
func JoinBenchmarks(adjusted []domain.AdjustedPlan, benchmarks []domain.BenchmarkRow) []domain.SubsidyBasePlan {
	byKey := make(map[domain.BenchmarkKey]domain.BenchmarkRow, len(benchmarks))
	for _, b := range benchmarks {
		byKey[b.Key] = b
	}

	joined := make([]domain.SubsidyBasePlan, 0, len(adjusted))
	for _, plan := range adjusted {
		b, ok := byKey[plan.BenchmarkKey()]
		if !ok {
			continue
		}
		joined = append(joined, domain.SubsidyBasePlan{
			AdjustedPlan:               plan,
			IndividualRateBenchmark:    b.IndividualRateBenchmark,
			IndividualRateNewBenchmark: b.IndividualRateNewBenchmark,
		})
	}
	return joined
}

// StripBenchmarks drops the benchmark columns of an already joined table so it can
// be benchmarked again.
func StripBenchmarks(base []domain.SubsidyBasePlan) []domain.AdjustedPlan {
	plans := make([]domain.AdjustedPlan, len(base))
	for i, b := range base {
		plans[i] = b.AdjustedPlan
	}
	return plans
}
