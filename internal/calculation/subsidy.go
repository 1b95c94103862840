package calculation

import (
	"github.com/rgehrsitz/ratesim/internal/domain"
	"github.com/shopspring/decimal"
)

const incomeLevels = 28

var (
	incomeStart  = decimal.New(13, -1) // 1.3
	incomeStep   = decimal.New(1, -1)  // 0.1
	monthsInYear = decimal.NewFromInt(12)
)

// IncomeGrid returns the income ratios every plan is evaluated at: 1.3 through 4.0
// in steps of 0.1.
func IncomeGrid() []decimal.Decimal {
	grid := make([]decimal.Decimal, incomeLevels)
	for i := range grid {
		grid[i] = incomeStart.Add(incomeStep.Mul(decimal.NewFromInt(int64(i)))).Round(1)
	}
	return grid
}

// MaxMonthlyRate is the most a household at the given income ratio is expected to
// pay per month for the benchmark plan.
func MaxMonthlyRate(income decimal.Decimal) decimal.Decimal {
	return income.Mul(ReferenceIncome).Mul(MaxIncomeFraction(income)).Div(monthsInYear).Round(2)
}

// ExpandIncomeGrid evaluates every plan at every income level of IncomeGrid. The
// rows of one plan are contiguous and ordered by income.
func ExpandIncomeGrid(base []domain.SubsidyBasePlan) []domain.SubsidyRow {
	grid := IncomeGrid()
	maxRates := make([]decimal.Decimal, len(grid))
	for i, income := range grid {
		maxRates[i] = MaxMonthlyRate(income)
	}

	rows := make([]domain.SubsidyRow, 0, len(base)*len(grid))
	for _, plan := range base {
		for i, income := range grid {
			rows = append(rows, subsidyRow(plan, income, maxRates[i]))
		}
	}
	return rows
}

func subsidyRow(plan domain.SubsidyBasePlan, income, maxRate decimal.Decimal) domain.SubsidyRow {
	subsidy := nonNegative(plan.IndividualRateBenchmark.Sub(maxRate).Round(2))
	subsidyNew := nonNegative(plan.IndividualRateNewBenchmark.Sub(maxRate).Round(2))

	return domain.SubsidyRow{
		SubsidyBasePlan:   plan,
		Income:            income,
		MaxMonthlyRate:    maxRate,
		Subsidy:           subsidy,
		NetMonthlyRate:    nonNegative(plan.IndividualRate.Sub(subsidy)),
		SubsidyNew:        subsidyNew,
		NetMonthlyRateNew: nonNegative(plan.IndividualRateNew.Sub(subsidyNew)),
	}
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
