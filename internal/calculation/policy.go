package calculation

import (
	"github.com/shopspring/decimal"
)

// ReferenceIncome is the annual income of one federal poverty line unit, in dollars
var ReferenceIncome = decimal.NewFromInt(13500)

// incomeBand maps income ratios in [lower, upper) onto a linear slice of the
// maximum share of income a household is expected to pay toward the benchmark plan
type incomeBand struct {
	lower, upper decimal.Decimal
	start, end   decimal.Decimal
}

var incomeBands = []incomeBand{
	{lower: dec("1.33"), upper: dec("1.5"), start: dec("0"), end: dec("0")},
	{lower: dec("1.5"), upper: dec("2.0"), start: dec("0"), end: dec("0.02")},
	{lower: dec("2.0"), upper: dec("2.5"), start: dec("0.02"), end: dec("0.04")},
	{lower: dec("2.5"), upper: dec("3.0"), start: dec("0.04"), end: dec("0.06")},
	{lower: dec("3.0"), upper: dec("4.0"), start: dec("0.06"), end: dec("0.085")},
}

// MaxIncomeFraction returns the maximum fraction of income expected toward the
// benchmark premium for an income expressed as a multiple of the poverty line.
// Ratios outside every band (below 1.33, or 4.0 and above) yield zero.
func MaxIncomeFraction(ratio decimal.Decimal) decimal.Decimal {
	for _, band := range incomeBands {
		if ratio.LessThan(band.lower) || ratio.GreaterThanOrEqual(band.upper) {
			continue
		}
		progress := ratio.Sub(band.lower).Div(band.upper.Sub(band.lower))
		return band.start.Add(band.end.Sub(band.start).Mul(progress))
	}
	return decimal.Zero
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
