package compare

import (
	"fmt"
	"sort"

	"github.com/rgehrsitz/ratesim/internal/domain"
	"github.com/shopspring/decimal"
)

// ImpactResult summarizes how the rate changes move one insurer's tier
type ImpactResult struct {
	Issuer     string            `json:"issuer"`
	MetalLevel domain.MetalLevel `json:"metalLevel"`
	Plans      int               `json:"plans"`
	Rows       int               `json:"rows"`

	// Key Metrics (monthly averages over the selected rows)
	AvgPremiumBefore decimal.Decimal `json:"avgPremiumBefore"`
	AvgPremiumAfter  decimal.Decimal `json:"avgPremiumAfter"`
	AvgNetBefore     decimal.Decimal `json:"avgNetBefore"`
	AvgNetAfter      decimal.Decimal `json:"avgNetAfter"`

	// Comparison to current rates
	NetDiff          decimal.Decimal `json:"netDiff"`
	NetPctChange     decimal.Decimal `json:"netPctChange"`
	PremiumDiff      decimal.Decimal `json:"premiumDiff"`
	PremiumPctChange decimal.Decimal `json:"premiumPctChange"`
}

// Label names the insurer tier for display
func (r ImpactResult) Label() string {
	return fmt.Sprintf("%s / %s", r.Issuer, r.MetalLevel)
}

// ImpactSet is the impact of the rate changes on a selection
type ImpactSet struct {
	States          []string          `json:"states"`
	RatingAreas     []string          `json:"ratingAreas"`
	Incomes         []decimal.Decimal `json:"incomes,omitempty"`
	Preview         bool              `json:"preview"`
	Results         []ImpactResult    `json:"results"`
	Overall         ImpactResult      `json:"overall"`
	Recommendations []string          `json:"recommendations"`
	ConfigPath      string            `json:"configPath,omitempty"`
}

// MetricsCalculator extracts before/after metrics from subsidy rows
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

type accumulator struct {
	plans                            map[string]bool
	rows                             int
	premium, premiumNew, net, netNew decimal.Decimal
}

func (a *accumulator) add(row domain.SubsidyRow) {
	a.plans[row.PlanID] = true
	a.rows++
	a.premium = a.premium.Add(row.IndividualRate)
	a.premiumNew = a.premiumNew.Add(row.IndividualRateNew)
	a.net = a.net.Add(row.NetMonthlyRate)
	a.netNew = a.netNew.Add(row.NetMonthlyRateNew)
}

func (a *accumulator) result(issuer string, level domain.MetalLevel) ImpactResult {
	r := ImpactResult{Issuer: issuer, MetalLevel: level, Plans: len(a.plans), Rows: a.rows}
	if a.rows == 0 {
		return r
	}
	n := decimal.NewFromInt(int64(a.rows))
	r.AvgPremiumBefore = a.premium.Div(n).Round(2)
	r.AvgPremiumAfter = a.premiumNew.Div(n).Round(2)
	r.AvgNetBefore = a.net.Div(n).Round(2)
	r.AvgNetAfter = a.netNew.Div(n).Round(2)
	return r
}

// CalculateMetrics groups rows by insurer and metal level. Results are ordered by
// insurer, then by metal level. The second value covers every row.
func (mc *MetricsCalculator) CalculateMetrics(rows []domain.SubsidyRow) ([]ImpactResult, ImpactResult) {
	type key struct {
		issuer string
		level  domain.MetalLevel
	}
	groups := make(map[key]*accumulator)
	overall := &accumulator{plans: make(map[string]bool)}

	for _, row := range rows {
		k := key{row.Issuer, row.MetalLevel}
		acc, ok := groups[k]
		if !ok {
			acc = &accumulator{plans: make(map[string]bool)}
			groups[k] = acc
		}
		acc.add(row)
		overall.add(row)
	}

	results := make([]ImpactResult, 0, len(groups))
	for k, acc := range groups {
		results = append(results, mc.CalculateComparison(acc.result(k.issuer, k.level)))
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Issuer != results[j].Issuer {
			return results[i].Issuer < results[j].Issuer
		}
		return metalRank(results[i].MetalLevel) < metalRank(results[j].MetalLevel)
	})

	return results, mc.CalculateComparison(overall.result("All insurers", "All"))
}

// CalculateComparison computes the differences between the after and before averages
func (mc *MetricsCalculator) CalculateComparison(result ImpactResult) ImpactResult {
	result.NetDiff = result.AvgNetAfter.Sub(result.AvgNetBefore)
	result.PremiumDiff = result.AvgPremiumAfter.Sub(result.AvgPremiumBefore)

	if !result.AvgNetBefore.IsZero() {
		result.NetPctChange = result.NetDiff.Div(result.AvgNetBefore).Mul(decimal.NewFromInt(100)).Round(2)
	}
	if !result.AvgPremiumBefore.IsZero() {
		result.PremiumPctChange = result.PremiumDiff.Div(result.AvgPremiumBefore).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return result
}

// GenerateRecommendations points out the tiers most affected by the rate changes
func GenerateRecommendations(set *ImpactSet) []string {
	recommendations := []string{}

	if len(set.Results) == 0 {
		return recommendations
	}

	var largestIncrease, largestDecrease *ImpactResult
	unchanged := 0
	for i := range set.Results {
		r := &set.Results[i]
		switch {
		case r.NetDiff.IsPositive():
			if largestIncrease == nil || r.NetDiff.GreaterThan(largestIncrease.NetDiff) {
				largestIncrease = r
			}
		case r.NetDiff.IsNegative():
			if largestDecrease == nil || r.NetDiff.LessThan(largestDecrease.NetDiff) {
				largestDecrease = r
			}
		default:
			unchanged++
		}
	}

	if largestIncrease == nil && largestDecrease == nil {
		return append(recommendations, "No rate change moves the net premium of any plan in this selection")
	}
	if largestIncrease != nil {
		recommendations = append(recommendations,
			"Largest Increase: "+largestIncrease.Label()+" net premiums rise $"+largestIncrease.NetDiff.StringFixed(2)+
				" per month on average ("+largestIncrease.NetPctChange.StringFixed(1)+"%)")
	}
	if largestDecrease != nil {
		recommendations = append(recommendations,
			"Largest Decrease: "+largestDecrease.Label()+" net premiums fall $"+largestDecrease.NetDiff.Abs().StringFixed(2)+
				" per month on average ("+largestDecrease.NetPctChange.StringFixed(1)+"%)")
	}
	if unchanged > 0 {
		recommendations = append(recommendations, fmt.Sprintf("Unchanged: %d of %d insurer tiers keep their average net premium", unchanged, len(set.Results)))
	}

	if set.Overall.PremiumDiff.IsPositive() && set.Overall.NetDiff.LessThan(set.Overall.PremiumDiff) {
		recommendations = append(recommendations,
			"Subsidy Offset: larger subsidies absorb $"+set.Overall.PremiumDiff.Sub(set.Overall.NetDiff).StringFixed(2)+
				" of the average $"+set.Overall.PremiumDiff.StringFixed(2)+" premium increase")
	}

	return recommendations
}

func metalRank(level domain.MetalLevel) int {
	for i, l := range domain.LoadableMetalLevels {
		if l == level {
			return i
		}
	}
	return len(domain.LoadableMetalLevels)
}
