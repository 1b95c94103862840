package domain

import (
	"github.com/shopspring/decimal"
)

// MetalLevel is the coverage tier of a marketplace plan
type MetalLevel string

const (
	MetalBronze         MetalLevel = "Bronze"
	MetalExpandedBronze MetalLevel = "Expanded Bronze"
	MetalSilver         MetalLevel = "Silver"
	MetalGold           MetalLevel = "Gold"
	MetalPlatinum       MetalLevel = "Platinum"
	MetalCatastrophic   MetalLevel = "Catastrophic"
)

// StandardSilverOnExchange is the only CSR variation that takes part in benchmark selection
const StandardSilverOnExchange = "Standard Silver On Exchange Plan"

// EditableMetalLevels are the tiers a rate change can target, in display order
var EditableMetalLevels = []MetalLevel{
	MetalBronze,
	MetalExpandedBronze,
	MetalSilver,
	MetalGold,
	MetalPlatinum,
}

// LoadableMetalLevels are the tiers kept when the plan table is built
var LoadableMetalLevels = []MetalLevel{
	MetalBronze,
	MetalExpandedBronze,
	MetalSilver,
	MetalGold,
	MetalPlatinum,
	MetalCatastrophic,
}

// IsEditable reports whether a rate change may target this tier
func (m MetalLevel) IsEditable() bool {
	for _, level := range EditableMetalLevels {
		if level == m {
			return true
		}
	}
	return false
}

// IsLoadable reports whether plans of this tier survive the initial load
func (m MetalLevel) IsLoadable() bool {
	for _, level := range LoadableMetalLevels {
		if level == m {
			return true
		}
	}
	return false
}

// Plan is one row of the joined static plan table: a base rate for an age band in a
// rating area, enriched with the plan's attributes. Plans are immutable once loaded.
type Plan struct {
	PlanID                string          `json:"planId" yaml:"plan_id"`
	StandardComponentID   string          `json:"standardComponentId" yaml:"standard_component_id"`
	IssuerID              string          `json:"issuerId" yaml:"issuer_id"`
	Issuer                string          `json:"issuerMarketPlaceMarketingName" yaml:"issuer"`
	StateCode             string          `json:"stateCode" yaml:"state_code"`
	RatingAreaID          string          `json:"ratingAreaId" yaml:"rating_area_id"`
	Age                   string          `json:"age" yaml:"age"`
	Tobacco               string          `json:"tobacco" yaml:"tobacco"`
	MetalLevel            MetalLevel      `json:"metalLevel" yaml:"metal_level"`
	CSRVariationType      string          `json:"csrVariationType" yaml:"csr_variation_type"`
	PlanMarketingName     string          `json:"planMarketingName" yaml:"plan_marketing_name"`
	PlanType              string          `json:"planType" yaml:"plan_type"`
	IndividualRate        decimal.Decimal `json:"individualRate" yaml:"individual_rate"`
	IndividualTobaccoRate decimal.Decimal `json:"individualTobaccoRate" yaml:"individual_tobacco_rate"`
}

// RateChangeKey returns the key a rate change must carry to apply to this plan
func (p Plan) RateChangeKey() RateChangeKey {
	return RateChangeKey{
		StateCode:    p.StateCode,
		RatingAreaID: p.RatingAreaID,
		MetalLevel:   p.MetalLevel,
		Issuer:       p.Issuer,
	}
}

// BenchmarkKey returns the (age, state, rating area) group the plan is benchmarked in
func (p Plan) BenchmarkKey() BenchmarkKey {
	return BenchmarkKey{
		Age:          p.Age,
		StateCode:    p.StateCode,
		RatingAreaID: p.RatingAreaID,
	}
}

// IsBenchmarkCandidate reports whether the plan competes for the benchmark slot
func (p Plan) IsBenchmarkCandidate() bool {
	return p.MetalLevel == MetalSilver && p.CSRVariationType == StandardSilverOnExchange
}

// AdjustedPlan is a plan with the proposed rate change applied
type AdjustedPlan struct {
	Plan
	IndividualRateNew decimal.Decimal `json:"individualRateNew"`
}

// BenchmarkKey identifies a benchmark group
type BenchmarkKey struct {
	Age          string `json:"age"`
	StateCode    string `json:"stateCode"`
	RatingAreaID string `json:"ratingAreaId"`
}

// BenchmarkRow holds the second-lowest silver rates of a benchmark group
type BenchmarkRow struct {
	Key                        BenchmarkKey    `json:"key"`
	IndividualRateBenchmark    decimal.Decimal `json:"individualRateBenchmark"`
	IndividualRateNewBenchmark decimal.Decimal `json:"individualRateNewBenchmark"`
}

// SubsidyBasePlan is an adjusted plan joined with its benchmark group
type SubsidyBasePlan struct {
	AdjustedPlan
	IndividualRateBenchmark    decimal.Decimal `json:"individualRateBenchmark"`
	IndividualRateNewBenchmark decimal.Decimal `json:"individualRateNewBenchmark"`
}

// SubsidyRow is a subsidy base plan evaluated at one income level
type SubsidyRow struct {
	SubsidyBasePlan
	Income            decimal.Decimal `json:"income"`
	MaxMonthlyRate    decimal.Decimal `json:"maxMonthlyRate"`
	Subsidy           decimal.Decimal `json:"subsidy"`
	NetMonthlyRate    decimal.Decimal `json:"netMonthlyRate"`
	SubsidyNew        decimal.Decimal `json:"subsidyNew"`
	NetMonthlyRateNew decimal.Decimal `json:"netMonthlyRateNew"`
}
