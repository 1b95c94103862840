package domain

import (
	"github.com/shopspring/decimal"
)

// RateFilter is a selection over the plan table. States and rating areas scope the
// computation; the remaining filters are applied to the computed rows.
type RateFilter struct {
	Ages          []string          `json:"ages,omitempty" yaml:"ages,omitempty"`
	States        []string          `json:"states,omitempty" yaml:"states,omitempty"`
	RatingAreas   []string          `json:"ratingAreas,omitempty" yaml:"rating_areas,omitempty"`
	MetalLevels   []MetalLevel      `json:"metalLevels,omitempty" yaml:"metal_levels,omitempty"`
	CSRVariations []string          `json:"csrVariations,omitempty" yaml:"csr_variations,omitempty"`
	Incomes       []decimal.Decimal `json:"incomes,omitempty" yaml:"incomes,omitempty"`
}

// DisplayRow is the projected result row handed to front ends
type DisplayRow struct {
	StateCode                  string          `json:"StateCode" yaml:"StateCode"`
	RatingAreaID               string          `json:"RatingAreaId" yaml:"RatingAreaId"`
	Issuer                     string          `json:"IssuerMarketPlaceMarketingName" yaml:"IssuerMarketPlaceMarketingName"`
	PlanMarketingName          string          `json:"PlanMarketingName" yaml:"PlanMarketingName"`
	PlanType                   string          `json:"PlanType" yaml:"PlanType"`
	MetalLevel                 MetalLevel      `json:"MetalLevel" yaml:"MetalLevel"`
	CSRVariationType           string          `json:"CSRVariationType" yaml:"CSRVariationType"`
	Age                        string          `json:"Age" yaml:"Age"`
	Income                     decimal.Decimal `json:"Income" yaml:"Income"`
	NetMonthlyRate             decimal.Decimal `json:"NetMonthlyRate" yaml:"NetMonthlyRate"`
	NetMonthlyRateNew          decimal.Decimal `json:"NetMonthlyRate_New" yaml:"NetMonthlyRate_New"`
	IndividualRate             decimal.Decimal `json:"IndividualRate" yaml:"IndividualRate"`
	IndividualRateBenchmark    decimal.Decimal `json:"IndividualRate_Benchmark" yaml:"IndividualRate_Benchmark"`
	IndividualRateNew          decimal.Decimal `json:"IndividualRate_New" yaml:"IndividualRate_New"`
	IndividualRateNewBenchmark decimal.Decimal `json:"IndividualRate_New_Benchmark" yaml:"IndividualRate_New_Benchmark"`
	MaxMonthlyRate             decimal.Decimal `json:"MaxMonthlyRate" yaml:"MaxMonthlyRate"`
	Subsidy                    decimal.Decimal `json:"Subsidy" yaml:"Subsidy"`
	SubsidyNew                 decimal.Decimal `json:"Subsidy_New" yaml:"Subsidy_New"`
}

// DisplayColumns are the column headers of a DisplayRow, in order
var DisplayColumns = []string{
	"StateCode",
	"RatingAreaId",
	"IssuerMarketPlaceMarketingName",
	"PlanMarketingName",
	"PlanType",
	"MetalLevel",
	"CSRVariationType",
	"Age",
	"Income",
	"NetMonthlyRate",
	"NetMonthlyRate_New",
	"IndividualRate",
	"IndividualRate_Benchmark",
	"IndividualRate_New",
	"IndividualRate_New_Benchmark",
	"MaxMonthlyRate",
	"Subsidy",
	"Subsidy_New",
}

// Values renders the row as strings in DisplayColumns order
func (r DisplayRow) Values() []string {
	return []string{
		r.StateCode,
		r.RatingAreaID,
		r.Issuer,
		r.PlanMarketingName,
		r.PlanType,
		string(r.MetalLevel),
		r.CSRVariationType,
		r.Age,
		r.Income.StringFixed(1),
		r.NetMonthlyRate.StringFixed(2),
		r.NetMonthlyRateNew.StringFixed(2),
		r.IndividualRate.StringFixed(2),
		r.IndividualRateBenchmark.StringFixed(2),
		r.IndividualRateNew.StringFixed(2),
		r.IndividualRateNewBenchmark.StringFixed(2),
		r.MaxMonthlyRate.StringFixed(2),
		r.Subsidy.StringFixed(2),
		r.SubsidyNew.StringFixed(2),
	}
}

// RateTable is the result of a rate query
type RateTable struct {
	Filter RateFilter   `json:"filter" yaml:"filter"`
	Rows   []DisplayRow `json:"rows" yaml:"rows"`

	// PlansMatched counts plans inside the state/rating-area selection.
	PlansMatched int `json:"plansMatched" yaml:"plans_matched"`
	// PlansWithoutBenchmark counts plans dropped because their age/area group has no
	// qualifying silver plan.
	PlansWithoutBenchmark int `json:"plansWithoutBenchmark" yaml:"plans_without_benchmark"`
}

// FilterOptions lists the values a front end can offer for each filter
type FilterOptions struct {
	Ages          []string          `json:"ages" yaml:"ages"`
	States        []string          `json:"states" yaml:"states"`
	RatingAreas   []string          `json:"ratingAreas" yaml:"rating_areas"`
	MetalLevels   []MetalLevel      `json:"metalLevels" yaml:"metal_levels"`
	CSRVariations []string          `json:"csrVariations" yaml:"csr_variations"`
	Incomes       []decimal.Decimal `json:"incomes" yaml:"incomes"`
}
