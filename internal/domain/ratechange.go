package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// RateChangeKey identifies the insurer tier a percentage change applies to
type RateChangeKey struct {
	StateCode    string     `json:"stateCode" yaml:"state_code"`
	RatingAreaID string     `json:"ratingAreaId" yaml:"rating_area_id"`
	MetalLevel   MetalLevel `json:"metalLevel" yaml:"metal_level"`
	Issuer       string     `json:"issuer" yaml:"issuer"`
}

// RateChange is a proposed percentage change to base rates (10 means +10%)
type RateChange struct {
	RateChangeKey `yaml:",inline"`
	Percentage    decimal.Decimal `json:"percentage" yaml:"percentage"`
}

// Factor returns the multiplier the change applies to a base rate
func (rc RateChange) Factor() decimal.Decimal {
	return decimal.NewFromInt(1).Add(rc.Percentage.Div(decimal.NewFromInt(100)))
}

// RateEdits is an edited rate-change matrix as submitted by a front end:
// issuer -> metal level -> raw cell value. Values are coerced to numbers on upsert.
type RateEdits map[string]map[MetalLevel]any

// MatrixRow is one insurer's row of the rate-change matrix
type MatrixRow struct {
	Issuer      string                         `json:"issuer" yaml:"issuer"`
	Percentages map[MetalLevel]decimal.Decimal `json:"percentages" yaml:"percentages"`
}

// RateMatrix is the insurer-by-metal-level view of the rate changes for a selection
type RateMatrix struct {
	StateCode    string       `json:"stateCode" yaml:"state_code"`
	RatingAreaID string       `json:"ratingAreaId" yaml:"rating_area_id"`
	MetalLevels  []MetalLevel `json:"metalLevels" yaml:"metal_levels"`
	Rows         []MatrixRow  `json:"rows" yaml:"rows"`
}

// Edits converts the matrix back into the editable submission form
func (m *RateMatrix) Edits() RateEdits {
	edits := make(RateEdits, len(m.Rows))
	for _, row := range m.Rows {
		cells := make(map[MetalLevel]any, len(row.Percentages))
		for level, pct := range row.Percentages {
			cells[level] = pct
		}
		edits[row.Issuer] = cells
	}
	return edits
}

// Issuers returns the matrix row labels in order
func (m *RateMatrix) Issuers() []string {
	issuers := make([]string, 0, len(m.Rows))
	for _, row := range m.Rows {
		issuers = append(issuers, row.Issuer)
	}
	return issuers
}

// SortRateChanges orders rate changes by state, rating area, issuer and metal level
func SortRateChanges(changes []RateChange) {
	sort.SliceStable(changes, func(i, j int) bool {
		a, b := changes[i].RateChangeKey, changes[j].RateChangeKey
		if a.StateCode != b.StateCode {
			return a.StateCode < b.StateCode
		}
		if a.RatingAreaID != b.RatingAreaID {
			return a.RatingAreaID < b.RatingAreaID
		}
		if a.Issuer != b.Issuer {
			return a.Issuer < b.Issuer
		}
		return metalOrder(a.MetalLevel) < metalOrder(b.MetalLevel)
	})
}

func metalOrder(level MetalLevel) int {
	for i, l := range LoadableMetalLevels {
		if l == level {
			return i
		}
	}
	return len(LoadableMetalLevels)
}
