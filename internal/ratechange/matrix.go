package ratechange

import (
	"sort"

	"github.com/rgehrsitz/ratesim/internal/domain"
	"github.com/shopspring/decimal"
)

// Pivot turns rate-change rows into matrix rows. Issuers are sorted, columns follow
// domain.EditableMetalLevels and absent cells are zero. Rows for non-editable tiers
// are left out. When the rows span several states or areas, later rows overwrite
// earlier ones for the same issuer and metal level.
func Pivot(changes []domain.RateChange) *domain.RateMatrix {
	byIssuer := make(map[string]map[domain.MetalLevel]decimal.Decimal)
	for _, c := range changes {
		if !c.MetalLevel.IsEditable() {
			continue
		}
		cells, ok := byIssuer[c.Issuer]
		if !ok {
			cells = zeroRow()
			byIssuer[c.Issuer] = cells
		}
		cells[c.MetalLevel] = c.Percentage
	}

	issuers := make([]string, 0, len(byIssuer))
	for issuer := range byIssuer {
		issuers = append(issuers, issuer)
	}
	sort.Strings(issuers)

	matrix := newMatrix()
	for _, issuer := range issuers {
		matrix.Rows = append(matrix.Rows, domain.MatrixRow{Issuer: issuer, Percentages: byIssuer[issuer]})
	}
	return matrix
}

// DefaultMatrix is the all-zero matrix offered for a selection with no stored changes
func DefaultMatrix(knownInsurers []string) *domain.RateMatrix {
	seen := make(map[string]bool, len(knownInsurers))
	issuers := make([]string, 0, len(knownInsurers))
	for _, issuer := range knownInsurers {
		if !seen[issuer] {
			seen[issuer] = true
			issuers = append(issuers, issuer)
		}
	}
	sort.Strings(issuers)

	matrix := newMatrix()
	for _, issuer := range issuers {
		matrix.Rows = append(matrix.Rows, domain.MatrixRow{Issuer: issuer, Percentages: zeroRow()})
	}
	return matrix
}

func newMatrix() *domain.RateMatrix {
	levels := make([]domain.MetalLevel, len(domain.EditableMetalLevels))
	copy(levels, domain.EditableMetalLevels)
	return &domain.RateMatrix{MetalLevels: levels, Rows: []domain.MatrixRow{}}
}

func zeroRow() map[domain.MetalLevel]decimal.Decimal {
	cells := make(map[domain.MetalLevel]decimal.Decimal, len(domain.EditableMetalLevels))
	for _, level := range domain.EditableMetalLevels {
		cells[level] = decimal.Zero
	}
	return cells
}
