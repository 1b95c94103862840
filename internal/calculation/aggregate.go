package calculation

import (
	"sort"

	"github.com/rgehrsitz/ratesim/internal/domain"
	"github.com/shopspring/decimal"
)

// SecondLowest returns the second-lowest value, or the only value when there is one.
func SecondLowest(values []decimal.Decimal) (decimal.Decimal, error) {
	if len(values) == 0 {
		return decimal.Zero, &domain.EmptyInputError{Op: "second lowest"}
	}

	sorted := make([]decimal.Decimal, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	if len(sorted) == 1 {
		return sorted[0], nil
	}
	return sorted[1], nil
}
