package ratechange

import (
	"context"

	"github.com/rgehrsitz/ratesim/internal/domain"
	"github.com/shopspring/decimal"
)

// MemoryBackend keeps rate changes for the lifetime of the process. It is not safe
// for concurrent use on its own; Store serializes access to it.
type MemoryBackend struct {
	rows map[domain.RateChangeKey]decimal.Decimal
}

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{rows: make(map[domain.RateChangeKey]decimal.Decimal)}
}

func (m *MemoryBackend) Merge(ctx context.Context, changes []domain.RateChange) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, c := range changes {
		m.rows[c.RateChangeKey] = c.Percentage
	}
	return nil
}

func (m *MemoryBackend) Find(ctx context.Context, states, areas []string) ([]domain.RateChange, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var found []domain.RateChange
	for key, pct := range m.rows {
		if Matches(key, states, areas) {
			found = append(found, domain.RateChange{RateChangeKey: key, Percentage: pct})
		}
	}
	domain.SortRateChanges(found)
	return found, nil
}

func (m *MemoryBackend) Close() error {
	return nil
}
