// Package ratechange keeps the proposed insurer rate changes for a session and
// presents them as an editable insurer by metal level matrix.
package ratechange

import (
	"context"

	"github.com/rgehrsitz/ratesim/internal/domain"
)

// Backend persists rate changes. Implementations hold at most one row per
// RateChangeKey.
type Backend interface {
	// Merge inserts the changes, replacing the percentage of any key already present.
	Merge(ctx context.Context, changes []domain.RateChange) error

	// Find returns the changes in the given states and rating areas. An empty slice
	// leaves that dimension unrestricted.
	Find(ctx context.Context, states, areas []string) ([]domain.RateChange, error)

	Close() error
}

// Matches reports whether the key falls inside a state/rating-area selection.
// Backends share it so that every one of them filters the same way.
func Matches(key domain.RateChangeKey, states, areas []string) bool {
	return contains(states, key.StateCode) && contains(areas, key.RatingAreaID)
}

func contains(values []string, v string) bool {
	if len(values) == 0 {
		return true
	}
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
