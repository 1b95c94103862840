package ratechange

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rgehrsitz/ratesim/internal/domain"
	"github.com/rgehrsitz/ratesim/internal/logging"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Store is the session's rate-change table. Writes are serialized; reads may run
// concurrently with each other.
type Store struct {
	backend Backend
	logger  logging.Logger
	mu      sync.RWMutex
}

// NewStore wraps a backend. A nil backend gets an in-memory one.
func NewStore(backend Backend) *Store {
	if backend == nil {
		backend = NewMemoryBackend()
	}
	return &Store{backend: backend, logger: logging.NopLogger{}}
}

// SetLogger sets the store logger; nil installs a no-op logger
func (s *Store) SetLogger(l logging.Logger) {
	s.logger = logging.OrNop(l)
}

// Upsert validates an edited matrix and merges it into the store. Only the first
// state and rating area of the selection receive the edits. Nothing is written
// unless every cell is valid. The merged rows are returned in key order.
func (s *Store) Upsert(ctx context.Context, edits domain.RateEdits, states, areas []string) ([]domain.RateChange, error) {
	if len(states) == 0 || len(areas) == 0 {
		return nil, domain.ErrNoSelection
	}
	state, area := states[0], areas[0]
	if len(states) > 1 || len(areas) > 1 {
		s.logger.Warnf("rate change edits apply to %s/%s only; %d states and %d rating areas were selected",
			state, area, len(states), len(areas))
	}

	changes, err := parseEdits(edits, state, area)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Merge(ctx, changes); err != nil {
		return nil, fmt.Errorf("failed to merge rate changes: %w", err)
	}
	s.logger.Infof("stored %d rate changes for %s/%s", len(changes), state, area)
	return changes, nil
}

// Seed merges rate changes that are already in typed form, such as those preloaded
// from a scenario file.
func (s *Store) Seed(ctx context.Context, changes []domain.RateChange) error {
	if len(changes) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Merge(ctx, changes); err != nil {
		return fmt.Errorf("failed to seed rate changes: %w", err)
	}
	s.logger.Debugf("seeded %d rate changes", len(changes))
	return nil
}

// Changes returns the stored rate changes inside the selection
func (s *Store) Changes(ctx context.Context, states, areas []string) ([]domain.RateChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	changes, err := s.backend.Find(ctx, states, areas)
	if err != nil {
		return nil, fmt.Errorf("failed to read rate changes: %w", err)
	}
	return changes, nil
}

// MaterializeMatrix pivots the stored changes of the selection into the editable
// matrix. When the selection has no stored changes, every known insurer gets a row
// of zeros.
func (s *Store) MaterializeMatrix(ctx context.Context, states, areas, knownInsurers []string) (*domain.RateMatrix, error) {
	if len(states) == 0 || len(areas) == 0 {
		return nil, domain.ErrNoSelection
	}
	changes, err := s.Changes(ctx, states, areas)
	if err != nil {
		return nil, err
	}

	var matrix *domain.RateMatrix
	if len(changes) == 0 {
		matrix = DefaultMatrix(knownInsurers)
	} else {
		matrix = Pivot(changes)
	}
	matrix.StateCode = states[0]
	matrix.RatingAreaID = areas[0]
	return matrix, nil
}

// Close releases the backend
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Close()
}

func parseEdits(edits domain.RateEdits, state, area string) ([]domain.RateChange, error) {
	issuers := make([]string, 0, len(edits))
	for issuer := range edits {
		issuers = append(issuers, issuer)
	}
	sort.Strings(issuers)

	var changes []domain.RateChange
	for _, issuer := range issuers {
		cells := edits[issuer]
		levels := make([]domain.MetalLevel, 0, len(cells))
		for level := range cells {
			levels = append(levels, level)
		}
		sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })

		for _, level := range levels {
			if !level.IsEditable() {
				return nil, fmt.Errorf("%s / %q: %w", issuer, level, domain.ErrUnknownMetalLevel)
			}
			pct, err := ParsePercentage(cells[level])
			if err != nil {
				return nil, domain.NewInvalidPercentageError(issuer, level, cells[level], err)
			}
			changes = append(changes, domain.RateChange{
				RateChangeKey: domain.RateChangeKey{
					StateCode:    state,
					RatingAreaID: area,
					MetalLevel:   level,
					Issuer:       issuer,
				},
				Percentage: pct,
			})
		}
	}
	domain.SortRateChanges(changes)
	return changes, nil
}

// ParsePercentage coerces a raw matrix cell (number, numeric string or decimal)
// into a percentage.
func ParsePercentage(v any) (decimal.Decimal, error) {
	if d, ok := v.(decimal.Decimal); ok {
		return d, nil
	}
	if v == nil {
		return decimal.Zero, fmt.Errorf("missing value")
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(strings.TrimSpace(s))
}
