package ratechange

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/rgehrsitz/ratesim/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestStore_UpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)
	edits := domain.RateEdits{
		"Acme Health": {domain.MetalSilver: 10, domain.MetalGold: "2.5"},
	}

	_, err := store.Upsert(ctx, edits, []string{"CA"}, []string{"1"})
	require.NoError(t, err)
	_, err = store.Upsert(ctx, edits, []string{"CA"}, []string{"1"})
	require.NoError(t, err)

	changes, err := store.Changes(ctx, []string{"CA"}, []string{"1"})
	require.NoError(t, err)
	require.Len(t, changes, 2, "a key must never be stored twice")
	assert.Equal(t, domain.MetalSilver, changes[0].MetalLevel)
	assert.True(t, changes[0].Percentage.Equal(d("10")))
	assert.Equal(t, domain.MetalGold, changes[1].MetalLevel)
	assert.True(t, changes[1].Percentage.Equal(d("2.5")))
}

func TestStore_UpsertLastWriteWins(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)

	_, err := store.Upsert(ctx, domain.RateEdits{"Acme Health": {domain.MetalSilver: 10}}, []string{"CA"}, []string{"1"})
	require.NoError(t, err)
	_, err = store.Upsert(ctx, domain.RateEdits{"Acme Health": {domain.MetalSilver: -4}}, []string{"CA"}, []string{"1"})
	require.NoError(t, err)

	changes, err := store.Changes(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.True(t, changes[0].Percentage.Equal(d("-4")))
}

func TestStore_UpsertUsesFirstSelection(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)

	changes, err := store.Upsert(ctx, domain.RateEdits{"Acme Health": {domain.MetalBronze: 1}},
		[]string{"NV", "CA"}, []string{"3", "1"})
	require.NoError(t, err)

	require.Len(t, changes, 1)
	assert.Equal(t, "NV", changes[0].StateCode)
	assert.Equal(t, "3", changes[0].RatingAreaID)

	others, err := store.Changes(ctx, []string{"CA"}, nil)
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestStore_UpsertRejectsInvalidEdits(t *testing.T) {
	tests := []struct {
		name    string
		edits   domain.RateEdits
		wantErr func(t *testing.T, err error)
	}{
		{
			name:  "non numeric value",
			edits: domain.RateEdits{"Acme Health": {domain.MetalSilver: 5, domain.MetalGold: "lots"}},
			wantErr: func(t *testing.T, err error) {
				var pctErr *domain.InvalidPercentageError
				require.True(t, errors.As(err, &pctErr), "got %v", err)
				assert.Equal(t, "Acme Health", pctErr.Issuer)
				assert.Equal(t, domain.MetalGold, pctErr.MetalLevel)
				assert.Equal(t, "lots", pctErr.Value)
			},
		},
		{
			name:  "nil value",
			edits: domain.RateEdits{"Acme Health": {domain.MetalSilver: nil}},
			wantErr: func(t *testing.T, err error) {
				var pctErr *domain.InvalidPercentageError
				assert.True(t, errors.As(err, &pctErr), "got %v", err)
			},
		},
		{
			name:  "unknown metal level",
			edits: domain.RateEdits{"Acme Health": {domain.MetalSilver: 5}, "Beta Care": {"Titanium": 3}},
			wantErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, domain.ErrUnknownMetalLevel)
			},
		},
		{
			name:  "catastrophic is not editable",
			edits: domain.RateEdits{"Acme Health": {domain.MetalCatastrophic: 3}},
			wantErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, domain.ErrUnknownMetalLevel)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := NewStore(nil)

			_, err := store.Upsert(ctx, tt.edits, []string{"CA"}, []string{"1"})
			require.Error(t, err)
			tt.wantErr(t, err)

			changes, err := store.Changes(ctx, nil, nil)
			require.NoError(t, err)
			assert.Empty(t, changes, "a rejected submission must not write any cell")
		})
	}
}

func TestStore_UpsertRequiresSelection(t *testing.T) {
	store := NewStore(nil)
	_, err := store.Upsert(context.Background(), domain.RateEdits{}, nil, []string{"1"})
	assert.ErrorIs(t, err, domain.ErrNoSelection)
}

func TestStore_MaterializeDefaultMatrix(t *testing.T) {
	store := NewStore(nil)

	matrix, err := store.MaterializeMatrix(context.Background(), []string{"CA"}, []string{"1"},
		[]string{"Zeta Health", "Acme Health", "Zeta Health"})
	require.NoError(t, err)

	assert.Equal(t, "CA", matrix.StateCode)
	assert.Equal(t, "1", matrix.RatingAreaID)
	assert.Equal(t, domain.EditableMetalLevels, matrix.MetalLevels)
	assert.Equal(t, []string{"Acme Health", "Zeta Health"}, matrix.Issuers())
	for _, row := range matrix.Rows {
		require.Len(t, row.Percentages, 5)
		for level, pct := range row.Percentages {
			assert.True(t, pct.IsZero(), "%s/%s should default to zero", row.Issuer, level)
		}
	}
}

func TestStore_MaterializeStoredMatrix(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)

	_, err := store.Upsert(ctx, domain.RateEdits{
		"Beta Care":   {domain.MetalGold: 3},
		"Acme Health": {domain.MetalSilver: "7.5"},
	}, []string{"CA"}, []string{"1"})
	require.NoError(t, err)

	matrix, err := store.MaterializeMatrix(ctx, []string{"CA"}, []string{"1"}, []string{"Acme Health", "Beta Care", "Gamma"})
	require.NoError(t, err)

	// Only issuers with stored rows appear once any row exists.
	assert.Equal(t, []string{"Acme Health", "Beta Care"}, matrix.Issuers())
	assert.True(t, matrix.Rows[0].Percentages[domain.MetalSilver].Equal(d("7.5")))
	assert.True(t, matrix.Rows[0].Percentages[domain.MetalGold].IsZero())
	assert.True(t, matrix.Rows[1].Percentages[domain.MetalGold].Equal(d("3")))
}

func TestStore_MatrixRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)
	states, areas := []string{"CA"}, []string{"1"}

	matrix, err := store.MaterializeMatrix(ctx, states, areas, []string{"Acme Health"})
	require.NoError(t, err)

	edits := matrix.Edits()
	edits["Acme Health"][domain.MetalPlatinum] = 12
	_, err = store.Upsert(ctx, edits, states, areas)
	require.NoError(t, err)

	again, err := store.MaterializeMatrix(ctx, states, areas, []string{"Acme Health"})
	require.NoError(t, err)
	require.Len(t, again.Rows, 1)
	assert.True(t, again.Rows[0].Percentages[domain.MetalPlatinum].Equal(d("12")))

	changes, err := store.Changes(ctx, states, areas)
	require.NoError(t, err)
	assert.Len(t, changes, 5, "the full submitted row is stored")
}

func TestStore_Seed(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)
	seed := []domain.RateChange{
		{RateChangeKey: domain.RateChangeKey{StateCode: "CA", RatingAreaID: "1", MetalLevel: domain.MetalGold, Issuer: "Acme Health"}, Percentage: d("3")},
		{RateChangeKey: domain.RateChangeKey{StateCode: "NV", RatingAreaID: "2", MetalLevel: domain.MetalGold, Issuer: "Acme Health"}, Percentage: d("4")},
	}

	require.NoError(t, store.Seed(ctx, seed))
	require.NoError(t, store.Seed(ctx, nil))

	changes, err := store.Changes(ctx, []string{"NV"}, nil)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.True(t, changes[0].Percentage.Equal(d("4")))
}

func TestStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)
	states, areas := []string{"CA"}, []string{"1"}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, err := store.Upsert(ctx, domain.RateEdits{"Acme Health": {domain.MetalSilver: i}}, states, areas)
			assert.NoError(t, err)
		}(i)
		go func() {
			defer wg.Done()
			_, err := store.MaterializeMatrix(ctx, states, areas, []string{"Acme Health"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	changes, err := store.Changes(ctx, states, areas)
	require.NoError(t, err)
	assert.Len(t, changes, 1)
}

func TestParsePercentage(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected string
		wantErr  bool
	}{
		{"int", 10, "10", false},
		{"float", 2.5, "2.5", false},
		{"negative string", "-3.25", "-3.25", false},
		{"padded string", " 4 ", "4", false},
		{"decimal", d("1.1"), "1.1", false},
		{"json number", json.Number("6.5"), "6.5", false},
		{"empty string", "", "", true},
		{"word", "ten", "", true},
		{"bool", true, "", true},
		{"nil", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePercentage(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(d(tt.expected)), "got %s", got)
		})
	}
}
