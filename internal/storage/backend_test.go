package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/rgehrsitz/ratesim/internal/domain"
	"github.com/rgehrsitz/ratesim/internal/ratechange"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func change(state, area, issuer string, level domain.MetalLevel, pct string) domain.RateChange {
	return domain.RateChange{
		RateChangeKey: domain.RateChangeKey{StateCode: state, RatingAreaID: area, MetalLevel: level, Issuer: issuer},
		Percentage:    decimal.RequireFromString(pct),
	}
}

// runBackendContract checks the behavior every backend shares.
func runBackendContract(t *testing.T, backend ratechange.Backend) {
	ctx := context.Background()

	t.Run("merge and find", func(t *testing.T) {
		require.NoError(t, backend.Merge(ctx, []domain.RateChange{
			change("CA", "1", "Acme Health", domain.MetalSilver, "10"),
			change("CA", "1", "Acme Health", domain.MetalGold, "2.125"),
			change("NV", "2", "Beta Care", domain.MetalBronze, "-3"),
		}))

		found, err := backend.Find(ctx, []string{"CA"}, []string{"1"})
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, domain.MetalSilver, found[0].MetalLevel)
		assert.True(t, found[1].Percentage.Equal(decimal.RequireFromString("2.125")), "precision must survive storage")
	})

	t.Run("merge replaces existing keys", func(t *testing.T) {
		require.NoError(t, backend.Merge(ctx, []domain.RateChange{
			change("CA", "1", "Acme Health", domain.MetalSilver, "12"),
		}))

		found, err := backend.Find(ctx, []string{"CA"}, []string{"1"})
		require.NoError(t, err)
		require.Len(t, found, 2, "keys must never be duplicated")
		assert.True(t, found[0].Percentage.Equal(decimal.RequireFromString("12")))
	})

	t.Run("duplicate keys in one batch", func(t *testing.T) {
		require.NoError(t, backend.Merge(ctx, []domain.RateChange{
			change("NV", "2", "Beta Care", domain.MetalGold, "1"),
			change("NV", "2", "Beta Care", domain.MetalGold, "4"),
		}))

		found, err := backend.Find(ctx, []string{"NV"}, nil)
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, domain.MetalGold, found[1].MetalLevel)
		assert.True(t, found[1].Percentage.Equal(decimal.RequireFromString("4")))
	})

	t.Run("unrestricted find", func(t *testing.T) {
		found, err := backend.Find(ctx, nil, nil)
		require.NoError(t, err)
		assert.Len(t, found, 4)
		assert.Equal(t, "CA", found[0].StateCode)
	})

	t.Run("empty merge", func(t *testing.T) {
		assert.NoError(t, backend.Merge(ctx, nil))
	})
}

func TestMemoryBackend_Contract(t *testing.T) {
	runBackendContract(t, ratechange.NewMemoryBackend())
}

func TestSQLiteBackend_Contract(t *testing.T) {
	backend, err := NewSQLiteBackend(context.Background(), filepath.Join(t.TempDir(), "rates.db"), nil)
	require.NoError(t, err)
	defer backend.Close()

	runBackendContract(t, backend)
}

func TestSQLiteBackend_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "rates.db")

	backend, err := NewSQLiteBackend(ctx, path, nil)
	require.NoError(t, err)
	require.NoError(t, backend.Merge(ctx, []domain.RateChange{change("CA", "1", "Acme Health", domain.MetalSilver, "5")}))
	require.NoError(t, backend.Close())

	reopened, err := NewSQLiteBackend(ctx, path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	found, err := reopened.Find(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.True(t, found[0].Percentage.Equal(decimal.RequireFromString("5")))
}

func TestSQLiteBackend_MigrateIsRepeatable(t *testing.T) {
	ctx := context.Background()
	backend, err := NewSQLiteBackend(ctx, filepath.Join(t.TempDir(), "rates.db"), nil)
	require.NoError(t, err)
	defer backend.Close()

	assert.NoError(t, backend.Migrate(ctx))
}

func TestSQLiteBackend_RequiresPath(t *testing.T) {
	_, err := NewSQLiteBackend(context.Background(), "", nil)
	assert.Error(t, err)
}

func TestPostgresBackend_Contract(t *testing.T) {
	dsn := os.Getenv("RATESIM_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("RATESIM_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	backend, err := NewPostgresBackend(ctx, dsn, nil)
	require.NoError(t, err)
	require.NoError(t, backend.DropSchema(ctx))
	require.NoError(t, backend.CreateSchema(ctx))
	defer func() {
		_ = backend.DropSchema(ctx)
		_ = backend.Close()
	}()

	runBackendContract(t, backend)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	memory, err := Open(ctx, domain.StoreConfig{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &ratechange.MemoryBackend{}, memory)

	sqlite, err := Open(ctx, domain.StoreConfig{Driver: domain.StoreSQLite, DSN: filepath.Join(t.TempDir(), "r.db")}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteBackend{}, sqlite)
	assert.NoError(t, sqlite.Close())

	_, err = Open(ctx, domain.StoreConfig{Driver: "mongo"}, nil)
	assert.Error(t, err)
}

func TestUpsertQuery(t *testing.T) {
	changes := []domain.RateChange{
		change("CA", "1", "Acme Health", domain.MetalSilver, "10"),
		change("CA", "1", "Acme Health", domain.MetalGold, "1"),
		change("CA", "1", "Acme Health", domain.MetalSilver, "11"),
	}

	query, args, err := upsertQuery(sq.StatementBuilder.PlaceholderFormat(sq.Dollar), changes)
	require.NoError(t, err)

	assert.Contains(t, query, "INSERT INTO rate_changes")
	assert.Contains(t, query, "ON CONFLICT (state_code, rating_area_id, metal_level, issuer) DO UPDATE SET percentage = excluded.percentage")
	assert.Contains(t, query, "$10")
	assert.NotContains(t, query, "$11")
	require.Len(t, args, 10)
	assert.Equal(t, "11", args[4], "last duplicate wins")
}

func TestFindQuery(t *testing.T) {
	b := sq.StatementBuilder.PlaceholderFormat(sq.Question)

	query, args, err := findQuery(b, []string{"CA", "NV"}, nil)
	require.NoError(t, err)
	assert.Contains(t, query, "state_code IN (?,?)")
	assert.NotContains(t, query, "rating_area_id IN")
	assert.Equal(t, []any{"CA", "NV"}, args)

	query, args, err = findQuery(b, nil, nil)
	require.NoError(t, err)
	assert.NotContains(t, query, "WHERE")
	assert.Empty(t, args)
}
