package storage

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/ratesim/internal/domain"
	"github.com/rgehrsitz/ratesim/internal/logging"
	"github.com/rgehrsitz/ratesim/internal/ratechange"
)

// Open creates the backend selected by the store configuration. An empty driver
// selects the in-memory backend.
func Open(ctx context.Context, cfg domain.StoreConfig, logger logging.Logger) (ratechange.Backend, error) {
	switch cfg.Driver {
	case "", domain.StoreMemory:
		return ratechange.NewMemoryBackend(), nil
	case domain.StoreSQLite:
		return NewSQLiteBackend(ctx, cfg.DSN, logger)
	case domain.StorePostgres:
		return NewPostgresBackend(ctx, cfg.DSN, logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
