package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rgehrsitz/ratesim/internal/config"
	"github.com/rgehrsitz/ratesim/internal/domain"
	"github.com/rgehrsitz/ratesim/internal/ingest"
	"github.com/rgehrsitz/ratesim/internal/query"
	"github.com/rgehrsitz/ratesim/internal/ratechange"
	"github.com/rgehrsitz/ratesim/internal/storage"
)

// app is everything a command needs: the loaded scenario and a query service over
// the plan table and the configured rate-change store
type app struct {
	config *domain.Configuration
	svc    *query.Service
	store  *ratechange.Store
}

func loadApp(cmd *cobra.Command) (*app, error) {
	ctx := cmd.Context()

	cfg, err := config.Load(cfgFile, viper.GetViper())
	if err != nil {
		return nil, err
	}

	var progress io.Writer
	if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
		progress = cmd.ErrOrStderr()
	}
	loaded, err := ingest.LoadFiles(cfg.Data.RatePUF, cfg.Data.PlanAttributesPUF, progress)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan data: %w", err)
	}
	for _, w := range loaded.Warnings {
		logger.Warnf("%s", w)
	}
	logger.Infof("loaded %d plans from %d rates and %d attribute records", len(loaded.Plans), loaded.Rates, loaded.Records)

	backend, err := storage.Open(ctx, cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}
	store := ratechange.NewStore(backend)
	store.SetLogger(logger)

	if err := seedStore(ctx, store, cfg.RateChanges); err != nil {
		_ = store.Close()
		return nil, err
	}

	svc := query.NewService(loaded.Plans, store)
	svc.SetLogger(logger)
	svc.Engine().Debug = viper.GetString("logging.level") == "debug"

	return &app{config: cfg, svc: svc, store: store}, nil
}

// seedStore preloads the scenario's rate changes into an empty store. A store that
// already holds changes keeps them, so saved edits survive restarts.
func seedStore(ctx context.Context, store *ratechange.Store, changes []domain.RateChange) error {
	if len(changes) == 0 {
		return nil
	}
	existing, err := store.Changes(ctx, nil, nil)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Infof("store already holds %d rate changes, not seeding %d from the scenario", len(existing), len(changes))
		return nil
	}
	if err := store.Seed(ctx, changes); err != nil {
		return fmt.Errorf("failed to seed rate changes: %w", err)
	}
	logger.Infof("seeded %d rate changes from the scenario", len(changes))
	return nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		logger.Warnf("failed to close store: %v", err)
	}
}
