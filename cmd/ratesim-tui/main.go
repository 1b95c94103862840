package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/ratesim/internal/config"
	"github.com/rgehrsitz/ratesim/internal/ingest"
	"github.com/rgehrsitz/ratesim/internal/logging"
	"github.com/rgehrsitz/ratesim/internal/query"
	"github.com/rgehrsitz/ratesim/internal/ratechange"
	"github.com/rgehrsitz/ratesim/internal/storage"
	"github.com/rgehrsitz/ratesim/internal/tui"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: ratesim-tui <scenario-file>")
		os.Exit(1)
	}
	configPath := os.Args[1]

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Printf("Error: scenario file not found: %s\n", configPath)
		os.Exit(1)
	}

	// The alternate screen owns the terminal, so logs only go to a file when asked for
	var logger logging.Logger = logging.NopLogger{}
	if path := os.Getenv("RATESIM_TUI_LOG"); path != "" {
		f, err := tea.LogToFile(path, "ratesim-tui")
		if err != nil {
			fmt.Printf("Error: failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if l, err := logging.Setup(f, "debug", "json"); err == nil {
			logger = l
		}
	}

	svc, closeStore, err := load(context.Background(), configPath, logger)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer closeStore()

	p := tea.NewProgram(
		tui.NewModel(svc),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// load builds the query service for a scenario: the plan table from its data files
// and its rate-change store, seeded when empty
func load(ctx context.Context, configPath string, logger logging.Logger) (*query.Service, func(), error) {
	cfg, err := config.Load(configPath, nil)
	if err != nil {
		return nil, nil, err
	}

	loaded, err := ingest.LoadFiles(cfg.Data.RatePUF, cfg.Data.PlanAttributesPUF, os.Stderr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load plan data: %w", err)
	}
	for _, w := range loaded.Warnings {
		logger.Warnf("%s", w)
	}

	backend, err := storage.Open(ctx, cfg.Store, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}
	store := ratechange.NewStore(backend)
	store.SetLogger(logger)
	closeStore := func() {
		if err := store.Close(); err != nil {
			logger.Warnf("failed to close store: %v", err)
		}
	}

	if len(cfg.RateChanges) > 0 {
		existing, err := store.Changes(ctx, nil, nil)
		if err == nil && len(existing) == 0 {
			err = store.Seed(ctx, cfg.RateChanges)
		}
		if err != nil {
			closeStore()
			return nil, nil, fmt.Errorf("failed to seed rate changes: %w", err)
		}
	}

	svc := query.NewService(loaded.Plans, store)
	svc.SetLogger(logger)
	return svc, closeStore, nil
}
