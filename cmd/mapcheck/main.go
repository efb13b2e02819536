package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alexanderramin/mapcheck/internal/catalog"
	"github.com/alexanderramin/mapcheck/internal/cli"
	"github.com/alexanderramin/mapcheck/internal/config"
	"github.com/alexanderramin/mapcheck/internal/db"
	"github.com/alexanderramin/mapcheck/internal/persistence"
	"github.com/alexanderramin/mapcheck/internal/repository"
	"github.com/alexanderramin/mapcheck/internal/service"
	"github.com/alexanderramin/mapcheck/internal/store"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := cfg.NewLogger(os.Stderr)
	if cfg.File != "" {
		logger.Debug("config loaded", "file", cfg.File)
	}

	c, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	// Open database
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	kvRepo := repository.NewSQLiteKVRepo(database)
	snapshotRepo := repository.NewSQLiteSnapshotLogRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	// Restore saved progress. Unreadable progress starts empty.
	adapter := persistence.NewAdapter(kvRepo)
	checked, err := adapter.Load(ctx)
	if err != nil {
		logger.Warn("saved progress unreadable, starting empty", "err", err)
	}

	st := store.New(c, checked, store.WithProjectType(cfg.ProjectType))
	st.Subscribe(adapter.Mirror(ctx, logger))

	opts := []service.Option{
		service.WithLogger(logger),
		service.WithExportDir(cfg.ExportDir),
		service.WithStorageKey(adapter.Key()),
	}
	if cfg.LogCalls {
		opts = append(opts, service.WithObserver(service.NewLogUseCaseObserver(logger)))
	}

	app := &cli.App{
		Checklist: service.NewChecklistService(c, st, snapshotRepo, uow, opts...),
	}

	// Bare invocation opens the TUI only on a terminal.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	// Execute root command
	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
