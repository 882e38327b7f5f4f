package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vbonduro/bbqreviews/internal/config"
	"github.com/vbonduro/bbqreviews/internal/db"
	"github.com/vbonduro/bbqreviews/internal/logging"
	"github.com/vbonduro/bbqreviews/internal/service"
	"github.com/vbonduro/bbqreviews/internal/store"
)

// app holds the dependencies shared by every subcommand.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	database *sql.DB
	reviews  *service.ReviewStore
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "bbqreviews",
		Short:        "Record and browse barbecue restaurant reviews",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
	root.AddCommand(
		newServeCmd(),
		newAddCmd(),
		newListCmd(),
		newExportCmd(),
		newBackupCmd(),
	)
	return root
}

// openApp loads configuration, opens the database and loads the review list.
// The returned cleanup closes everything openApp opened.
func openApp(ctx context.Context) (*app, func(), error) {
	cfg := config.Load()

	logger, cleanupLog, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	for _, w := range cfg.Warnings {
		logger.Warn("config", "warning", w)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		cleanupLog()
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	reviews := service.NewReviewStore(store.NewKVStore(database), logger, service.WithStorageKey(cfg.StorageKey))
	reviews.Init(ctx)

	cleanup := func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
		cleanupLog()
	}
	return &app{cfg: cfg, logger: logger, database: database, reviews: reviews}, cleanup, nil
}
