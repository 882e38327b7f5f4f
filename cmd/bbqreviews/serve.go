package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vbonduro/bbqreviews/internal/backup"
	"github.com/vbonduro/bbqreviews/internal/config"
	"github.com/vbonduro/bbqreviews/internal/digest"
	claudedigest "github.com/vbonduro/bbqreviews/internal/digest/claude"
	ollamadigest "github.com/vbonduro/bbqreviews/internal/digest/ollama"
	"github.com/vbonduro/bbqreviews/internal/snapshot/local"
	"github.com/vbonduro/bbqreviews/internal/web"
	"github.com/vbonduro/bbqreviews/internal/web/templates"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the web app until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, cleanup, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	summarizer, err := newSummarizer(a.cfg, a.logger)
	if err != nil {
		return err
	}

	httpServer := web.NewServer(a.reviews, summarizer, templates.FS, a.logger).Handler(a.cfg.ListenAddr)

	g, gctx := errgroup.WithContext(ctx)

	if a.cfg.BackupSchedule != "" {
		scheduler, err := newBackupScheduler(a)
		if err != nil {
			return err
		}
		scheduler.Start()
		g.Go(func() error {
			<-gctx.Done()
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return scheduler.Stop(stopCtx)
		})
	}

	g.Go(func() error {
		a.logger.Info("listening", "addr", a.cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve http: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newBackupScheduler(a *app) (*backup.Scheduler, error) {
	snapshots, err := local.NewLocalSnapshotStore(a.cfg.BackupPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize backup store: %w", err)
	}
	schedule := a.cfg.BackupSchedule
	if schedule == "" {
		// One-off backups never start the scheduler, but it still needs a valid schedule.
		schedule = "@daily"
	}
	return backup.NewScheduler(schedule, a.cfg.BackupKeep, a.reviews, snapshots, a.logger)
}

// newSummarizer returns nil when digests are disabled.
func newSummarizer(cfg *config.Config, logger *slog.Logger) (digest.Summarizer, error) {
	switch cfg.DigestBackend {
	case "", "none":
		return nil, nil
	case "claude":
		if cfg.ClaudeAPIKey == "" {
			return nil, errors.New("CLAUDE_API_KEY is required when DIGEST_BACKEND=claude")
		}
		logger.Info("using Claude digest backend", "model", cfg.ClaudeModel)
		return claudedigest.NewClaudeSummarizer(cfg.ClaudeAPIKey, cfg.ClaudeModel), nil
	case "ollama":
		logger.Info("using Ollama digest backend", "model", cfg.OllamaModel)
		return ollamadigest.NewOllamaSummarizer(cfg.OllamaHost, cfg.OllamaModel), nil
	default:
		return nil, fmt.Errorf("unknown DIGEST_BACKEND %q", cfg.DigestBackend)
	}
}
