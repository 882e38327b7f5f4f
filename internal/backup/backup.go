package backup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/vbonduro/bbqreviews/internal/snapshot"
)

// SnapshotPrefix names every review backup in the snapshot store.
const SnapshotPrefix = "reviews"

// exporter is the subset of service.ReviewStore the scheduler requires.
type exporter interface {
	Export(ctx context.Context, w io.Writer) error
}

// Scheduler periodically copies the review list into a snapshot store and
// prunes old copies.
type Scheduler struct {
	cron      *cron.Cron
	source    exporter
	snapshots snapshot.Store
	keep      int
	logger    *slog.Logger
}

// NewScheduler validates spec (standard five-field cron syntax or a
// descriptor such as "@daily"). keep is the number of snapshots retained;
// zero keeps all of them.
func NewScheduler(spec string, keep int, source exporter, snapshots snapshot.Store, logger *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:      cron.New(),
		source:    source,
		snapshots: snapshots,
		keep:      keep,
		logger:    logger,
	}
	if _, err := s.cron.AddFunc(spec, s.runScheduled); err != nil {
		return nil, fmt.Errorf("invalid backup schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.logger.Info("backup scheduler started", "keep", s.keep)
	s.cron.Start()
}

// Stop halts the schedule and waits for a running backup to finish or ctx to
// expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("backup scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce exports the reviews, stores them as a new snapshot and prunes old
// snapshots. It returns the new snapshot key.
func (s *Scheduler) RunOnce(ctx context.Context) (string, error) {
	var buf bytes.Buffer
	if err := s.source.Export(ctx, &buf); err != nil {
		return "", fmt.Errorf("failed to export reviews: %w", err)
	}

	key, err := s.snapshots.Save(ctx, SnapshotPrefix, "application/json", &buf)
	if err != nil {
		return "", fmt.Errorf("failed to save snapshot: %w", err)
	}
	s.logger.Info("backup saved", "key", key)

	if err := s.prune(ctx); err != nil {
		s.logger.Error("failed to prune backups", "error", err)
	}
	return key, nil
}

func (s *Scheduler) runScheduled() {
	if _, err := s.RunOnce(context.Background()); err != nil {
		s.logger.Error("scheduled backup failed", "error", err)
	}
}

func (s *Scheduler) prune(ctx context.Context) error {
	if s.keep <= 0 {
		return nil
	}

	keys, err := s.snapshots.List(ctx, SnapshotPrefix)
	if err != nil {
		return err
	}
	if len(keys) <= s.keep {
		return nil
	}

	for _, key := range keys[:len(keys)-s.keep] {
		if err := s.snapshots.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to delete snapshot %s: %w", key, err)
		}
		s.logger.Debug("backup pruned", "key", key)
	}
	return nil
}
