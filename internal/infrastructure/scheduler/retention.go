package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ArchiveSweeper deletes archived files older than a given age
type ArchiveSweeper interface {
	CleanupOlderThan(ctx context.Context, age time.Duration) (int, error)
}

// RetentionTask prunes the local PDF archive.
type RetentionTask struct {
	sweeper ArchiveSweeper
	maxAge  time.Duration
	logger  *zap.Logger
}

// NewRetentionTask creates a task removing archived PDFs older than maxAge
func NewRetentionTask(sweeper ArchiveSweeper, maxAge time.Duration, logger *zap.Logger) *RetentionTask {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetentionTask{sweeper: sweeper, maxAge: maxAge, logger: logger}
}

// Name implements Task
func (t *RetentionTask) Name() string { return "pdf_archive_retention" }

// Run implements Task
func (t *RetentionTask) Run(ctx context.Context) error {
	deleted, err := t.sweeper.CleanupOlderThan(ctx, t.maxAge)
	if err != nil {
		return err
	}
	if deleted > 0 {
		t.logger.Info("Expired contract PDFs removed",
			zap.Int("deleted", deleted),
			zap.Duration("max_age", t.maxAge),
		)
	}
	return nil
}
