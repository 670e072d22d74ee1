// Package scheduler runs background maintenance tasks on a fixed interval.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is one unit of periodic work
type Task interface {
	Name() string
	Run(ctx context.Context) error
}

// PeriodicConfig holds configuration for a PeriodicScheduler
type PeriodicConfig struct {
	Interval   time.Duration
	RunTimeout time.Duration
	// RunOnStart executes the task once right after Start
	RunOnStart bool
}

// DefaultPeriodicConfig returns default scheduler configuration
func DefaultPeriodicConfig() PeriodicConfig {
	return PeriodicConfig{
		Interval:   6 * time.Hour,
		RunTimeout: 5 * time.Minute,
		RunOnStart: true,
	}
}

// PeriodicScheduler runs a Task every Interval until stopped.
// Runs never overlap.
type PeriodicScheduler struct {
	config PeriodicConfig
	task   Task
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	lastRun   time.Time
	lastErr   error
}

// NewPeriodicScheduler creates a new scheduler instance
func NewPeriodicScheduler(config PeriodicConfig, task Task, logger *zap.Logger) (*PeriodicScheduler, error) {
	if task == nil {
		return nil, fmt.Errorf("%w: task is required", ErrInvalidConfig)
	}
	if config.Interval <= 0 {
		return nil, fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if config.RunTimeout <= 0 {
		config.RunTimeout = config.Interval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PeriodicScheduler{
		config: config,
		task:   task,
		logger: logger.With(zap.String("task", task.Name())),
	}, nil
}

// Start starts the scheduler loop in the background
func (s *PeriodicScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return ErrAlreadyRunning
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("Periodic task scheduled",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("run_timeout", s.config.RunTimeout),
	)
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running task until ctx is done
func (s *PeriodicScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Periodic task stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Periodic task stop timed out")
		return ctx.Err()
	}
}

// LastRun returns when the task last finished and its error
func (s *PeriodicScheduler) LastRun() (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.lastErr
}

func (s *PeriodicScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	if s.config.RunOnStart {
		s.runOnce(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *PeriodicScheduler) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	start := time.Now()
	err := s.task.Run(runCtx)

	s.mu.Lock()
	s.lastRun = time.Now()
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Periodic task failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
		return
	}
	s.logger.Debug("Periodic task completed", zap.Duration("duration", time.Since(start)))
}
