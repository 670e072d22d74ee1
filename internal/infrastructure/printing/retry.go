package printing

import (
	"context"
	"errors"
	"time"

	"github.com/lotiva/backend/internal/domain/shared"
	"github.com/lotiva/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// RetryConfig holds configuration for RetryingRenderer
type RetryConfig struct {
	// MaxRetries is the number of additional attempts after the first failure
	MaxRetries int

	// RetryBaseDelay is the delay before the first retry; later retries wait
	// a multiple of it (linear backoff)
	RetryBaseDelay time.Duration

	// RetryMaxDelay caps a single delay
	RetryMaxDelay time.Duration

	// Logger for retry attempts
	Logger *zap.Logger

	// Metrics records every attempt (optional)
	Metrics *telemetry.ContractMetrics
}

// DefaultRetryConfig returns default configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     2,
		RetryBaseDelay: 500 * time.Millisecond,
		RetryMaxDelay:  5 * time.Second,
	}
}

// RetryingRenderer retries transient failures of the wrapped renderer.
// Invalid requests and caller cancellation are returned immediately.
type RetryingRenderer struct {
	next   PDFRenderer
	config RetryConfig
	logger *zap.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewRetryingRenderer wraps next with bounded retries
func NewRetryingRenderer(next PDFRenderer, config RetryConfig) *RetryingRenderer {
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryingRenderer{
		next:   next,
		config: config,
		logger: logger,
		sleep:  sleepContext,
	}
}

// Render implements PDFRenderer
func (r *RetryingRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	var lastErr error
	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := r.calculateBackoff(attempt)
			r.logger.Warn("retrying PDF rendering",
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
				zap.Error(lastErr))
			telemetry.AddEvent(telemetry.SpanFromContext(ctx), "pdf_render_retry",
				telemetry.SpanAttrAttempt, attempt+1,
				"delay_ms", delay.Milliseconds())
			if err := r.sleep(ctx, delay); err != nil {
				return nil, lastErr
			}
		}

		start := time.Now()
		result, err := r.next.Render(ctx, req)
		r.config.Metrics.RecordRenderAttempt(ctx, time.Since(start), attemptOutcome(err))
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !IsRetryable(err) {
			return nil, err
		}
	}

	r.logger.Error("PDF rendering failed after retries",
		zap.Int("attempts", r.config.MaxRetries+1),
		zap.Error(lastErr))
	return nil, lastErr
}

// Close closes the wrapped renderer
func (r *RetryingRenderer) Close() error {
	return r.next.Close()
}

// calculateBackoff returns the delay before the given retry (1-based)
func (r *RetryingRenderer) calculateBackoff(attempt int) time.Duration {
	delay := r.config.RetryBaseDelay * time.Duration(attempt)
	if r.config.RetryMaxDelay > 0 && delay > r.config.RetryMaxDelay {
		delay = r.config.RetryMaxDelay
	}
	return delay
}

func attemptOutcome(err error) string {
	switch {
	case err == nil:
		return telemetry.OutcomeSuccess
	case errors.Is(err, shared.ErrRenderTimeout), errors.Is(err, context.DeadlineExceeded):
		return telemetry.OutcomeTimeout
	default:
		return telemetry.OutcomeError
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Ensure RetryingRenderer implements PDFRenderer
var _ PDFRenderer = (*RetryingRenderer)(nil)
