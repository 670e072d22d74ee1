package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Outcome values of the outcome attribute
const (
	OutcomeSuccess   = "success"
	OutcomeError     = "error"
	OutcomeTimeout   = "timeout"
	OutcomeDelivered = "delivered"
	OutcomeFailed    = "failed"
)

// ContractMetrics holds the instruments of contract rendering and delivery.
// A nil *ContractMetrics records nothing.
type ContractMetrics struct {
	renderDuration *Histogram
	renderAttempts *Counter
	renderTimeouts *Counter
	emails         *Counter
}

// NewContractMetrics registers the contract instruments on meter.
func NewContractMetrics(meter metric.Meter) (*ContractMetrics, error) {
	duration, err := NewHistogram(meter, HistogramOpts{
		Name:        "pdf_render_duration_seconds",
		Description: "Duration of a single PDF render attempt",
		Unit:        "s",
		Boundaries:  RenderDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	attempts, err := NewCounter(meter, "pdf_render_attempts_total",
		"PDF render attempts by outcome", "{attempt}")
	if err != nil {
		return nil, err
	}
	timeouts, err := NewCounter(meter, "pdf_render_timeouts_total",
		"PDF render attempts that hit the render timeout", "{attempt}")
	if err != nil {
		return nil, err
	}
	emails, err := NewCounter(meter, "contract_email_total",
		"Contract emails by delivery outcome", "{email}")
	if err != nil {
		return nil, err
	}
	return &ContractMetrics{
		renderDuration: duration,
		renderAttempts: attempts,
		renderTimeouts: timeouts,
		emails:         emails,
	}, nil
}

// RecordRenderAttempt records one render attempt and its outcome.
func (m *ContractMetrics) RecordRenderAttempt(ctx context.Context, d time.Duration, outcome string) {
	if m == nil {
		return
	}
	attr := AttrOutcome.String(outcome)
	m.renderDuration.RecordDuration(ctx, d, attr)
	m.renderAttempts.Inc(ctx, attr)
	if outcome == OutcomeTimeout {
		m.renderTimeouts.Inc(ctx)
	}
}

// RecordEmail counts a delivery attempt as delivered or failed.
func (m *ContractMetrics) RecordEmail(ctx context.Context, delivered bool) {
	if m == nil {
		return
	}
	outcome := OutcomeFailed
	if delivered {
		outcome = OutcomeDelivered
	}
	m.emails.Inc(ctx, AttrOutcome.String(outcome))
}
