package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/lotiva/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap/zaptest"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	cfg := telemetry.Config{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		SamplingRatio:     1.0,
		ServiceName:       "lotiva-test",
	}

	tp, err := telemetry.NewTracerProvider(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, tp)

	assert.False(t, tp.IsEnabled())
	assert.Equal(t, "lotiva-test", tp.GetConfig().ServiceName)
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.ForceFlush(ctx))
	assert.NoError(t, tp.Shutdown(ctx))
}

func newRecordingProvider(t *testing.T, ratio float64) (*telemetry.TracerProvider, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp, err := telemetry.NewTracerProviderWithExporter(telemetry.Config{
		ServiceName:   "lotiva-test",
		SamplingRatio: ratio,
	}, exporter, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp, exporter
}

func TestNewTracerProviderWithExporter_RecordsSpans(t *testing.T) {
	tp, exporter := newRecordingProvider(t, 1.0)
	assert.True(t, tp.IsEnabled())

	ctx, span := telemetry.StartServiceSpan(context.Background(), "contract", "generate",
		telemetry.WithAttribute(telemetry.SpanAttrSaleID, "sale-1"),
	)
	assert.True(t, trace.SpanContextFromContext(ctx).TraceID().IsValid())
	telemetry.SetAttributes(span, telemetry.SpanAttrRevision, 2, 99, "skipped")
	telemetry.AddEvent(span, "archived", telemetry.SpanAttrPDFBytes, int64(1024))
	span.End()

	require.NoError(t, tp.ForceFlush(context.Background()))
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "contract.generate", spans[0].Name)
	assert.Equal(t, codes.Unset, spans[0].Status.Code)

	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "sale-1", attrs["sale_id"])
	assert.Equal(t, "2", attrs["revision"])
	require.Len(t, spans[0].Events, 1)
	assert.Equal(t, "archived", spans[0].Events[0].Name)
}

func TestRecordError_MarksSpan(t *testing.T) {
	_, exporter := newRecordingProvider(t, 1.0)

	_, span := telemetry.StartSpan(context.Background(), "contract.render_pdf")
	telemetry.RecordError(span, errors.New("chrome crashed"))
	telemetry.RecordError(span, nil)
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "chrome crashed", spans[0].Status.Description)
}

func TestNeverSample(t *testing.T) {
	_, exporter := newRecordingProvider(t, 0)

	_, span := telemetry.StartSpan(context.Background(), "contract.retrieve")
	assert.False(t, span.IsRecording())
	span.End()

	assert.Empty(t, exporter.GetSpans())
}
