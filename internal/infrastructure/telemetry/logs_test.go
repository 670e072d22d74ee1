package telemetry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

type recordingExporter struct {
	mu      sync.Mutex
	records []sdklog.Record
}

func (e *recordingExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range records {
		e.records = append(e.records, r.Clone())
	}
	return nil
}

func (e *recordingExporter) Shutdown(context.Context) error   { return nil }
func (e *recordingExporter) ForceFlush(context.Context) error { return nil }

func (e *recordingExporter) bodies() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.records))
	for _, r := range e.records {
		out = append(out, r.Body().AsString())
	}
	return out
}

func newTestLoggerProvider(t *testing.T) (*LoggerProvider, *recordingExporter) {
	t.Helper()
	exporter := &recordingExporter{}
	lp, err := NewLoggerProviderWithProcessor(LogsConfig{ServiceName: "lotiva-test"},
		sdklog.NewSimpleProcessor(exporter), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = lp.Shutdown(context.Background()) })
	return lp, exporter
}

func TestNewLoggerProvider_Disabled(t *testing.T) {
	lp, err := NewLoggerProvider(context.Background(), LogsConfig{}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())
	assert.NoError(t, lp.ForceFlush(context.Background()))
	assert.NoError(t, lp.Shutdown(context.Background()))

	base := zap.NewNop()
	assert.Same(t, base, BridgeLogger(base, lp, "lotiva", zapcore.InfoLevel))
	assert.Equal(t, zapcore.NewNopCore(), NewZapOTELCore("lotiva", lp, zapcore.InfoLevel))
}

func TestBridgeLogger_TeesToBothCores(t *testing.T) {
	lp, exporter := newTestLoggerProvider(t)
	core, observed := observer.New(zapcore.DebugLevel)

	bridged := BridgeLogger(zap.New(core), lp, "lotiva", zapcore.InfoLevel)
	bridged.Debug("assembling contract")
	bridged.Info("contract emailed", zap.String("contract_number", "CT202501021000123"))
	bridged.Error("contract email delivery failed")
	require.NoError(t, lp.ForceFlush(context.Background()))

	assert.Equal(t, 3, observed.Len())
	assert.Equal(t, []string{"contract emailed", "contract email delivery failed"}, exporter.bodies())
}

func TestBridgeLogger_SeverityAndFields(t *testing.T) {
	lp, exporter := newTestLoggerProvider(t)

	bridged := BridgeLogger(zap.NewNop(), lp, "lotiva", zapcore.DebugLevel).With(zap.String("sale_id", "s-1"))
	bridged.Warn("sale schedule does not match total value")
	require.NoError(t, lp.ForceFlush(context.Background()))

	exporter.mu.Lock()
	defer exporter.mu.Unlock()
	require.Len(t, exporter.records, 1)
	rec := exporter.records[0]
	assert.Equal(t, log.SeverityWarn, rec.Severity())

	var saleID string
	rec.WalkAttributes(func(kv log.KeyValue) bool {
		if kv.Key == "sale_id" {
			saleID = kv.Value.AsString()
		}
		return true
	})
	assert.Equal(t, "s-1", saleID)
}
