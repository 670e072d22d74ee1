package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(t.Context())
	})
	return exporter
}

func attrValue(attrs []attribute.KeyValue, key string) (string, bool) {
	for _, a := range attrs {
		if string(a.Key) == key {
			return a.Value.Emit(), true
		}
	}
	return "", false
}

func newTracedRouter() *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), TracingWithConfig(TracingConfig{ServiceName: "lotiva-test", Enabled: true}), SpanEnricher(), SpanErrorMarker())
	router.GET("/contracts/:saleId", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.GET("/contracts/:saleId/pdf", func(c *gin.Context) {
		c.Status(http.StatusBadGateway)
	})
	return router
}

func TestTracing_EnrichesSpan(t *testing.T) {
	exporter := setupTestTracer(t)
	router := newTracedRouter()

	req := httptest.NewRequest(http.MethodGet, "/contracts/4b0f3c7e-9a8d-4c1b-8f2e-1d3a5b7c9e0f", nil)
	req.Header.Set(RequestIDHeader, "req-trace-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	saleID, ok := attrValue(spans[0].Attributes, "sale_id")
	assert.True(t, ok)
	assert.Equal(t, "4b0f3c7e-9a8d-4c1b-8f2e-1d3a5b7c9e0f", saleID)
	requestID, ok := attrValue(spans[0].Attributes, "request_id")
	assert.True(t, ok)
	assert.Equal(t, "req-trace-1", requestID)
	assert.NotEqual(t, codes.Error, spans[0].Status.Code)
}

func TestSpanErrorMarker_MarksServerErrors(t *testing.T) {
	exporter := setupTestTracer(t)
	router := newTracedRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/contracts/4b0f3c7e-9a8d-4c1b-8f2e-1d3a5b7c9e0f/pdf", nil))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
}

func TestTracing_Disabled(t *testing.T) {
	exporter := setupTestTracer(t)
	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: false}), SpanEnricher())
	router.GET("/contracts/:saleId", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/contracts/x", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, exporter.GetSpans())
}
