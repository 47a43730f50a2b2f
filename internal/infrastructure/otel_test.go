package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"netmobcli/internal/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOTelInitialization(t *testing.T) {
	providers, err := InitializeOTel(nil, quietLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.Nil(t, providers.TracerProvider, "tracing is off by default")
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestOTelConfigFrom(t *testing.T) {
	cfg := OTelConfigFrom(config.TelemetryConfig{
		Enabled:        true,
		TraceExporter:  "stdout",
		MetricExporter: "none",
		SampleRatio:    0.5,
	})
	assert.True(t, cfg.EnableTracing)
	assert.False(t, cfg.EnableMetrics)
	assert.Equal(t, 0.5, cfg.SampleRatio)

	off := OTelConfigFrom(config.TelemetryConfig{Enabled: false, TraceExporter: "stdout", MetricExporter: "prometheus"})
	assert.False(t, off.EnableTracing)
	assert.False(t, off.EnableMetrics)
}

func TestOTelDisabled_NoopMeter(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{ServiceName: ServiceName}, quietLogger())
	require.NoError(t, err)

	assert.Nil(t, providers.MeterProvider)
	assert.Nil(t, providers.PrometheusHTTP)

	metrics, err := NewPipelineMetrics(providers.Meter)
	require.NoError(t, err)
	metrics.RecordSliceLoaded(context.Background(), "UL", "iris")
}

func TestOTelTracing(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.EnableTracing = true
	cfg.TraceExporter = "stdout"
	providers, err := InitializeOTel(cfg, quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx, span := providers.Tracer.Start(context.Background(), "match")
	defer span.End()

	traceID := TraceIDFromContext(ctx)
	assert.Len(t, traceID, 32)
	assert.Empty(t, TraceIDFromContext(context.Background()))

	RecordError(ctx, errors.New("boom"))
}

func TestOTelUnsupportedExporter(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.MetricExporter = "otlp"
	_, err := InitializeOTel(cfg, quietLogger())
	assert.Error(t, err)
}

func TestPrometheusEndpoint(t *testing.T) {
	providers, err := InitializeOTel(DefaultOTelConfig(), quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := NewPipelineMetrics(providers.Meter)
	require.NoError(t, err)
	require.NoError(t, RegisterSystemMetrics(providers.Meter, time.Now()))
	metrics.RecordSliceLoaded(context.Background(), "UL", "iris")

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "slices_loaded_total")
	assert.Contains(t, rec.Body.String(), "system_goroutines")
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestPipelineMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	metrics, err := NewPipelineMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordMatch(ctx, "Lyon", 10, 2, time.Second)
	metrics.RecordAssemble(ctx, "DL", 7, time.Second, nil)
	metrics.RecordAssemble(ctx, "DL", 0, time.Second, errors.New("failed"))
	metrics.RecordHTTPRequest(ctx, http.MethodGet, "/healthz", http.StatusOK, time.Millisecond)

	data := collect(t, reader)

	matched, ok := data["tiles_matched_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	byMethod := map[string]int64{}
	for _, dp := range matched.DataPoints {
		method, _ := dp.Attributes.Value(attribute.Key("method"))
		byMethod[method.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"area": 10, "nearest": 2}, byMethod)

	missing, ok := data["missing_cells_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, missing.DataPoints, 1)
	assert.Equal(t, int64(7), missing.DataPoints[0].Value)

	errs, ok := data["cube_assemble_errors_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(1), errs.DataPoints[0].Value)

	requests, ok := data["http_requests_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(1), requests.DataPoints[0].Value)
}

func TestPipelineMetrics_Nil(t *testing.T) {
	var metrics *PipelineMetrics
	ctx := context.Background()
	metrics.RecordMatch(ctx, "Lyon", 1, 1, time.Second)
	metrics.RecordSliceLoaded(ctx, "UL", "tile")
	metrics.RecordAssemble(ctx, "UL", 0, time.Second, nil)
	metrics.RecordHTTPRequest(ctx, http.MethodGet, "/", http.StatusOK, time.Second)
}

func TestCollectSystemStats(t *testing.T) {
	start := time.Now().Add(-time.Minute)
	stats := CollectSystemStats(start)

	assert.Positive(t, stats.GoRoutines)
	assert.Positive(t, stats.MemoryUsage)
	assert.Positive(t, stats.CPUCount)
	assert.GreaterOrEqual(t, stats.ProcessUptime, time.Minute)
}
