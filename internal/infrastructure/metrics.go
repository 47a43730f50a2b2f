package infrastructure

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PipelineMetrics holds the instruments of the matching and traffic
// pipelines. A nil *PipelineMetrics records nothing.
type PipelineMetrics struct {
	// Correspondence metrics
	TilesMatched  metric.Int64Counter
	MatchDuration metric.Float64Histogram

	// Cube metrics
	SlicesLoaded     metric.Int64Counter
	MissingCells     metric.Int64Counter
	AssembleDuration metric.Float64Histogram
	AssembleErrors   metric.Int64Counter

	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
}

// NewPipelineMetrics creates the instruments on the given meter.
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	tilesMatched, err := meter.Int64Counter(
		"tiles_matched_total",
		metric.WithDescription("Tiles assigned to a zone, by assignment method"),
	)
	if err != nil {
		return nil, err
	}

	matchDuration, err := meter.Float64Histogram(
		"match_duration_seconds",
		metric.WithDescription("Time to build the correspondence of a region"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	slicesLoaded, err := meter.Int64Counter(
		"slices_loaded_total",
		metric.WithDescription("Counter files loaded into cube slices"),
	)
	if err != nil {
		return nil, err
	}

	missingCells, err := meter.Int64Counter(
		"missing_cells_total",
		metric.WithDescription("Cube cells substituted with zero"),
	)
	if err != nil {
		return nil, err
	}

	assembleDuration, err := meter.Float64Histogram(
		"cube_assemble_duration_seconds",
		metric.WithDescription("Time to load and build a traffic cube"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	assembleErrors, err := meter.Int64Counter(
		"cube_assemble_errors_total",
		metric.WithDescription("Failed cube assemblies"),
	)
	if err != nil {
		return nil, err
	}

	httpRequestsTotal, err := meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	httpRequestDuration, err := meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		TilesMatched:        tilesMatched,
		MatchDuration:       matchDuration,
		SlicesLoaded:        slicesLoaded,
		MissingCells:        missingCells,
		AssembleDuration:    assembleDuration,
		AssembleErrors:      assembleErrors,
		HTTPRequestsTotal:   httpRequestsTotal,
		HTTPRequestDuration: httpRequestDuration,
	}, nil
}

// RecordMatch records a finished correspondence build.
func (m *PipelineMetrics) RecordMatch(ctx context.Context, region string, byArea, byNearest int, duration time.Duration) {
	if m == nil {
		return
	}
	regionAttr := attribute.String("region", region)
	m.TilesMatched.Add(ctx, int64(byArea), metric.WithAttributes(regionAttr, attribute.String("method", "area")))
	m.TilesMatched.Add(ctx, int64(byNearest), metric.WithAttributes(regionAttr, attribute.String("method", "nearest")))
	m.MatchDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(regionAttr))
}

// RecordSliceLoaded counts one loaded counter file.
func (m *PipelineMetrics) RecordSliceLoaded(ctx context.Context, kind, level string) {
	if m == nil {
		return
	}
	m.SlicesLoaded.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("level", level),
	))
}

// RecordAssemble records a cube assembly and its substituted cells.
func (m *PipelineMetrics) RecordAssemble(ctx context.Context, kind string, missing int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("kind", kind))
	m.AssembleDuration.Record(ctx, duration.Seconds(), attrs)
	if err != nil {
		m.AssembleErrors.Add(ctx, 1, attrs)
		return
	}
	m.MissingCells.Add(ctx, int64(missing), attrs)
}

// RecordHTTPRequest records one served request.
func (m *PipelineMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.String("status", strconv.Itoa(status)),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, duration.Seconds(), attrs)
}
