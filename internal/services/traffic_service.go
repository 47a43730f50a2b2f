package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"netmobcli/internal/calendar"
	"netmobcli/internal/catalog"
	"netmobcli/internal/config"
	"netmobcli/internal/cube"
	"netmobcli/internal/dataprocessing"
	apperrors "netmobcli/internal/errors"
	"netmobcli/internal/exporter"
	"netmobcli/internal/infrastructure"
	"netmobcli/internal/night"
	"netmobcli/internal/noise"
)

// TrafficDeps are the collaborators of a TrafficService. Only Loader and
// Writer are required.
type TrafficDeps struct {
	Loader     cube.SliceLoader
	Aggregator *dataprocessing.Aggregator
	Writer     *exporter.CSVWriter
	Metrics    *infrastructure.PipelineMetrics
	Tracer     trace.Tracer
	Logger     *slog.Logger
}

// NightResult describes the night totals written for one city.
type NightResult struct {
	City      string `json:"city"`
	Locations int    `json:"locations"`
	Services  int    `json:"services"`
	Nights    int    `json:"nights"`
	Path      string `json:"path"`
}

// ServiceNightResult describes the night totals of one service over several
// cities.
type ServiceNightResult struct {
	Service   string   `json:"service"`
	Cities    []string `json:"cities"`
	Locations int      `json:"locations"`
	Path      string   `json:"path"`
}

// CubeResult describes an exported cube table.
type CubeResult struct {
	City      string `json:"city"`
	Day       string `json:"day,omitempty"`
	Services  int    `json:"services"`
	Locations int    `json:"locations"`
	Instants  int    `json:"instants"`
	Path      string `json:"path"`
}

// TrafficService assembles traffic cubes and runs the night reductions on
// them, writing the results as reports.
type TrafficService struct {
	kind       catalog.TrafficKind
	level      catalog.Level
	services   []string
	subset     []string
	batch      int
	policy     noise.Policy
	nightStart catalog.TimeOfDay
	nightEnd   catalog.TimeOfDay
	report     bool

	assembler  *cube.Assembler
	aggregator *dataprocessing.Aggregator
	csv        *exporter.CSVWriter
	xlsx       *exporter.XLSXWriter
	summarizer *dataprocessing.Summarizer
	metrics    *infrastructure.PipelineMetrics
	tracer     trace.Tracer
	logger     *slog.Logger
}

// NewTrafficService validates the traffic configuration and wires the
// assembler over the loader.
func NewTrafficService(cfg config.TrafficConfig, deps TrafficDeps) (*TrafficService, error) {
	if deps.Loader == nil || deps.Writer == nil {
		return nil, apperrors.NewConfigError("traffic service needs a loader and a writer", nil)
	}
	kind, err := catalog.ParseTrafficKind(cfg.Kind)
	if err != nil {
		return nil, apperrors.NewConfigError("traffic.kind", err)
	}
	level, err := catalog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, apperrors.NewConfigError("traffic.level", err)
	}
	noisyStart, err := catalog.ParseTimeOfDay(cfg.NoisyStart)
	if err != nil {
		return nil, apperrors.NewConfigError("traffic.noisy_start", err)
	}
	nightStart, err := catalog.ParseTimeOfDay(cfg.NightStart)
	if err != nil {
		return nil, apperrors.NewConfigError("traffic.night_start", err)
	}
	nightEnd, err := catalog.ParseTimeOfDay(cfg.NightEnd)
	if err != nil {
		return nil, apperrors.NewConfigError("traffic.night_end", err)
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tracer := deps.Tracer
	if tracer == nil {
		tracer = otel.Tracer(infrastructure.MeterName)
	}
	batch := cfg.ServiceBatch
	if batch <= 0 {
		batch = config.DefaultServiceBatch
	}

	policy := noise.DefaultPolicy()
	policy.Start = noisyStart

	loader := &instrumentedLoader{next: deps.Loader, metrics: deps.Metrics}
	s := &TrafficService{
		kind:       kind,
		level:      level,
		services:   cfg.Services,
		subset:     cfg.SeriesSubset,
		batch:      batch,
		policy:     policy,
		nightStart: nightStart,
		nightEnd:   nightEnd,
		report:     cfg.MissingReport,
		assembler:  cube.NewAssembler(loader, cfg.Workers, nil),
		aggregator: deps.Aggregator,
		csv:        deps.Writer,
		xlsx:       exporter.NewXLSXWriter(deps.Writer),
		summarizer: dataprocessing.NewSummarizer(logger, dataprocessing.SummarizerConfig{}),
		metrics:    deps.Metrics,
		tracer:     tracer,
		logger:     logger.With(slog.String("service", "traffic")),
	}

	s.logger.Info("TrafficService initialized",
		slog.String("kind", string(kind)),
		slog.String("level", string(level)),
		slog.String("night", nightStart.String()+"-"+nightEnd.String()),
		slog.String("noisy_start", noisyStart.String()),
		slog.Int("workers", cfg.Workers))
	return s, nil
}

// Cube assembles the cube of one city over the configured services and
// every observed day.
func (s *TrafficService) Cube(ctx context.Context, city string) (*cube.Cube, error) {
	return s.assemble(ctx, city, s.request(city, s.services, time.Time{}))
}

// Night writes, for every city, the per-location night totals of each
// service to a CSV file, and all cities to one workbook with a sheet per
// city.
func (s *TrafficService) Night(ctx context.Context, cities []string) ([]NightResult, error) {
	if len(cities) == 0 {
		cities = catalog.CityNames()
	}
	ctx, span := s.tracer.Start(ctx, "traffic.night", trace.WithAttributes(attribute.Int("cities", len(cities))))
	defer span.End()

	results := make([]NightResult, 0, len(cities))
	sheets := make([]exporter.Sheet, 0, len(cities))
	for _, city := range cities {
		table, nights, err := s.nightTotals(ctx, city)
		if err != nil {
			infrastructure.RecordError(ctx, err)
			return nil, err
		}

		path := s.fileName("night", city, "csv")
		if err := s.csv.WriteTable(path, table); err != nil {
			return nil, err
		}
		sheets = append(sheets, exporter.Sheet{Name: city, Table: table})
		results = append(results, NightResult{
			City:      city,
			Locations: len(table.Rows),
			Services:  len(table.Columns),
			Nights:    nights,
			Path:      path,
		})

		s.logger.InfoContext(ctx, "night totals written",
			slog.String("city", city),
			slog.Int("locations", len(table.Rows)),
			slog.Int("nights", nights),
			slog.String("path", path))
	}

	if err := s.xlsx.WriteWorkbook(s.fileName("night", "", "xlsx"), sheets...); err != nil {
		return nil, err
	}
	return results, nil
}

// nightTotals reduces the night window of a city one service batch at a time
// and joins the per-batch columns. It also returns the number of nights kept.
func (s *TrafficService) nightTotals(ctx context.Context, city string) (cube.Table, int, error) {
	ex := calendar.ForCity(city)
	var (
		parts  []cube.Table
		nights int
	)
	batches := s.batches()
	for i, batch := range batches {
		c, err := s.assemble(ctx, batchLabel(city, i, len(batches)), s.request(city, batch, time.Time{}))
		if err != nil {
			return cube.Table{}, 0, err
		}
		w := night.SelectWindow(noise.Exclude(c.Flatten(), ex, s.policy), s.nightStart, s.nightEnd)
		parts = append(parts, night.LocationTotals(w))
		nights = len(w.Nights())
	}
	table, err := cube.JoinColumns(parts...)
	if err != nil {
		return cube.Table{}, 0, err
	}
	return table, nights, nil
}

// ServiceNight writes the per-location night totals of one service over
// several cities to a single CSV file. A day that is noisy in any of the
// cities is dropped for all of them, so every location shares one instant
// axis. Tile ids repeat across cities, so only the IRIS level is accepted.
func (s *TrafficService) ServiceNight(ctx context.Context, service string, cities []string) (ServiceNightResult, error) {
	if s.level != catalog.LevelIris {
		return ServiceNightResult{}, apperrors.NewAppValidationError(
			fmt.Sprintf("service-wide totals need the %s level, not %s", catalog.LevelIris, s.level))
	}
	if len(cities) == 0 {
		cities = catalog.CityNames()
	}
	ctx, span := s.tracer.Start(ctx, "traffic.service_night", trace.WithAttributes(
		attribute.String("service", service),
		attribute.Int("cities", len(cities))))
	defer span.End()

	req := cube.ServiceRequest{
		Scope:   cube.Scope{Kind: s.kind, Level: s.level},
		Service: service,
		Cities:  cities,
	}
	c, err := s.assemble(ctx, service, req)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return ServiceNightResult{}, err
	}
	table := night.ConsumptionByLocation(c.Flatten(), calendar.ForCities(cities...), s.policy, s.nightStart, s.nightEnd)

	path := s.fileName("night", service, "csv")
	if err := s.csv.WriteTable(path, table); err != nil {
		return ServiceNightResult{}, err
	}
	s.logger.InfoContext(ctx, "service night totals written",
		slog.String("service", service),
		slog.Int("cities", len(cities)),
		slog.Int("locations", len(table.Rows)),
		slog.String("path", path))
	return ServiceNightResult{Service: service, Cities: cities, Locations: len(table.Rows), Path: path}, nil
}

// Export writes the raw cube of a city, summed over its services, as one row
// per location over every instant. A non-zero day restricts it to that day.
// No noisy period is removed.
func (s *TrafficService) Export(ctx context.Context, city string, day time.Time) (CubeResult, error) {
	label := city
	if !day.IsZero() {
		day = catalog.Truncate(day)
		if day.Before(catalog.WindowStart) || day.After(catalog.WindowEnd) {
			return CubeResult{}, apperrors.NewAppValidationError(
				fmt.Sprintf("day %s is outside the observation window", day.Format(config.DayLayout)))
		}
		label = city + "_" + day.Format(config.DayLayout)
	}
	ctx, span := s.tracer.Start(ctx, "traffic.export", trace.WithAttributes(attribute.String("city", city)))
	defer span.End()

	c, err := s.assemble(ctx, label, s.request(city, s.services, day))
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return CubeResult{}, err
	}
	table := c.SumServices().Flatten().Table(0)

	path := s.fileName("cube", label, "csv")
	if err := s.csv.WriteTable(path, table); err != nil {
		return CubeResult{}, err
	}
	s.logger.InfoContext(ctx, "cube written",
		slog.String("city", city),
		slog.Int("services", len(c.Axes().Services)),
		slog.String("path", path))

	out := CubeResult{
		City:      city,
		Services:  len(c.Axes().Services),
		Locations: len(table.Rows),
		Instants:  len(table.Columns),
		Path:      path,
	}
	if !day.IsZero() {
		out.Day = day.Format(config.DayLayout)
	}
	return out, nil
}

// Series writes the noise-filtered time series of a city, summed over the
// configured subset of services.
func (s *TrafficService) Series(ctx context.Context, city string) (cube.Table, error) {
	ctx, span := s.tracer.Start(ctx, "traffic.series", trace.WithAttributes(attribute.String("city", city)))
	defer span.End()

	c, err := s.Cube(ctx, city)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return cube.Table{}, err
	}
	var subset []string
	if len(s.subset) > 0 {
		subset = s.subset
	}
	table, err := night.TimeSeries(c, calendar.ForCity(city), subset, s.policy)
	if err != nil {
		return cube.Table{}, err
	}

	path := s.fileName("series", city, "csv")
	if err := s.csv.WriteTable(path, table); err != nil {
		return cube.Table{}, err
	}
	s.logger.InfoContext(ctx, "time series written",
		slog.String("city", city),
		slog.Int("instants", len(table.Columns)),
		slog.String("path", path))
	return table, nil
}

// Profile writes the time-of-day night profile of a city. Services are
// loaded in batches so only one batch of slices is held at a time.
func (s *TrafficService) Profile(ctx context.Context, city string) (*night.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "traffic.profile", trace.WithAttributes(attribute.String("city", city)))
	defer span.End()

	ex := calendar.ForCity(city)

	batches := s.batches()
	parts := make([]*night.Profile, 0, len(batches))
	for i, batch := range batches {
		c, err := s.assemble(ctx, batchLabel(city, i, len(batches)), s.request(city, batch, time.Time{}))
		if err != nil {
			infrastructure.RecordError(ctx, err)
			return nil, err
		}
		w := night.SelectWindow(noise.Exclude(c.Flatten(), ex, s.policy), s.nightStart, s.nightEnd)
		parts = append(parts, night.TimeOfDayProfile(w))

		s.logger.DebugContext(ctx, "profile batch done",
			slog.String("city", city),
			slog.Int("batch", i),
			slog.Int("services", len(batch)))
	}
	profile := night.MergeProfiles(parts...)

	path := s.fileName("profile", city, "csv")
	if err := s.csv.WriteProfile(path, profile); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "night profile written",
		slog.String("city", city),
		slog.Int("services", len(profile.Services)),
		slog.String("path", path))
	return profile, nil
}

// Aggregate converts tile-level counter files to zone-level files for the
// given cities, services and days. Empty lists mean the whole catalog.
func (s *TrafficService) Aggregate(ctx context.Context, cities, services []string, days []time.Time) (dataprocessing.AggregateStats, error) {
	if s.aggregator == nil {
		return dataprocessing.AggregateStats{}, apperrors.NewConfigError("no aggregator configured", nil)
	}
	if len(cities) == 0 {
		cities = catalog.CityNames()
	}
	if err := validateCities(cities); err != nil {
		return dataprocessing.AggregateStats{}, err
	}
	if len(services) == 0 {
		services = catalog.ServiceNames(catalog.Uplink)
	}
	if len(days) == 0 {
		days = catalog.Days()
	}

	ctx, span := s.tracer.Start(ctx, "traffic.aggregate")
	defer span.End()

	jobs := dataprocessing.Jobs(cities, services, days)
	s.logger.InfoContext(ctx, "aggregating tile files to zones", slog.Int("jobs", len(jobs)))
	stats, err := s.aggregator.Run(ctx, jobs)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "aggregation failed", slog.String("error", err.Error()))
		return stats, err
	}
	s.logger.InfoContext(ctx, "aggregation complete",
		slog.Int("written", stats.Written),
		slog.Int("skipped", stats.Skipped),
		slog.Int("rows", stats.Rows),
		slog.Int("unmatched_tiles", stats.Unmatched))
	return stats, nil
}

// batches splits the configured services, or every service of the kind,
// into groups of at most s.batch.
func (s *TrafficService) batches() [][]string {
	services := s.services
	if len(services) == 0 {
		services = catalog.ServiceNames(s.kind)
	}
	var out [][]string
	for from := 0; from < len(services); from += s.batch {
		out = append(out, services[from:min(from+s.batch, len(services))])
	}
	return out
}

// batchLabel keeps the missing-value reports of service batches apart.
func batchLabel(city string, i, n int) string {
	if n == 1 {
		return city
	}
	return fmt.Sprintf("%s_%d", city, i)
}

// request picks the cube request variant for the axes that are fixed. An
// empty services list means every service of the kind; a zero day means
// every observed day.
func (s *TrafficService) request(city string, services []string, day time.Time) cube.Request {
	scope := cube.Scope{Kind: s.kind, Level: s.level}
	switch {
	case len(services) == 1 && !day.IsZero():
		return cube.CityServiceDayRequest{Scope: scope, City: city, Service: services[0], Day: day}
	case len(services) == 1:
		return cube.CityServiceRequest{Scope: scope, City: city, Service: services[0]}
	case len(services) == 0 && !day.IsZero():
		return cube.CityDayRequest{Scope: scope, City: city, Day: day}
	}
	req := cube.CityRequest{Scope: scope, City: city, Services: services}
	if !day.IsZero() {
		req.Days = []time.Time{day}
	}
	return req
}

// assemble builds the cube of req. label names the cube in logs and in the
// missing-value report.
func (s *TrafficService) assemble(ctx context.Context, label string, req cube.Request) (*cube.Cube, error) {
	ctx, span := s.tracer.Start(ctx, "traffic.assemble", trace.WithAttributes(
		attribute.String("label", label),
		attribute.String("kind", string(s.kind)),
		attribute.String("request", fmt.Sprintf("%T", req))))
	defer span.End()

	start := time.Now()
	c, err := s.assembler.Assemble(ctx, req)
	if err != nil {
		s.metrics.RecordAssemble(ctx, string(s.kind), 0, time.Since(start), err)
		return nil, err
	}

	missing := c.Missing()
	s.metrics.RecordAssemble(ctx, string(s.kind), missing.Missing, time.Since(start), nil)
	if missing.Missing > 0 {
		s.logger.WarnContext(ctx, "missing values substituted with zero",
			slog.String("cube", label),
			slog.Int("missing", missing.Missing),
			slog.Int("total", missing.Total),
			slog.Float64("share", missing.Share()))
		if s.report {
			if err := s.writeMissing(ctx, label, c); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

func (s *TrafficService) writeMissing(ctx context.Context, label string, c *cube.Cube) error {
	axes := c.Axes()
	summaries := s.summarizer.Summarize(ctx, c.Missing(), len(axes.Locations)*len(axes.Times))
	return s.summarizer.WriteCSV(ctx, s.csv.ReportPath(s.fileName("missing", label, "csv")), summaries)
}

// fileName builds report names such as night_Lyon_UL_AND_DL_iris.csv.
func (s *TrafficService) fileName(prefix, city, ext string) string {
	parts := []string{prefix}
	if city != "" {
		parts = append(parts, city)
	}
	parts = append(parts, string(s.kind), string(s.level))
	return fmt.Sprintf("%s.%s", strings.Join(parts, "_"), ext)
}

// instrumentedLoader counts the slices read by the wrapped loader.
type instrumentedLoader struct {
	next    cube.SliceLoader
	metrics *infrastructure.PipelineMetrics
}

func (l *instrumentedLoader) LoadSlice(ctx context.Context, key cube.SliceKey) (*cube.Slice, error) {
	s, err := l.next.LoadSlice(ctx, key)
	if err != nil {
		return nil, err
	}
	l.metrics.RecordSliceLoaded(ctx, string(key.Kind), string(key.Level))
	return s, nil
}
