package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"netmobcli/internal/catalog"
	"netmobcli/internal/config"
	apperrors "netmobcli/internal/errors"
	"netmobcli/internal/geodata"
	"netmobcli/internal/infrastructure"
	"netmobcli/internal/spatial"
)

// NearZoneMargin is the distance, in target CRS units, around a city's tile
// envelope within which national zones are considered for matching.
const NearZoneMargin = 5000.0

// LayerSource provides the geometry layers of the correspondence build.
type LayerSource interface {
	TileLayer(ctx context.Context, city string) ([]spatial.Tile, error)
	ZoneLayer(ctx context.Context) ([]spatial.Zone, error)
}

// GeoJSONLayers reads layers from the configured geometry directory.
type GeoJSONLayers struct {
	paths       *config.Paths
	tileIDField string
	zoneIDField string
}

// NewGeoJSONLayers creates a layer source over paths.
func NewGeoJSONLayers(paths *config.Paths, cfg config.MatchingConfig) *GeoJSONLayers {
	return &GeoJSONLayers{paths: paths, tileIDField: cfg.TileIDField, zoneIDField: cfg.ZoneIDField}
}

// TileLayer reads the tile grid of a city.
func (g *GeoJSONLayers) TileLayer(_ context.Context, city string) ([]spatial.Tile, error) {
	return geodata.ReadTiles(g.paths.TileLayerFile(city), g.tileIDField)
}

// ZoneLayer reads the national zone layer.
func (g *GeoJSONLayers) ZoneLayer(_ context.Context) ([]spatial.Zone, error) {
	return geodata.ReadZones(g.paths.ZonesFile, g.zoneIDField)
}

// MatchSummary reports the outcome of matching one city.
type MatchSummary struct {
	City      string        `json:"city"`
	Tiles     int           `json:"tiles"`
	Zones     int           `json:"zones"`
	ByArea    int           `json:"by_area"`
	ByNearest int           `json:"by_nearest"`
	Stored    bool          `json:"stored"`
	Duration  time.Duration `json:"duration"`
}

// MatchingService builds, persists and serves tile to zone correspondences.
type MatchingService struct {
	cfg      config.MatchingConfig
	target   spatial.CRS
	layers   LayerSource
	store    spatial.Store
	registry *spatial.Registry
	metrics  *infrastructure.PipelineMetrics
	tracer   trace.Tracer
	logger   *slog.Logger

	zonesMu sync.Mutex
	zones   []spatial.Zone
	zoneCRS spatial.CRS
}

// NewMatchingService wires the service and its correspondence registry. A
// nil store keeps correspondences in memory only.
func NewMatchingService(cfg config.MatchingConfig, layers LayerSource, store spatial.Store, metrics *infrastructure.PipelineMetrics, tracer trace.Tracer, logger *slog.Logger) *MatchingService {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = otel.Tracer(infrastructure.MeterName)
	}
	s := &MatchingService{
		cfg:     cfg,
		target:  spatial.CRS(cfg.TargetCRS),
		layers:  layers,
		store:   store,
		metrics: metrics,
		tracer:  tracer,
		logger:  logger.With(slog.String("service", "matching")),
	}
	s.registry = spatial.NewRegistry(store, s.Build, logger)

	s.logger.Info("MatchingService initialized",
		slog.String("target_crs", cfg.TargetCRS),
		slog.Int("workers", cfg.Workers),
		slog.Bool("force_rebuild", cfg.ForceRebuild))
	return s
}

// Registry exposes the memoized correspondences, for use as a location
// resolver by the traffic loaders.
func (s *MatchingService) Registry() *spatial.Registry {
	return s.registry
}

// Build computes the correspondence of one city from its layers. It is the
// registry's builder and does not persist the result itself.
func (s *MatchingService) Build(ctx context.Context, city string) (*spatial.Correspondence, error) {
	ctx, span := s.tracer.Start(ctx, "matching.build", trace.WithAttributes(attribute.String("city", city)))
	defer span.End()

	in, err := s.prepare(ctx, city)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	start := time.Now()
	c, stats, err := spatial.MatchRegion(in)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}
	s.record(ctx, stats, time.Since(start))
	return c, nil
}

// MatchCities builds the correspondences of several cities in parallel and
// persists them. Cities already stored are skipped unless a rebuild is
// forced. An empty list means every catalog city.
func (s *MatchingService) MatchCities(ctx context.Context, cities []string) ([]MatchSummary, error) {
	if len(cities) == 0 {
		cities = catalog.CityNames()
	}
	if err := validateCities(cities); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "matching.match_cities", trace.WithAttributes(attribute.Int("cities", len(cities))))
	defer span.End()

	summaries := make([]MatchSummary, 0, len(cities))
	var inputs []spatial.RegionInput
	for _, city := range cities {
		if !s.cfg.ForceRebuild {
			if c, ok, err := s.stored(ctx, city); err != nil {
				return nil, err
			} else if ok {
				s.logger.InfoContext(ctx, "correspondence already stored, skipping",
					slog.String("city", city),
					slog.Int("tiles", c.Len()))
				summaries = append(summaries, MatchSummary{City: city, Tiles: c.Len(), Zones: len(c.Zones()), Stored: true})
				continue
			}
		}
		in, err := s.prepare(ctx, city)
		if err != nil {
			infrastructure.RecordError(ctx, err)
			return nil, err
		}
		inputs = append(inputs, in)
	}

	start := time.Now()
	results, err := spatial.MatchAll(ctx, inputs, s.cfg.Workers)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "matching failed", slog.String("error", err.Error()))
		return nil, err
	}
	elapsed := time.Since(start)

	for _, r := range results {
		if err := s.registry.Put(ctx, r.Correspondence); err != nil {
			return nil, err
		}
		s.record(ctx, r.Stats, elapsed)
		summaries = append(summaries, MatchSummary{
			City:      r.Stats.Region,
			Tiles:     r.Stats.Tiles,
			Zones:     len(r.Correspondence.Zones()),
			ByArea:    r.Stats.ByArea,
			ByNearest: r.Stats.ByNearest,
			Duration:  elapsed,
		})
	}
	return summaries, nil
}

// Correspondence returns the correspondence of a catalog city, building it on
// first use.
func (s *MatchingService) Correspondence(ctx context.Context, city string) (*spatial.Correspondence, error) {
	if _, ok := catalog.LookupCity(city); !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("city %s", city))
	}
	return s.registry.Get(ctx, city)
}

// Lookup returns the zone of one tile of a city.
func (s *MatchingService) Lookup(ctx context.Context, city string, tile int64) (string, error) {
	c, err := s.Correspondence(ctx, city)
	if err != nil {
		return "", err
	}
	zone, ok := c.Lookup(tile)
	if !ok {
		return "", apperrors.NewNotFoundError(fmt.Sprintf("tile %d of %s", tile, city))
	}
	return zone, nil
}

func (s *MatchingService) stored(ctx context.Context, city string) (*spatial.Correspondence, bool, error) {
	if s.store == nil {
		return nil, false, nil
	}
	c, err := s.store.Load(ctx, city)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load correspondence for %s: %w", city, err)
	}
	return c, true, nil
}

// prepare reads the layers of a city in the target CRS, keeping only the
// zones near its tiles. The tile grid must be in the CRS of the zone layer.
func (s *MatchingService) prepare(ctx context.Context, city string) (spatial.RegionInput, error) {
	tiles, err := s.layers.TileLayer(ctx, city)
	if err != nil {
		return spatial.RegionInput{}, fmt.Errorf("read tiles of %s: %w", city, err)
	}
	zones, zoneCRS, err := s.zoneLayer(ctx)
	if err != nil {
		return spatial.RegionInput{}, err
	}

	tileCRS, err := spatial.LayerCRS(tiles, nil)
	if err != nil {
		return spatial.RegionInput{}, fmt.Errorf("tiles of %s: %w", city, err)
	}
	if tileCRS != "" && zoneCRS != "" && !tileCRS.Same(zoneCRS) {
		return spatial.RegionInput{}, apperrors.NewGeometryInputError(
			"tiles of %s are in CRS %q, zones in %q", city, tileCRS, zoneCRS).
			WithContext("city", city)
	}

	tiles, err = spatial.ReprojectTiles(tiles, s.target)
	if err != nil {
		return spatial.RegionInput{}, fmt.Errorf("reproject tiles of %s: %w", city, err)
	}

	near := spatial.ZonesNear(zones, tiles, NearZoneMargin)
	s.logger.DebugContext(ctx, "layers prepared",
		slog.String("city", city),
		slog.Int("tiles", len(tiles)),
		slog.Int("zones", len(near)))
	return spatial.RegionInput{Region: city, Tiles: tiles, Zones: near, Fallback: zones}, nil
}

// zoneLayer reads and reprojects the national layer once. It also returns
// the CRS the layer was read in.
func (s *MatchingService) zoneLayer(ctx context.Context) ([]spatial.Zone, spatial.CRS, error) {
	s.zonesMu.Lock()
	defer s.zonesMu.Unlock()
	if s.zones != nil {
		return s.zones, s.zoneCRS, nil
	}

	zones, err := s.layers.ZoneLayer(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("read zones: %w", err)
	}
	source, err := spatial.LayerCRS(nil, zones)
	if err != nil {
		return nil, "", fmt.Errorf("zones: %w", err)
	}
	zones, err = spatial.ReprojectZones(zones, s.target)
	if err != nil {
		return nil, "", fmt.Errorf("reproject zones: %w", err)
	}
	s.zones = zones
	s.zoneCRS = source
	return zones, source, nil
}

func (s *MatchingService) record(ctx context.Context, stats spatial.MatchStats, elapsed time.Duration) {
	s.metrics.RecordMatch(ctx, stats.Region, stats.ByArea, stats.ByNearest, elapsed)
	s.logger.InfoContext(ctx, "correspondence built",
		slog.String("city", stats.Region),
		slog.Int("tiles", stats.Tiles),
		slog.Int("candidate_zones", stats.Zones),
		slog.Int("by_area", stats.ByArea),
		slog.Int("by_nearest", stats.ByNearest),
		slog.Duration("duration", elapsed))
}

func validateCities(cities []string) error {
	for _, c := range cities {
		if _, ok := catalog.LookupCity(c); !ok {
			return apperrors.NewAppValidationError(fmt.Sprintf("unknown city %q", c))
		}
	}
	return nil
}
