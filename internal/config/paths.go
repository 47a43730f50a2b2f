package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// DayLayout is the date format used in traffic directory and file names.
const DayLayout = "20060102"

// Paths contains all the application paths
// This is the single source of truth for ALL file paths in the application
type Paths struct {
	DataDir      string
	GeoDir       string
	OutputDir    string
	ReportsDir   string
	LogsDir      string
	MatchingFile string
	ZonesFile    string
}

// NewPaths resolves the configured layout. Relative entries are kept relative
// to the working directory; the matching file lives in the data directory
// unless it is absolute.
func NewPaths(cfg PathsConfig) *Paths {
	matching := cfg.MatchingFile
	if !filepath.IsAbs(matching) {
		matching = filepath.Join(cfg.DataDir, matching)
	}
	zones := cfg.ZonesFile
	if !filepath.IsAbs(zones) {
		zones = filepath.Join(cfg.GeoDir, zones)
	}

	return &Paths{
		DataDir:      cfg.DataDir,
		GeoDir:       cfg.GeoDir,
		OutputDir:    cfg.OutputDir,
		ReportsDir:   filepath.Join(cfg.OutputDir, "reports"),
		LogsDir:      filepath.Join(cfg.OutputDir, "logs"),
		MatchingFile: matching,
		ZonesFile:    zones,
	}
}

// TrafficDayDir returns {data}/{level}/{city}/{service}/{YYYYMMDD}.
func (p *Paths) TrafficDayDir(level, city, service string, day time.Time) string {
	return filepath.Join(p.DataDir, level, city, service, day.Format(DayLayout))
}

// TrafficFile returns the counter file for one direction (UL or DL) of a
// (level, city, service, day) slice.
func (p *Paths) TrafficFile(level, city, service string, day time.Time, direction string) string {
	name := fmt.Sprintf("%s_%s_%s_%s.txt", city, service, day.Format(DayLayout), direction)
	return filepath.Join(p.TrafficDayDir(level, city, service, day), name)
}

// TileLayerFile returns the GeoJSON tile grid of a city.
func (p *Paths) TileLayerFile(city string) string {
	return filepath.Join(p.GeoDir, city+".geojson")
}

// GetReportPath returns the full path for a report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// EnsureDirectories creates the writable directories
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.OutputDir, p.ReportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// LogPathResolution logs all resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Path resolution",
		slog.String("data_dir", p.DataDir),
		slog.String("geo_dir", p.GeoDir),
		slog.String("output_dir", p.OutputDir),
		slog.String("reports_dir", p.ReportsDir),
		slog.String("matching_file", p.MatchingFile),
		slog.String("zones_file", p.ZonesFile))
}
