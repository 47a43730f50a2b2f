package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"

	"netmobcli/internal/catalog"
	"netmobcli/internal/config"
	"netmobcli/internal/cube"
	apperrors "netmobcli/internal/errors"
	"netmobcli/internal/spatial"
)

// Locator resolves the correspondence of a city. *spatial.Registry
// implements it.
type Locator interface {
	Get(ctx context.Context, region string) (*spatial.Correspondence, error)
}

// LocationsFor returns the location axis of a city at a level: sorted tile
// ids or sorted unique zone ids.
func LocationsFor(corr *spatial.Correspondence, level catalog.Level) ([]string, error) {
	switch level {
	case catalog.LevelTile:
		return corr.TileLabels(), nil
	case catalog.LevelIris:
		return corr.Zones(), nil
	}
	return nil, apperrors.NewAppValidationError(fmt.Sprintf("unknown geographic level %q", level))
}

// FileLoader reads slices from the counter file tree. It implements
// cube.SliceLoader.
type FileLoader struct {
	paths     *config.Paths
	locations Locator
	logger    *slog.Logger
}

// NewFileLoader creates a loader over the configured data directory.
func NewFileLoader(paths *config.Paths, locations Locator, logger *slog.Logger) *FileLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileLoader{paths: paths, locations: locations, logger: logger}
}

// LoadSlice reads the counter file of one (city, service, day, direction)
// and aligns it to the city's location list and the canonical time axis.
func (l *FileLoader) LoadSlice(ctx context.Context, key cube.SliceKey) (*cube.Slice, error) {
	if key.Kind.Composite() {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("kind %s has no counter files", key.Kind))
	}

	corr, err := l.locations.Get(ctx, key.City)
	if err != nil {
		return nil, err
	}
	locations, err := LocationsFor(corr, key.Level)
	if err != nil {
		return nil, err
	}

	path := l.paths.TrafficFile(string(key.Level), key.City, key.Service, key.Day, string(key.Kind))
	raw, err := ParseTrafficFile(path, catalog.SlotsPerDay)
	if err != nil {
		return nil, err
	}

	slice, stats := Align(raw, locations, catalog.Slots())
	if stats.Absent > 0 || stats.Unexpected > 0 || stats.Duplicates > 0 {
		l.logger.DebugContext(ctx, "counter file does not match location list",
			slog.String("slice", key.String()),
			slog.Int("absent", stats.Absent),
			slog.Int("unexpected", stats.Unexpected),
			slog.Int("duplicates", stats.Duplicates))
	}
	return slice, nil
}
