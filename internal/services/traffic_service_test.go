package services

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"netmobcli/internal/catalog"
	"netmobcli/internal/config"
	"netmobcli/internal/cube"
	"netmobcli/internal/dataprocessing"
	apperrors "netmobcli/internal/errors"
	"netmobcli/internal/exporter"
	"netmobcli/internal/files"
	"netmobcli/internal/spatial"
)

var testServices = []string{"Netflix", "Facebook"}

func testTrafficPaths(t *testing.T) *config.Paths {
	t.Helper()
	root := t.TempDir()
	return config.NewPaths(config.PathsConfig{
		DataDir:      filepath.Join(root, "data"),
		GeoDir:       filepath.Join(root, "geo"),
		OutputDir:    filepath.Join(root, "output"),
		MatchingFile: "matching.csv",
		ZonesFile:    "iris.geojson",
	})
}

func testTrafficConfig() config.TrafficConfig {
	cfg := config.Default().Traffic
	cfg.Kind = string(catalog.Uplink)
	cfg.Services = testServices
	cfg.Workers = 4
	return cfg
}

// constantSlice has two zones and the full time axis, every cell set to v.
func constantSlice(v float64) *cube.Slice {
	s := cube.NewSlice([]string{"Z1", "Z2"}, catalog.Slots())
	for _, row := range s.Values {
		for i := range row {
			row[i] = v
		}
	}
	return s
}

func newTrafficService(t *testing.T, cfg config.TrafficConfig, loader cube.SliceLoader) (*TrafficService, *config.Paths) {
	t.Helper()
	paths := testTrafficPaths(t)
	svc, err := NewTrafficService(cfg, TrafficDeps{
		Loader: loader,
		Writer: exporter.NewCSVWriter(paths, nil),
	})
	require.NoError(t, err)
	return svc, paths
}

func TestNewTrafficService_InvalidConfig(t *testing.T) {
	loader := new(MockSliceLoader)
	writer := exporter.NewCSVWriter(testTrafficPaths(t), nil)

	tests := []struct {
		name   string
		modify func(*config.TrafficConfig)
	}{
		{"kind", func(c *config.TrafficConfig) { c.Kind = "BOTH" }},
		{"level", func(c *config.TrafficConfig) { c.Level = "city" }},
		{"noisy start", func(c *config.TrafficConfig) { c.NoisyStart = "3pm" }},
		{"night start", func(c *config.TrafficConfig) { c.NightStart = "25:00" }},
		{"night end", func(c *config.TrafficConfig) { c.NightEnd = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testTrafficConfig()
			tt.modify(&cfg)
			_, err := NewTrafficService(cfg, TrafficDeps{Loader: loader, Writer: writer})
			assert.True(t, errors.Is(err, apperrors.ErrConfig))
		})
	}

	_, err := NewTrafficService(testTrafficConfig(), TrafficDeps{Writer: writer})
	assert.True(t, errors.Is(err, apperrors.ErrConfig))
}

func TestTrafficService_Cube(t *testing.T) {
	loader := new(MockSliceLoader)
	loader.On("LoadSlice", mock.Anything, mock.Anything).Return(constantSlice(2), nil)

	svc, _ := newTrafficService(t, testTrafficConfig(), loader)

	c, err := svc.Cube(context.Background(), "Lyon")
	require.NoError(t, err)

	axes := c.Axes()
	assert.Equal(t, []string{"Z1", "Z2"}, axes.Locations)
	assert.Equal(t, testServices, axes.Services)
	assert.Len(t, axes.Days, len(catalog.Days()))
	assert.Equal(t, 2.0, c.At(1, 10, 1, 3))
	loader.AssertNumberOfCalls(t, "LoadSlice", len(testServices)*len(catalog.Days()))
}

func TestTrafficService_MissingReport(t *testing.T) {
	holey := constantSlice(1)
	holey.Values[0][5] = math.NaN()
	holey.Values[1][7] = math.NaN()

	loader := new(MockSliceLoader)
	loader.On("LoadSlice", mock.Anything, mock.MatchedBy(func(k cube.SliceKey) bool {
		return k.Service == "Netflix" && k.Day.Equal(catalog.WindowStart)
	})).Return(holey, nil)
	loader.On("LoadSlice", mock.Anything, mock.Anything).Return(constantSlice(1), nil)

	cfg := testTrafficConfig()
	cfg.MissingReport = true
	svc, paths := newTrafficService(t, cfg, loader)

	c, err := svc.Cube(context.Background(), "Lyon")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Missing().Missing)
	assert.Equal(t, 0.0, c.At(0, 5, 0, 0))

	data, err := os.ReadFile(paths.GetReportPath("missing_Lyon_UL_iris.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Level,City,Service,Day,Kind,Missing,Share", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "iris,Lyon,Netflix,20190316,UL,2,"))
}

func TestTrafficService_LoaderError(t *testing.T) {
	loader := new(MockSliceLoader)
	loader.On("LoadSlice", mock.Anything, mock.Anything).Return(nil, apperrors.NewParsingError("bad line", nil))

	svc, _ := newTrafficService(t, testTrafficConfig(), loader)

	_, err := svc.Night(context.Background(), []string{"Lyon"})
	assert.True(t, errors.Is(err, apperrors.ErrParsing))
}

func TestTrafficService_Night(t *testing.T) {
	loader := new(MockSliceLoader)
	loader.On("LoadSlice", mock.Anything, mock.Anything).Return(constantSlice(1), nil)

	svc, paths := newTrafficService(t, testTrafficConfig(), loader)

	results, err := svc.Night(context.Background(), []string{"Lyon", "Paris"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Positive(t, results[0].Nights)
	assert.Less(t, results[0].Nights, len(catalog.Days()), "noisy nights are dropped")
	assert.Equal(t, NightResult{
		City: "Lyon", Locations: 2, Services: 2, Nights: results[0].Nights, Path: "night_Lyon_UL_iris.csv",
	}, results[0])

	data, err := os.ReadFile(paths.GetReportPath("night_Lyon_UL_iris.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "location,Netflix,Facebook", lines[0])

	// every night cell is 1, so both zones share one positive total
	z1 := strings.Split(lines[1], ",")
	z2 := strings.Split(lines[2], ",")
	assert.Equal(t, "Z1", z1[0])
	assert.Equal(t, z1[1:], z2[1:])
	assert.NotEqual(t, "0", z1[1])

	book, err := excelize.OpenFile(paths.GetReportPath("night_UL_iris.xlsx"))
	require.NoError(t, err)
	defer book.Close()
	assert.Equal(t, []string{"Lyon", "Paris"}, book.GetSheetList())
}

func TestTrafficService_NightInBatches(t *testing.T) {
	loader := new(MockSliceLoader)
	loader.On("LoadSlice", mock.Anything, mock.MatchedBy(func(k cube.SliceKey) bool {
		return k.Service == "Facebook"
	})).Return(constantSlice(2), nil)
	loader.On("LoadSlice", mock.Anything, mock.Anything).Return(constantSlice(1), nil)

	single, _ := newTrafficService(t, testTrafficConfig(), loader)
	want, err := single.Night(context.Background(), []string{"Lyon"})
	require.NoError(t, err)

	cfg := testTrafficConfig()
	cfg.ServiceBatch = 1
	batched, paths := newTrafficService(t, cfg, loader)
	got, err := batched.Night(context.Background(), []string{"Lyon"})
	require.NoError(t, err)
	assert.Equal(t, want, got)

	data, err := os.ReadFile(paths.GetReportPath("night_Lyon_UL_iris.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "location,Netflix,Facebook", lines[0])
	row := strings.Split(lines[1], ",")
	assert.NotEqual(t, row[1], row[2], "each batch keeps its own column")
}

func TestTrafficService_RequestVariants(t *testing.T) {
	svc, _ := newTrafficService(t, testTrafficConfig(), new(MockSliceLoader))
	day := catalog.WindowStart.AddDate(0, 0, 1)

	tests := []struct {
		name     string
		services []string
		day      time.Time
		want     cube.Request
	}{
		{"every axis", testServices, time.Time{}, cube.CityRequest{}},
		{"one service", []string{"Netflix"}, time.Time{}, cube.CityServiceRequest{}},
		{"one day", nil, day, cube.CityDayRequest{}},
		{"one service one day", []string{"Netflix"}, day, cube.CityServiceDayRequest{}},
		{"some services one day", testServices, day, cube.CityRequest{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := svc.request("Lyon", tt.services, tt.day)
			assert.IsType(t, tt.want, req)

			plan, err := req.Plan()
			require.NoError(t, err)
			assert.Equal(t, []string{"Lyon"}, plan.Cities)
			if !tt.day.IsZero() {
				assert.Equal(t, []time.Time{day}, plan.Days)
			}
		})
	}
}

// zoneSlice has the given zones and the full time axis, every cell set to v.
func zoneSlice(v float64, zones ...string) *cube.Slice {
	s := cube.NewSlice(zones, catalog.Slots())
	for _, row := range s.Values {
		for i := range row {
			row[i] = v
		}
	}
	return s
}

func TestTrafficService_ServiceNight(t *testing.T) {
	loader := new(MockSliceLoader)
	loader.On("LoadSlice", mock.Anything, mock.MatchedBy(func(k cube.SliceKey) bool {
		return k.City == "Lyon"
	})).Return(zoneSlice(1, "691230101", "691230102"), nil)
	loader.On("LoadSlice", mock.Anything, mock.MatchedBy(func(k cube.SliceKey) bool {
		return k.City == "Paris"
	})).Return(zoneSlice(1, "751010101"), nil)

	svc, paths := newTrafficService(t, testTrafficConfig(), loader)

	result, err := svc.ServiceNight(context.Background(), "Netflix", []string{"Lyon", "Paris"})
	require.NoError(t, err)
	assert.Equal(t, ServiceNightResult{
		Service: "Netflix", Cities: []string{"Lyon", "Paris"}, Locations: 3, Path: "night_Netflix_UL_iris.csv",
	}, result)
	loader.AssertNumberOfCalls(t, "LoadSlice", 2*len(catalog.Days()))
	for _, call := range loader.Calls {
		assert.Equal(t, "Netflix", call.Arguments.Get(1).(cube.SliceKey).Service)
	}

	data, err := os.ReadFile(paths.GetReportPath("night_Netflix_UL_iris.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "location,Netflix", lines[0])
	assert.True(t, strings.HasPrefix(lines[3], "751010101,"))
	// every city shares the merged exclusion catalog, so totals agree
	assert.Equal(t, strings.Split(lines[1], ",")[1], strings.Split(lines[3], ",")[1])
}

func TestTrafficService_ServiceNightNeedsIris(t *testing.T) {
	cfg := testTrafficConfig()
	cfg.Level = string(catalog.LevelTile)
	svc, _ := newTrafficService(t, cfg, new(MockSliceLoader))

	_, err := svc.ServiceNight(context.Background(), "Netflix", nil)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestTrafficService_Export(t *testing.T) {
	loader := new(MockSliceLoader)
	loader.On("LoadSlice", mock.Anything, mock.Anything).Return(constantSlice(1), nil)

	svc, paths := newTrafficService(t, testTrafficConfig(), loader)
	day := catalog.WindowStart.AddDate(0, 0, 1)

	result, err := svc.Export(context.Background(), "Lyon", day.Add(5*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, CubeResult{
		City: "Lyon", Day: "20190317", Services: 2, Locations: 2, Instants: catalog.SlotsPerDay,
		Path: "cube_Lyon_20190317_UL_iris.csv",
	}, result)
	loader.AssertNumberOfCalls(t, "LoadSlice", len(testServices))

	data, err := os.ReadFile(paths.GetReportPath(result.Path))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	// both services summed, nothing dropped
	assert.True(t, strings.HasPrefix(lines[1], "Z1,2,2,"))

	_, err = svc.Export(context.Background(), "Lyon", catalog.WindowEnd.AddDate(0, 0, 1))
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestTrafficService_Series(t *testing.T) {
	loader := new(MockSliceLoader)
	loader.On("LoadSlice", mock.Anything, mock.Anything).Return(constantSlice(1), nil)

	svc, paths := newTrafficService(t, testTrafficConfig(), loader)

	table, err := svc.Series(context.Background(), "Lyon")
	require.NoError(t, err)

	assert.Equal(t, []string{"Z1", "Z2"}, table.Rows)
	assert.NotEmpty(t, table.Columns)
	assert.Less(t, len(table.Columns), len(catalog.Days())*catalog.SlotsPerDay, "noisy periods are dropped")
	// Netflix and Facebook are both night-series services and are summed
	assert.Equal(t, 2.0, table.Values[0][0])

	_, err = os.Stat(paths.GetReportPath("series_Lyon_UL_iris.csv"))
	assert.NoError(t, err)
}

func TestTrafficService_Profile(t *testing.T) {
	loader := new(MockSliceLoader)
	loader.On("LoadSlice", mock.Anything, mock.Anything).Return(constantSlice(1), nil)

	cfg := testTrafficConfig()
	cfg.ServiceBatch = 1
	svc, paths := newTrafficService(t, cfg, loader)

	profile, err := svc.Profile(context.Background(), "Lyon")
	require.NoError(t, err)

	assert.Equal(t, testServices, profile.Services)
	require.Len(t, profile.Times, 20)
	assert.Equal(t, "22:00", profile.Times[0].String())
	assert.Equal(t, "02:45", profile.Times[19].String())
	assert.Equal(t, profile.At(0, 0, 0), profile.At(1, 19, 1))

	_, err = os.Stat(paths.GetReportPath("profile_Lyon_UL_iris.csv"))
	assert.NoError(t, err)
}

func TestTrafficService_Aggregate(t *testing.T) {
	paths := testTrafficPaths(t)
	corr, err := spatial.NewCorrespondence("Lyon", []spatial.Pair{{Tile: 1, Zone: "Z1"}, {Tile: 2, Zone: "Z1"}})
	require.NoError(t, err)
	registry := spatial.NewRegistry(nil, func(context.Context, string) (*spatial.Correspondence, error) {
		return corr, nil
	}, nil)

	day := catalog.WindowStart
	values := strings.TrimSpace(strings.Repeat(" 1", catalog.SlotsPerDay))
	src := paths.TrafficFile(string(catalog.LevelTile), "Lyon", "Netflix", day, string(catalog.Uplink))
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0755))
	require.NoError(t, os.WriteFile(src, []byte("1 "+values+"\n2 "+values+"\n"), 0644))

	svc, err := NewTrafficService(testTrafficConfig(), TrafficDeps{
		Loader:     new(MockSliceLoader),
		Aggregator: dataprocessing.NewAggregator(paths, files.NewManager(paths, nil), registry, 2, nil),
		Writer:     exporter.NewCSVWriter(paths, nil),
	})
	require.NoError(t, err)

	stats, err := svc.Aggregate(context.Background(), []string{"Lyon"}, []string{"Netflix"}, []time.Time{day})
	require.NoError(t, err)
	assert.Equal(t, dataprocessing.AggregateStats{Written: 1, Skipped: 1, Rows: 1}, stats)

	dst := paths.TrafficFile(string(catalog.LevelIris), "Lyon", "Netflix", day, string(catalog.Uplink))
	raw, err := dataprocessing.ParseTrafficFile(dst, catalog.SlotsPerDay)
	require.NoError(t, err)
	assert.Equal(t, 1, raw.Len())
}

func TestTrafficService_AggregateErrors(t *testing.T) {
	svc, _ := newTrafficService(t, testTrafficConfig(), new(MockSliceLoader))
	_, err := svc.Aggregate(context.Background(), nil, nil, nil)
	assert.True(t, errors.Is(err, apperrors.ErrConfig))
}
