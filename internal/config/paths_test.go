package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaths(t *testing.T) {
	p := NewPaths(PathsConfig{
		DataDir:      "/srv/traffic",
		GeoDir:       "/srv/geo",
		OutputDir:    "/srv/out",
		MatchingFile: "MatchingIrisTile.csv",
		ZonesFile:    "/abs/iris.geojson",
	})

	assert.Equal(t, "/srv/traffic/MatchingIrisTile.csv", p.MatchingFile)
	assert.Equal(t, "/abs/iris.geojson", p.ZonesFile)
	assert.Equal(t, "/srv/out/reports", p.ReportsDir)
	assert.Equal(t, "/srv/out/reports/totals.csv", p.GetReportPath("totals.csv"))
	assert.Equal(t, "/srv/geo/Lyon.geojson", p.TileLayerFile("Lyon"))
}

func TestTrafficFile(t *testing.T) {
	p := NewPaths(PathsConfig{DataDir: "data", GeoDir: "geo", OutputDir: "out", MatchingFile: "m.csv", ZonesFile: "z.geojson"})
	day := time.Date(2019, 4, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		level     string
		direction string
		want      string
	}{
		{"tile uplink", "tile", "UL", filepath.Join("data", "tile", "Paris", "Netflix", "20190401", "Paris_Netflix_20190401_UL.txt")},
		{"iris downlink", "iris", "DL", filepath.Join("data", "iris", "Paris", "Netflix", "20190401", "Paris_Netflix_20190401_DL.txt")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.TrafficFile(tt.level, "Paris", "Netflix", day, tt.direction))
		})
	}
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(root))
	t.Cleanup(func() { os.Chdir(wd) })

	p := NewPaths(PathsConfig{DataDir: "data", GeoDir: "geo", OutputDir: "out", MatchingFile: "m.csv", ZonesFile: "z.geojson"})
	require.NoError(t, p.EnsureDirectories())

	for _, dir := range []string{"out", filepath.Join("out", "reports"), filepath.Join("out", "logs")} {
		info, err := os.Stat(filepath.Join(root, dir))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
