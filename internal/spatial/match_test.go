package spatial

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ctessum/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "netmobcli/internal/errors"
)

func rect(x0, y0, x1, y1 float64) geom.Polygon {
	return geom.Polygon{{
		{X: x0, Y: y0},
		{X: x1, Y: y0},
		{X: x1, Y: y1},
		{X: x0, Y: y1},
	}}
}

func tile(id int64, x0, y0, x1, y1 float64) Tile {
	return Tile{ID: id, Geometry: rect(x0, y0, x1, y1), CRS: Lambert93}
}

func zone(id string, x0, y0, x1, y1 float64) Zone {
	return Zone{ID: id, Geometry: rect(x0, y0, x1, y1), CRS: Lambert93}
}

// grid builds an n x n grid of unit tiles with ids 0..n*n-1.
func grid(n int) []Tile {
	var tiles []Tile
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			tiles = append(tiles, tile(int64(r*n+c), float64(c), float64(r), float64(c+1), float64(r+1)))
		}
	}
	return tiles
}

func TestMatch_LargestIntersectionWins(t *testing.T) {
	tiles := []Tile{tile(1, 0, 0, 10, 1)}
	zones := []Zone{
		zone("A", -5, -1, 3, 2),  // overlap area 3
		zone("B", 3, -1, 15, 2), // overlap area 7
	}

	c, stats, err := MatchWithStats("synthetic", tiles, zones)
	require.NoError(t, err)

	got, ok := c.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, "B", got)
	assert.Equal(t, 1, stats.ByArea)
	assert.Equal(t, 0, stats.ByNearest)
}

func TestMatch_EqualAreasResolveToSmallestID(t *testing.T) {
	tiles := []Tile{tile(7, 0, 0, 10, 1)}

	for _, order := range [][]Zone{
		{zone("Z2", 5, -1, 20, 2), zone("Z1", -10, -1, 5, 2)},
		{zone("Z1", -10, -1, 5, 2), zone("Z2", 5, -1, 20, 2)},
	} {
		c, err := Match("tie", tiles, order)
		require.NoError(t, err)
		got, _ := c.Lookup(7)
		assert.Equal(t, "Z1", got)
	}
}

func TestMatch_NearestFallback(t *testing.T) {
	tiles := []Tile{tile(1, 0, 0, 1, 1)}
	zones := []Zone{
		zone("far", 11, 0, 12, 1),   // 10 away
		zone("near", 5, 0, 6, 1),    // 4 away
		zone("above", 0, 20, 1, 21), // 19 away
	}

	c, stats, err := MatchWithStats("edge", tiles, zones)
	require.NoError(t, err)

	got, _ := c.Lookup(1)
	assert.Equal(t, "near", got)
	assert.Equal(t, 1, stats.ByNearest)
}

func TestMatch_NearestFallbackTie(t *testing.T) {
	tiles := []Tile{tile(1, 0, 0, 1, 1)}
	zones := []Zone{
		zone("west", -5, 0, -3, 1), // 3 away
		zone("east", 4, 0, 6, 1),   // 3 away
	}

	c, err := Match("edge", tiles, zones)
	require.NoError(t, err)
	got, _ := c.Lookup(1)
	assert.Equal(t, "east", got)
}

func TestMatch_TouchingOnlyIsNotAnIntersection(t *testing.T) {
	tiles := []Tile{tile(1, 0, 0, 1, 1)}
	zones := []Zone{
		zone("touch", 1, 0, 2, 1), // shares an edge, zero area, zero distance
		zone("gap", -3, 0, -2, 1),
	}

	c, stats, err := MatchWithStats("edge", tiles, zones)
	require.NoError(t, err)
	got, _ := c.Lookup(1)
	assert.Equal(t, "touch", got)
	assert.Equal(t, 1, stats.ByNearest)
}

func TestMatch_TotalityAndDeterminism(t *testing.T) {
	tiles := grid(6)
	zones := []Zone{
		zone("west", -1, -1, 2.5, 7),
		zone("center", 2.5, -1, 4, 7),
		zone("east", 4, 2, 5, 3),
		zone("island", 10, 10, 11, 11),
	}

	first, err := Match("grid", tiles, zones)
	require.NoError(t, err)
	second, err := Match("grid", tiles, zones)
	require.NoError(t, err)

	assert.Equal(t, len(tiles), first.Len())
	want := make([]int64, len(tiles))
	for i, tl := range tiles {
		want[i] = tl.ID
	}
	assert.Equal(t, want, first.Tiles())
	assert.True(t, first.Equal(second))
	assert.Equal(t, first.Pairs(), second.Pairs())

	// tile (row 2, col 4) coincides with "east"
	got, _ := first.Lookup(2*6 + 4)
	assert.Equal(t, "east", got)
	// tile in column 5 rows 0-1 touches no zone with area and falls back
	got, _ = first.Lookup(5)
	assert.NotEmpty(t, got)
}

func TestMatch_Errors(t *testing.T) {
	tests := []struct {
		name   string
		tiles  []Tile
		zones  []Zone
		target error
	}{
		{
			name:   "empty zone layer",
			tiles:  []Tile{tile(1, 0, 0, 1, 1)},
			zones:  nil,
			target: apperrors.ErrNoCorrespondence,
		},
		{
			name:   "crs mismatch",
			tiles:  []Tile{tile(1, 0, 0, 1, 1)},
			zones:  []Zone{{ID: "A", Geometry: rect(0, 0, 1, 1), CRS: WGS84}},
			target: apperrors.ErrGeometryInput,
		},
		{
			name:   "missing crs",
			tiles:  []Tile{{ID: 1, Geometry: rect(0, 0, 1, 1)}},
			zones:  []Zone{zone("A", 0, 0, 1, 1)},
			target: apperrors.ErrGeometryInput,
		},
		{
			name:   "malformed polygon",
			tiles:  []Tile{{ID: 1, Geometry: geom.Polygon{{{X: 0, Y: 0}, {X: 1, Y: 1}}}, CRS: Lambert93}},
			zones:  []Zone{zone("A", 0, 0, 1, 1)},
			target: apperrors.ErrGeometryInput,
		},
		{
			name:   "nil geometry",
			tiles:  []Tile{tile(1, 0, 0, 1, 1)},
			zones:  []Zone{{ID: "A", CRS: Lambert93}},
			target: apperrors.ErrGeometryInput,
		},
		{
			name:   "duplicate tile",
			tiles:  []Tile{tile(1, 0, 0, 1, 1), tile(1, 1, 0, 2, 1)},
			zones:  []Zone{zone("A", 0, 0, 2, 1)},
			target: apperrors.ErrGeometryInput,
		},
		{
			name:   "duplicate zone",
			tiles:  []Tile{tile(1, 0, 0, 1, 1)},
			zones:  []Zone{zone("A", 0, 0, 1, 1), zone("A", 1, 0, 2, 1)},
			target: apperrors.ErrGeometryInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Match("r", tt.tiles, tt.zones)
			require.Error(t, err)
			assert.Nil(t, c)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}
}

func TestMatch_AliasAndProj4AreTheSameCRS(t *testing.T) {
	tiles := []Tile{{ID: 1, Geometry: rect(0, 0, 1, 1), CRS: CRS(Lambert93.Proj4())}}
	zones := []Zone{zone("A", 0, 0, 1, 1)}

	_, err := Match("r", tiles, zones)
	assert.NoError(t, err)
}

func TestMatch_EmptyTileLayer(t *testing.T) {
	c, err := Match("empty", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestMatch_MultiPolygonZone(t *testing.T) {
	tiles := []Tile{tile(1, 0, 0, 4, 1)}
	zones := []Zone{
		// two parts of area 1 each
		{ID: "split", CRS: Lambert93, Geometry: geom.MultiPolygon{rect(0, 0, 1, 1), rect(2, 0, 3, 1)}},
		// overlap area 1.1
		zone("solid", 2.9, -1, 4, 2),
	}

	c, err := Match("multi", tiles, zones)
	require.NoError(t, err)
	got, _ := c.Lookup(1)
	assert.Equal(t, "split", got)
}

func TestCorrespondence(t *testing.T) {
	c, err := NewCorrespondence("Nice", []Pair{
		{Tile: 30, Zone: "B"},
		{Tile: 10, Zone: "A"},
		{Tile: 20, Zone: "B"},
	})
	require.NoError(t, err)

	assert.Equal(t, []int64{10, 20, 30}, c.Tiles())
	assert.Equal(t, []string{"10", "20", "30"}, c.TileLabels())
	assert.Equal(t, []string{"A", "B"}, c.Zones())
	assert.Equal(t, map[string][]int64{"A": {10}, "B": {20, 30}}, c.TilesOf())

	_, ok := c.Lookup(99)
	assert.False(t, ok)

	_, err = NewCorrespondence("Nice", []Pair{{Tile: 1, Zone: "A"}, {Tile: 1, Zone: "B"}})
	assert.True(t, errors.Is(err, apperrors.ErrGeometryInput))

	_, err = NewCorrespondence("Nice", []Pair{{Tile: 1}})
	assert.Error(t, err)

	id, err := ParseTileID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func BenchmarkMatch(b *testing.B) {
	tiles := grid(40)
	var zones []Zone
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			zones = append(zones, zone(fmt.Sprintf("Z%02d%02d", i, j), float64(i*5), float64(j*5), float64(i*5+5), float64(j*5+5)))
		}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Match("bench", tiles, zones); err != nil {
			b.Fatal(err)
		}
	}
}
