package spatial

import (
	"math"
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"

	apperrors "netmobcli/internal/errors"
)

// relTolerance is the relative gap under which two areas or two distances are
// considered equal and the zone id decides.
const relTolerance = 1e-9

// MatchStats counts how the tiles of a region were assigned.
type MatchStats struct {
	Region    string
	Tiles     int
	Zones     int
	ByArea    int
	ByNearest int
}

// indexedZone is the rtree entry for a zone.
type indexedZone struct {
	geom.Polygonal
	idx int
}

// Match maps every tile to exactly one zone. A tile goes to the zone with the
// largest intersection area; a tile intersecting no zone goes to the zone at
// the smallest boundary distance. Ties resolve to the smallest zone id, so
// the result only depends on the two layers.
//
// Both layers must already share one planar CRS (see Reproject).
func Match(region string, tiles []Tile, zones []Zone) (*Correspondence, error) {
	c, _, err := MatchWithStats(region, tiles, zones)
	return c, err
}

// MatchWithStats is Match that also reports how tiles were assigned.
func MatchWithStats(region string, tiles []Tile, zones []Zone) (*Correspondence, MatchStats, error) {
	stats := MatchStats{Region: region, Tiles: len(tiles), Zones: len(zones)}

	if err := validateLayers(tiles, zones); err != nil {
		return nil, stats, err
	}
	if len(tiles) > 0 && len(zones) == 0 {
		return nil, stats, apperrors.NewNoCorrespondenceError(region).WithContext("tiles", len(tiles))
	}

	tree := rtree.NewTree(25, 50)
	for i, z := range zones {
		tree.Insert(indexedZone{Polygonal: z.Geometry, idx: i})
	}

	pairs := make([]Pair, 0, len(tiles))
	for _, t := range tiles {
		idx, ok := largestOverlap(t, zones, tree)
		if ok {
			stats.ByArea++
		} else {
			idx = nearestZone(t, zones)
			stats.ByNearest++
		}
		pairs = append(pairs, Pair{Tile: t.ID, Zone: zones[idx].ID})
	}

	c, err := NewCorrespondence(region, pairs)
	if err != nil {
		return nil, stats, err
	}
	return c, stats, nil
}

// largestOverlap returns the index of the zone sharing the most area with the
// tile, or false when no zone overlaps it with positive area.
func largestOverlap(t Tile, zones []Zone, tree *rtree.Rtree) (int, bool) {
	hits := tree.SearchIntersect(t.Geometry.Bounds())
	candidates := make([]int, 0, len(hits))
	for _, h := range hits {
		candidates = append(candidates, h.(indexedZone).idx)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return zones[candidates[i]].ID < zones[candidates[j]].ID
	})

	best, bestArea := -1, 0.0
	for _, idx := range candidates {
		isect := t.Geometry.Intersection(zones[idx].Geometry)
		if isect == nil {
			continue
		}
		area := isect.Area()
		if area <= 0 {
			continue
		}
		// candidates are in id order, so a tie keeps the earlier zone
		if best < 0 || area > bestArea+tolerance(area, bestArea) {
			best, bestArea = idx, area
		}
	}
	return best, best >= 0
}

// nearestZone scans every zone for the smallest boundary distance. Zones
// whose bounding box is already farther than the current best are skipped.
func nearestZone(t Tile, zones []Zone) int {
	order := make([]int, len(zones))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return zones[order[i]].ID < zones[order[j]].ID })

	tb := t.Geometry.Bounds()
	best, bestDist := -1, math.Inf(1)
	for _, idx := range order {
		z := zones[idx]
		if best >= 0 && boundsDistance(tb, z.Geometry.Bounds()) > bestDist+tolerance(bestDist, bestDist) {
			continue
		}
		d := boundaryDistance(t.Geometry, z.Geometry)
		if best < 0 || d < bestDist-tolerance(d, bestDist) {
			best, bestDist = idx, d
		}
	}
	return best
}

func tolerance(a, b float64) float64 {
	return relTolerance * math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}
