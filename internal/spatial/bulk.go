package spatial

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// RegionInput holds the two layers of one region, already in one CRS.
type RegionInput struct {
	Region string
	Tiles  []Tile
	Zones  []Zone

	// Fallback, when set, is the full layer Zones was pruned from (see
	// ZonesNear). The nearest zone of a tile outside every zone is looked up
	// in it.
	Fallback []Zone
}

// RegionResult is the outcome of matching one region.
type RegionResult struct {
	Correspondence *Correspondence
	Stats          MatchStats
}

// MatchAll matches independent regions on at most workers goroutines.
// Results are returned in input order. The first failure cancels the
// regions not yet started.
func MatchAll(ctx context.Context, inputs []RegionInput, workers int) ([]RegionResult, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]RegionResult, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, in := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c, stats, err := MatchRegion(in)
			if err != nil {
				return fmt.Errorf("match region %s: %w", in.Region, err)
			}
			results[i] = RegionResult{Correspondence: c, Stats: stats}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// MatchRegion matches one region. When some tiles fell back to their nearest
// zone and a Fallback layer is given, the region is matched again against
// it: overlaps are unchanged, since every overlapping zone is near, but the
// nearest zone may be one that pruning left out.
func MatchRegion(in RegionInput) (*Correspondence, MatchStats, error) {
	c, stats, err := MatchWithStats(in.Region, in.Tiles, in.Zones)
	if err != nil || stats.ByNearest == 0 || len(in.Fallback) <= len(in.Zones) {
		return c, stats, err
	}
	return MatchWithStats(in.Region, in.Tiles, in.Fallback)
}
