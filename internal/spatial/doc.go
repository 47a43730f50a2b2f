// Package spatial maps raw traffic tiles onto administrative zones (IRIS).
//
// # Architecture
//
// Match takes the tile grid and the zone layer of one region, expressed in
// the same planar CRS, and returns a Correspondence: exactly one zone per
// tile, sorted by tile id.
//
//   - Zones are indexed in an R-tree; each tile is intersected with the zones
//     whose bounds overlap its own.
//   - The zone with the largest intersection area wins.
//   - Tiles touching no zone (grid edges, sea) fall back to the zone whose
//     boundary is closest.
//   - Equal areas or distances, within a relative tolerance of 1e-9, resolve
//     to the lexicographically smallest zone id.
//
// Layers read in geographic coordinates go through ReprojectTiles and
// ReprojectZones first; Lambert-93 (EPSG:2154) is the default metric CRS.
//
// # Reuse
//
// Registry memoizes correspondences per region on top of a Store, building
// only what the store lacks. MatchAll fans independent regions out over a
// bounded worker pool.
//
// # Usage
//
//	tiles, _ = spatial.ReprojectTiles(tiles, spatial.Lambert93)
//	zones, _ = spatial.ReprojectZones(zones, spatial.Lambert93)
//	corr, err := spatial.Match("Paris", tiles, zones)
//	if err != nil {
//	    return err
//	}
//	zone, _ := corr.Lookup(tileID)
package spatial
