package spatial

import (
	"sort"
	"strconv"

	apperrors "netmobcli/internal/errors"
)

// Pair maps one tile to its zone.
type Pair struct {
	Tile int64  `db:"tile" json:"tile"`
	Zone string `db:"iris" json:"iris"`
}

// Correspondence is the total tile to zone mapping of one region. It is
// immutable; pairs are sorted by tile id.
type Correspondence struct {
	Region string
	pairs  []Pair
	byTile map[int64]string
}

// NewCorrespondence builds a correspondence from stored pairs. Duplicate
// tile ids are rejected since the mapping must be a function.
func NewCorrespondence(region string, pairs []Pair) (*Correspondence, error) {
	sorted := make([]Pair, len(pairs))
	copy(sorted, pairs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Tile < sorted[j].Tile })

	byTile := make(map[int64]string, len(sorted))
	for _, p := range sorted {
		if _, dup := byTile[p.Tile]; dup {
			return nil, apperrors.NewGeometryInputError("tile %d mapped twice in region %s", p.Tile, region)
		}
		if p.Zone == "" {
			return nil, apperrors.NewGeometryInputError("tile %d has an empty zone in region %s", p.Tile, region)
		}
		byTile[p.Tile] = p.Zone
	}
	return &Correspondence{Region: region, pairs: sorted, byTile: byTile}, nil
}

// Lookup returns the zone of a tile.
func (c *Correspondence) Lookup(tile int64) (string, bool) {
	z, ok := c.byTile[tile]
	return z, ok
}

// Len returns the number of mapped tiles.
func (c *Correspondence) Len() int {
	return len(c.pairs)
}

// Pairs returns a copy of the pairs in tile order.
func (c *Correspondence) Pairs() []Pair {
	out := make([]Pair, len(c.pairs))
	copy(out, c.pairs)
	return out
}

// Tiles returns the sorted tile ids.
func (c *Correspondence) Tiles() []int64 {
	out := make([]int64, len(c.pairs))
	for i, p := range c.pairs {
		out[i] = p.Tile
	}
	return out
}

// TileLabels returns the sorted tile ids formatted as location labels.
func (c *Correspondence) TileLabels() []string {
	out := make([]string, len(c.pairs))
	for i, p := range c.pairs {
		out[i] = formatTileID(p.Tile)
	}
	return out
}

// Zones returns the sorted, unique zone ids. This is the location axis of
// zone-level cubes.
func (c *Correspondence) Zones() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range c.pairs {
		if _, ok := seen[p.Zone]; ok {
			continue
		}
		seen[p.Zone] = struct{}{}
		out = append(out, p.Zone)
	}
	sort.Strings(out)
	return out
}

// TilesOf groups tile ids by zone.
func (c *Correspondence) TilesOf() map[string][]int64 {
	out := make(map[string][]int64)
	for _, p := range c.pairs {
		out[p.Zone] = append(out[p.Zone], p.Tile)
	}
	return out
}

// Equal reports whether two correspondences hold the same pairs.
func (c *Correspondence) Equal(other *Correspondence) bool {
	if c == nil || other == nil {
		return c == other
	}
	if c.Region != other.Region || len(c.pairs) != len(other.pairs) {
		return false
	}
	for i := range c.pairs {
		if c.pairs[i] != other.pairs[i] {
			return false
		}
	}
	return true
}

func formatTileID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// ParseTileID parses a location label produced by TileLabels.
func ParseTileID(label string) (int64, error) {
	return strconv.ParseInt(label, 10, 64)
}
