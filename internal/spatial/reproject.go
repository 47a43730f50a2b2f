package spatial

import (
	"fmt"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"

	apperrors "netmobcli/internal/errors"
)

// transformer caches one coordinate transform per source CRS.
type transformer struct {
	target   CRS
	targetSR *proj.SR
	cache    map[string]proj.Transformer
}

func newTransformer(target CRS) (*transformer, error) {
	sr, err := proj.Parse(target.Proj4())
	if err != nil {
		return nil, apperrors.NewGeometryInputError("cannot parse target CRS %q: %v", target, err)
	}
	return &transformer{target: target, targetSR: sr, cache: make(map[string]proj.Transformer)}, nil
}

func (t *transformer) apply(g geom.Polygonal, src CRS) (geom.Polygonal, error) {
	if src.Same(t.target) {
		return g, nil
	}
	key := src.Proj4()
	ct, ok := t.cache[key]
	if !ok {
		sr, err := proj.Parse(key)
		if err != nil {
			return nil, apperrors.NewGeometryInputError("cannot parse CRS %q: %v", src, err)
		}
		ct, err = sr.NewTransform(t.targetSR)
		if err != nil {
			return nil, apperrors.NewGeometryInputError("no transform from %q to %q: %v", src, t.target, err)
		}
		t.cache[key] = ct
	}

	out, err := g.Transform(ct)
	if err != nil {
		return nil, fmt.Errorf("transform geometry: %w", err)
	}
	poly, ok := out.(geom.Polygonal)
	if !ok {
		return nil, apperrors.NewGeometryInputError("transform produced a %T", out)
	}
	return poly, nil
}

// ReprojectTiles returns a copy of the tile layer expressed in target.
func ReprojectTiles(tiles []Tile, target CRS) ([]Tile, error) {
	tr, err := newTransformer(target)
	if err != nil {
		return nil, err
	}
	out := make([]Tile, len(tiles))
	for i, t := range tiles {
		if t.Geometry == nil || t.CRS == "" {
			return nil, apperrors.NewGeometryInputError("tile %d has no geometry or CRS", t.ID)
		}
		g, err := tr.apply(t.Geometry, t.CRS)
		if err != nil {
			return nil, fmt.Errorf("tile %d: %w", t.ID, err)
		}
		out[i] = Tile{ID: t.ID, Geometry: g, CRS: target}
	}
	return out, nil
}

// ReprojectZones returns a copy of the zone layer expressed in target.
func ReprojectZones(zones []Zone, target CRS) ([]Zone, error) {
	tr, err := newTransformer(target)
	if err != nil {
		return nil, err
	}
	out := make([]Zone, len(zones))
	for i, z := range zones {
		if z.Geometry == nil || z.CRS == "" {
			return nil, apperrors.NewGeometryInputError("zone %s has no geometry or CRS", z.ID)
		}
		g, err := tr.apply(z.Geometry, z.CRS)
		if err != nil {
			return nil, fmt.Errorf("zone %s: %w", z.ID, err)
		}
		out[i] = Zone{ID: z.ID, Geometry: g, CRS: target}
	}
	return out, nil
}

// ZonesNear keeps the zones whose bounding box lies within margin of the
// tile layer's envelope. Every zone overlapping a tile is kept. The nearest
// zone of a tile that overlaps nothing may not be, so pass the full layer as
// RegionInput.Fallback when matching the subset. If nothing is near, every
// zone is returned.
func ZonesNear(zones []Zone, tiles []Tile, margin float64) []Zone {
	if len(tiles) == 0 {
		return nil
	}
	env := geom.NewBounds()
	for _, t := range tiles {
		if t.Geometry != nil {
			env.Extend(t.Geometry.Bounds())
		}
	}
	env.Min.X -= margin
	env.Min.Y -= margin
	env.Max.X += margin
	env.Max.Y += margin

	var out []Zone
	for _, z := range zones {
		if z.Geometry != nil && env.Overlaps(z.Geometry.Bounds()) {
			out = append(out, z)
		}
	}
	if len(out) == 0 {
		return zones
	}
	return out
}
