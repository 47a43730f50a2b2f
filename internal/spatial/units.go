package spatial

import (
	"strings"

	"github.com/ctessum/geom"

	apperrors "netmobcli/internal/errors"
)

// CRS identifies a coordinate reference system, either as a proj4 string or
// as one of the known EPSG aliases.
type CRS string

const (
	WGS84     CRS = "EPSG:4326"
	Lambert93 CRS = "EPSG:2154"
)

var crsAliases = map[CRS]string{
	WGS84:     "+proj=longlat +datum=WGS84 +no_defs",
	Lambert93: "+proj=lcc +lat_0=46.5 +lon_0=3 +lat_1=49 +lat_2=44 +x_0=700000 +y_0=6600000 +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +units=m +no_defs",
}

// Proj4 returns the proj4 definition of the CRS.
func (c CRS) Proj4() string {
	if def, ok := crsAliases[CRS(strings.ToUpper(strings.TrimSpace(string(c))))]; ok {
		return def
	}
	return strings.TrimSpace(string(c))
}

// Same reports whether two CRS values denote the same definition.
func (c CRS) Same(other CRS) bool {
	return c.Proj4() == other.Proj4()
}

// Tile is a regular grid cell carrying raw counters.
type Tile struct {
	ID       int64
	Geometry geom.Polygonal
	CRS      CRS
}

// Zone is an administrative polygon (IRIS) used as aggregation target.
type Zone struct {
	ID       string
	Geometry geom.Polygonal
	CRS      CRS
}

// LayerCRS returns the one CRS shared by every unit of both layers. A unit
// without a CRS or in another CRS is a GeometryInputError. Empty layers give
// an empty CRS.
func LayerCRS(tiles []Tile, zones []Zone) (CRS, error) {
	var ref CRS
	check := func(kind, id string, c CRS) error {
		if strings.TrimSpace(string(c)) == "" {
			return apperrors.NewGeometryInputError("%s %s has no CRS", kind, id)
		}
		if ref == "" {
			ref = c
			return nil
		}
		if !ref.Same(c) {
			return apperrors.NewGeometryInputError("%s %s is in CRS %q, expected %q", kind, id, c, ref).
				WithContext("crs", string(c))
		}
		return nil
	}
	for _, t := range tiles {
		if err := check("tile", formatTileID(t.ID), t.CRS); err != nil {
			return "", err
		}
	}
	for _, z := range zones {
		if err := check("zone", z.ID, z.CRS); err != nil {
			return "", err
		}
	}
	return ref, nil
}

// validateLayers checks both layers before any geometric work: every unit
// needs a CRS and a usable polygon, ids are unique per layer and all units
// share one CRS.
func validateLayers(tiles []Tile, zones []Zone) error {
	if _, err := LayerCRS(tiles, zones); err != nil {
		return err
	}

	seenTiles := make(map[int64]struct{}, len(tiles))
	for _, t := range tiles {
		id := formatTileID(t.ID)
		if !wellFormed(t.Geometry) {
			return apperrors.NewGeometryInputError("tile %s has a malformed polygon", id)
		}
		if _, dup := seenTiles[t.ID]; dup {
			return apperrors.NewGeometryInputError("duplicate tile id %s", id)
		}
		seenTiles[t.ID] = struct{}{}
	}

	seenZones := make(map[string]struct{}, len(zones))
	for _, z := range zones {
		if z.ID == "" {
			return apperrors.NewGeometryInputError("zone with empty id")
		}
		if !wellFormed(z.Geometry) {
			return apperrors.NewGeometryInputError("zone %s has a malformed polygon", z.ID)
		}
		if _, dup := seenZones[z.ID]; dup {
			return apperrors.NewGeometryInputError("duplicate zone id %s", z.ID)
		}
		seenZones[z.ID] = struct{}{}
	}
	return nil
}

// wellFormed accepts polygons whose every outer ring has at least three
// vertices.
func wellFormed(g geom.Polygonal) bool {
	if g == nil {
		return false
	}
	polys := polygons(g)
	if len(polys) == 0 {
		return false
	}
	for _, p := range polys {
		if len(p) == 0 || len(p[0]) < 3 {
			return false
		}
	}
	return true
}

func polygons(g geom.Polygonal) []geom.Polygon {
	switch v := g.(type) {
	case geom.Polygon:
		return []geom.Polygon{v}
	case geom.MultiPolygon:
		return v
	case *geom.Bounds:
		if v == nil {
			return nil
		}
		return []geom.Polygon{boundsPolygon(v)}
	}
	return nil
}

func boundsPolygon(b *geom.Bounds) geom.Polygon {
	return geom.Polygon{{
		{X: b.Min.X, Y: b.Min.Y},
		{X: b.Max.X, Y: b.Min.Y},
		{X: b.Max.X, Y: b.Max.Y},
		{X: b.Min.X, Y: b.Max.Y},
	}}
}
