package geodata

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/ctessum/geom"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	apperrors "netmobcli/internal/errors"
	"netmobcli/internal/spatial"
)

// GeoJSON files carry no CRS member in RFC 7946, so layers are read as WGS84.
const DefaultCRS = spatial.WGS84

// ReadTiles loads a tile grid. Each feature must carry an integer id in the
// idField property.
func ReadTiles(path, idField string) ([]spatial.Tile, error) {
	fc, err := readCollection(path)
	if err != nil {
		return nil, err
	}

	tiles := make([]spatial.Tile, 0, len(fc.Features))
	for i, f := range fc.Features {
		id, err := integerProperty(f, idField)
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("%s: feature %d", path, i), err)
		}
		g, err := toPolygonal(f.Geometry)
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("%s: tile %d", path, id), err)
		}
		tiles = append(tiles, spatial.Tile{ID: id, Geometry: g, CRS: DefaultCRS})
	}
	return tiles, nil
}

// ReadZones loads an administrative zone layer keyed by the idField property.
func ReadZones(path, idField string) ([]spatial.Zone, error) {
	fc, err := readCollection(path)
	if err != nil {
		return nil, err
	}

	zones := make([]spatial.Zone, 0, len(fc.Features))
	for i, f := range fc.Features {
		id, ok := stringProperty(f, idField)
		if !ok {
			return nil, apperrors.NewParsingError(fmt.Sprintf("%s: feature %d has no %q property", path, i, idField), nil)
		}
		g, err := toPolygonal(f.Geometry)
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("%s: zone %s", path, id), err)
		}
		zones = append(zones, spatial.Zone{ID: id, Geometry: g, CRS: DefaultCRS})
	}
	return zones, nil
}

func readCollection(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, apperrors.NewParsingError("decode "+path, err)
	}
	return fc, nil
}

func integerProperty(f *geojson.Feature, key string) (int64, error) {
	v, ok := f.Properties[key]
	if !ok {
		if f.ID != nil {
			v = f.ID
		} else {
			return 0, fmt.Errorf("missing %q property", key)
		}
	}
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%q is not an integer: %v", key, n)
		}
		return int64(n), nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	}
	return 0, fmt.Errorf("%q has unsupported type %T", key, v)
}

func stringProperty(f *geojson.Feature, key string) (string, bool) {
	switch v := f.Properties[key].(type) {
	case string:
		return v, v != ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	}
	return "", false
}

// toPolygonal converts an orb polygon or multipolygon. Rings keep their
// vertex order; the closing vertex is dropped.
func toPolygonal(g orb.Geometry) (geom.Polygonal, error) {
	switch v := g.(type) {
	case orb.Polygon:
		return convertPolygon(v), nil
	case orb.MultiPolygon:
		mp := make(geom.MultiPolygon, 0, len(v))
		for _, p := range v {
			mp = append(mp, convertPolygon(p))
		}
		return mp, nil
	case orb.Bound:
		return convertPolygon(v.ToPolygon()), nil
	case nil:
		return nil, fmt.Errorf("feature has no geometry")
	}
	return nil, fmt.Errorf("unsupported geometry type %s", g.GeoJSONType())
}

func convertPolygon(p orb.Polygon) geom.Polygon {
	out := make(geom.Polygon, 0, len(p))
	for _, ring := range p {
		n := len(ring)
		if n > 1 && ring[0] == ring[n-1] {
			n--
		}
		path := make(geom.Path, n)
		for i := 0; i < n; i++ {
			path[i] = geom.Point{X: ring[i][0], Y: ring[i][1]}
		}
		out = append(out, path)
	}
	return out
}

// WriteZones encodes a zone layer, used for fixtures and exports of matched
// zones. Geometries are written as polygons or multipolygons.
func WriteZones(path, idField string, zones []spatial.Zone) error {
	fc := geojson.NewFeatureCollection()
	for _, z := range zones {
		f := geojson.NewFeature(fromPolygonal(z.Geometry))
		f.Properties[idField] = z.ID
		fc.Append(f)
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode zones: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// WriteTiles encodes a tile layer.
func WriteTiles(path, idField string, tiles []spatial.Tile) error {
	fc := geojson.NewFeatureCollection()
	for _, t := range tiles {
		f := geojson.NewFeature(fromPolygonal(t.Geometry))
		f.Properties[idField] = t.ID
		fc.Append(f)
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode tiles: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func fromPolygonal(g geom.Polygonal) orb.Geometry {
	toOrb := func(p geom.Polygon) orb.Polygon {
		out := make(orb.Polygon, 0, len(p))
		for _, path := range p {
			ring := make(orb.Ring, 0, len(path)+1)
			for _, pt := range path {
				ring = append(ring, orb.Point{pt.X, pt.Y})
			}
			if len(ring) > 0 {
				ring = append(ring, ring[0])
			}
			out = append(out, ring)
		}
		return out
	}

	switch v := g.(type) {
	case geom.MultiPolygon:
		mp := make(orb.MultiPolygon, 0, len(v))
		for _, p := range v {
			mp = append(mp, toOrb(p))
		}
		return mp
	case geom.Polygon:
		return toOrb(v)
	}
	return orb.Polygon{}
}
