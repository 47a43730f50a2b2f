package cube

import (
	"time"

	"netmobcli/internal/catalog"
	apperrors "netmobcli/internal/errors"
)

// InstantLayout formats instants in tables and exports.
const InstantLayout = "2006-01-02 15:04"

// SeriesAxes are the coordinates of a flattened cube. Origin and Horizon
// bound the observation window the series was flattened from and survive
// instant removal.
type SeriesAxes struct {
	Locations []string
	Instants  []time.Time
	Services  []string
	// Origin is midnight of the first observed day.
	Origin time.Time
	// Horizon is midnight after the last observed day.
	Horizon time.Time
}

func (a SeriesAxes) size() int {
	return len(a.Locations) * len(a.Instants) * len(a.Services)
}

func (a SeriesAxes) clone() SeriesAxes {
	out := a
	out.Locations = append([]string(nil), a.Locations...)
	out.Instants = append([]time.Time(nil), a.Instants...)
	out.Services = append([]string(nil), a.Services...)
	return out
}

// Series is a location × instant × service array. Like Cube it is
// immutable; filters return new series.
type Series struct {
	Kind catalog.TrafficKind
	axes SeriesAxes
	data []float64
}

// NewSeries wraps values laid out as (location, instant, service). A nil
// values slice yields a zero series.
func NewSeries(kind catalog.TrafficKind, axes SeriesAxes, values []float64) (*Series, error) {
	if values == nil {
		values = make([]float64, axes.size())
	}
	if len(values) != axes.size() {
		return nil, apperrors.NewAxisMismatchError("series axes span %d cells, got %d values", axes.size(), len(values))
	}
	return &Series{Kind: kind, axes: axes.clone(), data: append([]float64(nil), values...)}, nil
}

// Axes returns a copy of the series coordinates.
func (s *Series) Axes() SeriesAxes {
	return s.axes.clone()
}

// Instants returns the instant axis. The returned slice must not be modified.
func (s *Series) Instants() []time.Time {
	return s.axes.Instants
}

// Origin is midnight of the first observed day.
func (s *Series) Origin() time.Time { return s.axes.Origin }

// Horizon is midnight after the last observed day.
func (s *Series) Horizon() time.Time { return s.axes.Horizon }

// Len is the number of instants.
func (s *Series) Len() int {
	return len(s.axes.Instants)
}

// At returns the value at the given location, instant and service positions.
func (s *Series) At(l, i, sv int) float64 {
	return s.data[s.offset(l, i, sv)]
}

func (s *Series) offset(l, i, sv int) int {
	return (l*len(s.axes.Instants)+i)*len(s.axes.Services) + sv
}

// Keep returns a series restricted to the instants at the given positions,
// in the given order. Origin and Horizon are unchanged.
func (s *Series) Keep(positions []int) *Series {
	axes := s.axes.clone()
	axes.Instants = make([]time.Time, len(positions))
	for j, i := range positions {
		axes.Instants[j] = s.axes.Instants[i]
	}

	out := &Series{Kind: s.Kind, axes: axes, data: make([]float64, axes.size())}
	S := len(s.axes.Services)
	for l := range s.axes.Locations {
		for j, i := range positions {
			copy(out.data[out.offset(l, j, 0):out.offset(l, j, 0)+S], s.data[s.offset(l, i, 0):s.offset(l, i, 0)+S])
		}
	}
	return out
}

// Table lays one service of the series out as a location-major table over
// chronological instants.
func (s *Series) Table(service int) Table {
	cols := make([]string, len(s.axes.Instants))
	for i, t := range s.axes.Instants {
		cols[i] = t.Format(InstantLayout)
	}
	t := NewTable(s.axes.Locations, cols)
	for l := range s.axes.Locations {
		for i := range s.axes.Instants {
			t.Values[l][i] = s.At(l, i, service)
		}
	}
	return t
}
