package cube

import (
	"fmt"
	"math"
	"time"

	"netmobcli/internal/catalog"
	apperrors "netmobcli/internal/errors"
)

// SliceKey identifies one raw counter table: a city, a service and a day of a
// given traffic kind at a given geographic level.
type SliceKey struct {
	City    string
	Service string
	Day     time.Time
	Kind    catalog.TrafficKind
	Level   catalog.Level
}

func (k SliceKey) String() string {
	return fmt.Sprintf("%s/%s/%s/%s/%s", k.Level, k.City, k.Service, k.Day.Format("20060102"), k.Kind)
}

// Slice is a location × time-of-day table. Values holds one row per location,
// each row one value per time-of-day label.
type Slice struct {
	Locations []string
	Times     []catalog.TimeOfDay
	Values    [][]float64
}

// NewSlice returns a zero-filled slice over the given axes.
func NewSlice(locations []string, times []catalog.TimeOfDay) *Slice {
	values := make([][]float64, len(locations))
	for i := range values {
		values[i] = make([]float64, len(times))
	}
	return &Slice{Locations: locations, Times: times, Values: values}
}

// Validate checks that the value grid matches the axes.
func (s *Slice) Validate() error {
	if len(s.Values) != len(s.Locations) {
		return apperrors.NewAxisMismatchError("slice has %d rows for %d locations", len(s.Values), len(s.Locations))
	}
	for i, row := range s.Values {
		if len(row) != len(s.Times) {
			return apperrors.NewAxisMismatchError("slice row %s has %d values for %d times",
				s.Locations[i], len(row), len(s.Times))
		}
	}
	return nil
}

func (s *Slice) sameAxes(o *Slice) bool {
	if len(s.Locations) != len(o.Locations) || len(s.Times) != len(o.Times) {
		return false
	}
	for i := range s.Locations {
		if s.Locations[i] != o.Locations[i] {
			return false
		}
	}
	for i := range s.Times {
		if s.Times[i] != o.Times[i] {
			return false
		}
	}
	return true
}

// MissingReport counts the cells substituted with zero while building a cube.
type MissingReport struct {
	Missing int
	Total   int
	// BySlice holds the non-zero counts keyed by SliceKey.String().
	BySlice map[string]int
}

// Share is the fraction of substituted cells, 0 for an empty cube.
func (r MissingReport) Share() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Missing) / float64(r.Total)
}

func (r MissingReport) merge(o MissingReport) MissingReport {
	out := MissingReport{
		Missing: r.Missing + o.Missing,
		Total:   r.Total + o.Total,
	}
	if len(r.BySlice)+len(o.BySlice) > 0 {
		out.BySlice = make(map[string]int, len(r.BySlice)+len(o.BySlice))
		for k, v := range r.BySlice {
			out.BySlice[k] += v
		}
		for k, v := range o.BySlice {
			out.BySlice[k] += v
		}
	}
	return out
}

func isMissing(v float64) bool {
	return math.IsNaN(v)
}
