package cube

import (
	"math"
	"time"

	"netmobcli/internal/catalog"
	apperrors "netmobcli/internal/errors"
)

// TotalService labels the single service entry left by SumServices.
const TotalService = "total"

// Axes are the coordinates of a cube, in axis order.
type Axes struct {
	Locations []string
	Times     []catalog.TimeOfDay
	Services  []string
	Days      []time.Time
}

// Size is the number of cells spanned by the axes.
func (a Axes) Size() int {
	return len(a.Locations) * len(a.Times) * len(a.Services) * len(a.Days)
}

// Equal reports whether both axes have the same labels in the same order.
func (a Axes) Equal(b Axes) bool {
	if len(a.Locations) != len(b.Locations) || len(a.Times) != len(b.Times) ||
		len(a.Services) != len(b.Services) || len(a.Days) != len(b.Days) {
		return false
	}
	for i := range a.Locations {
		if a.Locations[i] != b.Locations[i] {
			return false
		}
	}
	for i := range a.Times {
		if a.Times[i] != b.Times[i] {
			return false
		}
	}
	for i := range a.Services {
		if a.Services[i] != b.Services[i] {
			return false
		}
	}
	for i := range a.Days {
		if !a.Days[i].Equal(b.Days[i]) {
			return false
		}
	}
	return true
}

func (a Axes) clone() Axes {
	return Axes{
		Locations: append([]string(nil), a.Locations...),
		Times:     append([]catalog.TimeOfDay(nil), a.Times...),
		Services:  append([]string(nil), a.Services...),
		Days:      append([]time.Time(nil), a.Days...),
	}
}

// Cube is a dense location × time_of_day × service × day array of traffic
// values. It is never modified after construction.
type Cube struct {
	Kind    catalog.TrafficKind
	axes    Axes
	data    []float64
	missing MissingReport
}

// Generate builds a cube whose cells are given by f. It is the constructor
// for cubes that do not come from raw slices.
func Generate(kind catalog.TrafficKind, axes Axes, f func(l, t, s, d int) float64) *Cube {
	c := &Cube{Kind: kind, axes: axes.clone(), data: make([]float64, axes.Size())}
	L, T, S, D := c.shape()
	for l := 0; l < L; l++ {
		for t := 0; t < T; t++ {
			for s := 0; s < S; s++ {
				for d := 0; d < D; d++ {
					c.data[c.offset(l, t, s, d)] = f(l, t, s, d)
				}
			}
		}
	}
	return c
}

// Build stacks raw slices into a cube, services first then days. Every
// (service, day) pair must have exactly one slice and all slices must share
// the same location and time-of-day axes. NaN cells become 0 and are counted
// in the cube's MissingReport.
func Build(services []string, days []time.Time, raw map[SliceKey]*Slice) (*Cube, error) {
	if len(services) == 0 || len(days) == 0 {
		return nil, apperrors.NewAxisMismatchError("cube needs at least one service and one day, got %d and %d",
			len(services), len(days))
	}
	if err := checkDays(days); err != nil {
		return nil, err
	}

	type plane struct {
		service string
		day     time.Time
	}
	planes := make(map[plane]SliceKey, len(raw))
	var kind catalog.TrafficKind
	for k := range raw {
		p := plane{k.Service, catalog.Truncate(k.Day)}
		if other, dup := planes[p]; dup {
			return nil, apperrors.NewAxisMismatchError("slices %s and %s cover the same service and day", other, k)
		}
		planes[p] = k
		if kind == "" {
			kind = k.Kind
		} else if k.Kind != kind {
			return nil, apperrors.NewAxisMismatchError("slices mix traffic kinds %s and %s", kind, k.Kind)
		}
	}

	ordered := make([]*Slice, 0, len(services)*len(days))
	keys := make([]SliceKey, 0, cap(ordered))
	for _, s := range services {
		for _, d := range days {
			k, ok := planes[plane{s, catalog.Truncate(d)}]
			if !ok {
				return nil, apperrors.NewAxisMismatchError("no slice for service %s on %s", s, d.Format("2006-01-02")).
					WithContext("service", s)
			}
			sl := raw[k]
			if sl == nil {
				return nil, apperrors.NewAxisMismatchError("slice %s is nil", k)
			}
			if err := sl.Validate(); err != nil {
				return nil, err
			}
			if len(ordered) > 0 && !ordered[0].sameAxes(sl) {
				return nil, apperrors.NewAxisMismatchError("slice %s does not share the axes of %s", k, keys[0])
			}
			ordered = append(ordered, sl)
			keys = append(keys, k)
		}
	}
	if len(planes) != len(ordered) {
		return nil, apperrors.NewAxisMismatchError("%d slices given for %d services × %d days",
			len(planes), len(services), len(days))
	}

	first := ordered[0]
	if err := checkTimes(first.Times); err != nil {
		return nil, err
	}
	c := &Cube{
		Kind: kind,
		axes: Axes{
			Locations: append([]string(nil), first.Locations...),
			Times:     append([]catalog.TimeOfDay(nil), first.Times...),
			Services:  append([]string(nil), services...),
			Days:      make([]time.Time, len(days)),
		},
	}
	for i, d := range days {
		c.axes.Days[i] = catalog.Truncate(d)
	}
	c.data = make([]float64, c.axes.Size())
	c.missing.Total = len(c.data)

	D := len(days)
	for i, sl := range ordered {
		s, d := i/D, i%D
		missing := 0
		for l, row := range sl.Values {
			for t, v := range row {
				if isMissing(v) {
					missing++
					v = 0
				}
				c.data[c.offset(l, t, s, d)] = v
			}
		}
		if missing > 0 {
			if c.missing.BySlice == nil {
				c.missing.BySlice = make(map[string]int)
			}
			c.missing.BySlice[keys[i].String()] = missing
			c.missing.Missing += missing
		}
	}
	return c, nil
}

func checkDays(days []time.Time) error {
	for i := 1; i < len(days); i++ {
		if !catalog.Truncate(days[i]).After(catalog.Truncate(days[i-1])) {
			return apperrors.NewAxisMismatchError("days must be strictly ascending: %s after %s",
				days[i].Format("2006-01-02"), days[i-1].Format("2006-01-02"))
		}
	}
	return nil
}

func checkTimes(times []catalog.TimeOfDay) error {
	for i, t := range times {
		if t < 0 || t >= catalog.At(24, 0) {
			return apperrors.NewAxisMismatchError("time of day %d out of range", int(t))
		}
		if i > 0 && t <= times[i-1] {
			return apperrors.NewAxisMismatchError("times of day must be strictly ascending: %s after %s", t, times[i-1])
		}
	}
	return nil
}

// Axes returns a copy of the cube coordinates.
func (c *Cube) Axes() Axes {
	return c.axes.clone()
}

// Missing returns the substitution report collected while building the cube.
func (c *Cube) Missing() MissingReport {
	return c.missing
}

// At returns the value at the given axis positions.
func (c *Cube) At(l, t, s, d int) float64 {
	return c.data[c.offset(l, t, s, d)]
}

func (c *Cube) shape() (int, int, int, int) {
	return len(c.axes.Locations), len(c.axes.Times), len(c.axes.Services), len(c.axes.Days)
}

func (c *Cube) offset(l, t, s, d int) int {
	_, T, S, D := c.shape()
	return ((l*T+t)*S+s)*D + d
}

func (c *Cube) derive(kind catalog.TrafficKind, axes Axes) *Cube {
	return &Cube{Kind: kind, axes: axes, data: make([]float64, axes.Size()), missing: c.missing}
}

// Sum adds two cubes cell by cell, typically uplink and downlink. The axes
// must be identical.
func Sum(a, b *Cube) (*Cube, error) {
	if !a.axes.Equal(b.axes) {
		return nil, apperrors.NewAxisMismatchError("cannot sum %s and %s cubes with different axes", a.Kind, b.Kind)
	}
	out := a.derive(catalog.UplinkDownlink, a.axes.clone())
	for i := range out.data {
		out.data[i] = a.data[i] + b.data[i]
	}
	out.missing = a.missing.merge(b.missing)
	return out, nil
}

// PerUser divides every service plane by the average consumption of that
// service, turning volumes into user equivalents.
func PerUser(c *Cube, consumption map[string]float64) (*Cube, error) {
	factors := make([]float64, len(c.axes.Services))
	for i, s := range c.axes.Services {
		v, ok := consumption[s]
		if !ok {
			v = math.NaN()
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return nil, apperrors.NewInvalidServiceConsumptionError(s, v)
		}
		factors[i] = v
	}

	out := c.derive(catalog.Users, c.axes.clone())
	L, T, S, D := c.shape()
	for l := 0; l < L; l++ {
		for t := 0; t < T; t++ {
			for s := 0; s < S; s++ {
				for d := 0; d < D; d++ {
					i := c.offset(l, t, s, d)
					out.data[i] = c.data[i] / factors[s]
				}
			}
		}
	}
	return out, nil
}

// Concat stacks cubes along the location axis, in argument order. All other
// axes must be identical.
func Concat(cubes ...*Cube) (*Cube, error) {
	if len(cubes) == 0 {
		return nil, apperrors.NewAxisMismatchError("nothing to concatenate")
	}
	if len(cubes) == 1 {
		return cubes[0], nil
	}

	first := cubes[0]
	ref := first.axes
	ref.Locations = nil
	var locations []string
	missing := MissingReport{}
	for i, c := range cubes {
		other := c.axes
		other.Locations = nil
		if !other.Equal(ref) {
			return nil, apperrors.NewAxisMismatchError("cube %d does not share time, service and day axes", i)
		}
		if c.Kind != first.Kind {
			return nil, apperrors.NewAxisMismatchError("cannot concatenate %s and %s cubes", first.Kind, c.Kind)
		}
		locations = append(locations, c.axes.Locations...)
		missing = missing.merge(c.missing)
	}
	axes := first.axes.clone()
	axes.Locations = locations

	out := &Cube{Kind: first.Kind, axes: axes, missing: missing}
	out.data = make([]float64, 0, axes.Size())
	// location is the outermost axis, so blocks append in order
	for _, c := range cubes {
		out.data = append(out.data, c.data...)
	}
	return out, nil
}

// SelectServices keeps the named services, in the given order.
func (c *Cube) SelectServices(names []string) (*Cube, error) {
	index := make(map[string]int, len(c.axes.Services))
	for i, s := range c.axes.Services {
		index[s] = i
	}
	picked := make([]int, len(names))
	for i, n := range names {
		j, ok := index[n]
		if !ok {
			return nil, apperrors.NewNotFoundError("service " + n).WithContext("service", n)
		}
		picked[i] = j
	}

	axes := c.axes.clone()
	axes.Services = append([]string(nil), names...)
	out := c.derive(c.Kind, axes)
	L, T, _, D := c.shape()
	for l := 0; l < L; l++ {
		for t := 0; t < T; t++ {
			for s, src := range picked {
				for d := 0; d < D; d++ {
					out.data[out.offset(l, t, s, d)] = c.data[c.offset(l, t, src, d)]
				}
			}
		}
	}
	return out, nil
}

// SumServices collapses the service axis into a single TotalService entry.
func (c *Cube) SumServices() *Cube {
	axes := c.axes.clone()
	axes.Services = []string{TotalService}
	out := c.derive(c.Kind, axes)
	L, T, S, D := c.shape()
	for l := 0; l < L; l++ {
		for t := 0; t < T; t++ {
			for s := 0; s < S; s++ {
				for d := 0; d < D; d++ {
					out.data[out.offset(l, t, 0, d)] += c.data[c.offset(l, t, s, d)]
				}
			}
		}
	}
	return out
}

// Flatten replaces the day and time-of-day axes by absolute instants,
// day-major, giving a location × instant × service series.
func (c *Cube) Flatten() *Series {
	L, T, S, D := c.shape()
	instants := make([]time.Time, 0, D*T)
	for _, day := range c.axes.Days {
		for _, tod := range c.axes.Times {
			instants = append(instants, day.Add(tod.Duration()))
		}
	}

	axes := SeriesAxes{
		Locations: append([]string(nil), c.axes.Locations...),
		Instants:  instants,
		Services:  append([]string(nil), c.axes.Services...),
	}
	if D > 0 {
		axes.Origin = c.axes.Days[0]
		axes.Horizon = c.axes.Days[D-1].AddDate(0, 0, 1)
	}

	s := &Series{Kind: c.Kind, axes: axes, data: make([]float64, L*len(instants)*S)}
	for l := 0; l < L; l++ {
		for d := 0; d < D; d++ {
			for t := 0; t < T; t++ {
				i := d*T + t
				for sv := 0; sv < S; sv++ {
					s.data[s.offset(l, i, sv)] = c.data[c.offset(l, t, sv, d)]
				}
			}
		}
	}
	return s
}

// Locations returns the location axis in order.
func (c *Cube) Locations() []string {
	return append([]string(nil), c.axes.Locations...)
}

// ServiceIndex returns the position of a service on the service axis.
func (c *Cube) ServiceIndex(name string) (int, bool) {
	for i, s := range c.axes.Services {
		if s == name {
			return i, true
		}
	}
	return 0, false
}
