package night

import (
	"time"

	"gonum.org/v1/gonum/floats"

	"netmobcli/internal/calendar"
	"netmobcli/internal/catalog"
	"netmobcli/internal/cube"
	apperrors "netmobcli/internal/errors"
	"netmobcli/internal/noise"
)

// LocationTotals sums every instant of the window per location and service.
// Sums are divided by the number of slots per hour, so values are in
// hour equivalents of traffic.
func LocationTotals(w *Window) cube.Table {
	s := w.Series
	axes := s.Axes()
	t := cube.NewTable(axes.Locations, axes.Services)

	column := make([]float64, len(axes.Instants))
	for l := range axes.Locations {
		for sv := range axes.Services {
			for i := range axes.Instants {
				column[i] = s.At(l, i, sv)
			}
			t.Values[l][sv] = floats.Sum(column) / catalog.SlotsPerHour
		}
	}
	return t
}

// ConsumptionByLocation drops the noisy periods of the series, keeps the
// night window and reduces it to per-location hour equivalents.
func ConsumptionByLocation(s *cube.Series, ex calendar.CityExclusions, p noise.Policy, start, end catalog.TimeOfDay) cube.Table {
	return LocationTotals(SelectWindow(noise.Exclude(s, ex, p), start, end))
}

// TimeSeries subsets and sums the services of a cube, flattens it and drops
// the noisy periods, returning one row per location over the remaining
// instants. A nil services list uses the night-series categories of the
// catalog present in the cube.
func TimeSeries(c *cube.Cube, ex calendar.CityExclusions, services []string, p noise.Policy) (cube.Table, error) {
	if services == nil {
		for _, name := range catalog.ServicesIn(catalog.NightSeriesCategories...) {
			if _, ok := c.ServiceIndex(name); ok {
				services = append(services, name)
			}
		}
	}
	if len(services) == 0 {
		return cube.Table{}, apperrors.NewAppValidationError("no night-series service in cube")
	}
	picked, err := c.SelectServices(services)
	if err != nil {
		return cube.Table{}, err
	}
	series := noise.Exclude(picked.SumServices().Flatten(), ex, p)
	return series.Table(0), nil
}

// Profile holds night traffic summed over every night, grouped by time of
// day. Times are in night order.
type Profile struct {
	Locations []string
	Times     []catalog.TimeOfDay
	Services  []string
	values    []float64
}

// At returns the value for the given location, time and service positions.
func (p *Profile) At(l, t, s int) float64 {
	return p.values[(l*len(p.Times)+t)*len(p.Services)+s]
}

// Record is one cell of a profile.
type Record struct {
	Location string
	Time     catalog.TimeOfDay
	Service  string
	Value    float64
}

// Records flattens the profile, location-major.
func (p *Profile) Records() []Record {
	out := make([]Record, 0, len(p.values))
	for l, loc := range p.Locations {
		for t, tod := range p.Times {
			for s, svc := range p.Services {
				out = append(out, Record{Location: loc, Time: tod, Service: svc, Value: p.At(l, t, s)})
			}
		}
	}
	return out
}

// TimeOfDayProfile sums a night window over its nights, keeping one entry
// per time-of-day label.
func TimeOfDayProfile(w *Window) *Profile {
	axes := w.Series.Axes()

	slot := make(map[catalog.TimeOfDay]int)
	var labels []catalog.TimeOfDay
	for _, t := range axes.Instants {
		tod := label(t)
		if _, ok := slot[tod]; !ok {
			slot[tod] = 0
			labels = append(labels, tod)
		}
	}
	labels = Order(labels, w.Start)
	for i, tod := range labels {
		slot[tod] = i
	}

	p := &Profile{
		Locations: axes.Locations,
		Times:     labels,
		Services:  axes.Services,
		values:    make([]float64, len(axes.Locations)*len(labels)*len(axes.Services)),
	}
	for l := range axes.Locations {
		for i, t := range axes.Instants {
			ti := slot[label(t)]
			for s := range axes.Services {
				p.values[(l*len(labels)+ti)*len(axes.Services)+s] += w.Series.At(l, i, s)
			}
		}
	}
	return p
}

func label(t time.Time) catalog.TimeOfDay {
	return catalog.TimeOfDay(t.Sub(catalog.Truncate(t)) / time.Minute)
}

// MergeProfiles concatenates profiles computed on service batches of the same
// locations and window along the service axis.
func MergeProfiles(parts ...*Profile) *Profile {
	if len(parts) == 0 {
		return &Profile{}
	}
	if len(parts) == 1 {
		return parts[0]
	}

	first := parts[0]
	out := &Profile{Locations: first.Locations, Times: first.Times}
	for _, p := range parts {
		out.Services = append(out.Services, p.Services...)
	}
	out.values = make([]float64, len(out.Locations)*len(out.Times)*len(out.Services))

	S := len(out.Services)
	offset := 0
	for _, p := range parts {
		for l := range out.Locations {
			for t, tod := range out.Times {
				src := indexOf(p.Times, tod)
				if src < 0 {
					continue
				}
				for s := range p.Services {
					out.values[(l*len(out.Times)+t)*S+offset+s] = p.At(l, src, s)
				}
			}
		}
		offset += len(p.Services)
	}
	return out
}

func indexOf(times []catalog.TimeOfDay, t catalog.TimeOfDay) int {
	for i, v := range times {
		if v == t {
			return i
		}
	}
	return -1
}
