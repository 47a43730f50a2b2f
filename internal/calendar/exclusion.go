package calendar

import (
	"sort"
	"strings"
	"time"

	"netmobcli/internal/catalog"
)

// ExclusionSet is an immutable set of calendar days.
type ExclusionSet struct {
	days map[time.Time]struct{}
}

// NewExclusionSet builds a set from the given dates. Clock parts are dropped.
func NewExclusionSet(dates ...time.Time) ExclusionSet {
	days := make(map[time.Time]struct{}, len(dates))
	for _, d := range dates {
		days[catalog.Truncate(d)] = struct{}{}
	}
	return ExclusionSet{days: days}
}

// Contains reports whether the calendar day of t is in the set.
func (s ExclusionSet) Contains(t time.Time) bool {
	_, ok := s.days[catalog.Truncate(t)]
	return ok
}

// Len returns the number of days in the set.
func (s ExclusionSet) Len() int {
	return len(s.days)
}

// Dates returns the days in ascending order.
func (s ExclusionSet) Dates() []time.Time {
	out := make([]time.Time, 0, len(s.days))
	for d := range s.days {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Union returns a new set holding the days of both sets.
func (s ExclusionSet) Union(other ExclusionSet) ExclusionSet {
	return NewExclusionSet(append(s.Dates(), other.Dates()...)...)
}

// Shift returns a new set with every day moved by the given number of days.
func (s ExclusionSet) Shift(days int) ExclusionSet {
	dates := s.Dates()
	for i := range dates {
		dates[i] = dates[i].AddDate(0, 0, days)
	}
	return NewExclusionSet(dates...)
}

// CityExclusions groups the noisy-period catalogs relevant to one city.
type CityExclusions struct {
	City      string
	Holidays  ExclusionSet
	Weekends  ExclusionSet
	Anomalies ExclusionSet
}

// ForCity assembles the exclusion catalogs of a city over the observation
// window.
func ForCity(city string) CityExclusions {
	return CityExclusions{
		City:      city,
		Holidays:  NewExclusionSet(Holidays()...),
		Weekends:  NewExclusionSet(WeekendDays(catalog.WindowStart, catalog.WindowEnd)...),
		Anomalies: NewExclusionSet(Anomalies(city)...),
	}
}

// ForCities merges the catalogs of several cities for a series spanning
// them: a day that is an anomaly in any of the cities is one for all.
func ForCities(cities ...string) CityExclusions {
	if len(cities) == 0 {
		cities = catalog.CityNames()
	}
	out := ForCity(cities[0])
	for _, city := range cities[1:] {
		out.Anomalies = out.Anomalies.Union(NewExclusionSet(Anomalies(city)...))
	}
	out.City = strings.Join(cities, ",")
	return out
}
