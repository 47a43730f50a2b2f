package noise

import (
	"sort"
	"time"

	"netmobcli/internal/calendar"
	"netmobcli/internal/catalog"
	"netmobcli/internal/cube"
)

const period = 24 * time.Hour

// Policy selects the noisy periods to drop. Start is the time of day at
// which a removed 24 h period begins, so that the night following the day is
// dropped along with its evening.
type Policy struct {
	RemoveHolidays       bool
	RemoveWeekends       bool
	RemoveAnomalyPeriods bool
	Start                catalog.TimeOfDay
}

// DefaultPolicy enables every rule with periods starting at 15:00.
func DefaultPolicy() Policy {
	return Policy{
		RemoveHolidays:       true,
		RemoveWeekends:       true,
		RemoveAnomalyPeriods: true,
		Start:                catalog.At(15, 0),
	}
}

// Enabled reports whether any rule is on.
func (p Policy) Enabled() bool {
	return p.RemoveHolidays || p.RemoveWeekends || p.RemoveAnomalyPeriods
}

// Span is a half-open period [From, To).
type Span struct {
	From, To time.Time
}

// Periods lists the half-open periods the policy removes for a series
// observed from origin, merged and in ascending order.
func (p Policy) Periods(ex calendar.CityExclusions, origin time.Time) []Span {
	if !p.Enabled() {
		return nil
	}

	var spans []Span
	eve := func(day time.Time) {
		from := catalog.Truncate(day).AddDate(0, 0, -1).Add(p.Start.Duration())
		spans = append(spans, Span{From: from, To: from.Add(period)})
	}
	if p.RemoveHolidays {
		for _, h := range ex.Holidays.Dates() {
			eve(h)
		}
	}
	if p.RemoveWeekends {
		for _, w := range ex.Weekends.Dates() {
			eve(w)
		}
	}
	if p.RemoveAnomalyPeriods {
		// the anomaly day itself and the evening before it
		days := ex.Anomalies.Union(ex.Anomalies.Shift(1))
		for _, a := range days.Dates() {
			eve(a)
		}
	}
	// the series starts mid-weekend; its first day would be a detached
	// half night
	first := catalog.Truncate(origin)
	spans = append(spans, Span{From: first, To: first.Add(period)})

	return merge(spans)
}

func merge(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].From.Before(spans[j].From) })
	out := []Span{spans[0]}
	for _, s := range spans[1:] {
		last := &out[len(out)-1]
		if !s.From.After(last.To) {
			if s.To.After(last.To) {
				last.To = s.To
			}
			continue
		}
		out = append(out, s)
	}
	return out
}

func covered(spans []Span, t time.Time) bool {
	i := sort.Search(len(spans), func(i int) bool { return spans[i].To.After(t) })
	return i < len(spans) && !t.Before(spans[i].From)
}

// Exclude drops every instant that falls in a noisy period of the city. The
// union of all periods is computed once and subtracted once; the remaining
// instants keep their order. With every rule off the input is returned as is.
// Applying Exclude twice gives the same result as applying it once.
func Exclude(s *cube.Series, ex calendar.CityExclusions, p Policy) *cube.Series {
	if !p.Enabled() {
		return s
	}

	spans := p.Periods(ex, s.Origin())
	instants := s.Instants()
	keep := make([]int, 0, len(instants))
	for i, t := range instants {
		if !covered(spans, t) {
			keep = append(keep, i)
		}
	}
	if len(keep) == len(instants) {
		return s
	}
	return s.Keep(keep)
}
