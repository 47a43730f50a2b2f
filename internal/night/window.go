package night

import (
	"sort"
	"time"

	"netmobcli/internal/catalog"
	"netmobcli/internal/cube"
)

const day = 24 * time.Hour

// Window is a series restricted to night intervals. Anchors[i] is the date
// whose night the i-th instant belongs to.
type Window struct {
	Series  *cube.Series
	Anchors []time.Time
	Start   catalog.TimeOfDay
	End     catalog.TimeOfDay
}

// length of the night interval starting at start
func span(start, end catalog.TimeOfDay) time.Duration {
	if end <= start {
		return day - start.Duration() + end.Duration()
	}
	return end.Duration() - start.Duration()
}

// SelectWindow keeps, for every observed date D, the instants in
// [D+start, D+end), or [D+start, D+1+end) when end <= start so the night
// wraps past midnight. Nights ending after the series horizon are not
// selected. Instants keep their order.
func SelectWindow(s *cube.Series, start, end catalog.TimeOfDay) *Window {
	length := span(start, end)
	horizon := s.Horizon()

	observed := make(map[time.Time]bool)
	for _, t := range s.Instants() {
		observed[catalog.Truncate(t)] = true
	}

	anchorOf := func(t time.Time) (time.Time, bool) {
		d := catalog.Truncate(t)
		for _, anchor := range []time.Time{d, d.AddDate(0, 0, -1)} {
			if !observed[anchor] {
				continue
			}
			from := anchor.Add(start.Duration())
			to := from.Add(length)
			if !horizon.IsZero() && to.After(horizon) {
				continue
			}
			if !t.Before(from) && t.Before(to) {
				return anchor, true
			}
		}
		return time.Time{}, false
	}

	var keep []int
	var anchors []time.Time
	for i, t := range s.Instants() {
		if a, ok := anchorOf(t); ok {
			keep = append(keep, i)
			anchors = append(anchors, a)
		}
	}
	return &Window{Series: s.Keep(keep), Anchors: anchors, Start: start, End: end}
}

// Nights returns the distinct anchors in ascending order.
func (w *Window) Nights() []time.Time {
	seen := make(map[time.Time]bool, len(w.Anchors))
	var out []time.Time
	for _, a := range w.Anchors {
		if !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Order sorts time-of-day labels by their offset from start, wrapping at
// midnight, so a 22:00 night lists 22:00, 23:00, 00:00, 01:00 ...
func Order(labels []catalog.TimeOfDay, start catalog.TimeOfDay) []catalog.TimeOfDay {
	const minutesPerDay = 24 * 60
	offset := func(t catalog.TimeOfDay) int {
		return ((int(t-start) % minutesPerDay) + minutesPerDay) % minutesPerDay
	}
	out := append([]catalog.TimeOfDay(nil), labels...)
	sort.SliceStable(out, func(i, j int) bool {
		oi, oj := offset(out[i]), offset(out[j])
		if oi != oj {
			return oi < oj
		}
		return out[i] < out[j]
	})
	return out
}
