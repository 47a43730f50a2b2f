package catalog

import "time"

// The observation window of the corpus. Every city, service and traffic kind
// has one file per day in [WindowStart, WindowEnd].
var (
	WindowStart = Date(2019, time.March, 16)
	WindowEnd   = Date(2019, time.May, 31)
)

// Date returns midnight UTC of the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Truncate drops the clock part of t, keeping its calendar day in UTC.
func Truncate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return Date(y, m, d)
}

// DaysBetween lists the calendar days in [from, to], both inclusive.
func DaysBetween(from, to time.Time) []time.Time {
	from, to = Truncate(from), Truncate(to)
	var days []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Days lists every day of the observation window.
func Days() []time.Time {
	return DaysBetween(WindowStart, WindowEnd)
}
