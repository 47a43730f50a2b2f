package calendar

import (
	"time"

	"netmobcli/internal/catalog"
)

var holidays = []time.Time{
	catalog.Date(2019, time.April, 19),
	catalog.Date(2019, time.April, 22),
	catalog.Date(2019, time.May, 1),
	catalog.Date(2019, time.May, 8),
	catalog.Date(2019, time.May, 30),
}

// Anomaly dates observed in the counters of specific cities. Cities absent
// from the map use defaultAnomalies.
var anomalies = map[string][]time.Time{
	"Bordeaux": {
		catalog.Date(2019, time.April, 9),
		catalog.Date(2019, time.April, 12),
		catalog.Date(2019, time.April, 14),
		catalog.Date(2019, time.May, 12),
		catalog.Date(2019, time.May, 22),
		catalog.Date(2019, time.May, 23),
		catalog.Date(2019, time.May, 24),
		catalog.Date(2019, time.May, 25),
	},
	"Toulouse": {
		catalog.Date(2019, time.April, 12),
		catalog.Date(2019, time.April, 14),
		catalog.Date(2019, time.May, 12),
		catalog.Date(2019, time.May, 22),
		catalog.Date(2019, time.May, 23),
		catalog.Date(2019, time.May, 24),
		catalog.Date(2019, time.May, 25),
	},
	"Dijon": {
		catalog.Date(2019, time.April, 9),
		catalog.Date(2019, time.May, 12),
	},
}

var defaultAnomalies = []time.Time{
	catalog.Date(2019, time.March, 31),
	catalog.Date(2019, time.April, 14),
	catalog.Date(2019, time.May, 12),
}

// Holidays returns the public holidays inside the observation window.
func Holidays() []time.Time {
	out := make([]time.Time, len(holidays))
	copy(out, holidays)
	return out
}

// WeekendDays returns the Saturdays and Sundays in [from, to+1 day]. The
// extra day keeps the weekend that starts right after the window, whose eve
// is still observed.
func WeekendDays(from, to time.Time) []time.Time {
	var out []time.Time
	for _, d := range catalog.DaysBetween(from, to.AddDate(0, 0, 1)) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			out = append(out, d)
		}
	}
	return out
}

// Anomalies returns the anomaly dates of a city.
func Anomalies(city string) []time.Time {
	src, ok := anomalies[city]
	if !ok {
		src = defaultAnomalies
	}
	out := make([]time.Time, len(src))
	copy(out, src)
	return out
}
