package noise

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netmobcli/internal/calendar"
	"netmobcli/internal/catalog"
	"netmobcli/internal/cube"
)

// hourlySeries flattens a one location, one service cube with hourly slots
// over the given days.
func hourlySeries(t *testing.T, days []time.Time) *cube.Series {
	t.Helper()
	times := make([]catalog.TimeOfDay, 24)
	for i := range times {
		times[i] = catalog.At(i, 0)
	}
	c := cube.Generate(catalog.Uplink, cube.Axes{
		Locations: []string{"A"},
		Times:     times,
		Services:  []string{"Netflix"},
		Days:      days,
	}, func(l, ti, s, d int) float64 { return float64(24*d + ti) })
	return c.Flatten()
}

func dates(ds ...int) []time.Time {
	out := make([]time.Time, len(ds))
	for i, d := range ds {
		out[i] = catalog.Date(2019, time.April, d)
	}
	return out
}

func instants(s *cube.Series) map[time.Time]bool {
	m := make(map[time.Time]bool, s.Len())
	for _, t := range s.Instants() {
		m[t] = true
	}
	return m
}

func TestExclude_Holiday(t *testing.T) {
	// 2019-04-22 is a public holiday
	s := hourlySeries(t, catalog.DaysBetween(catalog.Date(2019, time.April, 20), catalog.Date(2019, time.April, 23)))
	ex := calendar.CityExclusions{Holidays: calendar.NewExclusionSet(dates(22)...)}

	out := Exclude(s, ex, Policy{RemoveHolidays: true, Start: catalog.At(15, 0)})
	kept := instants(out)

	// first day is dropped entirely
	assert.False(t, kept[catalog.Date(2019, time.April, 20).Add(12*time.Hour)])
	assert.True(t, kept[catalog.Date(2019, time.April, 21).Add(14*time.Hour)])
	assert.False(t, kept[catalog.Date(2019, time.April, 21).Add(15*time.Hour)])
	assert.False(t, kept[catalog.Date(2019, time.April, 22).Add(14*time.Hour)])
	assert.True(t, kept[catalog.Date(2019, time.April, 22).Add(15*time.Hour)])

	assert.Equal(t, 96-24-24, out.Len())
	assert.Equal(t, s.Origin(), out.Origin())
}

func TestExclude_WeekendEves(t *testing.T) {
	// Thursday 2019-04-04 to Monday 2019-04-08
	s := hourlySeries(t, catalog.DaysBetween(catalog.Date(2019, time.April, 4), catalog.Date(2019, time.April, 8)))
	ex := calendar.CityExclusions{Weekends: calendar.NewExclusionSet(calendar.WeekendDays(
		catalog.Date(2019, time.April, 4), catalog.Date(2019, time.April, 8))...)}

	out := Exclude(s, ex, Policy{RemoveWeekends: true, Start: catalog.At(15, 0)})
	kept := instants(out)

	// Friday and Saturday evenings, with the following nights, are removed
	assert.True(t, kept[catalog.Date(2019, time.April, 5).Add(14*time.Hour)])
	assert.False(t, kept[catalog.Date(2019, time.April, 5).Add(22*time.Hour)])
	assert.False(t, kept[catalog.Date(2019, time.April, 7).Add(2*time.Hour)])
	assert.True(t, kept[catalog.Date(2019, time.April, 7).Add(15*time.Hour)])
	assert.True(t, kept[catalog.Date(2019, time.April, 8).Add(2*time.Hour)])
}

func TestExclude_Anomalies(t *testing.T) {
	s := hourlySeries(t, catalog.DaysBetween(catalog.Date(2019, time.April, 8), catalog.Date(2019, time.April, 12)))
	ex := calendar.CityExclusions{Anomalies: calendar.NewExclusionSet(dates(10)...)}

	out := Exclude(s, ex, Policy{RemoveAnomalyPeriods: true, Start: catalog.At(15, 0)})
	kept := instants(out)

	assert.True(t, kept[catalog.Date(2019, time.April, 9).Add(14*time.Hour)])
	assert.False(t, kept[catalog.Date(2019, time.April, 9).Add(15*time.Hour)])
	assert.False(t, kept[catalog.Date(2019, time.April, 10).Add(12*time.Hour)])
	assert.False(t, kept[catalog.Date(2019, time.April, 11).Add(14*time.Hour)])
	assert.True(t, kept[catalog.Date(2019, time.April, 11).Add(15*time.Hour)])
}

func TestExclude_Idempotent(t *testing.T) {
	s := hourlySeries(t, catalog.DaysBetween(catalog.WindowStart, catalog.WindowStart.AddDate(0, 0, 27)))
	ex := calendar.ForCity("Bordeaux")

	once := Exclude(s, ex, DefaultPolicy())
	twice := Exclude(once, ex, DefaultPolicy())

	require.Less(t, once.Len(), s.Len())
	assert.Equal(t, once.Instants(), twice.Instants())
	for i := range once.Instants() {
		assert.Equal(t, once.At(0, i, 0), twice.At(0, i, 0))
	}
}

func TestExclude_AllRulesOff(t *testing.T) {
	s := hourlySeries(t, dates(1, 2, 3))
	out := Exclude(s, calendar.ForCity("Paris"), Policy{Start: catalog.At(15, 0)})
	assert.Same(t, s, out)
}

func TestExclude_PreservesOrderAndValues(t *testing.T) {
	s := hourlySeries(t, dates(1, 2, 3))
	out := Exclude(s, calendar.CityExclusions{}, DefaultPolicy())

	// only the first day goes
	require.Equal(t, 48, out.Len())
	for i, ts := range out.Instants() {
		if i > 0 {
			assert.True(t, ts.After(out.Instants()[i-1]))
		}
		assert.Equal(t, float64(24+i), out.At(0, i, 0))
	}
}

func TestPolicyPeriods_Merged(t *testing.T) {
	ex := calendar.CityExclusions{
		Holidays:  calendar.NewExclusionSet(dates(22)...),
		Anomalies: calendar.NewExclusionSet(dates(21)...),
	}
	origin := catalog.Date(2019, time.April, 1)
	spans := DefaultPolicy().Periods(ex, origin)

	require.Len(t, spans, 2)
	assert.Equal(t, Span{From: origin, To: origin.Add(24 * time.Hour)}, spans[0])
	// anomaly on the 21st covers the 20th 15:00 to the 22nd 15:00, the
	// holiday period is inside it
	assert.Equal(t, catalog.Date(2019, time.April, 20).Add(15*time.Hour), spans[1].From)
	assert.Equal(t, catalog.Date(2019, time.April, 22).Add(15*time.Hour), spans[1].To)

	assert.Nil(t, Policy{}.Periods(ex, origin))
}
