package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"netmobcli/internal/catalog"
)

func TestExclusionSet(t *testing.T) {
	a := NewExclusionSet(
		time.Date(2019, 4, 2, 13, 0, 0, 0, time.UTC),
		catalog.Date(2019, 4, 1),
		catalog.Date(2019, 4, 2),
	)

	assert.Equal(t, 2, a.Len())
	assert.True(t, a.Contains(time.Date(2019, 4, 1, 23, 0, 0, 0, time.UTC)))
	assert.False(t, a.Contains(catalog.Date(2019, 4, 3)))
	assert.Equal(t, []time.Time{catalog.Date(2019, 4, 1), catalog.Date(2019, 4, 2)}, a.Dates())

	shifted := a.Shift(-1)
	assert.Equal(t, []time.Time{catalog.Date(2019, 3, 31), catalog.Date(2019, 4, 1)}, shifted.Dates())
	// the receiver is untouched
	assert.False(t, a.Contains(catalog.Date(2019, 3, 31)))

	u := a.Union(shifted)
	assert.Equal(t, 3, u.Len())

	var empty ExclusionSet
	assert.Equal(t, 0, empty.Len())
	assert.False(t, empty.Contains(catalog.Date(2019, 4, 1)))
}

func TestWeekendDays(t *testing.T) {
	days := WeekendDays(catalog.WindowStart, catalog.WindowEnd)

	for _, d := range days {
		wd := d.Weekday()
		assert.True(t, wd == time.Saturday || wd == time.Sunday, d)
	}
	assert.Equal(t, catalog.WindowStart, days[0])
	// 2019-06-01 is the Saturday right after the window
	assert.Equal(t, catalog.Date(2019, 6, 1), days[len(days)-1])
	assert.Len(t, days, 23)
}

func TestAnomalies(t *testing.T) {
	tests := []struct {
		city string
		want int
	}{
		{"Bordeaux", 8},
		{"Toulouse", 7},
		{"Dijon", 2},
		{"Paris", 3},
		{"Unknown", 3},
	}

	for _, tt := range tests {
		t.Run(tt.city, func(t *testing.T) {
			assert.Len(t, Anomalies(tt.city), tt.want)
		})
	}

	got := Anomalies("Paris")
	got[0] = catalog.Date(2000, 1, 1)
	assert.Equal(t, catalog.Date(2019, 3, 31), Anomalies("Paris")[0])
}

func TestForCity(t *testing.T) {
	ex := ForCity("Dijon")

	assert.Equal(t, "Dijon", ex.City)
	assert.Equal(t, 5, ex.Holidays.Len())
	assert.True(t, ex.Anomalies.Contains(catalog.Date(2019, 4, 9)))
	assert.True(t, ex.Weekends.Contains(catalog.Date(2019, 3, 17)))
	assert.False(t, ex.Weekends.Contains(catalog.Date(2019, 3, 18)))
}

func TestForCities(t *testing.T) {
	ex := ForCities("Dijon", "Paris")

	assert.Equal(t, "Dijon,Paris", ex.City)
	assert.Equal(t, 4, ex.Anomalies.Len())
	assert.True(t, ex.Anomalies.Contains(catalog.Date(2019, 4, 9)))
	assert.True(t, ex.Anomalies.Contains(catalog.Date(2019, 3, 31)))
	assert.Equal(t, ForCity("Dijon").Weekends.Dates(), ex.Weekends.Dates())

	all := ForCities()
	assert.True(t, all.Anomalies.Contains(catalog.Date(2019, 5, 25)))
}
