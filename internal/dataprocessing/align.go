package dataprocessing

import (
	"math"

	"netmobcli/internal/catalog"
	"netmobcli/internal/cube"
)

// AlignStats describes how a raw table fitted the expected location list.
type AlignStats struct {
	// Absent counts expected locations with no row in the file. Their cells
	// are NaN and end up in the cube's missing report.
	Absent int
	// Unexpected counts file rows whose id is not an expected location.
	Unexpected int
	// Duplicates counts repeated ids; the first row wins.
	Duplicates int
}

// Align reorders a raw table onto the given location list and time axis.
func Align(raw *RawTable, locations []string, times []catalog.TimeOfDay) (*cube.Slice, AlignStats) {
	var stats AlignStats

	rows := make(map[string]int, raw.Len())
	for i, id := range raw.IDs {
		if _, dup := rows[id]; dup {
			stats.Duplicates++
			continue
		}
		rows[id] = i
	}

	out := cube.NewSlice(append([]string(nil), locations...), times)
	expected := make(map[string]bool, len(locations))
	for l, loc := range locations {
		expected[loc] = true
		src, ok := rows[loc]
		if !ok {
			stats.Absent++
			for t := range out.Values[l] {
				out.Values[l][t] = math.NaN()
			}
			continue
		}
		copy(out.Values[l], raw.Values[src])
	}
	for id := range rows {
		if !expected[id] {
			stats.Unexpected++
		}
	}
	return out, stats
}
