package dataprocessing

import (
	"math"
	"sort"

	"netmobcli/internal/spatial"
)

// AggregateToZones sums tile rows into zone rows using the correspondence.
// NaN cells are skipped in sums. Zone rows are sorted by zone id. Rows whose
// tile is not mapped are dropped and counted.
func AggregateToZones(raw *RawTable, corr *spatial.Correspondence) (*RawTable, int) {
	slots := 0
	if raw.Len() > 0 {
		slots = len(raw.Values[0])
	}

	sums := make(map[string][]float64)
	unmatched := 0
	for i, label := range raw.IDs {
		tile, err := spatial.ParseTileID(label)
		if err != nil {
			unmatched++
			continue
		}
		zone, ok := corr.Lookup(tile)
		if !ok {
			unmatched++
			continue
		}
		acc, ok := sums[zone]
		if !ok {
			acc = make([]float64, slots)
			sums[zone] = acc
		}
		for t, v := range raw.Values[i] {
			if t >= slots || math.IsNaN(v) {
				continue
			}
			acc[t] += v
		}
	}

	zones := make([]string, 0, len(sums))
	for z := range sums {
		zones = append(zones, z)
	}
	sort.Strings(zones)

	out := &RawTable{IDs: zones, Values: make([][]float64, len(zones))}
	for i, z := range zones {
		out.Values[i] = sums[z]
	}
	return out, unmatched
}
