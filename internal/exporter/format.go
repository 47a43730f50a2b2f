package exporter

import (
	"math"
	"strconv"
)

// formatFloat writes the shortest representation that reads back exactly.
// Traffic volumes span many orders of magnitude, so no fixed precision.
func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
