package dataprocessing

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	apperrors "netmobcli/internal/errors"
)

// maxLineBytes bounds one counter line: an id and 96 decimal values.
const maxLineBytes = 1 << 20

// RawTable is the content of one counter file: a location id per row
// followed by one value per time slot. Rows keep file order.
type RawTable struct {
	IDs    []string
	Values [][]float64
}

// Len returns the number of rows.
func (t *RawTable) Len() int {
	return len(t.IDs)
}

// ParseTraffic reads a space separated counter file. Each line holds a
// location id then up to slots values; short lines are padded with NaN and
// "nan" or empty fields read as NaN. Longer lines are an error.
func ParseTraffic(r io.Reader, slots int) (*RawTable, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	table := &RawTable{}
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields)-1 > slots {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("line %d: %d values for %d slots", line, len(fields)-1, slots), nil)
		}

		row := make([]float64, slots)
		for i := range row {
			if i+1 >= len(fields) {
				row[i] = math.NaN()
				continue
			}
			v, err := parseValue(fields[i+1])
			if err != nil {
				return nil, apperrors.NewParsingError(fmt.Sprintf("line %d, slot %d", line, i), err)
			}
			row[i] = v
		}
		table.IDs = append(table.IDs, fields[0])
		table.Values = append(table.Values, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("line %d", line+1), err)
	}
	return table, nil
}

func parseValue(s string) (float64, error) {
	switch strings.ToLower(s) {
	case "nan", "na", "null", "":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// ParseTrafficFile opens and parses a counter file.
func ParseTrafficFile(path string, slots int) (*RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	table, err := ParseTraffic(f, slots)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}
