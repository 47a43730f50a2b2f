package cube

import (
	"slices"

	apperrors "netmobcli/internal/errors"
)

// Table is a two-dimensional result: location rows against named columns
// (services, instants or a single total).
type Table struct {
	Rows    []string
	Columns []string
	Values  [][]float64
}

// NewTable returns a zero-filled table.
func NewTable(rows, columns []string) Table {
	values := make([][]float64, len(rows))
	for i := range values {
		values[i] = make([]float64, len(columns))
	}
	return Table{
		Rows:    append([]string(nil), rows...),
		Columns: append([]string(nil), columns...),
		Values:  values,
	}
}

// Get returns the cell at the named row and column.
func (t Table) Get(row, column string) (float64, bool) {
	r, c := index(t.Rows, row), index(t.Columns, column)
	if r < 0 || c < 0 {
		return 0, false
	}
	return t.Values[r][c], true
}

// JoinColumns places tables with the same rows side by side, in argument
// order.
func JoinColumns(parts ...Table) (Table, error) {
	if len(parts) == 0 {
		return Table{}, nil
	}
	rows := parts[0].Rows
	var columns []string
	for i, p := range parts {
		if !slices.Equal(p.Rows, rows) {
			return Table{}, apperrors.NewAxisMismatchError("table %d does not share the rows of table 0", i)
		}
		columns = append(columns, p.Columns...)
	}

	out := NewTable(rows, columns)
	for r := range rows {
		offset := 0
		for _, p := range parts {
			copy(out.Values[r][offset:], p.Values[r])
			offset += len(p.Columns)
		}
	}
	return out, nil
}

func index(labels []string, label string) int {
	for i, l := range labels {
		if l == label {
			return i
		}
	}
	return -1
}
