// Package dataset holds the in-memory tabular model shared by the stores,
// the relational bridge and the analytics code.
package dataset

import (
	"fmt"
	"reflect"
	"time"
)

// Dataset is a named, ordered collection of rows with ordered columns.
// Values are loosely typed: nil, int64, float64, string, bool or time.Time.
type Dataset struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// New constructs an empty dataset with the given columns.
func New(name string, columns ...string) *Dataset {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Dataset{Name: name, Columns: cols}
}

// Append adds a row. Short rows are padded with nil; long rows are an error.
func (d *Dataset) Append(values ...any) error {
	if len(values) > len(d.Columns) {
		return fmt.Errorf("row has %d values, dataset %q has %d columns", len(values), d.Name, len(d.Columns))
	}
	row := make([]any, len(d.Columns))
	copy(row, values)
	d.Rows = append(d.Rows, row)
	return nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// ColumnIndex returns the position of the named column or -1.
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Value returns the cell at row r for the named column.
func (d *Dataset) Value(r int, column string) (any, bool) {
	idx := d.ColumnIndex(column)
	if idx < 0 || r < 0 || r >= len(d.Rows) {
		return nil, false
	}
	return d.Rows[r][idx], true
}

// Column returns every value of the named column, top to bottom.
func (d *Dataset) Column(name string) ([]any, error) {
	idx := d.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("column %q not found in dataset %q", name, d.Name)
	}
	out := make([]any, len(d.Rows))
	for i, row := range d.Rows {
		out[i] = row[idx]
	}
	return out, nil
}

// Clone returns a deep copy. time.Time and scalar values are copied by value.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return nil
	}
	c := &Dataset{Name: d.Name, Columns: make([]string, len(d.Columns))}
	copy(c.Columns, d.Columns)
	if d.Rows != nil {
		c.Rows = make([][]any, len(d.Rows))
		for i, row := range d.Rows {
			r := make([]any, len(row))
			copy(r, row)
			c.Rows[i] = r
		}
	}
	return c
}

// Equal reports whether two datasets have identical columns and row values
// in the same order. Names are not compared.
func (d *Dataset) Equal(o *Dataset) bool {
	if d == nil || o == nil {
		return d == o
	}
	if len(d.Columns) != len(o.Columns) || len(d.Rows) != len(o.Rows) {
		return false
	}
	for i := range d.Columns {
		if d.Columns[i] != o.Columns[i] {
			return false
		}
	}
	for i := range d.Rows {
		if len(d.Rows[i]) != len(o.Rows[i]) {
			return false
		}
		for j := range d.Rows[i] {
			if !ValuesEqual(d.Rows[i][j], o.Rows[i][j]) {
				return false
			}
		}
	}
	return true
}

// ValuesEqual compares two cell values. Integers and floats holding the same
// number compare equal.
func ValuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if fa, ok := AsFloat(a); ok {
		if fb, ok := AsFloat(b); ok {
			return fa == fb
		}
		return false
	}
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	return reflect.DeepEqual(a, b)
}

// AsFloat converts numeric cell values to float64.
func AsFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case float64:
		return x, true
	case float32:
		return float64(x), true
	}
	return 0, false
}

// AsInt converts integral cell values to int64. Floats are accepted only
// when they hold a whole number.
func AsInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case float64:
		if x == float64(int64(x)) {
			return int64(x), true
		}
	}
	return 0, false
}
