package engine

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
)

var (
	// ErrColumnNotFound is returned when a selection names a column the table does not have.
	ErrColumnNotFound = errors.New("column not found")
	// ErrNotNumeric is returned when an operation needs numbers from a text column.
	ErrNotNumeric = errors.New("column is not numeric")
)

// Table is the immutable record table, stored column-wise in a single arrow record.
// It is safe for concurrent readers; nothing mutates it after load.
type Table struct {
	rec   arrow.Record
	names []string
	index map[string]int
}

func newTable(rec arrow.Record) *Table {
	fields := rec.Schema().Fields()
	t := &Table{
		rec:   rec,
		names: make([]string, len(fields)),
		index: make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		t.names[i] = f.Name
		t.index[f.Name] = i
	}
	return t
}

// Columns returns the column names in file order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

func (t *Table) NumRows() int { return int(t.rec.NumRows()) }

func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column looks up a column by name.
func (t *Table) Column(name string) (Column, error) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return Column{name: name, arr: t.rec.Column(i)}, nil
}

// Row returns the values of row i in column order; nulls are nil.
func (t *Table) Row(i int) []any {
	out := make([]any, len(t.names))
	for c := range t.names {
		out[c] = cellValue(t.rec.Column(c), i)
	}
	return out
}

// Release frees the arrow buffers. The table must not be used afterwards.
func (t *Table) Release() {
	if t.rec != nil {
		t.rec.Release()
		t.rec = nil
	}
}

// Column is a read-only view of one table column.
type Column struct {
	name string
	arr  arrow.Array
}

func (c Column) Name() string      { return c.name }
func (c Column) Len() int          { return c.arr.Len() }
func (c Column) IsNull(i int) bool { return missing(c.arr, i) }

// Numeric reports whether the column was loaded with a numeric arrow type.
func (c Column) Numeric() bool {
	switch c.arr.(type) {
	case *array.Float64, *array.Int64:
		return true
	}
	return false
}

// Float returns the numeric value at i. ok is false for nulls and text columns.
func (c Column) Float(i int) (v float64, ok bool) {
	if missing(c.arr, i) {
		return 0, false
	}
	switch a := c.arr.(type) {
	case *array.Float64:
		return a.Value(i), true
	case *array.Int64:
		return float64(a.Value(i)), true
	}
	return 0, false
}

// String formats the value at i; nulls are the empty string.
func (c Column) String(i int) string {
	if missing(c.arr, i) {
		return ""
	}
	switch a := c.arr.(type) {
	case *array.String:
		return a.Value(i)
	case *array.Float64:
		return strconv.FormatFloat(a.Value(i), 'f', -1, 64)
	case *array.Int64:
		return strconv.FormatInt(a.Value(i), 10)
	}
	return c.arr.ValueStr(i)
}

// missing reports nulls and non-finite floats. NaN and Inf parse as floats but
// cannot be encoded as JSON, so they count as empty cells.
func missing(arr arrow.Array, i int) bool {
	if arr.IsNull(i) {
		return true
	}
	if a, ok := arr.(*array.Float64); ok {
		v := a.Value(i)
		return math.IsNaN(v) || math.IsInf(v, 0)
	}
	return false
}

// Value returns the cell as float64 or string, or nil when null.
func (c Column) Value(i int) any { return cellValue(c.arr, i) }

func cellValue(arr arrow.Array, i int) any {
	if missing(arr, i) {
		return nil
	}
	switch a := arr.(type) {
	case *array.Float64:
		return a.Value(i)
	case *array.Int64:
		return float64(a.Value(i))
	case *array.String:
		return a.Value(i)
	}
	return arr.ValueStr(i)
}
