package core

import (
	"fmt"
	"strings"
)

// Row is an ordered mapping from column name to Value.
type Row struct {
	Columns []string
	Values  []Value
}

// NewRow zips columns and values positionally. Callers must pass slices of
// equal length.
func NewRow(columns []string, values []Value) Row {
	row := Row{
		Columns: make([]string, len(columns)),
		Values:  make([]Value, len(values)),
	}
	copy(row.Columns, columns)
	copy(row.Values, values)
	return row
}

func (row Row) Len() int {
	return len(row.Columns)
}

func (row Row) index(column string) int {
	for i, col := range row.Columns {
		if col == column {
			return i
		}
	}
	return -1
}

func (row Row) Has(column string) bool {
	return row.index(column) >= 0
}

// Get returns the value stored under column, failing with ErrUnknownColumn
// when the row has no such column.
func (row Row) Get(column string) (Value, error) {
	i := row.index(column)
	if i < 0 {
		return Value{}, fmt.Errorf("%w: %s", ErrUnknownColumn, column)
	}
	return row.Values[i], nil
}

// Set overwrites the value of an existing column in place.
func (row Row) Set(column string, value Value) error {
	i := row.index(column)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, column)
	}
	row.Values[i] = value
	return nil
}

// Matches reports whether column holds a value equal to value.
func (row Row) Matches(column string, value Value) (bool, error) {
	v, err := row.Get(column)
	if err != nil {
		return false, err
	}
	return v.Equal(value), nil
}

// Project builds a new row holding only the given columns, in that order.
func (row Row) Project(columns []string) (Row, error) {
	projected := Row{
		Columns: make([]string, 0, len(columns)),
		Values:  make([]Value, 0, len(columns)),
	}
	for _, col := range columns {
		v, err := row.Get(col)
		if err != nil {
			return Row{}, err
		}
		projected.Columns = append(projected.Columns, col)
		projected.Values = append(projected.Values, v)
	}
	return projected, nil
}

// Qualify returns a copy whose column names are prefixed with "table.".
func (row Row) Qualify(table string) Row {
	qualified := row.Clone()
	for i, col := range qualified.Columns {
		qualified.Columns[i] = table + "." + col
	}
	return qualified
}

// Concat appends the columns of other after the columns of row.
func (row Row) Concat(other Row) Row {
	combined := Row{
		Columns: make([]string, 0, row.Len()+other.Len()),
		Values:  make([]Value, 0, row.Len()+other.Len()),
	}
	combined.Columns = append(append(combined.Columns, row.Columns...), other.Columns...)
	combined.Values = append(append(combined.Values, row.Values...), other.Values...)
	return combined
}

func (row Row) Clone() Row {
	return NewRow(row.Columns, row.Values)
}

// Strings renders the values in column order.
func (row Row) Strings() []string {
	out := make([]string, len(row.Values))
	for i, v := range row.Values {
		out[i] = v.String()
	}
	return out
}

func (row Row) String() string {
	parts := make([]string, len(row.Columns))
	for i, col := range row.Columns {
		parts[i] = col + ":" + row.Values[i].GoString()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
