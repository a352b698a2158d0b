// Package frame provides a library-neutral tabular container with
// conversions to and from external representations: SQL result sets
// (row-oriented), Apache Arrow records (columnar), and labeled 2-D
// matrices. A Frame holds an ordered list of column names and row-major
// data; every constructor validates that rows are rectangular and that
// column names are unique.
package frame

import (
	"encoding/json"
	"fmt"

	"github.com/winterop-com/servicekit-sub001/domain"
)

// Frame is the interchange container for tabular data. Columns is the
// ordered list of column names; Data is row-major, with each row holding
// exactly one value per column.
type Frame struct {
	Columns []string `json:"columns"`
	Data    [][]any  `json:"data"`
}

// Row is a single row keyed by column name.
type Row map[string]any

// New builds a Frame from column names and row-major data, validating
// that the shape is rectangular and column names are unique.
func New(columns []string, data [][]any) (*Frame, error) {
	seen := make(map[string]struct{}, len(columns))
	for _, name := range columns {
		if name == "" {
			return nil, domain.ErrValidation("column name must not be empty")
		}
		if _, dup := seen[name]; dup {
			return nil, domain.ErrValidation("duplicate column name %q", name)
		}
		seen[name] = struct{}{}
	}
	for i, row := range data {
		if len(row) != len(columns) {
			return nil, domain.ErrValidation(
				"row %d has %d values, expected %d", i, len(row), len(columns))
		}
	}
	return &Frame{Columns: columns, Data: data}, nil
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.Data) }

// Shape returns (rows, columns).
func (f *Frame) Shape() (rows, cols int) {
	return len(f.Data), len(f.Columns)
}

// columnIndex returns the position of the named column, or a not-found error.
func (f *Frame) columnIndex(name string) (int, error) {
	for i, c := range f.Columns {
		if c == name {
			return i, nil
		}
	}
	return 0, domain.ErrNotFound("column %q not found", name)
}

// Column returns the values of a single column.
func (f *Frame) Column(name string) ([]any, error) {
	idx, err := f.columnIndex(name)
	if err != nil {
		return nil, err
	}
	values := make([]any, len(f.Data))
	for i, row := range f.Data {
		values[i] = row[idx]
	}
	return values, nil
}

// Rows materializes every row as a map keyed by column name.
func (f *Frame) Rows() []Row {
	rows := make([]Row, len(f.Data))
	for i, data := range f.Data {
		row := make(Row, len(f.Columns))
		for j, col := range f.Columns {
			row[col] = data[j]
		}
		rows[i] = row
	}
	return rows
}

// Row returns the row at the given index.
func (f *Frame) Row(i int) (Row, error) {
	if i < 0 || i >= len(f.Data) {
		return nil, domain.ErrValidation("row index %d out of range [0,%d)", i, len(f.Data))
	}
	row := make(Row, len(f.Columns))
	for j, col := range f.Columns {
		row[col] = f.Data[i][j]
	}
	return row, nil
}

// FromJSON decodes the canonical {"columns":[...],"data":[[...]]} shape
// and validates the result.
func FromJSON(raw []byte) (*Frame, error) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return New(f.Columns, f.Data)
}

// clone returns a deep copy of the frame's column list and a shallow copy
// of each row slice. Cell values are shared; Frame operations never mutate
// cells in place.
func (f *Frame) clone() *Frame {
	columns := make([]string, len(f.Columns))
	copy(columns, f.Columns)
	data := make([][]any, len(f.Data))
	for i, row := range f.Data {
		r := make([]any, len(row))
		copy(r, row)
		data[i] = r
	}
	return &Frame{Columns: columns, Data: data}
}
