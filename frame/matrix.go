package frame

import (
	"github.com/winterop-com/servicekit-sub001/domain"
)

// Matrix is a labeled two-dimensional array: named row and column
// dimensions, ordered labels along each, and a rectangular grid of
// values. It is the analogue of a 2-D labeled array from array-oriented
// libraries.
type Matrix struct {
	RowDim    string
	ColDim    string
	RowLabels []string
	ColLabels []string
	Values    [][]any
}

// Validate checks that the matrix is rectangular and fully labeled.
func (m *Matrix) Validate() error {
	if len(m.Values) != len(m.RowLabels) {
		return domain.ErrValidation(
			"matrix has %d rows but %d row labels", len(m.Values), len(m.RowLabels))
	}
	for i, row := range m.Values {
		if len(row) != len(m.ColLabels) {
			return domain.ErrValidation(
				"matrix row %d has %d values but %d column labels", i, len(row), len(m.ColLabels))
		}
	}
	return nil
}

// FromMatrix converts a labeled 2-D matrix into a Frame. The row
// dimension becomes the leading column (holding the row labels) so that
// no label information is lost; the column labels become the remaining
// column names. An empty RowDim defaults to "index".
func FromMatrix(m *Matrix) (*Frame, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	rowDim := m.RowDim
	if rowDim == "" {
		rowDim = "index"
	}

	columns := make([]string, 0, len(m.ColLabels)+1)
	columns = append(columns, rowDim)
	columns = append(columns, m.ColLabels...)

	data := make([][]any, len(m.Values))
	for i, values := range m.Values {
		row := make([]any, 0, len(values)+1)
		row = append(row, m.RowLabels[i])
		row = append(row, values...)
		data[i] = row
	}

	return New(columns, data)
}

// ToMatrix converts the frame into a labeled 2-D matrix. The named column
// supplies the row labels and is removed from the grid; every remaining
// column name becomes a column label.
func (f *Frame) ToMatrix(rowDim string) (*Matrix, error) {
	idx, err := f.columnIndex(rowDim)
	if err != nil {
		return nil, err
	}

	colLabels := make([]string, 0, len(f.Columns)-1)
	for j, name := range f.Columns {
		if j != idx {
			colLabels = append(colLabels, name)
		}
	}

	rowLabels := make([]string, len(f.Data))
	values := make([][]any, len(f.Data))
	for i, row := range f.Data {
		label, ok := row[idx].(string)
		if !ok {
			return nil, domain.ErrValidation(
				"row label column %q must hold strings, row %d holds %T", rowDim, i, row[idx])
		}
		rowLabels[i] = label

		cells := make([]any, 0, len(row)-1)
		for j, cell := range row {
			if j != idx {
				cells = append(cells, cell)
			}
		}
		values[i] = cells
	}

	return &Matrix{
		RowDim:    rowDim,
		RowLabels: rowLabels,
		ColLabels: colLabels,
		Values:    values,
	}, nil
}
