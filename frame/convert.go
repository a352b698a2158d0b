package frame

import (
	"sort"

	"github.com/winterop-com/servicekit-sub001/domain"
)

// FromColumns builds a Frame from column-major data. names fixes the
// column order (Go maps are unordered); every name must be a key in cols
// and every column must have the same length.
func FromColumns(names []string, cols map[string][]any) (*Frame, error) {
	if len(names) != len(cols) {
		return nil, domain.ErrValidation(
			"got %d column names for %d columns", len(names), len(cols))
	}

	rowCount := -1
	for _, name := range names {
		values, ok := cols[name]
		if !ok {
			return nil, domain.ErrNotFound("column %q not present in data", name)
		}
		if rowCount == -1 {
			rowCount = len(values)
		} else if len(values) != rowCount {
			return nil, domain.ErrValidation(
				"column %q has %d values, expected %d", name, len(values), rowCount)
		}
	}
	if rowCount == -1 {
		rowCount = 0
	}

	data := make([][]any, rowCount)
	for i := 0; i < rowCount; i++ {
		row := make([]any, len(names))
		for j, name := range names {
			row[j] = cols[name][i]
		}
		data[i] = row
	}
	return New(names, data)
}

// FromRecords builds a Frame from row-oriented records. The optional
// columns argument fixes the column order; when omitted, keys of the
// first record are used in sorted order. Missing keys become nil cells.
func FromRecords(records []map[string]any, columns ...string) (*Frame, error) {
	if len(records) == 0 && len(columns) == 0 {
		return New(nil, nil)
	}

	if len(columns) == 0 {
		for key := range records[0] {
			columns = append(columns, key)
		}
		sort.Strings(columns)
	}

	data := make([][]any, len(records))
	for i, record := range records {
		row := make([]any, len(columns))
		for j, col := range columns {
			row[j] = record[col]
		}
		data[i] = row
	}
	return New(columns, data)
}

// ToColumns returns the frame as column-major data keyed by column name.
func (f *Frame) ToColumns() map[string][]any {
	cols := make(map[string][]any, len(f.Columns))
	for j, name := range f.Columns {
		values := make([]any, len(f.Data))
		for i, row := range f.Data {
			values[i] = row[j]
		}
		cols[name] = values
	}
	return cols
}

// ToRecords returns the frame as row-oriented records.
func (f *Frame) ToRecords() []map[string]any {
	records := make([]map[string]any, len(f.Data))
	for i, row := range f.Data {
		record := make(map[string]any, len(f.Columns))
		for j, col := range f.Columns {
			record[col] = row[j]
		}
		records[i] = record
	}
	return records
}
