package frame

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// ReadCSV parses CSV data with a header row into a Frame. Cell values are
// inferred in order: int64, float64, bool, then string.
func ReadCSV(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return New(nil, nil)
	}

	columns := records[0]
	data := make([][]any, len(records)-1)
	for i, record := range records[1:] {
		row := make([]any, len(record))
		for j, cell := range record {
			row[j] = inferValue(cell)
		}
		data[i] = row
	}
	return New(columns, data)
}

// WriteCSV writes the frame as CSV with a header row. nil cells become
// empty fields.
func (f *Frame) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(f.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, row := range f.Data {
		record := make([]string, len(row))
		for j, cell := range row {
			if cell == nil {
				continue
			}
			record[j] = fmt.Sprintf("%v", cell)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// inferValue converts a CSV cell to the narrowest matching Go type.
func inferValue(s string) any {
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if x, err := strconv.ParseFloat(s, 64); err == nil {
		return x
	}
	if t, err := strconv.ParseBool(s); err == nil {
		return t
	}
	return s
}
