package frame

import (
	"github.com/jedib0t/go-pretty/v6/table"
)

// Render formats the frame as an ASCII table for terminal inspection.
func (f *Frame) Render() string {
	t := table.NewWriter()

	header := make(table.Row, len(f.Columns))
	for i, col := range f.Columns {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, data := range f.Data {
		row := make(table.Row, len(data))
		for i, cell := range data {
			if cell == nil {
				row[i] = ""
				continue
			}
			row[i] = cell
		}
		t.AppendRow(row)
	}

	t.SetStyle(table.StyleLight)
	return t.Render()
}
