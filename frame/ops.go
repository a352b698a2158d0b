package frame

import (
	"fmt"
	"sort"
	"strings"

	"github.com/winterop-com/servicekit-sub001/domain"
)

// Filter returns a new frame containing only the rows for which the
// predicate returns true.
func (f *Frame) Filter(pred func(Row) bool) *Frame {
	out := &Frame{Columns: append([]string(nil), f.Columns...)}
	for i, data := range f.Data {
		row := make(Row, len(f.Columns))
		for j, col := range f.Columns {
			row[col] = data[j]
		}
		if pred(row) {
			kept := make([]any, len(data))
			copy(kept, f.Data[i])
			out.Data = append(out.Data, kept)
		}
	}
	return out
}

// Apply returns a new frame with fn applied to every value of the named
// column.
func (f *Frame) Apply(column string, fn func(any) any) (*Frame, error) {
	idx, err := f.columnIndex(column)
	if err != nil {
		return nil, err
	}
	out := f.clone()
	for i := range out.Data {
		out.Data[i][idx] = fn(out.Data[i][idx])
	}
	return out, nil
}

// Select returns a new frame containing only the named columns, in the
// given order.
func (f *Frame) Select(columns ...string) (*Frame, error) {
	indexes := make([]int, len(columns))
	for i, name := range columns {
		idx, err := f.columnIndex(name)
		if err != nil {
			return nil, err
		}
		indexes[i] = idx
	}

	data := make([][]any, len(f.Data))
	for i, row := range f.Data {
		cells := make([]any, len(indexes))
		for j, idx := range indexes {
			cells[j] = row[idx]
		}
		data[i] = cells
	}
	return New(append([]string(nil), columns...), data)
}

// AddColumn returns a new frame with an extra column appended. The value
// count must match the row count and the name must be unused.
func (f *Frame) AddColumn(name string, values []any) (*Frame, error) {
	if _, err := f.columnIndex(name); err == nil {
		return nil, domain.ErrConflict("column %q already exists", name)
	}
	if len(values) != len(f.Data) {
		return nil, domain.ErrValidation(
			"column %q has %d values for %d rows", name, len(values), len(f.Data))
	}
	out := f.clone()
	out.Columns = append(out.Columns, name)
	for i := range out.Data {
		out.Data[i] = append(out.Data[i], values[i])
	}
	return out, nil
}

// DropRows returns a new frame without the rows at the given indexes.
func (f *Frame) DropRows(indexes ...int) (*Frame, error) {
	drop := make(map[int]struct{}, len(indexes))
	for _, idx := range indexes {
		if idx < 0 || idx >= len(f.Data) {
			return nil, domain.ErrValidation("row index %d out of range [0,%d)", idx, len(f.Data))
		}
		drop[idx] = struct{}{}
	}
	out := &Frame{Columns: append([]string(nil), f.Columns...)}
	for i, row := range f.Data {
		if _, skip := drop[i]; skip {
			continue
		}
		kept := make([]any, len(row))
		copy(kept, row)
		out.Data = append(out.Data, kept)
	}
	return out, nil
}

// DropDuplicates returns a new frame keeping only the first occurrence of
// each distinct key. The key is formed from the subset columns, or from
// all columns when none are given.
func (f *Frame) DropDuplicates(subset ...string) (*Frame, error) {
	if len(subset) == 0 {
		subset = f.Columns
	}
	indexes := make([]int, len(subset))
	for i, name := range subset {
		idx, err := f.columnIndex(name)
		if err != nil {
			return nil, err
		}
		indexes[i] = idx
	}

	out := &Frame{Columns: append([]string(nil), f.Columns...)}
	seen := make(map[string]struct{}, len(f.Data))
	for _, row := range f.Data {
		var key strings.Builder
		for _, idx := range indexes {
			fmt.Fprintf(&key, "%v\x1f", row[idx])
		}
		if _, dup := seen[key.String()]; dup {
			continue
		}
		seen[key.String()] = struct{}{}
		kept := make([]any, len(row))
		copy(kept, row)
		out.Data = append(out.Data, kept)
	}
	return out, nil
}

// FillNA returns a new frame with nil cells replaced by value. With no
// columns given, every column is filled.
func (f *Frame) FillNA(value any, columns ...string) (*Frame, error) {
	if len(columns) == 0 {
		columns = f.Columns
	}
	indexes := make([]int, len(columns))
	for i, name := range columns {
		idx, err := f.columnIndex(name)
		if err != nil {
			return nil, err
		}
		indexes[i] = idx
	}
	out := f.clone()
	for _, row := range out.Data {
		for _, idx := range indexes {
			if row[idx] == nil {
				row[idx] = value
			}
		}
	}
	return out, nil
}

// Unique returns the distinct values of a column in first-seen order.
func (f *Frame) Unique(column string) ([]any, error) {
	idx, err := f.columnIndex(column)
	if err != nil {
		return nil, err
	}
	var out []any
	seen := make(map[string]struct{})
	for _, row := range f.Data {
		key := fmt.Sprintf("%v", row[idx])
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, row[idx])
	}
	return out, nil
}

// Head returns the first n rows (all rows if n exceeds the row count).
func (f *Frame) Head(n int) *Frame {
	if n > len(f.Data) {
		n = len(f.Data)
	}
	if n < 0 {
		n = 0
	}
	out := f.clone()
	out.Data = out.Data[:n]
	return out
}

// Tail returns the last n rows (all rows if n exceeds the row count).
func (f *Frame) Tail(n int) *Frame {
	if n > len(f.Data) {
		n = len(f.Data)
	}
	if n < 0 {
		n = 0
	}
	out := f.clone()
	out.Data = out.Data[len(out.Data)-n:]
	return out
}

// SortBy returns a new frame with rows ordered by the named column.
// Numeric values sort numerically, everything else by string form.
func (f *Frame) SortBy(column string, descending bool) (*Frame, error) {
	idx, err := f.columnIndex(column)
	if err != nil {
		return nil, err
	}
	out := f.clone()
	sort.SliceStable(out.Data, func(i, j int) bool {
		less := lessValue(out.Data[i][idx], out.Data[j][idx])
		if descending {
			return lessValue(out.Data[j][idx], out.Data[i][idx])
		}
		return less
	})
	return out, nil
}

func lessValue(a, b any) bool {
	af, aok := asFloat64(a)
	bf, bok := asFloat64(b)
	if aok && bok {
		return af < bf
	}
	return fmt.Sprintf("%v", a) < fmt.Sprintf("%v", b)
}
