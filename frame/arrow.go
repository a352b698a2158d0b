package frame

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/winterop-com/servicekit-sub001/domain"
)

// FromArrow converts an Arrow record batch into a Frame. Supported column
// types: string, signed/unsigned integers, float32/64, and boolean. Null
// cells become nil.
func FromArrow(rec arrow.Record) (*Frame, error) {
	schema := rec.Schema()
	columns := make([]string, schema.NumFields())
	for i, field := range schema.Fields() {
		columns[i] = field.Name
	}

	rows := int(rec.NumRows())
	data := make([][]any, rows)
	for i := range data {
		data[i] = make([]any, len(columns))
	}

	for j := 0; j < int(rec.NumCols()); j++ {
		col := rec.Column(j)
		for i := 0; i < rows; i++ {
			if col.IsNull(i) {
				data[i][j] = nil
				continue
			}
			v, err := arrowValue(col, i)
			if err != nil {
				return nil, err
			}
			data[i][j] = v
		}
	}

	return New(columns, data)
}

// arrowValue extracts a single non-null cell from an Arrow column.
func arrowValue(col arrow.Array, i int) (any, error) {
	switch a := col.(type) {
	case *array.String:
		return a.Value(i), nil
	case *array.LargeString:
		return a.Value(i), nil
	case *array.Int8:
		return int64(a.Value(i)), nil
	case *array.Int16:
		return int64(a.Value(i)), nil
	case *array.Int32:
		return int64(a.Value(i)), nil
	case *array.Int64:
		return a.Value(i), nil
	case *array.Uint8:
		return int64(a.Value(i)), nil
	case *array.Uint16:
		return int64(a.Value(i)), nil
	case *array.Uint32:
		return int64(a.Value(i)), nil
	case *array.Uint64:
		return int64(a.Value(i)), nil
	case *array.Float32:
		return float64(a.Value(i)), nil
	case *array.Float64:
		return a.Value(i), nil
	case *array.Boolean:
		return a.Value(i), nil
	default:
		return nil, domain.ErrValidation(
			"unsupported arrow column type %s", col.DataType().Name())
	}
}

// ToArrow converts the frame into an Arrow record batch. Column types are
// inferred from the first non-nil value of each column; mixed-type columns
// are rejected. The caller owns the returned record and must Release it.
func (f *Frame) ToArrow(mem memory.Allocator) (arrow.Record, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	fields := make([]arrow.Field, len(f.Columns))
	for j, name := range f.Columns {
		dt, err := f.inferArrowType(j)
		if err != nil {
			return nil, err
		}
		fields[j] = arrow.Field{Name: name, Type: dt, Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()

	for i, row := range f.Data {
		for j, cell := range row {
			if err := appendArrowValue(builder.Field(j), cell); err != nil {
				return nil, fmt.Errorf("column %q row %d: %w", f.Columns[j], i, err)
			}
		}
	}

	return builder.NewRecord(), nil
}

// inferArrowType picks an Arrow type from the first non-nil value of the
// column. All-nil (or empty) columns default to string.
func (f *Frame) inferArrowType(col int) (arrow.DataType, error) {
	for _, row := range f.Data {
		switch row[col].(type) {
		case nil:
			continue
		case string:
			return arrow.BinaryTypes.String, nil
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return arrow.PrimitiveTypes.Int64, nil
		case float32, float64:
			return arrow.PrimitiveTypes.Float64, nil
		case bool:
			return arrow.FixedWidthTypes.Boolean, nil
		default:
			return nil, domain.ErrValidation(
				"column %q: unsupported value type %T", f.Columns[col], row[col])
		}
	}
	return arrow.BinaryTypes.String, nil
}

func appendArrowValue(b array.Builder, v any) error {
	if v == nil {
		b.AppendNull()
		return nil
	}
	switch builder := b.(type) {
	case *array.StringBuilder:
		s, ok := v.(string)
		if !ok {
			return domain.ErrValidation("expected string, got %T", v)
		}
		builder.Append(s)
	case *array.Int64Builder:
		n, ok := asInt64(v)
		if !ok {
			return domain.ErrValidation("expected integer, got %T", v)
		}
		builder.Append(n)
	case *array.Float64Builder:
		x, ok := asFloat64(v)
		if !ok {
			return domain.ErrValidation("expected float, got %T", v)
		}
		builder.Append(x)
	case *array.BooleanBuilder:
		t, ok := v.(bool)
		if !ok {
			return domain.ErrValidation("expected bool, got %T", v)
		}
		builder.Append(t)
	default:
		return domain.ErrValidation("unsupported arrow builder %T", b)
	}
	return nil
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float32:
		return float64(x), true
	case float64:
		return x, true
	default:
		if n, ok := asInt64(v); ok {
			return float64(n), true
		}
		return 0, false
	}
}
