package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/winterop-com/servicekit-sub001/domain"
)

func TestFromColumns(t *testing.T) {
	f, err := FromColumns(
		[]string{"name", "age", "city"},
		map[string][]any{
			"name": {"Alice", "Bob", "Charlie"},
			"age":  {25, 30, 35},
			"city": {"New York", "London", "Paris"},
		},
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "age", "city"}, f.Columns)
	assert.Equal(t, 3, f.Len())
	assert.Equal(t, []any{"Alice", 25, "New York"}, f.Data[0])
}

func TestFromColumns_RaggedColumns(t *testing.T) {
	_, err := FromColumns(
		[]string{"a", "b"},
		map[string][]any{
			"a": {1, 2, 3},
			"b": {1, 2},
		},
	)
	var valErr *domain.ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestFromColumns_MissingColumn(t *testing.T) {
	_, err := FromColumns([]string{"a", "b"}, map[string][]any{"a": {1}, "c": {2}})
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestFromRecords_ExplicitOrder(t *testing.T) {
	f, err := FromRecords(
		[]map[string]any{
			{"name": "Alice", "age": 25},
			{"name": "Bob", "age": 30},
		},
		"name", "age",
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "age"}, f.Columns)
	assert.Equal(t, []any{"Bob", 30}, f.Data[1])
}

func TestFromRecords_SortedKeysWhenOrderOmitted(t *testing.T) {
	f, err := FromRecords([]map[string]any{{"b": 2, "a": 1}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, f.Columns)
}

func TestFromRecords_MissingKeyBecomesNil(t *testing.T) {
	f, err := FromRecords(
		[]map[string]any{
			{"a": 1, "b": 2},
			{"a": 3},
		},
		"a", "b",
	)
	require.NoError(t, err)
	assert.Nil(t, f.Data[1][1])
}

func TestFromRecords_Empty(t *testing.T) {
	f, err := FromRecords(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, f.Len())
}

func TestColumnsRecordsRoundTrip(t *testing.T) {
	f := peopleFrame(t)

	cols := f.ToColumns()
	back, err := FromColumns(f.Columns, cols)
	require.NoError(t, err)
	assert.Equal(t, f.Columns, back.Columns)
	assert.Equal(t, f.Data, back.Data)

	records := f.ToRecords()
	back2, err := FromRecords(records, f.Columns...)
	require.NoError(t, err)
	assert.Equal(t, f.Data, back2.Data)
}
