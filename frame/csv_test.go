package frame

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV_InfersTypes(t *testing.T) {
	in := strings.NewReader("name,age,score,active\nAlice,25,95.5,true\nBob,30,87.0,false\n")
	f, err := ReadCSV(in)
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "age", "score", "active"}, f.Columns)
	assert.Equal(t, []any{"Alice", int64(25), 95.5, true}, f.Data[0])
}

func TestReadCSV_EmptyCellIsNil(t *testing.T) {
	f, err := ReadCSV(strings.NewReader("a,b\n1,\n"))
	require.NoError(t, err)
	assert.Nil(t, f.Data[0][1])
}

func TestCSVRoundTrip(t *testing.T) {
	f := peopleFrame(t)

	var buf bytes.Buffer
	require.NoError(t, f.WriteCSV(&buf))
	assert.True(t, strings.HasPrefix(buf.String(), "name,age,city\n"))

	back, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, f.Columns, back.Columns)
	assert.Equal(t, f.Data, back.Data)
}

func TestRender(t *testing.T) {
	f := peopleFrame(t)
	out := f.Render()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "Paris")
}
