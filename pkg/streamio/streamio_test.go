package streamio_test

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/outlier/pkg/streamio"
)

func TestRead_Text(t *testing.T) {
	t.Parallel()

	input := `# sensor dump
1.5

-2
3e2
`

	got, err := streamio.Read(strings.NewReader(input), streamio.CompressionNone, streamio.Options{})
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, -2, 300}, got)
}

func TestRead_CSVWithHeader(t *testing.T) {
	t.Parallel()

	input := "time,value\n0,10\n1,11.5\n2,9\n"

	got, err := streamio.Read(strings.NewReader(input), streamio.CompressionNone, streamio.Options{Column: 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 11.5, 9}, got)
}

func TestRead_TextRejectsGarbageAfterHeader(t *testing.T) {
	t.Parallel()

	input := "value\n1\nabc\n"

	_, err := streamio.Read(strings.NewReader(input), streamio.CompressionNone, streamio.Options{})
	require.ErrorIs(t, err, streamio.ErrMalformedInput)
	assert.Contains(t, err.Error(), "line 3")
}

func TestRead_TextMissingColumn(t *testing.T) {
	t.Parallel()

	_, err := streamio.Read(strings.NewReader("1,2\n3\n"), streamio.CompressionNone, streamio.Options{Column: 1})
	require.ErrorIs(t, err, streamio.ErrMalformedInput)
}

func TestRead_TextPassesNonFiniteThrough(t *testing.T) {
	t.Parallel()

	got, err := streamio.Read(strings.NewReader("1\nNaN\n"), streamio.CompressionNone, streamio.Options{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.NotEqual(t, got[1], got[1]) //nolint:testifylint // NaN is the only value unequal to itself.
}

func TestRead_TextOutOfRangeIsNotAHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		column int
		want   []float64
	}{
		{name: "first_line", input: "1e999\n2\n", want: []float64{math.Inf(1), 2}},
		{name: "negative", input: "-1e999\n2\n", want: []float64{math.Inf(-1), 2}},
		{name: "after_header", input: "value\n1e999\n", want: []float64{math.Inf(1)}},
		{name: "csv_column", input: "t,v\n0,1e999\n", column: 1, want: []float64{math.Inf(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := streamio.Read(strings.NewReader(tt.input), streamio.CompressionNone, streamio.Options{Column: tt.column})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRead_JSONArray(t *testing.T) {
	t.Parallel()

	got, err := streamio.Read(strings.NewReader(" [1, 2.5, -3]\n"), streamio.CompressionNone, streamio.Options{})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2.5, -3}, got)
}

func TestRead_JSONDocument(t *testing.T) {
	t.Parallel()

	input := `{"name": "cpu", "samples": [0.1, 0.2], "unit": "ratio"}`

	got, err := streamio.Read(strings.NewReader(input), streamio.CompressionNone, streamio.Options{})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2}, got)
}

func TestRead_JSONSchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "string_item", input: `[1, "two", 3]`},
		{name: "missing_samples", input: `{"name": "cpu"}`},
		{name: "samples_not_array", input: `{"samples": 4}`},
		{name: "broken_json", input: `[1, 2`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := streamio.Read(strings.NewReader(tt.input), streamio.CompressionNone, streamio.Options{})
			require.ErrorIs(t, err, streamio.ErrMalformedInput)
		})
	}
}

func TestRead_MaxSize(t *testing.T) {
	t.Parallel()

	input := strings.Repeat("1\n", 100)

	_, err := streamio.Read(strings.NewReader(input), streamio.CompressionNone, streamio.Options{MaxSize: "100B"})
	require.ErrorIs(t, err, streamio.ErrInputTooLarge)

	got, err := streamio.Read(strings.NewReader(input), streamio.CompressionNone, streamio.Options{MaxSize: "1KB"})
	require.NoError(t, err)
	assert.Len(t, got, 100)

	_, err = streamio.Read(strings.NewReader(input), streamio.CompressionNone, streamio.Options{MaxSize: "lots"})
	require.ErrorIs(t, err, streamio.ErrInvalidOption)
}

func TestRead_NegativeColumn(t *testing.T) {
	t.Parallel()

	_, err := streamio.Read(strings.NewReader("1\n"), streamio.CompressionNone, streamio.Options{Column: -1})
	require.ErrorIs(t, err, streamio.ErrInvalidOption)
}

func TestCompressionFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, streamio.CompressionLZ4, streamio.CompressionFor("data.txt.lz4"))
	assert.Equal(t, streamio.CompressionSnappy, streamio.CompressionFor("data.json.sz"))
	assert.Equal(t, streamio.CompressionNone, streamio.CompressionFor("data.csv"))
}

func TestWriteFile_CompressedContainers(t *testing.T) {
	t.Parallel()

	samples := []float64{0.5, -1.25, 1e-9, 42}
	dir := t.TempDir()

	for _, name := range []string{"plain.txt", "stream.txt.lz4", "stream.txt.sz"} {
		path := filepath.Join(dir, name)

		require.NoError(t, streamio.WriteFile(path, samples))

		got, err := streamio.ReadFile(path, streamio.Options{})
		require.NoError(t, err, name)
		assert.Equal(t, samples, got, name)
	}
}

func TestWrite_LZ4IsCompressed(t *testing.T) {
	t.Parallel()

	samples := make([]float64, 2000)

	var plain, packed bytes.Buffer

	require.NoError(t, streamio.Write(&plain, streamio.CompressionNone, samples))
	require.NoError(t, streamio.Write(&packed, streamio.CompressionLZ4, samples))

	assert.Less(t, packed.Len(), plain.Len())
}

func TestReadFile_Missing(t *testing.T) {
	t.Parallel()

	_, err := streamio.ReadFile(filepath.Join(t.TempDir(), "nope.txt"), streamio.Options{})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRead_RejectsUndeclaredCompression(t *testing.T) {
	t.Parallel()

	var packed bytes.Buffer

	require.NoError(t, streamio.Write(&packed, streamio.CompressionLZ4, []float64{1, 2, 3}))

	_, err := streamio.Read(&packed, streamio.CompressionNone, streamio.Options{})
	require.ErrorIs(t, err, streamio.ErrMalformedInput)
	assert.Contains(t, err.Error(), "binary")
}
