// Package streamio reads and writes sample streams.
//
// Text input holds one sample per line; blank lines and lines starting with
// '#' are skipped, a comma-separated line contributes the configured column,
// and a non-numeric first line is taken as a header. JSON input is either a
// bare array of numbers or an object with a "samples" array and is validated
// against an embedded schema. Files ending in .lz4 or .sz are decompressed
// transparently.
package streamio

import (
	"bufio"
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/golang/snappy"
	"github.com/pierrec/lz4/v4"
	"github.com/xeipuuv/gojsonschema"
)

// StdinPath selects standard input (or output) instead of a file.
const StdinPath = "-"

// Sentinel errors.
var (
	ErrMalformedInput = errors.New("malformed input")
	ErrInputTooLarge  = errors.New("input too large")
	ErrInvalidOption  = errors.New("invalid stream option")
)

//go:embed samples.schema.json
var samplesSchema []byte

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(samplesSchema))
})

// Compression identifies a stream container.
type Compression string

// Supported containers.
const (
	CompressionNone   Compression = ""
	CompressionLZ4    Compression = "lz4"
	CompressionSnappy Compression = "snappy"
)

// CompressionFor infers the container from a file name suffix.
func CompressionFor(path string) Compression {
	switch {
	case strings.HasSuffix(path, ".lz4"):
		return CompressionLZ4
	case strings.HasSuffix(path, ".sz"):
		return CompressionSnappy
	default:
		return CompressionNone
	}
}

// Options tunes reading.
type Options struct {
	// MaxSize caps the decompressed input, in humanized form ("64MB").
	// Empty means no cap.
	MaxSize string
	// Column selects the field of comma-separated text lines (0-based).
	Column int
}

// ReadFile reads samples from path, or from stdin when path is "-".
func ReadFile(path string, opts Options) ([]float64, error) {
	if path == StdinPath {
		return Read(os.Stdin, CompressionNone, opts)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}
	defer f.Close()

	samples, err := Read(f, CompressionFor(path), opts)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return samples, nil
}

// Read decodes samples from r.
func Read(r io.Reader, compression Compression, opts Options) ([]float64, error) {
	if opts.Column < 0 {
		return nil, fmt.Errorf("%w: column must be >= 0, got %d", ErrInvalidOption, opts.Column)
	}

	src, err := decompress(r, compression)
	if err != nil {
		return nil, err
	}

	data, err := readBounded(src, opts.MaxSize)
	if err != nil {
		return nil, err
	}

	if isBinary(data) {
		return nil, fmt.Errorf("%w: binary data, compressed input needs a .lz4 or .sz suffix", ErrMalformedInput)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') {
		return parseJSON(trimmed)
	}

	return parseText(data, opts.Column)
}

func decompress(r io.Reader, compression Compression) (io.Reader, error) {
	switch compression {
	case CompressionNone:
		return r, nil
	case CompressionLZ4:
		return lz4.NewReader(r), nil
	case CompressionSnappy:
		return snappy.NewReader(r), nil
	default:
		return nil, fmt.Errorf("%w: unknown compression %q", ErrInvalidOption, compression)
	}
}

func readBounded(r io.Reader, maxSize string) ([]byte, error) {
	if maxSize == "" {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read stream: %w", err)
		}

		return data, nil
	}

	limit, err := humanize.ParseBytes(maxSize)
	if err != nil {
		return nil, fmt.Errorf("%w: max size %q: %w", ErrInvalidOption, maxSize, err)
	}

	data, err := io.ReadAll(io.LimitReader(r, int64(limit)+1)) //nolint:gosec // limits above MaxInt64 are not meaningful.
	if err != nil {
		return nil, fmt.Errorf("read stream: %w", err)
	}

	if uint64(len(data)) > limit {
		return nil, fmt.Errorf("%w: exceeds %s", ErrInputTooLarge, humanize.Bytes(limit))
	}

	return data, nil
}

// binarySniffLength bounds the null-byte scan, as Git does.
const binarySniffLength = 8000

func isBinary(data []byte) bool {
	return bytes.IndexByte(data[:min(len(data), binarySniffLength)], 0) >= 0
}

type samplesDocument struct {
	Samples []float64 `json:"samples"`
}

func parseJSON(data []byte) ([]float64, error) {
	schema, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("compile samples schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, verr := range result.Errors() {
			msgs = append(msgs, verr.String())
		}

		return nil, fmt.Errorf("%w: %s", ErrMalformedInput, strings.Join(msgs, "; "))
	}

	if data[0] == '[' {
		var samples []float64

		err = json.Unmarshal(data, &samples)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
		}

		return samples, nil
	}

	var doc samplesDocument

	err = json.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}

	return doc.Samples, nil
}

func parseText(data []byte, column int) ([]float64, error) {
	var samples []float64

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), len(data)+1)

	lineNo := 0
	headerAllowed := true

	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, ",")
		if column >= len(fields) {
			return nil, fmt.Errorf("%w: line %d has %d fields, column %d requested",
				ErrMalformedInput, lineNo, len(fields), column)
		}

		field := strings.TrimSpace(fields[column])

		v, err := strconv.ParseFloat(field, 64)

		// Out-of-range numbers parse to ±Inf and are left for the detector
		// to reject; only unparsable text can be a header.
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			if headerAllowed && errors.Is(err, strconv.ErrSyntax) {
				headerAllowed = false

				continue
			}

			return nil, fmt.Errorf("%w: line %d: %q is not a number", ErrMalformedInput, lineNo, field)
		}

		headerAllowed = false

		samples = append(samples, v)
	}

	err := scanner.Err()
	if err != nil {
		return nil, fmt.Errorf("scan stream: %w", err)
	}

	return samples, nil
}

// WriteFile writes samples as text to path (stdout for "-"), compressing by suffix.
func WriteFile(path string, samples []float64) error {
	if path == StdinPath {
		return Write(os.Stdout, CompressionNone, samples)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create stream file: %w", err)
	}

	writeErr := Write(f, CompressionFor(path), samples)

	return errors.Join(writeErr, f.Close())
}

// Write encodes samples as text, one per line, in the given container.
func Write(w io.Writer, compression Compression, samples []float64) error {
	var (
		dst    io.Writer
		closer io.Closer
	)

	switch compression {
	case CompressionNone:
		dst = w
	case CompressionLZ4:
		zw := lz4.NewWriter(w)
		dst, closer = zw, zw
	case CompressionSnappy:
		zw := snappy.NewBufferedWriter(w)
		dst, closer = zw, zw
	default:
		return fmt.Errorf("%w: unknown compression %q", ErrInvalidOption, compression)
	}

	bw := bufio.NewWriter(dst)

	for _, v := range samples {
		_, err := bw.WriteString(strconv.FormatFloat(v, 'g', -1, 64) + "\n")
		if err != nil {
			return fmt.Errorf("write sample: %w", err)
		}
	}

	err := bw.Flush()
	if err != nil {
		return fmt.Errorf("flush samples: %w", err)
	}

	if closer != nil {
		err = closer.Close()
		if err != nil {
			return fmt.Errorf("close compressor: %w", err)
		}
	}

	return nil
}
