package ingestion

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/poiesic/logscope/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLines = `{"_id": "1", "DeviceId": "A", "Summary": "alarm", "embedding": [1, 0, 0]}
{"_id": "2", "DeviceId": "B", "Summary": "idle"}

{"_id": "3", "DeviceId": "C", "LogData": {"Ward": "North"}}
`

func collect(t *testing.T) (*[]*core.Document, func(*core.Document) error) {
	t.Helper()
	var docs []*core.Document
	return &docs, func(d *core.Document) error {
		docs = append(docs, d)
		return nil
	}
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func gzipBytes(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func zstdBytes(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		comp   Compression
	}{
		{"logs.json", FormatJSON, CompressionNone},
		{"logs.JSONL", FormatJSONLines, CompressionNone},
		{"/tmp/x/logs.ndjson", FormatJSONLines, CompressionNone},
		{"logs.json.gz", FormatJSON, CompressionGzip},
		{"logs.jsonl.zst", FormatJSONLines, CompressionZstd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, c, err := DetectFormat(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.format, f)
			assert.Equal(t, tt.comp, c)
		})
	}

	for _, name := range []string{"logs.csv", "logs.gz", "README"} {
		_, _, err := DetectFormat(name)
		assert.ErrorIs(t, err, ErrUnsupportedFormat, name)
		assert.False(t, IsDumpFile(name))
	}
}

func TestDecode_Lines(t *testing.T) {
	docs, fn := collect(t)
	require.NoError(t, Decode(strings.NewReader(sampleLines), FormatJSONLines, fn, nil))
	require.Len(t, *docs, 3)

	first := (*docs)[0]
	assert.Equal(t, []float32{1, 0, 0}, first.Vector)
	assert.False(t, first.Has(core.EmbeddingField))
	assert.Equal(t, "North", (*docs)[2].Text(core.FieldWard))
}

func TestDecode_JSON(t *testing.T) {
	t.Run("array", func(t *testing.T) {
		docs, fn := collect(t)
		err := Decode(strings.NewReader(`[{"DeviceId": "A"}, {"DeviceId": "B"}]`), FormatJSON, fn, nil)
		require.NoError(t, err)
		require.Len(t, *docs, 2)
		assert.Equal(t, "B", (*docs)[1].Text(core.FieldDeviceID))
	})

	t.Run("single object", func(t *testing.T) {
		docs, fn := collect(t)
		require.NoError(t, Decode(strings.NewReader(`{"DeviceId": "A"}`), FormatJSON, fn, nil))
		assert.Len(t, *docs, 1)
	})

	t.Run("not json", func(t *testing.T) {
		_, fn := collect(t)
		assert.ErrorIs(t, Decode(strings.NewReader(`nope`), FormatJSON, fn, nil), core.ErrInvalidDocument)
	})
}

func TestDecode_Malformed(t *testing.T) {
	input := "{\"DeviceId\": \"A\"}\n{broken\n[1, 2]\n{\"DeviceId\": \"B\"}\n"

	t.Run("fatal without handler", func(t *testing.T) {
		_, fn := collect(t)
		err := Decode(strings.NewReader(input), FormatJSONLines, fn, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 2")
	})

	t.Run("skipped with handler", func(t *testing.T) {
		docs, fn := collect(t)
		var badLines []int
		err := Decode(strings.NewReader(input), FormatJSONLines, fn, func(line int, _ error) {
			badLines = append(badLines, line)
		})
		require.NoError(t, err)
		assert.Len(t, *docs, 2)
		assert.Equal(t, []int{2, 3}, badLines)
	})
}

func TestReadFile_Compressed(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeFile(t, dir, "plain.jsonl", []byte(sampleLines)),
		writeFile(t, dir, "packed.jsonl.gz", gzipBytes(t, sampleLines)),
		writeFile(t, dir, "packed.jsonl.zst", zstdBytes(t, sampleLines)),
		writeFile(t, dir, "array.json.zst", zstdBytes(t, `[{"DeviceId": "A"}, {"DeviceId": "B"}, {"DeviceId": "C"}]`)),
	}

	for _, path := range files {
		docs, fn := collect(t)
		require.NoError(t, ReadFile(path, fn, nil), path)
		assert.Len(t, *docs, 3, path)
	}
}
