package ingestion

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/poiesic/logscope/core"
	"github.com/valyala/fastjson"
)

// Format is the record layout of a dump.
type Format int

const (
	// FormatJSON is a JSON array of records or a single record.
	FormatJSON Format = iota + 1
	// FormatJSONLines is one record per line.
	FormatJSONLines
)

// Compression is the outer encoding of a dump.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
)

// maxLineSize bounds a single JSONL record.
const maxLineSize = 16 << 20

// DetectFormat derives format and compression from a file name, e.g.
// "logs.jsonl.zst". ErrUnsupportedFormat is returned for anything else.
func DetectFormat(name string) (Format, Compression, error) {
	base := strings.ToLower(filepath.Base(name))
	comp := CompressionNone
	switch {
	case strings.HasSuffix(base, ".gz"):
		comp = CompressionGzip
		base = strings.TrimSuffix(base, ".gz")
	case strings.HasSuffix(base, ".zst"):
		comp = CompressionZstd
		base = strings.TrimSuffix(base, ".zst")
	}

	switch filepath.Ext(base) {
	case ".json":
		return FormatJSON, comp, nil
	case ".jsonl", ".ndjson":
		return FormatJSONLines, comp, nil
	default:
		return 0, 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

// IsDumpFile reports whether name has a supported dump extension.
func IsDumpFile(name string) bool {
	_, _, err := DetectFormat(name)
	return err == nil
}

// ReadFile decodes every record in the named dump, calling fn for each.
// Records that fail to parse are passed to bad and skipped; a nil bad
// makes them fatal.
func ReadFile(path string, fn func(*core.Document) error, bad func(line int, err error)) error {
	format, comp, err := DetectFormat(path)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r, closeFn, err := decompress(f, comp)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer closeFn()

	if err := Decode(r, format, fn, bad); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func decompress(r io.Reader, comp Compression) (io.Reader, func(), error) {
	switch comp {
	case CompressionGzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return gz, func() { gz.Close() }, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return dec, dec.Close, nil
	default:
		return r, func() {}, nil
	}
}

// Decode reads records of the given format from r.
func Decode(r io.Reader, format Format, fn func(*core.Document) error, bad func(line int, err error)) error {
	switch format {
	case FormatJSONLines:
		return decodeLines(r, fn, bad)
	case FormatJSON:
		return decodeJSON(r, fn, bad)
	default:
		return ErrUnsupportedFormat
	}
}

func decodeLines(r io.Reader, fn func(*core.Document) error, bad func(int, error)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		// the scanner reuses its buffer
		doc, err := core.ParseDocument(bytes.Clone(raw))
		if err != nil {
			if bad == nil {
				return fmt.Errorf("line %d: %w", line, err)
			}
			bad(line, err)
			continue
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func decodeJSON(r io.Reader, fn func(*core.Document) error, bad func(int, error)) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	v, err := fastjson.ParseBytes(data)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrInvalidDocument, err)
	}

	items := []*fastjson.Value{v}
	if v.Type() == fastjson.TypeArray {
		items, _ = v.Array()
	}

	for i, item := range items {
		doc, err := core.ParseDocument(item.MarshalTo(nil))
		if err != nil {
			if bad == nil {
				return fmt.Errorf("record %d: %w", i+1, err)
			}
			bad(i+1, err)
			continue
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
	return nil
}
