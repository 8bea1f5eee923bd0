package core

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/go-crypt/x/blake2b"
	"github.com/valyala/fastjson"
)

// EmbeddingField is the key under which source records carry their vector.
// It is lifted out of the document body on parse.
const EmbeddingField = "embedding"

// ID is a unique identifier for stored log documents.
// It is derived from document content so reloading the same dump is idempotent.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Document is a single device-log record.
//
// Raw holds the JSON object without the embedding. Vector is nil when the
// record has not been embedded yet; such records are still visible to
// structured lookups.
type Document struct {
	Id     ID
	Raw    []byte
	Vector []float32

	value *fastjson.Value
}

// ParseDocument parses a JSON object into a Document. A numeric "embedding"
// array is moved into Vector; any other embedding value is discarded.
func ParseDocument(raw []byte) (*Document, error) {
	v, err := fastjson.ParseBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	obj, err := v.Object()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, ErrNotObject)
	}

	var vector []float32
	if ev := obj.Get(EmbeddingField); ev != nil {
		vector = floatArray(ev)
		obj.Del(EmbeddingField)
	}

	body := v.MarshalTo(nil)
	return &Document{
		Id:     idFor(v, body),
		Raw:    body,
		Vector: vector,
	}, nil
}

// NewDocument wraps an already-stored body. The body is parsed lazily.
func NewDocument(id ID, raw []byte, vector []float32) *Document {
	return &Document{Id: id, Raw: raw, Vector: vector}
}

func idFor(v *fastjson.Value, body []byte) ID {
	switch idv := v.Get("_id"); {
	case idv == nil:
	case idv.Type() == fastjson.TypeString:
		return IDFromContent(string(idv.GetStringBytes()))
	case idv.Get("$oid") != nil:
		return IDFromContent(string(idv.GetStringBytes("$oid")))
	default:
		return IDFromContent(idv.String())
	}
	return IDFromContent(string(body))
}

func floatArray(v *fastjson.Value) []float32 {
	arr, err := v.Array()
	if err != nil || len(arr) == 0 {
		return nil
	}
	out := make([]float32, 0, len(arr))
	for _, item := range arr {
		f, err := item.Float64()
		if err != nil {
			return nil
		}
		out = append(out, float32(f))
	}
	return out
}

// Value returns the parsed JSON body, parsing Raw on first use.
func (d *Document) Value() (*fastjson.Value, error) {
	if d.value != nil {
		return d.value, nil
	}
	v, err := fastjson.ParseBytes(d.Raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	d.value = v
	return v, nil
}

// Lookup returns the value at a dotted path, or nil when any segment is absent.
func (d *Document) Lookup(path string) *fastjson.Value {
	v, err := d.Value()
	if err != nil {
		return nil
	}
	return v.Get(SplitPath(path)...)
}

// Has reports whether the path resolves to a non-null value.
func (d *Document) Has(path string) bool {
	v := d.Lookup(path)
	return v != nil && v.Type() != fastjson.TypeNull
}

// Text renders the value at path for display. Strings are unquoted, other
// scalars use their JSON literal, and objects or arrays are rendered as JSON.
// Missing and null values render as "".
func (d *Document) Text(path string) string {
	return ValueText(d.Lookup(path))
}

// ValueText renders a JSON value the same way Document.Text does.
func ValueText(v *fastjson.Value) string {
	if v == nil {
		return ""
	}
	switch v.Type() {
	case fastjson.TypeNull:
		return ""
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	default:
		return v.String()
	}
}

// Project returns a copy of the document holding only the given paths,
// nested the same way as in the source. Absent paths are omitted.
func (d *Document) Project(paths []string) (*Document, error) {
	src, err := d.Value()
	if err != nil {
		return nil, err
	}
	var arena fastjson.Arena
	out := arena.NewObject()
	for _, path := range paths {
		segs := SplitPath(path)
		val := src.Get(segs...)
		if val == nil {
			continue
		}
		parent := out
		for _, seg := range segs[:len(segs)-1] {
			child := parent.Get(seg)
			if child == nil || child.Type() != fastjson.TypeObject {
				child = arena.NewObject()
				parent.Set(seg, child)
			}
			parent = child
		}
		parent.Set(segs[len(segs)-1], val)
	}
	return NewDocument(d.Id, out.MarshalTo(nil), nil), nil
}

// WithoutVector returns a shallow copy of the document with its embedding dropped.
func (d *Document) WithoutVector() *Document {
	cp := *d
	cp.Vector = nil
	return &cp
}

// SplitPath splits a dotted field path into its segments.
func SplitPath(path string) []string {
	return strings.Split(path, ".")
}

// SearchResult represents a search result with the full document and relevance score.
type SearchResult struct {
	Document *Document
	Score    float32
}
