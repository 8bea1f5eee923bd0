package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/logscope/core"
	"github.com/poiesic/logscope/storage"
)

// Store is the storage capability the structured path needs.
type Store interface {
	storage.Finder
	storage.DistinctFinder
}

// Lookup runs the structured retrieval path.
type Lookup struct {
	store       Store
	uniqueLimit int
	timeout     time.Duration
	logger      *slog.Logger
}

// LookupOption configures a Lookup.
type LookupOption func(*Lookup)

// WithLookupLogger sets a custom logger.
func WithLookupLogger(logger *slog.Logger) LookupOption {
	return func(l *Lookup) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithUniqueLimit caps how many distinct values Unique returns.
// Non-positive values keep UniqueLimit.
func WithUniqueLimit(n int) LookupOption {
	return func(l *Lookup) {
		if n > 0 {
			l.uniqueLimit = n
		}
	}
}

// WithStorageTimeout bounds each storage call.
func WithStorageTimeout(d time.Duration) LookupOption {
	return func(l *Lookup) {
		l.timeout = d
	}
}

// NewLookup creates a structured lookup over store.
func NewLookup(store Store, opts ...LookupOption) (*Lookup, error) {
	if store == nil {
		return nil, ErrRepositoryRequired
	}
	l := &Lookup{
		store:       store,
		uniqueLimit: UniqueLimit,
		logger:      slog.Default().With("component", "lookup"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// UniqueValues is the result of Unique.
type UniqueValues struct {
	Field  string
	Values []string

	// Truncated reports that more distinct values exist than were returned.
	Truncated bool
}

// Project returns up to ProjectLimit documents matching filter, each
// holding only the requested paths. An empty filter matches every log.
func (l *Lookup) Project(ctx context.Context, fields []string, filter core.Filter) ([]*core.Document, error) {
	if len(fields) == 0 {
		return nil, ErrNoFields
	}
	return l.find(ctx, storage.FindQuery{Filter: filter, Fields: fields, Limit: ProjectLimit})
}

// Dump returns up to DumpLimit complete documents matching filter.
// Embeddings are never included.
func (l *Lookup) Dump(ctx context.Context, filter core.Filter) ([]*core.Document, error) {
	docs, err := l.find(ctx, storage.FindQuery{Filter: filter, Limit: DumpLimit})
	if err != nil {
		return nil, err
	}
	for i, doc := range docs {
		if len(doc.Vector) > 0 {
			docs[i] = doc.WithoutVector()
		}
	}
	return docs, nil
}

// Unique returns the sorted distinct values of field across all logs.
func (l *Lookup) Unique(ctx context.Context, field string) (*UniqueValues, error) {
	cctx, cancel := withTimeout(ctx, l.timeout)
	defer cancel()

	values, err := l.store.Distinct(cctx, field, nil, l.uniqueLimit+1)
	if err != nil {
		l.logger.Error("distinct query failed", "field", field, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	out := &UniqueValues{Field: field, Values: values}
	if len(values) > l.uniqueLimit {
		out.Values = values[:l.uniqueLimit]
		out.Truncated = true
	}
	l.logger.Debug("distinct values", "field", field, "count", len(out.Values), "truncated", out.Truncated)
	return out, nil
}

func (l *Lookup) find(ctx context.Context, q storage.FindQuery) ([]*core.Document, error) {
	cctx, cancel := withTimeout(ctx, l.timeout)
	defer cancel()

	docs, err := l.store.Find(cctx, q)
	if err != nil {
		l.logger.Error("find failed", "filter", q.Filter.String(), "err", err)
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	l.logger.Debug("find complete", "filter", q.Filter.String(), "fields", q.Fields, "hits", len(docs))
	return docs, nil
}
