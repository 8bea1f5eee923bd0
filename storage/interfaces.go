package storage

import (
	"context"

	"github.com/poiesic/logscope/core"
)

// MetricCosine is the only similarity metric backends are required to support.
const MetricCosine = "cosine"

// FindQuery describes a filtered, optionally projected lookup.
type FindQuery struct {
	// Filter restricts results; nil matches everything.
	Filter core.Filter

	// Fields lists the canonical paths to return. Empty means the full
	// document. Returned documents never carry their embedding.
	Fields []string

	// Limit caps the number of documents returned. Must be positive.
	Limit int
}

// VectorQuery describes a hybrid similarity search.
type VectorQuery struct {
	Vector []float32

	// NumCandidates is the approximate-search candidate pool size. Backends
	// doing exact search may ignore it.
	NumCandidates int

	Limit int

	// Metric names the similarity function. Only MetricCosine is supported.
	Metric string

	// Filter is applied in the same pass as the similarity comparison.
	Filter core.Filter
}

// Finder performs filtered lookups.
type Finder interface {
	// Find returns up to q.Limit documents matching q.Filter, projected to
	// q.Fields. Zero matches is not an error.
	Find(ctx context.Context, q FindQuery) ([]*core.Document, error)
}

// DistinctFinder lists the distinct values of a field.
type DistinctFinder interface {
	// Distinct returns the sorted distinct rendered values of field across
	// documents matching filter, up to limit values. Documents without the
	// field contribute nothing.
	Distinct(ctx context.Context, field string, filter core.Filter, limit int) ([]string, error)
}

// VectorSearcher performs similarity search over document embeddings.
type VectorSearcher interface {
	// VectorSearch returns up to q.Limit documents ordered by similarity
	// (highest first). Documents without an embedding of the query's
	// dimensionality are never returned.
	VectorSearch(ctx context.Context, q VectorQuery) ([]*core.SearchResult, error)
}

// Writer stores documents and their embeddings.
type Writer interface {
	// AddDocuments upserts documents by ID. A document without a vector
	// keeps any embedding already stored for its ID; the returned documents
	// carry the embedding stored after the call.
	AddDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error)

	// UpdateEmbeddings replaces the embedding of existing documents.
	// Returns ErrNotFound if any ID is unknown.
	UpdateEmbeddings(ctx context.Context, vectors map[core.ID][]float32) error
}

// Scanner walks every stored document.
type Scanner interface {
	// ForEach calls fn with successive batches of at most batchSize
	// documents, embeddings included. Iteration stops at the first error.
	ForEach(ctx context.Context, batchSize int, fn func([]*core.Document) error) error

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)
}

// LogRepository is the full capability set of a log store.
// Implementations must be safe for concurrent use.
type LogRepository interface {
	Finder
	DistinctFinder
	VectorSearcher
	Writer
	Scanner

	// GetDocument retrieves a single document by ID, embedding included.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// Close releases the underlying store.
	Close() error
}
