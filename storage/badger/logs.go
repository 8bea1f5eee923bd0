package badger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/logscope/core"
	"github.com/poiesic/logscope/storage"
)

// LogRepository implements storage.LogRepository for BadgerDB.
//
// Each document is stored as two keys: its JSON body under logdoc: and, when
// present, its embedding under logvec:. Lookups and similarity search are
// full scans; the store targets single-node datasets.
type LogRepository struct {
	backend *Backend
	owned   bool
	logger  *slog.Logger
}

var _ storage.LogRepository = (*LogRepository)(nil)

// NewRepository opens a BadgerDB store at path and returns a repository
// that owns it.
func NewRepository(path string) (storage.LogRepository, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	repo := newLogRepository(backend)
	repo.owned = true
	return repo, nil
}

// NewLogRepository creates a repository over an existing backend. The
// caller remains responsible for closing the backend.
func NewLogRepository(backend *Backend) storage.LogRepository {
	return newLogRepository(backend)
}

func newLogRepository(backend *Backend) *LogRepository {
	return &LogRepository{
		backend: backend,
		logger:  backend.logger,
	}
}

// Close closes the backend when the repository owns it.
func (r *LogRepository) Close() error {
	if r.owned && !r.backend.IsClosed() {
		return r.backend.Close()
	}
	return nil
}

func (r *LogRepository) checkOpen() error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return nil
}

// AddDocuments upserts documents by ID. A document without a vector keeps
// any embedding already stored for its ID.
func (r *LogRepository) AddDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}
	stored := make([]*core.Document, len(docs))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for i, doc := range docs {
			stored[i] = doc
			if err := tx.Set(makeDocKey(doc.Id), doc.Raw); err != nil {
				return err
			}
			if len(doc.Vector) > 0 {
				if err := tx.Set(makeVectorKey(doc.Id), encodeVector(doc.Vector)); err != nil {
					return err
				}
				continue
			}
			vector, err := readVector(tx, doc.Id)
			if err != nil {
				return err
			}
			if vector != nil {
				stored[i] = core.NewDocument(doc.Id, doc.Raw, vector)
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// readVector returns the stored embedding for id, or nil if there is none.
func readVector(tx *badger.Txn, id core.ID) ([]float32, error) {
	item, err := tx.Get(makeVectorKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var vector []float32
	err = item.Value(func(val []byte) error {
		vector, err = decodeVector(val)
		return err
	})
	return vector, err
}

// UpdateEmbeddings replaces the embeddings of existing documents.
func (r *LogRepository) UpdateEmbeddings(ctx context.Context, vectors map[core.ID][]float32) error {
	if err := r.checkOpen(); err != nil {
		return err
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for id, vector := range vectors {
			if _, err := tx.Get(makeDocKey(id)); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					return fmt.Errorf("%w: %d", storage.ErrNotFound, id)
				}
				return err
			}
			if err := tx.Set(makeVectorKey(id), encodeVector(vector)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetDocument retrieves a single document by ID, embedding included.
func (r *LogRepository) GetDocument(ctx context.Context, id core.ID) (*core.Document, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}
	var doc *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		doc, err = r.readDocument(tx, id, true)
		if err != nil {
			return err
		}
		if doc == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return doc, err
}

// Find returns up to q.Limit filtered documents, projected to q.Fields.
func (r *LogRepository) Find(ctx context.Context, q storage.FindQuery) ([]*core.Document, error) {
	if q.Limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}
	if err := r.checkOpen(); err != nil {
		return nil, err
	}

	var results []*core.Document
	err := r.scanDocuments(ctx, func(doc *core.Document) (bool, error) {
		if !q.Filter.Matches(doc) {
			return true, nil
		}
		if len(q.Fields) > 0 {
			projected, err := doc.Project(q.Fields)
			if err != nil {
				return false, err
			}
			doc = projected
		}
		results = append(results, doc)
		return len(results) < q.Limit, nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Distinct returns the sorted distinct values of field, capped at limit.
func (r *LogRepository) Distinct(ctx context.Context, field string, filter core.Filter, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}
	if err := r.checkOpen(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	err := r.scanDocuments(ctx, func(doc *core.Document) (bool, error) {
		if !doc.Has(field) || !filter.Matches(doc) {
			return true, nil
		}
		seen[doc.Text(field)] = struct{}{}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	if len(values) > limit {
		values = values[:limit]
	}
	return values, nil
}

// VectorSearch performs an exact cosine search. The filter is evaluated
// against each candidate's document in the same scan.
func (r *LogRepository) VectorSearch(ctx context.Context, q storage.VectorQuery) ([]*core.SearchResult, error) {
	if q.Metric != "" && q.Metric != storage.MetricCosine {
		return nil, fmt.Errorf("%w: %s", storage.ErrUnsupportedMetric, q.Metric)
	}
	if q.Limit <= 0 || len(q.Vector) == 0 {
		return nil, fmt.Errorf("%w: vector and positive limit required", storage.ErrInvalidQuery)
	}
	if err := r.checkOpen(); err != nil {
		return nil, err
	}

	var results []*core.SearchResult
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(vectorPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := iter.Item()
			id, ok := idFromKey(vectorPrefix, item.Key())
			if !ok {
				continue
			}

			var vector []float32
			err := item.Value(func(val []byte) error {
				var err error
				vector, err = decodeVector(val)
				return err
			})
			if err != nil {
				return err
			}

			// Skip embeddings from a different model
			if len(vector) != len(q.Vector) {
				continue
			}

			doc, err := r.readDocument(tx, id, false)
			if err != nil {
				return err
			}
			if doc == nil || !q.Filter.Matches(doc) {
				continue
			}
			doc.Vector = vector

			results = append(results, &core.SearchResult{
				Document: doc,
				Score:    cosineSimilarity(q.Vector, vector),
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortStableFunc(results, func(a, b *core.SearchResult) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results, nil
}

// ForEach walks all documents in ID order, embeddings included. Each batch
// is read in its own transaction so fn may write to the repository.
func (r *LogRepository) ForEach(ctx context.Context, batchSize int, fn func([]*core.Document) error) error {
	if batchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive", storage.ErrInvalidQuery)
	}

	var cursor []byte
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.checkOpen(); err != nil {
			return err
		}

		batch, next, err := r.readBatch(cursor, batchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		if err := fn(batch); err != nil {
			return err
		}
		if next == nil {
			return nil
		}
		cursor = next
	}
}

// readBatch reads up to n documents starting after cursor. It returns the
// key to resume from, or nil when the walk is complete.
func (r *LogRepository) readBatch(cursor []byte, n int) ([]*core.Document, []byte, error) {
	var batch []*core.Document
	var next []byte
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(docPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		start := []byte(docPrefix)
		if cursor != nil {
			start = cursor
		}
		for iter.Seek(start); iter.Valid(); iter.Next() {
			key := iter.Item().KeyCopy(nil)
			if cursor != nil && bytes.Equal(key, cursor) {
				continue
			}
			if len(batch) == n {
				next = cursor
				return nil
			}
			id, ok := idFromKey(docPrefix, key)
			if !ok {
				continue
			}
			doc, err := r.readDocument(tx, id, true)
			if err != nil {
				return err
			}
			if doc != nil {
				batch = append(batch, doc)
			}
			cursor = key
		}
		return nil
	}, false)
	return batch, next, err
}

// Count returns the number of stored documents.
func (r *LogRepository) Count(ctx context.Context) (int, error) {
	if err := r.checkOpen(); err != nil {
		return 0, err
	}
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(docPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// scanDocuments calls fn for each document body in ID order until fn
// returns false or an error. Embeddings are not loaded.
func (r *LogRepository) scanDocuments(ctx context.Context, fn func(*core.Document) (bool, error)) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(docPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := iter.Item()
			id, ok := idFromKey(docPrefix, item.Key())
			if !ok {
				continue
			}
			raw, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			doc := core.NewDocument(id, raw, nil)
			if _, err := doc.Value(); err != nil {
				r.logger.Warn("skipping unreadable document", "id", id, "err", err)
				continue
			}
			more, err := fn(doc)
			if err != nil {
				return err
			}
			if !more {
				return nil
			}
		}
		return nil
	}, false)
}

// readDocument loads a document body and optionally its embedding.
// Returns nil, nil if the document does not exist.
func (r *LogRepository) readDocument(tx *badger.Txn, id core.ID, withVector bool) (*core.Document, error) {
	item, err := tx.Get(makeDocKey(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	doc := core.NewDocument(id, raw, nil)
	if !withVector {
		return doc, nil
	}

	doc.Vector, err = readVector(tx, id)
	if err != nil {
		return nil, err
	}
	return doc, nil
}
