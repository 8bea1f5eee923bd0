package qdrant

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"github.com/poiesic/logscope/core"
	"github.com/poiesic/logscope/storage"
)

// AddDocuments upserts documents as points. Documents without a vector keep
// the embedding already stored for their ID.
func (r *Repository) AddDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error) {
	if len(docs) == 0 {
		return docs, nil
	}
	ctx, cancel, err := r.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer r.mu.RUnlock()

	existing, err := r.existingVectors(ctx, docs)
	if err != nil {
		return nil, err
	}

	stored := make([]*core.Document, len(docs))
	points := make([]*qdrant.PointStruct, 0, len(docs))
	for i, doc := range docs {
		stored[i] = doc
		payload, err := toPayload(doc)
		if err != nil {
			return nil, fmt.Errorf("%w: document %d: %w", storage.ErrSerializationFailed, doc.Id, err)
		}
		vector := doc.Vector
		if len(vector) == 0 {
			vector = existing[doc.Id]
			if len(vector) > 0 {
				stored[i] = core.NewDocument(doc.Id, doc.Raw, vector)
			}
		}
		point := &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(doc.Id)),
			Payload: payload,
			Vectors: qdrant.NewVectorsMap(map[string]*qdrant.Vector{}),
		}
		if len(vector) > 0 {
			point.Vectors = qdrant.NewVectorsMap(map[string]*qdrant.Vector{
				vectorName: qdrant.NewVectorDense(vector),
			})
		}
		points = append(points, point)
	}

	_, err = r.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: r.config.Collection,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert failed: %w", err)
	}
	return stored, nil
}

// existingVectors fetches stored embeddings for documents arriving without one.
func (r *Repository) existingVectors(ctx context.Context, docs []*core.Document) (map[core.ID][]float32, error) {
	var ids []*qdrant.PointId
	for _, doc := range docs {
		if len(doc.Vector) == 0 {
			ids = append(ids, qdrant.NewIDNum(uint64(doc.Id)))
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	points, err := r.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: r.config.Collection,
		Ids:            ids,
		WithPayload:    qdrant.NewWithPayload(false),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read existing points: %w", err)
	}

	out := make(map[core.ID][]float32, len(points))
	for _, p := range points {
		if v := pointVector(p.GetVectors()); len(v) > 0 {
			out[pointID(p.GetId())] = v
		}
	}
	return out, nil
}

// UpdateEmbeddings replaces the embeddings of existing points.
func (r *Repository) UpdateEmbeddings(ctx context.Context, vectors map[core.ID][]float32) error {
	if len(vectors) == 0 {
		return nil
	}
	ctx, cancel, err := r.begin(ctx)
	if err != nil {
		return err
	}
	defer cancel()
	defer r.mu.RUnlock()

	ids := make([]*qdrant.PointId, 0, len(vectors))
	for id := range vectors {
		ids = append(ids, qdrant.NewIDNum(uint64(id)))
	}
	found, err := r.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: r.config.Collection,
		Ids:            ids,
		WithPayload:    qdrant.NewWithPayload(false),
	})
	if err != nil {
		return fmt.Errorf("failed to read points: %w", err)
	}
	if len(found) != len(vectors) {
		return fmt.Errorf("%w: %d of %d points missing", storage.ErrNotFound, len(vectors)-len(found), len(vectors))
	}

	points := make([]*qdrant.PointVectors, 0, len(vectors))
	for id, vector := range vectors {
		points = append(points, &qdrant.PointVectors{
			Id: qdrant.NewIDNum(uint64(id)),
			Vectors: qdrant.NewVectorsMap(map[string]*qdrant.Vector{
				vectorName: qdrant.NewVectorDense(vector),
			}),
		})
	}
	_, err = r.client.UpdateVectors(ctx, &qdrant.UpdatePointVectors{
		CollectionName: r.config.Collection,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("vector update failed: %w", err)
	}
	return nil
}

// GetDocument retrieves a single document by ID, embedding included.
func (r *Repository) GetDocument(ctx context.Context, id core.ID) (*core.Document, error) {
	ctx, cancel, err := r.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer r.mu.RUnlock()

	points, err := r.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: r.config.Collection,
		Ids:            []*qdrant.PointId{qdrant.NewIDNum(uint64(id))},
		WithPayload:    qdrant.NewWithPayloadExclude(textMirror, lowerMirror),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get failed: %w", err)
	}
	if len(points) == 0 {
		return nil, storage.ErrNotFound
	}
	p := points[0]
	return core.NewDocument(pointID(p.GetId()), fromPayload(p.GetPayload()), pointVector(p.GetVectors())), nil
}

// Find scrolls filtered points, projected to the requested fields.
func (r *Repository) Find(ctx context.Context, q storage.FindQuery) ([]*core.Document, error) {
	if q.Limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}
	ctx, cancel, err := r.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer r.mu.RUnlock()

	selector := qdrant.NewWithPayloadExclude(textMirror, lowerMirror)
	if len(q.Fields) > 0 {
		selector = qdrant.NewWithPayloadInclude(q.Fields...)
	}

	points, err := r.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: r.config.Collection,
		Filter:         buildFilter(q.Filter),
		Limit:          qdrant.PtrOf(uint32(q.Limit)),
		WithPayload:    selector,
		WithVectors:    qdrant.NewWithVectors(false),
	})
	if err != nil {
		return nil, fmt.Errorf("scroll failed: %w", err)
	}

	docs := make([]*core.Document, 0, len(points))
	for _, p := range points {
		doc := core.NewDocument(pointID(p.GetId()), fromPayload(p.GetPayload()), nil)
		if len(q.Fields) > 0 {
			if doc, err = doc.Project(q.Fields); err != nil {
				return nil, err
			}
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Distinct uses facet counts on the keyword mirror for canonical fields and
// falls back to a filtered scroll for any other path.
func (r *Repository) Distinct(ctx context.Context, field string, filter core.Filter, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}
	ctx, cancel, err := r.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer r.mu.RUnlock()

	var values []string
	if isIndexed(field) {
		values, err = r.facetValues(ctx, field, filter, limit)
	} else {
		values, err = r.scrollValues(ctx, field, filter)
	}
	if err != nil {
		return nil, err
	}

	sort.Strings(values)
	if len(values) > limit {
		values = values[:limit]
	}
	return values, nil
}

func isIndexed(field string) bool {
	for _, f := range core.CanonicalFields {
		if f == field {
			return true
		}
	}
	return false
}

func (r *Repository) facetValues(ctx context.Context, field string, filter core.Filter, limit int) ([]string, error) {
	hits, err := r.client.Facet(ctx, &qdrant.FacetCounts{
		CollectionName: r.config.Collection,
		Key:            textKey(field),
		Filter:         buildFilter(filter),
		Limit:          qdrant.PtrOf(uint64(limit)),
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return nil, fmt.Errorf("facet failed: %w", err)
	}
	values := make([]string, 0, len(hits))
	for _, hit := range hits {
		values = append(values, facetText(hit.GetValue()))
	}
	return values, nil
}

func facetText(v *qdrant.FacetValue) string {
	switch variant := v.GetVariant().(type) {
	case *qdrant.FacetValue_StringValue:
		return variant.StringValue
	case *qdrant.FacetValue_IntegerValue:
		return strconv.FormatInt(variant.IntegerValue, 10)
	case *qdrant.FacetValue_BoolValue:
		return strconv.FormatBool(variant.BoolValue)
	default:
		return ""
	}
}

func (r *Repository) scrollValues(ctx context.Context, field string, filter core.Filter) ([]string, error) {
	seen := make(map[string]struct{})
	var offset *qdrant.PointId
	for {
		points, next, err := r.client.ScrollAndOffset(ctx, &qdrant.ScrollPoints{
			CollectionName: r.config.Collection,
			Filter:         buildFilter(filter),
			Offset:         offset,
			Limit:          qdrant.PtrOf(uint32(256)),
			WithPayload:    qdrant.NewWithPayloadInclude(field),
		})
		if err != nil {
			return nil, fmt.Errorf("scroll failed: %w", err)
		}
		for _, p := range points {
			doc := core.NewDocument(pointID(p.GetId()), fromPayload(p.GetPayload()), nil)
			if doc.Has(field) {
				seen[doc.Text(field)] = struct{}{}
			}
		}
		if next == nil {
			break
		}
		offset = next
	}

	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	return values, nil
}

// VectorSearch runs a filtered dense query against the named embedding.
// NumCandidates sets the HNSW search breadth.
func (r *Repository) VectorSearch(ctx context.Context, q storage.VectorQuery) ([]*core.SearchResult, error) {
	if q.Metric != "" && q.Metric != storage.MetricCosine {
		return nil, fmt.Errorf("%w: %s", storage.ErrUnsupportedMetric, q.Metric)
	}
	if q.Limit <= 0 || len(q.Vector) == 0 {
		return nil, fmt.Errorf("%w: vector and positive limit required", storage.ErrInvalidQuery)
	}
	// Points embedded by another model cannot live in this collection.
	if len(q.Vector) != r.config.Dimension {
		return nil, nil
	}
	ctx, cancel, err := r.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer r.mu.RUnlock()

	request := &qdrant.QueryPoints{
		CollectionName: r.config.Collection,
		Query:          qdrant.NewQueryDense(q.Vector),
		Using:          qdrant.PtrOf(vectorName),
		Filter:         buildFilter(q.Filter),
		Limit:          qdrant.PtrOf(uint64(q.Limit)),
		WithPayload:    qdrant.NewWithPayloadExclude(textMirror, lowerMirror),
	}
	if q.NumCandidates > 0 {
		request.Params = &qdrant.SearchParams{HnswEf: qdrant.PtrOf(uint64(q.NumCandidates))}
	}

	points, err := r.client.Query(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	results := make([]*core.SearchResult, 0, len(points))
	for _, p := range points {
		results = append(results, &core.SearchResult{
			Document: core.NewDocument(pointID(p.GetId()), fromPayload(p.GetPayload()), nil),
			Score:    p.GetScore(),
		})
	}
	return results, nil
}

// ForEach scrolls every point in batches, embeddings included.
func (r *Repository) ForEach(ctx context.Context, batchSize int, fn func([]*core.Document) error) error {
	if batchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive", storage.ErrInvalidQuery)
	}

	var offset *qdrant.PointId
	for {
		batch, next, err := r.scrollBatch(ctx, offset, batchSize)
		if err != nil {
			return err
		}
		if len(batch) > 0 {
			if err := fn(batch); err != nil {
				return err
			}
		}
		if next == nil {
			return nil
		}
		offset = next
	}
}

func (r *Repository) scrollBatch(ctx context.Context, offset *qdrant.PointId, n int) ([]*core.Document, *qdrant.PointId, error) {
	ctx, cancel, err := r.begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer cancel()
	defer r.mu.RUnlock()

	points, next, err := r.client.ScrollAndOffset(ctx, &qdrant.ScrollPoints{
		CollectionName: r.config.Collection,
		Offset:         offset,
		Limit:          qdrant.PtrOf(uint32(n)),
		WithPayload:    qdrant.NewWithPayloadExclude(textMirror, lowerMirror),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("scroll failed: %w", err)
	}

	batch := make([]*core.Document, 0, len(points))
	for _, p := range points {
		batch = append(batch, core.NewDocument(pointID(p.GetId()), fromPayload(p.GetPayload()), pointVector(p.GetVectors())))
	}
	return batch, next, nil
}

// Count returns the exact number of points in the collection.
func (r *Repository) Count(ctx context.Context) (int, error) {
	ctx, cancel, err := r.begin(ctx)
	if err != nil {
		return 0, err
	}
	defer cancel()
	defer r.mu.RUnlock()

	n, err := r.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: r.config.Collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("count failed: %w", err)
	}
	return int(n), nil
}
