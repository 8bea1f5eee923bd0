package reembed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/logscope/ai"
	"github.com/poiesic/logscope/core"
	"github.com/poiesic/logscope/storage"
)

// BatchResult counts the outcome of one batch.
type BatchResult struct {
	Updated int
	Skipped int
}

// BatchProcessor embeds a batch of documents and writes the new vectors back.
type BatchProcessor struct {
	writer    storage.Writer
	embedder  ai.Embedder
	backoff   Backoff
	dimension int
	logger    *slog.Logger
}

// NewBatchProcessor creates a processor. A positive dimension rejects
// vectors of any other size.
func NewBatchProcessor(writer storage.Writer, embedder ai.Embedder, backoff Backoff, dimension int, logger *slog.Logger) *BatchProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	backoff.Logger = logger
	return &BatchProcessor{
		writer:    writer,
		embedder:  embedder,
		backoff:   backoff,
		dimension: dimension,
		logger:    logger,
	}
}

// Process embeds the documents' embedding text in one call and stores the
// normalized results. A document whose vector can't be normalized or has the
// wrong dimension is skipped and keeps its stored embedding.
func (bp *BatchProcessor) Process(ctx context.Context, docs []*core.Document) (BatchResult, error) {
	var result BatchResult
	if len(docs) == 0 {
		return result, nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.EmbeddingText()
	}

	var vectors [][]float32
	err := bp.backoff.Do(ctx, func(ctx context.Context) error {
		var err error
		vectors, err = bp.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return err
		}
		if len(vectors) != len(texts) {
			return Permanent(fmt.Errorf("embedding count mismatch: expected %d, got %d", len(texts), len(vectors)))
		}
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("failed to generate embeddings: %w", err)
	}

	updates := make(map[core.ID][]float32, len(docs))
	for i, doc := range docs {
		vec, err := normalizeChecked(vectors[i], bp.dimension)
		if err != nil {
			bp.logger.Warn("skipping document with unusable embedding", "id", doc.Id, "err", err)
			result.Skipped++
			continue
		}
		updates[doc.Id] = vec
	}

	if len(updates) == 0 {
		return result, nil
	}
	if err := bp.writer.UpdateEmbeddings(ctx, updates); err != nil {
		return result, fmt.Errorf("failed to update embeddings: %w", err)
	}
	result.Updated = len(updates)
	return result, nil
}

func normalizeChecked(vec []float32, dim int) ([]float32, error) {
	if err := core.ValidateEmbedding(vec, dim); err != nil {
		return nil, err
	}
	out, err := Normalize(vec)
	if err != nil {
		return nil, errors.Join(core.ErrInvalidEmbedding, err)
	}
	return out, nil
}
