package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/logscope/ai"
	"github.com/poiesic/logscope/core"
	"github.com/poiesic/logscope/storage"
	"golang.org/x/time/rate"
)

// embeddingProcessor generates embeddings for stored documents.
type embeddingProcessor struct {
	writer    storage.Writer
	embedder  ai.Embedder
	limiter   *rate.Limiter
	dimension int
	logger    *slog.Logger
}

var _ processor = (*embeddingProcessor)(nil)

func newEmbeddingProcessor(writer storage.Writer, embedder ai.Embedder, limiter *rate.Limiter, dim int, logger *slog.Logger) (*embeddingProcessor, error) {
	if writer == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		writer:    writer,
		embedder:  embedder,
		limiter:   limiter,
		dimension: dim,
		logger:    logger.With("processor", "embeddings"),
	}, nil
}

// process embeds docs in one call and stores the vectors. Vectors that fail
// validation are dropped so the document stays out of semantic search
// instead of poisoning it.
func (ep *embeddingProcessor) process(ctx context.Context, docs ...*core.Document) error {
	if len(docs) == 0 {
		return nil
	}
	ep.logger.Debug("processing documents for embeddings", "documents", len(docs))

	if err := ep.limiter.Wait(ctx); err != nil {
		return err
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.EmbeddingText()
	}

	vectors, err := ep.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		ep.logger.Error("error generating embeddings", "err", err)
		return err
	}
	if len(vectors) != len(docs) {
		return fmt.Errorf("embedding result mismatch. expected %d, received %d", len(docs), len(vectors))
	}

	updates := make(map[core.ID][]float32, len(docs))
	for i, vec := range vectors {
		if err := core.ValidateEmbedding(vec, ep.dimension); err != nil {
			ep.logger.Warn("discarding embedding", "id", docs[i].Id, "err", err)
			continue
		}
		updates[docs[i].Id] = vec
	}
	if len(updates) == 0 {
		return nil
	}
	return ep.writer.UpdateEmbeddings(ctx, updates)
}
