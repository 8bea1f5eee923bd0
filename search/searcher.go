package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/logscope/ai"
	"github.com/poiesic/logscope/core"
	"github.com/poiesic/logscope/storage"
)

// Searcher performs embedding-based retrieval over device logs.
type Searcher struct {
	repository     storage.VectorSearcher
	embedder       ai.Embedder
	dimension      int
	limit          int
	candidates     int
	embedTimeout   time.Duration
	storageTimeout time.Duration
	logger         *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithDimension rejects question embeddings whose length differs from dim.
// Zero disables the check.
func WithDimension(dim int) Option {
	return func(s *Searcher) error {
		if dim < 0 {
			return fmt.Errorf("dimension must not be negative: %d", dim)
		}
		s.dimension = dim
		return nil
	}
}

// WithLimit sets the number of results returned and the candidate pool
// size handed to the backend.
func WithLimit(limit, candidates int) Option {
	return func(s *Searcher) error {
		if limit <= 0 || candidates < limit {
			return fmt.Errorf("invalid limits: limit=%d candidates=%d", limit, candidates)
		}
		s.limit = limit
		s.candidates = candidates
		return nil
	}
}

// WithTimeouts bounds the embedding call and the storage call separately.
// A zero duration leaves that call bounded only by the caller's context.
func WithTimeouts(embedding, storage time.Duration) Option {
	return func(s *Searcher) error {
		s.embedTimeout = embedding
		s.storageTimeout = storage
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(repository storage.VectorSearcher, embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		repository: repository,
		embedder:   embedder,
		limit:      SemanticLimit,
		candidates: SemanticCandidates,
		logger:     slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// FindSimilar returns the stored logs most similar to question, restricted
// by filter when it is non-empty.
func (s *Searcher) FindSimilar(ctx context.Context, question string, filter core.Filter) ([]*core.SearchResult, error) {
	return s.FindSimilarWithMonitor(ctx, question, filter, nil)
}

// FindSimilarWithMonitor is FindSimilar with callbacks at each stage.
// Zero results is a valid outcome and is returned as an empty slice.
func (s *Searcher) FindSimilarWithMonitor(ctx context.Context, question string, filter core.Filter, monitor SearchMonitor) (results []*core.SearchResult, err error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(question, filter)
	defer func() { monitor.Finish(results, err) }()

	vector, err := s.embed(ctx, question)
	if err != nil {
		return nil, err
	}
	monitor.AfterEmbedding(vector)

	sctx, cancel := withTimeout(ctx, s.storageTimeout)
	defer cancel()
	results, err = s.repository.VectorSearch(sctx, storage.VectorQuery{
		Vector:        vector,
		NumCandidates: s.candidates,
		Limit:         s.limit,
		Metric:        storage.MetricCosine,
		Filter:        filter,
	})
	if err != nil {
		s.logger.Error("error querying for similar logs", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if results == nil {
		results = []*core.SearchResult{}
	}
	monitor.AfterVectorSearch(results)
	s.logger.Debug("semantic search complete", "hits", len(results), "filter", filter.String())

	return results, nil
}

func (s *Searcher) embed(ctx context.Context, question string) ([]float32, error) {
	ectx, cancel := withTimeout(ctx, s.embedTimeout)
	defer cancel()

	vector, err := s.embedder.EmbedText(ectx, question)
	if err != nil {
		s.logger.Error("error generating embedding for question", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrEmbedding, err)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrEmbedding, ai.ErrNoEmbedding)
	}
	if err := core.ValidateEmbedding(vector, s.dimension); err != nil {
		s.logger.Error("question embedding rejected", "length", len(vector), "want", s.dimension, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrEmbedding, err)
	}
	return vector, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
