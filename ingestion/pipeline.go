package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/logscope/ai"
	"github.com/poiesic/logscope/core"
	"github.com/poiesic/logscope/storage"
	"golang.org/x/time/rate"
)

// DefaultBatchSize is the number of documents stored and embedded together.
const DefaultBatchSize = 64

// Pipeline stores device logs and backfills missing embeddings.
type Pipeline struct {
	writer        storage.Writer
	embedder      ai.Embedder
	embeddingPool *ants.Pool
	embeddingProc processor
	limiter       *rate.Limiter
	dimension     int
	batchSize     int
	pending       sync.WaitGroup
	failed        atomic.Int64
	logger        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.embeddingPool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithRateLimit throttles embedding calls to rps per second with the given
// burst. A non-positive rps disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(p *Pipeline) error {
		if burst < 1 {
			burst = 1
		}
		limit := rate.Inf
		if rps > 0 {
			limit = rate.Limit(rps)
		}
		p.limiter = rate.NewLimiter(limit, burst)
		return nil
	}
}

// WithDimension sets the embedding size. Source embeddings of any other
// size are discarded and recomputed.
func WithDimension(dim int) Option {
	return func(p *Pipeline) error {
		p.dimension = dim
		return nil
	}
}

// WithBatchSize sets how many documents are embedded per call.
func WithBatchSize(n int) Option {
	return func(p *Pipeline) error {
		if n < 1 {
			n = 1
		}
		p.batchSize = n
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(writer storage.Writer, embedder ai.Embedder, opts ...Option) (*Pipeline, error) {
	if writer == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		writer:        writer,
		embedder:      embedder,
		embeddingPool: pool,
		limiter:       rate.NewLimiter(rate.Inf, 1),
		batchSize:     DefaultBatchSize,
		logger:        slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	// Created after options so it sees the final configuration
	proc, err := newEmbeddingProcessor(writer, embedder, p.limiter, p.dimension, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.embeddingProc = proc

	return p, nil
}

// IngestResult summarizes one Ingest call.
type IngestResult struct {
	Stored  int
	Skipped int
	Queued  int
}

// Ingest stores docs and queues those without a usable embedding for
// asynchronous embedding. Documents failing validation are skipped and
// logged. Embedding errors are logged and counted, never returned; call
// Wait to block until queued work is done.
func (p *Pipeline) Ingest(ctx context.Context, docs ...*core.Document) (IngestResult, error) {
	var res IngestResult

	valid := make([]*core.Document, 0, len(docs))
	for _, doc := range docs {
		if err := core.ValidateDocument(doc); err != nil {
			p.logger.Warn("skipping invalid document", "err", err)
			res.Skipped++
			continue
		}
		if len(doc.Vector) > 0 && core.ValidateEmbedding(doc.Vector, p.dimension) != nil {
			p.logger.Debug("dropping source embedding", "id", doc.Id, "length", len(doc.Vector))
			doc.Vector = nil
		}
		valid = append(valid, doc)
	}
	if len(valid) == 0 {
		return res, nil
	}

	added, err := p.writer.AddDocuments(ctx, valid...)
	if err != nil {
		return res, err
	}
	res.Stored = len(added)

	var missing []*core.Document
	for _, doc := range added {
		if len(doc.Vector) == 0 {
			missing = append(missing, doc)
		}
	}
	res.Queued = len(missing)

	for start := 0; start < len(missing); start += p.batchSize {
		end := min(start+p.batchSize, len(missing))
		if err := p.submit(missing[start:end]); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (p *Pipeline) submit(batch []*core.Document) error {
	p.pending.Add(1)
	err := p.embeddingPool.Submit(func() {
		defer p.pending.Done()
		if err := p.embeddingProc.process(context.Background(), batch...); err != nil {
			p.failed.Add(int64(len(batch)))
			p.logger.Error("error processing embeddings", "documents", len(batch), "err", err)
		}
	})
	if err != nil {
		p.pending.Done()
	}
	return err
}

// Wait blocks until every queued embedding batch has finished.
func (p *Pipeline) Wait() {
	p.pending.Wait()
}

// Failed returns how many documents could not be embedded so far.
func (p *Pipeline) Failed() int {
	return int(p.failed.Load())
}

// Release waits for queued work and releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	p.pending.Wait()
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}
