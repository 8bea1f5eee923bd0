// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package reembed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/poiesic/logscope/ai"
	"github.com/poiesic/logscope/core"
	"github.com/poiesic/logscope/storage"
)

// Store is the repository capability the reembedder needs.
type Store interface {
	storage.Scanner
	storage.Writer
}

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of documents embedded per call.
	BatchSize int

	// ReportInterval is how often to report progress, in documents.
	ReportInterval int

	// MaxRetries is the number of attempts per batch embedding call.
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff.
	RetryDelay time.Duration

	// MaxRetryDelay caps the backoff delay. Zero means no cap.
	MaxRetryDelay time.Duration

	// Dimension is the required vector size. Zero accepts any size.
	Dimension int

	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     time.Second,
		MaxRetryDelay:  30 * time.Second,
	}
}

// Stats summarizes a finished run.
type Stats struct {
	Total   int
	Updated int
	Skipped int
	Elapsed time.Duration
}

// Reembedder recomputes the embedding of every stored document.
type Reembedder struct {
	store     Store
	config    *Config
	progress  io.Writer
	logger    *slog.Logger
	processor *BatchProcessor
	iterator  *DocumentIterator
}

// NewReembedder creates a reembedder. Progress lines go to progress, which
// may be nil.
func NewReembedder(store Store, embedder ai.Embedder, config *Config, progress io.Writer) (*Reembedder, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	backoff := Backoff{
		Attempts: config.MaxRetries,
		Delay:    config.RetryDelay,
		MaxDelay: config.MaxRetryDelay,
	}
	return &Reembedder{
		store:     store,
		config:    config,
		progress:  progress,
		logger:    logger,
		processor: NewBatchProcessor(store, embedder, backoff, config.Dimension, logger),
		iterator:  NewDocumentIterator(store, config.BatchSize),
	}, nil
}

// Run reembeds every stored document. A batch that still fails after its
// retries aborts the run; batches already written stay written.
func (r *Reembedder) Run(ctx context.Context) (*Stats, error) {
	total, err := r.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	stats := &Stats{Total: total}
	if total == 0 {
		fmt.Fprintln(r.progress, "No documents found (0 documents)")
		return stats, nil
	}

	fmt.Fprintf(r.progress, "Reembedding %s documents (batch size: %d)\n",
		humanize.Comma(int64(total)), r.iterator.BatchSize())
	r.logger.Info("reembedding started", "documents", total, "batchSize", r.iterator.BatchSize())

	tracker := NewProgress(r.progress, total, r.config.ReportInterval)
	err = r.iterator.ForEach(ctx, func(docs []*core.Document) error {
		res, err := r.processor.Process(ctx, docs)
		stats.Updated += res.Updated
		stats.Skipped += res.Skipped
		if err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}
		tracker.Add(len(docs))
		return nil
	})
	stats.Elapsed = tracker.Elapsed()
	if err != nil {
		return stats, err
	}

	tracker.Done()
	fmt.Fprintf(r.progress, "Reembedding complete. Updated %s, skipped %s in %v\n",
		humanize.Comma(int64(stats.Updated)), humanize.Comma(int64(stats.Skipped)), stats.Elapsed.Round(time.Millisecond))
	r.logger.Info("reembedding finished", "updated", stats.Updated, "skipped", stats.Skipped, "elapsed", stats.Elapsed)
	return stats, nil
}
