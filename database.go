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

package logscope

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/logscope/ai"
	"github.com/poiesic/logscope/ai/ollama"
	"github.com/poiesic/logscope/ai/openai"
	"github.com/poiesic/logscope/answer"
	"github.com/poiesic/logscope/config"
	"github.com/poiesic/logscope/engine"
	"github.com/poiesic/logscope/ingestion"
	"github.com/poiesic/logscope/reembed"
	"github.com/poiesic/logscope/search"
	"github.com/poiesic/logscope/storage"
	"github.com/poiesic/logscope/storage/badger"
	"github.com/poiesic/logscope/storage/qdrant"
)

// Database ties a log store to the AI provider and builds the components
// that work on them.
type Database struct {
	config   *config.Config
	repo     storage.LogRepository
	provider ai.AIProvider
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	repo     storage.LogRepository
	provider ai.AIProvider
	logger   *slog.Logger
}

// WithRepository uses repo instead of opening the configured store. The
// Database takes ownership and closes it.
func WithRepository(repo storage.LogRepository) DatabaseOption {
	return func(o *databaseOptions) {
		o.repo = repo
	}
}

// WithProvider uses provider instead of building one from the AI config.
func WithProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = logger
	}
}

// Open opens the configured store and AI provider. A nil cfg uses
// config.Default().
func Open(ctx context.Context, cfg *config.Config, opts ...DatabaseOption) (*Database, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	options := &databaseOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}

	repo := options.repo
	if repo == nil {
		var err error
		repo, err = openRepository(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	provider := options.provider
	if provider == nil {
		var err error
		provider, err = newProvider(cfg.AIConfig())
		if err != nil {
			repo.Close()
			return nil, err
		}
	}

	return &Database{
		config:   cfg,
		repo:     repo,
		provider: provider,
		logger:   options.logger,
	}, nil
}

func openRepository(ctx context.Context, cfg *config.Config) (storage.LogRepository, error) {
	switch cfg.Storage.Backend {
	case config.BackendQdrant:
		repo, err := qdrant.NewRepository(ctx, cfg.QdrantConfig())
		if err != nil {
			return nil, fmt.Errorf("opening qdrant store: %w", err)
		}
		return repo, nil
	case config.BackendBadger, "":
		repo, err := badger.NewRepository(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("opening badger store: %w", err)
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func newProvider(cfg *ai.Config) (ai.AIProvider, error) {
	if cfg.Provider == ai.ProviderOllama {
		return ollama.NewProvider(cfg)
	}
	return openai.NewProvider(cfg)
}

// Close releases the provider and the store.
func (db *Database) Close() error {
	var errs []error
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
		errs = append(errs, err)
	}
	if err := db.repo.Close(); err != nil {
		db.logger.Error("error closing log store", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (db *Database) Repository() storage.LogRepository {
	return db.repo
}

func (db *Database) Provider() ai.AIProvider {
	return db.provider
}

func (db *Database) Config() *config.Config {
	return db.config
}

func (db *Database) NewLookup() (*search.Lookup, error) {
	return search.NewLookup(db.repo,
		search.WithLookupLogger(db.logger),
		search.WithUniqueLimit(db.config.Search.UniqueLimit),
		search.WithStorageTimeout(db.config.Timeouts.Storage),
	)
}

func (db *Database) NewSearcher() (*search.Searcher, error) {
	return search.NewSearcher(db.repo, db.provider.Embedder(),
		search.WithLogger(db.logger),
		search.WithDimension(db.config.AI.Dimension),
		search.WithLimit(db.config.Search.SemanticLimit, db.config.Search.Candidates),
		search.WithTimeouts(db.config.Timeouts.Embedding, db.config.Timeouts.Storage),
	)
}

func (db *Database) NewAnswerer() (*answer.Generator, error) {
	return answer.NewGenerator(db.provider.Generator(),
		answer.WithLogger(db.logger),
		answer.WithTimeout(db.config.Timeouts.Generation),
	)
}

// NewEngine wires the lookup, searcher and answerer into a turn engine.
func (db *Database) NewEngine(opts ...engine.Option) (*engine.Engine, error) {
	lookup, err := db.NewLookup()
	if err != nil {
		return nil, err
	}
	searcher, err := db.NewSearcher()
	if err != nil {
		return nil, err
	}
	answerer, err := db.NewAnswerer()
	if err != nil {
		return nil, err
	}
	opts = append([]engine.Option{engine.WithLogger(db.logger)}, opts...)
	return engine.New(lookup, searcher, answerer, opts...)
}

// NewIngestionPipeline creates a pipeline configured from the ingest
// section. Extra options are applied last.
func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	ing := db.config.Ingest
	base := []ingestion.Option{
		ingestion.WithLogger(db.logger),
		ingestion.WithDimension(db.config.AI.Dimension),
		ingestion.WithPoolSize(ing.Workers),
		ingestion.WithBatchSize(ing.BatchSize),
	}
	if ing.RateLimit > 0 {
		base = append(base, ingestion.WithRateLimit(ing.RateLimit, ing.Burst))
	}
	return ingestion.NewPipeline(db.repo, db.provider.Embedder(), append(base, opts...)...)
}

// NewWatcher creates a directory watcher that loads through loader.
func (db *Database) NewWatcher(path string, loader ingestion.Loader) (*ingestion.Watcher, error) {
	return ingestion.NewWatcher(ingestion.WatcherConfig{
		Path:       path,
		Loader:     loader,
		BatchDelay: db.config.Ingest.WatchDelay,
		Logger:     db.logger,
	})
}

// NewReembedder creates a reembedder over the whole store. Progress lines
// go to progress.
func (db *Database) NewReembedder(cfg *reembed.Config, progress io.Writer) (*reembed.Reembedder, error) {
	if cfg == nil {
		cfg = reembed.DefaultConfig()
	}
	if cfg.Dimension == 0 {
		cfg.Dimension = db.config.AI.Dimension
	}
	if cfg.Logger == nil {
		cfg.Logger = db.logger
	}
	return reembed.NewReembedder(db.repo, db.provider.Embedder(), cfg, progress)
}
