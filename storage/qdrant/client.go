package qdrant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/qdrant/go-client/qdrant"

	"github.com/poiesic/logscope/core"
	"github.com/poiesic/logscope/storage"
)

const (
	// DefaultHost is the default Qdrant host.
	DefaultHost = "localhost"

	// DefaultPort is the default Qdrant gRPC port.
	DefaultPort = 6334

	// DefaultCollection is the collection holding device logs.
	DefaultCollection = "device_logs"

	// DefaultTimeout is the default per-call timeout.
	DefaultTimeout = 30 * time.Second

	// vectorName is the named dense vector holding document embeddings.
	vectorName = "embedding"
)

// Config holds configuration for the Qdrant-backed repository.
type Config struct {
	// Host is the Qdrant server host.
	Host string

	// Port is the Qdrant gRPC port.
	Port int

	// APIKey for authentication (optional).
	APIKey string

	// UseTLS enables TLS connection.
	UseTLS bool

	// Collection is the collection name. Created on first use.
	Collection string

	// Dimension is the embedding size the collection is created with.
	Dimension int

	// Timeout bounds each call to the server.
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults for local development.
func DefaultConfig() Config {
	return Config{
		Host:       DefaultHost,
		Port:       DefaultPort,
		Collection: DefaultCollection,
		Timeout:    DefaultTimeout,
	}
}

// Repository implements storage.LogRepository on a Qdrant collection.
//
// Each document is one point. The payload holds the document fields as-is
// plus two mirrors used for filtering: _txt (rendered values) and _lc
// (rendered values, lowercased).
type Repository struct {
	client *qdrant.Client
	config Config
	logger *slog.Logger
	mu     sync.RWMutex
	closed bool
}

var _ storage.LogRepository = (*Repository)(nil)

// NewRepository connects to Qdrant and makes sure the collection and its
// payload indexes exist.
func NewRepository(ctx context.Context, cfg Config) (storage.LogRepository, error) {
	repo, err := newRepository(cfg)
	if err != nil {
		return nil, err
	}
	if err := repo.ensureCollection(ctx); err != nil {
		repo.Close()
		return nil, err
	}
	return repo, nil
}

func newRepository(cfg Config) (*Repository, error) {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("%w: embedding dimension must be positive", storage.ErrInvalidQuery)
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &Repository{
		client: client,
		config: cfg,
		logger: slog.Default().With("component", "qdrant", "collection", cfg.Collection),
	}, nil
}

// Close closes the client connection.
func (r *Repository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	return r.client.Close()
}

// HealthCheck verifies the Qdrant server is reachable.
func (r *Repository) HealthCheck(ctx context.Context) error {
	ctx, cancel, err := r.begin(ctx)
	if err != nil {
		return err
	}
	defer cancel()
	defer r.mu.RUnlock()

	if _, err := r.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// begin takes the read lock and derives a call context bounded by the
// configured timeout. The caller must release the lock when err is nil.
func (r *Repository) begin(ctx context.Context) (context.Context, context.CancelFunc, error) {
	r.mu.RLock()
	if r.closed {
		r.mu.RUnlock()
		return nil, nil, storage.ErrStorageClosed
	}
	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	return ctx, cancel, nil
}

func (r *Repository) ensureCollection(ctx context.Context) error {
	ctx, cancel, err := r.begin(ctx)
	if err != nil {
		return err
	}
	defer cancel()
	defer r.mu.RUnlock()

	exists, err := r.client.CollectionExists(ctx, r.config.Collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if !exists {
		err = r.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: r.config.Collection,
			VectorsConfig: qdrant.NewVectorsConfigMap(map[string]*qdrant.VectorParams{
				vectorName: {
					Size:     uint64(r.config.Dimension),
					Distance: qdrant.Distance_Cosine,
				},
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection %s: %w", r.config.Collection, err)
		}
		r.logger.Info("created collection", "dimension", r.config.Dimension)
	}

	// Keyword indexes back exact filters and facet counts.
	for _, field := range core.CanonicalFields {
		_, err := r.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: r.config.Collection,
			FieldName:      textKey(field),
			FieldType:      qdrant.PtrOf(qdrant.FieldType_FieldTypeKeyword),
		})
		if err != nil && !strings.Contains(err.Error(), "already exists") {
			return fmt.Errorf("failed to create index on %s: %w", field, err)
		}
	}
	return nil
}
