// Package config loads logscope settings from defaults, an optional YAML
// file and LOGSCOPE_* environment variables, in that order of precedence.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/poiesic/logscope/ai"
	"github.com/poiesic/logscope/search"
	"github.com/poiesic/logscope/storage/qdrant"
)

// Storage backends.
const (
	BackendBadger = "badger"
	BackendQdrant = "qdrant"
)

// Config holds all application configuration.
type Config struct {
	Storage  StorageConfig `yaml:"storage"`
	AI       AIConfig      `yaml:"ai"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
	Search   SearchConfig  `yaml:"search"`
	Ingest   IngestConfig  `yaml:"ingest"`
	Log      LogConfig     `yaml:"log"`
}

// StorageConfig selects and configures the log store.
type StorageConfig struct {
	Backend string       `envconfig:"LOGSCOPE_STORAGE" yaml:"backend"`
	Path    string       `envconfig:"LOGSCOPE_DB_PATH" yaml:"path"`
	Qdrant  QdrantConfig `yaml:"qdrant"`
}

// QdrantConfig holds Qdrant connection settings.
type QdrantConfig struct {
	Host       string `envconfig:"LOGSCOPE_QDRANT_HOST" yaml:"host"`
	Port       int    `envconfig:"LOGSCOPE_QDRANT_PORT" yaml:"port"`
	APIKey     string `envconfig:"LOGSCOPE_QDRANT_API_KEY" yaml:"api_key"`
	UseTLS     bool   `envconfig:"LOGSCOPE_QDRANT_TLS" yaml:"tls"`
	Collection string `envconfig:"LOGSCOPE_QDRANT_COLLECTION" yaml:"collection"`
}

// AIConfig holds embedding and generation service settings.
type AIConfig struct {
	Provider        string  `envconfig:"LOGSCOPE_AI_PROVIDER" yaml:"provider"`
	EmbeddingHost   string  `envconfig:"LOGSCOPE_EMBEDDING_HOST" yaml:"embedding_host"`
	GenerationHost  string  `envconfig:"LOGSCOPE_GENERATION_HOST" yaml:"generation_host"`
	EmbeddingModel  string  `envconfig:"LOGSCOPE_EMBEDDING_MODEL" yaml:"embedding_model"`
	GenerationModel string  `envconfig:"LOGSCOPE_GENERATION_MODEL" yaml:"generation_model"`
	APIKey          string  `envconfig:"LOGSCOPE_API_KEY" yaml:"api_key"`
	Dimension       int     `envconfig:"LOGSCOPE_EMBEDDING_DIM" yaml:"dimension"`
	Temperature     float64 `envconfig:"LOGSCOPE_TEMPERATURE" yaml:"temperature"`
}

// TimeoutConfig bounds each external call made during a turn.
type TimeoutConfig struct {
	Storage    time.Duration `envconfig:"LOGSCOPE_STORAGE_TIMEOUT" yaml:"storage"`
	Embedding  time.Duration `envconfig:"LOGSCOPE_EMBEDDING_TIMEOUT" yaml:"embedding"`
	Generation time.Duration `envconfig:"LOGSCOPE_GENERATION_TIMEOUT" yaml:"generation"`
}

// SearchConfig holds retrieval limits.
type SearchConfig struct {
	SemanticLimit int `envconfig:"LOGSCOPE_SEMANTIC_LIMIT" yaml:"semantic_limit"`
	Candidates    int `envconfig:"LOGSCOPE_SEMANTIC_CANDIDATES" yaml:"candidates"`
	UniqueLimit   int `envconfig:"LOGSCOPE_UNIQUE_LIMIT" yaml:"unique_limit"`
}

// IngestConfig holds loading and embedding backfill settings.
type IngestConfig struct {
	Workers    int           `envconfig:"LOGSCOPE_INGEST_WORKERS" yaml:"workers"`
	BatchSize  int           `envconfig:"LOGSCOPE_INGEST_BATCH_SIZE" yaml:"batch_size"`
	RateLimit  float64       `envconfig:"LOGSCOPE_EMBED_RATE" yaml:"rate_limit"` // 0 = unlimited
	Burst      int           `envconfig:"LOGSCOPE_EMBED_BURST" yaml:"burst"`
	WatchDelay time.Duration `envconfig:"LOGSCOPE_WATCH_DELAY" yaml:"watch_delay"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `envconfig:"LOGSCOPE_LOG_LEVEL" yaml:"level"`
	Format string `envconfig:"LOGSCOPE_LOG_FORMAT" yaml:"format"`
}

// Load builds a configuration from defaults, the YAML file at path (if
// non-empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("processing env config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Default returns the built-in configuration: a local Badger store and a
// local OpenAI-compatible server.
func Default() *Config {
	aiDefaults := ai.DefaultConfig()
	return &Config{
		Storage: StorageConfig{
			Backend: BackendBadger,
			Path:    "logscope.db",
			Qdrant: QdrantConfig{
				Host:       qdrant.DefaultHost,
				Port:       qdrant.DefaultPort,
				Collection: qdrant.DefaultCollection,
			},
		},
		AI: AIConfig{
			Provider:        aiDefaults.Provider,
			EmbeddingHost:   aiDefaults.EmbeddingHost,
			GenerationHost:  aiDefaults.GenerationHost,
			EmbeddingModel:  aiDefaults.EmbeddingModel,
			GenerationModel: aiDefaults.GenerationModel,
			Dimension:       aiDefaults.Dimension,
			Temperature:     aiDefaults.Temperature,
		},
		Timeouts: TimeoutConfig{
			Storage:    10 * time.Second,
			Embedding:  30 * time.Second,
			Generation: 120 * time.Second,
		},
		Search: SearchConfig{
			SemanticLimit: search.SemanticLimit,
			Candidates:    search.SemanticCandidates,
			UniqueLimit:   search.UniqueLimit,
		},
		Ingest: IngestConfig{
			Workers:    4,
			BatchSize:  64,
			Burst:      1,
			WatchDelay: 500 * time.Millisecond,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks the configuration. Every problem is reported at once.
func (c *Config) Validate() error {
	var errs []string

	switch c.Storage.Backend {
	case BackendBadger:
		if c.Storage.Path == "" {
			errs = append(errs, "storage path is required for the badger backend")
		}
	case BackendQdrant:
		if c.Storage.Qdrant.Host == "" {
			errs = append(errs, "qdrant host is required")
		}
		if c.Storage.Qdrant.Port < 1 || c.Storage.Qdrant.Port > 65535 {
			errs = append(errs, "qdrant port must be between 1 and 65535")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid storage backend: %s (must be badger or qdrant)", c.Storage.Backend))
	}

	if err := c.AIConfig().Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	if c.Timeouts.Storage < 0 || c.Timeouts.Embedding < 0 || c.Timeouts.Generation < 0 {
		errs = append(errs, "timeouts must not be negative")
	}

	if c.Search.SemanticLimit < 1 {
		errs = append(errs, "semantic_limit must be positive")
	}
	if c.Search.Candidates < c.Search.SemanticLimit {
		errs = append(errs, "candidates must be at least semantic_limit")
	}
	if c.Search.UniqueLimit < 1 {
		errs = append(errs, "unique_limit must be positive")
	}

	if c.Ingest.Workers < 1 {
		errs = append(errs, "ingest workers must be positive")
	}
	if c.Ingest.BatchSize < 1 {
		errs = append(errs, "ingest batch_size must be positive")
	}
	if c.Ingest.RateLimit < 0 {
		errs = append(errs, "rate_limit must not be negative")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level))
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Log.Format)] {
		errs = append(errs, fmt.Sprintf("invalid log format: %s (must be text or json)", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// AIConfig converts the AI section into a normalized provider config.
func (c *Config) AIConfig() *ai.Config {
	cfg := ai.NewConfig(
		ai.WithProvider(c.AI.Provider),
		ai.WithEmbeddingHost(c.AI.EmbeddingHost),
		ai.WithGenerationHost(c.AI.GenerationHost),
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithGenerationModel(c.AI.GenerationModel),
		ai.WithAPIKey(c.AI.APIKey),
		ai.WithDimension(c.AI.Dimension),
		ai.WithTemperature(c.AI.Temperature),
	)
	cfg.Normalize()
	return cfg
}

// QdrantConfig converts the Qdrant section into a repository config.
func (c *Config) QdrantConfig() qdrant.Config {
	q := qdrant.DefaultConfig()
	q.Host = c.Storage.Qdrant.Host
	q.Port = c.Storage.Qdrant.Port
	q.APIKey = c.Storage.Qdrant.APIKey
	q.UseTLS = c.Storage.Qdrant.UseTLS
	q.Collection = c.Storage.Qdrant.Collection
	q.Dimension = c.AI.Dimension
	if c.Timeouts.Storage > 0 {
		q.Timeout = c.Timeouts.Storage
	}
	return q
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// JSONLogs reports whether logs should be written as JSON.
func (c *Config) JSONLogs() bool {
	return strings.EqualFold(c.Log.Format, "json")
}
