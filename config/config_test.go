package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/logscope/ai"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logscope.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, BackendBadger, cfg.Storage.Backend)
	assert.Equal(t, 10*time.Second, cfg.Timeouts.Storage)
	assert.Equal(t, 30*time.Second, cfg.Timeouts.Embedding)
	assert.Equal(t, 120*time.Second, cfg.Timeouts.Generation)
	assert.Equal(t, 15, cfg.Search.SemanticLimit)
	assert.Equal(t, 100, cfg.Search.Candidates)
	assert.Equal(t, 1000, cfg.Search.UniqueLimit)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	assert.False(t, cfg.JSONLogs())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
storage:
  backend: qdrant
  qdrant:
    host: qdrant.internal
    collection: ward_logs
ai:
  provider: ollama
  embedding_host: http://gpu-box:11434/v1
  dimension: 1024
timeouts:
  generation: 45s
search:
  unique_limit: 250
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, BackendQdrant, cfg.Storage.Backend)
	assert.Equal(t, "qdrant.internal", cfg.Storage.Qdrant.Host)
	assert.Equal(t, 6334, cfg.Storage.Qdrant.Port, "unset keys keep their defaults")
	assert.Equal(t, 45*time.Second, cfg.Timeouts.Generation)
	assert.Equal(t, 10*time.Second, cfg.Timeouts.Storage)
	assert.Equal(t, 250, cfg.Search.UniqueLimit)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.True(t, cfg.JSONLogs())

	q := cfg.QdrantConfig()
	assert.Equal(t, "ward_logs", q.Collection)
	assert.Equal(t, 1024, q.Dimension)
	assert.Equal(t, 10*time.Second, q.Timeout)

	aiCfg := cfg.AIConfig()
	assert.Equal(t, ai.ProviderOllama, aiCfg.Provider)
	assert.Equal(t, "http://gpu-box:11434", aiCfg.EmbeddingHost)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
storage:
  path: /var/lib/from-file.db
ai:
  embedding_model: from-file
`)
	t.Setenv("LOGSCOPE_EMBEDDING_MODEL", "from-env")
	t.Setenv("LOGSCOPE_STORAGE_TIMEOUT", "3s")
	t.Setenv("LOGSCOPE_EMBED_RATE", "2.5")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/from-file.db", cfg.Storage.Path)
	assert.Equal(t, "from-env", cfg.AI.EmbeddingModel)
	assert.Equal(t, 3*time.Second, cfg.Timeouts.Storage)
	assert.InDelta(t, 2.5, cfg.Ingest.RateLimit, 1e-9)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config file")
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "storage: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "mongo" }, "invalid storage backend"},
		{"badger without path", func(c *Config) { c.Storage.Path = "" }, "storage path is required"},
		{"qdrant bad port", func(c *Config) {
			c.Storage.Backend = BackendQdrant
			c.Storage.Qdrant.Port = 0
		}, "qdrant port"},
		{"unknown provider", func(c *Config) { c.AI.Provider = "bard" }, "unknown AI provider"},
		{"zero dimension", func(c *Config) { c.AI.Dimension = 0 }, "Dimension must be positive"},
		{"negative timeout", func(c *Config) { c.Timeouts.Generation = -time.Second }, "timeouts must not be negative"},
		{"candidates below limit", func(c *Config) { c.Search.Candidates = 5 }, "candidates must be at least"},
		{"zero unique limit", func(c *Config) { c.Search.UniqueLimit = 0 }, "unique_limit must be positive"},
		{"zero workers", func(c *Config) { c.Ingest.Workers = 0 }, "workers must be positive"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "invalid log level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "invalid log format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "loud"
	cfg.Ingest.BatchSize = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
	assert.Contains(t, err.Error(), "batch_size must be positive")
}
