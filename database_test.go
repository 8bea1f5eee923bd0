package logscope

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/logscope/ai/mock"
	"github.com/poiesic/logscope/config"
	"github.com/poiesic/logscope/core"
	"github.com/poiesic/logscope/engine"
	"github.com/poiesic/logscope/storage/badger"
)

func TestOpen(t *testing.T) {
	t.Run("create new badger store", func(t *testing.T) {
		cfg := config.Default()
		cfg.Storage.Path = filepath.Join(t.TempDir(), "test_db")

		db, err := Open(context.Background(), cfg)
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		assert.NotNil(t, db.Repository())
		assert.NotNil(t, db.Provider())
		assert.Same(t, cfg, db.Config())
	})

	t.Run("ollama provider", func(t *testing.T) {
		cfg := config.Default()
		cfg.Storage.Path = filepath.Join(t.TempDir(), "test_db")
		cfg.AI.Provider = "ollama"

		db, err := Open(context.Background(), cfg)
		require.NoError(t, err)
		assert.NoError(t, db.Close())
	})

	t.Run("error with invalid path", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0644))

		cfg := config.Default()
		cfg.Storage.Path = tmpFile

		db, err := Open(context.Background(), cfg)
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := config.Default()
		cfg.Storage.Backend = "mongo"

		_, err := Open(context.Background(), cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mongo")
	})
}

func TestDatabase_Close(t *testing.T) {
	repo, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	provider := mock.NewMockProvider()

	db, err := Open(context.Background(), nil, WithRepository(repo), WithProvider(provider))
	require.NoError(t, err)

	assert.NoError(t, db.Close())
	assert.True(t, provider.(*mock.MockProvider).Closed())
}

func setupDatabase(t *testing.T) (*Database, *mock.MockGenerator) {
	t.Helper()
	repo, err := badger.NewMemoryRepository()
	require.NoError(t, err)

	generator := mock.NewMockGenerator("PUMP-7 raised an occlusion alarm.")
	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(768), generator)

	db, err := Open(context.Background(), nil, WithRepository(repo), WithProvider(provider))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, generator
}

func TestDatabase_FactoryMethods(t *testing.T) {
	db, _ := setupDatabase(t)

	t.Run("can create ingestion pipeline", func(t *testing.T) {
		pipeline, err := db.NewIngestionPipeline()
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		pipeline.Release()
	})

	t.Run("can create engine", func(t *testing.T) {
		eng, err := db.NewEngine()
		require.NoError(t, err)
		require.NotNil(t, eng)
	})

	t.Run("can create watcher", func(t *testing.T) {
		pipeline, err := db.NewIngestionPipeline()
		require.NoError(t, err)
		defer pipeline.Release()

		w, err := db.NewWatcher(t.TempDir(), pipeline)
		require.NoError(t, err)
		require.NotNil(t, w)
	})

	t.Run("can create reembedder", func(t *testing.T) {
		r, err := db.NewReembedder(nil, nil)
		require.NoError(t, err)
		require.NotNil(t, r)
	})
}

func TestDatabase_EndToEnd(t *testing.T) {
	db, generator := setupDatabase(t)
	ctx := context.Background()

	pipeline, err := db.NewIngestionPipeline()
	require.NoError(t, err)
	defer pipeline.Release()

	var docs []*core.Document
	for _, raw := range []string{
		`{"DeviceId":"PUMP-7","Summary":"Occlusion alarm","LogLevel":"Error","LogData":{"Model":"Alaris"}}`,
		`{"DeviceId":"PUMP-9","Summary":"Battery low","LogLevel":"Warning","LogData":{"Model":"Alaris"}}`,
	} {
		doc, err := core.ParseDocument([]byte(raw))
		require.NoError(t, err)
		docs = append(docs, doc)
	}
	res, err := pipeline.Ingest(ctx, docs...)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Stored)
	pipeline.Wait()
	require.Zero(t, pipeline.Failed())

	eng, err := db.NewEngine()
	require.NoError(t, err)

	resp := eng.Handle(ctx, "list unique device id")
	require.Equal(t, engine.KindUnique, resp.Kind)
	assert.Equal(t, []string{"PUMP-7", "PUMP-9"}, resp.Unique.Values)

	resp = eng.Handle(ctx, "why did the pump alarm?")
	require.Equal(t, engine.KindAnswer, resp.Kind)
	assert.Equal(t, "PUMP-7 raised an occlusion alarm.", resp.Answer)
	assert.Contains(t, generator.LastPrompt(), "PUMP-7")

	var progress bytes.Buffer
	r, err := db.NewReembedder(nil, &progress)
	require.NoError(t, err)
	stats, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Updated)
}
