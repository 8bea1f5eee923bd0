package search

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/poiesic/logscope/ai"
	"github.com/poiesic/logscope/ai/mock"
	"github.com/poiesic/logscope/core"
	"github.com/poiesic/logscope/storage"
	"github.com/poiesic/logscope/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixtureLogs = []string{
	`{"_id": "1", "DeviceId": "PUMP-1", "Summary": "occlusion alarm", "LogData": {"State": "Alarm", "Model": "IV-9", "Ward": "North"}, "embedding": [1, 0, 0]}`,
	`{"_id": "2", "DeviceId": "PUMP-2", "Summary": "infusion complete", "LogData": {"State": "Idle", "Model": "IV-9", "Ward": "South"}, "embedding": [0, 1, 0]}`,
	`{"_id": "3", "DeviceId": "PUMP-3", "Summary": "occlusion cleared", "LogData": {"State": "Running", "Model": "IV-7", "Ward": "North"}, "embedding": [0.8, 0.2, 0]}`,
	`{"_id": "4", "DeviceId": "MON-1", "Summary": "not yet embedded", "LogData": {"State": "Running", "Model": "HM-1", "Ward": "North"}}`,
}

func setupRepo(t *testing.T, raws ...string) storage.LogRepository {
	t.Helper()
	repo, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	docs := make([]*core.Document, 0, len(raws))
	for _, raw := range raws {
		doc, err := core.ParseDocument([]byte(raw))
		require.NoError(t, err)
		docs = append(docs, doc)
	}
	if len(docs) > 0 {
		_, err = repo.AddDocuments(context.Background(), docs...)
		require.NoError(t, err)
	}
	return repo
}

func fixedEmbedder(vec []float32) *mock.MockEmbedder {
	return mock.NewMockEmbedder(len(vec)).WithEmbedTextFunc(func(context.Context, string) ([]float32, error) {
		return vec, nil
	})
}

func devices(results []*core.SearchResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Document.Text(core.FieldDeviceID))
	}
	return out
}

type failingStore struct{ err error }

func (f failingStore) Find(context.Context, storage.FindQuery) ([]*core.Document, error) {
	return nil, f.err
}

func (f failingStore) Distinct(context.Context, string, core.Filter, int) ([]string, error) {
	return nil, f.err
}

func (f failingStore) VectorSearch(context.Context, storage.VectorQuery) ([]*core.SearchResult, error) {
	return nil, f.err
}

type recordingMonitor struct {
	noopMonitor
	started  string
	embedded int
	hits     int
	err      error
}

func (m *recordingMonitor) Start(q string, _ core.Filter)            { m.started = q }
func (m *recordingMonitor) AfterEmbedding(v []float32)               { m.embedded = len(v) }
func (m *recordingMonitor) AfterVectorSearch(r []*core.SearchResult) { m.hits = len(r) }
func (m *recordingMonitor) Finish(_ []*core.SearchResult, err error) { m.err = err }

func TestNewSearcher(t *testing.T) {
	repo := setupRepo(t)
	embedder := mock.NewMockEmbedder(3)

	t.Run("valid configuration", func(t *testing.T) {
		searcher, err := NewSearcher(repo, embedder)
		require.NoError(t, err)
		assert.Equal(t, SemanticLimit, searcher.limit)
		assert.Equal(t, SemanticCandidates, searcher.candidates)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		searcher, err := NewSearcher(repo, embedder, WithLogger(nil))
		require.NoError(t, err)
		assert.Equal(t, slog.Default(), searcher.logger)
	})

	t.Run("invalid limits", func(t *testing.T) {
		_, err := NewSearcher(repo, embedder, WithLimit(10, 5))
		assert.Error(t, err)
	})

	t.Run("nil repository", func(t *testing.T) {
		_, err := NewSearcher(nil, embedder)
		assert.Equal(t, ErrRepositoryRequired, err)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewSearcher(repo, nil)
		assert.Equal(t, ErrEmbedderRequired, err)
	})
}

func TestFindSimilar_EmptyDatabase(t *testing.T) {
	repo := setupRepo(t)
	searcher, err := NewSearcher(repo, fixedEmbedder([]float32{1, 0, 0}))
	require.NoError(t, err)

	results, err := searcher.FindSimilar(context.Background(), "anything wrong?", nil)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestFindSimilar_RankedBySimilarity(t *testing.T) {
	repo := setupRepo(t, fixtureLogs...)
	embedder := fixedEmbedder([]float32{1, 0, 0})
	searcher, err := NewSearcher(repo, embedder, WithDimension(3))
	require.NoError(t, err)

	results, err := searcher.FindSimilar(context.Background(), "Which pumps had an occlusion?", nil)
	require.NoError(t, err)

	// MON-1 has no embedding and is never eligible
	assert.Equal(t, []string{"PUMP-1", "PUMP-3", "PUMP-2"}, devices(results))
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.Equal(t, []string{"Which pumps had an occlusion?"}, embedder.Texts(), "question is embedded verbatim")
}

func TestFindSimilar_FilterInSameCall(t *testing.T) {
	repo := setupRepo(t, fixtureLogs...)
	searcher, err := NewSearcher(repo, fixedEmbedder([]float32{0, 1, 0}))
	require.NoError(t, err)

	filter := core.Filter{core.FieldWard: core.Pattern("north", true)}
	results, err := searcher.FindSimilar(context.Background(), "what happened up north?", filter)
	require.NoError(t, err)
	assert.Equal(t, []string{"PUMP-3", "PUMP-1"}, devices(results))
}

func TestFindSimilar_Limit(t *testing.T) {
	repo := setupRepo(t, fixtureLogs...)
	searcher, err := NewSearcher(repo, fixedEmbedder([]float32{1, 0, 0}), WithLimit(1, 1))
	require.NoError(t, err)

	results, err := searcher.FindSimilar(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"PUMP-1"}, devices(results))
}

func TestFindSimilar_EmbeddingFailures(t *testing.T) {
	repo := setupRepo(t, fixtureLogs...)
	boom := errors.New("connection refused")

	tests := []struct {
		name     string
		embedder *mock.MockEmbedder
		dim      int
		cause    error
	}{
		{
			name: "service error",
			embedder: mock.NewMockEmbedder(3).WithEmbedTextFunc(func(context.Context, string) ([]float32, error) {
				return nil, boom
			}),
			cause: boom,
		},
		{
			name:     "empty vector",
			embedder: fixedEmbedder([]float32{}),
			cause:    ai.ErrNoEmbedding,
		},
		{
			name:     "wrong dimensionality",
			embedder: fixedEmbedder([]float32{1, 0}),
			dim:      3,
			cause:    core.ErrDimensionMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher, err := NewSearcher(repo, tt.embedder, WithDimension(tt.dim))
			require.NoError(t, err)

			monitor := &recordingMonitor{}
			results, err := searcher.FindSimilarWithMonitor(context.Background(), "q", nil, monitor)
			assert.Nil(t, results)
			assert.ErrorIs(t, err, ErrEmbedding)
			assert.ErrorIs(t, err, tt.cause)
			assert.NotErrorIs(t, err, ErrStorage)
			assert.Equal(t, 0, monitor.hits)
			assert.ErrorIs(t, monitor.err, ErrEmbedding)
		})
	}
}

func TestFindSimilar_StorageFailure(t *testing.T) {
	boom := errors.New("disk on fire")
	searcher, err := NewSearcher(failingStore{err: boom}, fixedEmbedder([]float32{1, 0, 0}))
	require.NoError(t, err)

	_, err = searcher.FindSimilar(context.Background(), "q", nil)
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, boom)
}

func TestFindSimilarWithMonitor(t *testing.T) {
	repo := setupRepo(t, fixtureLogs...)
	searcher, err := NewSearcher(repo, fixedEmbedder([]float32{1, 0, 0}))
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	_, err = searcher.FindSimilarWithMonitor(context.Background(), "occlusions", nil, monitor)
	require.NoError(t, err)

	assert.Equal(t, "occlusions", monitor.started)
	assert.Equal(t, 3, monitor.embedded)
	assert.Equal(t, 3, monitor.hits)
	assert.NoError(t, monitor.err)
}
