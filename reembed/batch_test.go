package reembed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/logscope/ai/mock"
	"github.com/poiesic/logscope/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quickBackoff = Backoff{Attempts: 3, Delay: time.Millisecond}

func TestBatchProcessor_UpdatesNormalizedVectors(t *testing.T) {
	repo := setupRepo(t)
	docs := seed(t, repo, 2)

	embedder := mock.NewMockEmbedder(3).WithEmbedTextsFunc(func(_ context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i := range out {
			out[i] = []float32{0, 3, 4}
		}
		return out, nil
	})

	bp := NewBatchProcessor(repo, embedder, quickBackoff, 3, nil)
	res, err := bp.Process(context.Background(), docs)
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Updated: 2}, res)

	for _, d := range docs {
		stored, err := repo.GetDocument(context.Background(), d.Id)
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float32{0, 0.6, 0.8}, stored.Vector, 1e-6)
	}
	assert.Equal(t, []string{docs[0].EmbeddingText(), docs[1].EmbeddingText()}, embedder.Texts())
}

func TestBatchProcessor_SkipsUnusableVectors(t *testing.T) {
	repo := setupRepo(t)
	docs := seed(t, repo, 3)

	embedder := mock.NewMockEmbedder(3).WithEmbedTextsFunc(func(_ context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1, 0, 0}, {1, 0}, {0, 0, 0}}, nil
	})

	bp := NewBatchProcessor(repo, embedder, quickBackoff, 3, nil)
	res, err := bp.Process(context.Background(), docs)
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Updated: 1, Skipped: 2}, res)

	kept, err := repo.GetDocument(context.Background(), docs[1].Id)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 2}, kept.Vector, "skipped documents keep their old embedding")
}

func TestBatchProcessor_RetriesTransientErrors(t *testing.T) {
	repo := setupRepo(t)
	docs := seed(t, repo, 1)

	calls := 0
	embedder := mock.NewMockEmbedder(3).WithEmbedTextsFunc(func(_ context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("connection reset")
		}
		return [][]float32{{1, 0, 0}}, nil
	})

	res, err := NewBatchProcessor(repo, embedder, quickBackoff, 3, nil).Process(context.Background(), docs)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 2, calls)
}

func TestBatchProcessor_CountMismatchIsNotRetried(t *testing.T) {
	repo := setupRepo(t)
	docs := seed(t, repo, 2)

	embedder := mock.NewMockEmbedder(3).WithEmbedTextsFunc(func(_ context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1, 0, 0}}, nil
	})

	_, err := NewBatchProcessor(repo, embedder, quickBackoff, 3, nil).Process(context.Background(), docs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count mismatch")
	assert.Equal(t, 1, embedder.CallCount())
}

func TestBatchProcessor_EmptyBatch(t *testing.T) {
	embedder := mock.NewMockEmbedder(3)
	res, err := NewBatchProcessor(nil, embedder, quickBackoff, 3, nil).Process(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, res)
	assert.Zero(t, embedder.CallCount())
}

func TestBatchProcessor_UnknownDocument(t *testing.T) {
	repo := setupRepo(t)
	doc, err := core.ParseDocument([]byte(`{"DeviceId":"GHOST-1"}`))
	require.NoError(t, err)

	_, err = NewBatchProcessor(repo, mock.NewMockEmbedder(3), quickBackoff, 3, nil).Process(context.Background(), []*core.Document{doc})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to update embeddings")
}
