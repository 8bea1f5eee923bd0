package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/poiesic/logscope/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLookup(t *testing.T) {
	_, err := NewLookup(nil)
	assert.Equal(t, ErrRepositoryRequired, err)

	l, err := NewLookup(setupRepo(t), WithUniqueLimit(0))
	require.NoError(t, err)
	assert.Equal(t, UniqueLimit, l.uniqueLimit)
}

func TestLookup_Project(t *testing.T) {
	l, err := NewLookup(setupRepo(t, fixtureLogs...))
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("no filter lists every log", func(t *testing.T) {
		docs, err := l.Project(ctx, []string{core.FieldDeviceID, core.FieldModel, core.FieldRoom}, nil)
		require.NoError(t, err)
		require.Len(t, docs, 4)
		for _, d := range docs {
			assert.True(t, d.Has(core.FieldDeviceID))
			assert.True(t, d.Has(core.FieldModel))
			assert.False(t, d.Has(core.FieldRoom), "absent paths stay absent")
			assert.False(t, d.Has(core.FieldSummary))
			assert.Nil(t, d.Vector)
		}
	})

	t.Run("unanchored pattern filter", func(t *testing.T) {
		docs, err := l.Project(ctx, []string{core.FieldDeviceID}, core.Filter{core.FieldModel: core.Pattern("iv", false)})
		require.NoError(t, err)
		assert.Len(t, docs, 3)
	})

	t.Run("no fields", func(t *testing.T) {
		_, err := l.Project(ctx, nil, nil)
		assert.ErrorIs(t, err, ErrNoFields)
	})
}

func TestLookup_ProjectCap(t *testing.T) {
	raws := make([]string, 0, ProjectLimit+20)
	for i := 0; i < ProjectLimit+20; i++ {
		raws = append(raws, fmt.Sprintf(`{"_id": "%d", "DeviceId": "D%03d"}`, i, i))
	}
	l, err := NewLookup(setupRepo(t, raws...))
	require.NoError(t, err)

	docs, err := l.Project(context.Background(), []string{core.FieldDeviceID}, nil)
	require.NoError(t, err)
	assert.Len(t, docs, ProjectLimit)

	dump, err := l.Dump(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, dump, DumpLimit)
}

func TestLookup_Dump(t *testing.T) {
	l, err := NewLookup(setupRepo(t, fixtureLogs...))
	require.NoError(t, err)

	docs, err := l.Dump(context.Background(), core.Filter{core.FieldDeviceID: core.Exact("PUMP-1")})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Nil(t, docs[0].Vector)
	assert.False(t, docs[0].Has(core.EmbeddingField))
	assert.Equal(t, "occlusion alarm", docs[0].Text(core.FieldSummary))
	assert.Equal(t, "North", docs[0].Text(core.FieldWard))
}

func TestLookup_Unique(t *testing.T) {
	ctx := context.Background()

	t.Run("sorted distinct values", func(t *testing.T) {
		l, err := NewLookup(setupRepo(t, fixtureLogs...))
		require.NoError(t, err)

		got, err := l.Unique(ctx, core.FieldModel)
		require.NoError(t, err)
		assert.Equal(t, core.FieldModel, got.Field)
		assert.Equal(t, []string{"HM-1", "IV-7", "IV-9"}, got.Values)
		assert.False(t, got.Truncated)
	})

	t.Run("cap reports truncation", func(t *testing.T) {
		l, err := NewLookup(setupRepo(t, fixtureLogs...), WithUniqueLimit(2))
		require.NoError(t, err)

		got, err := l.Unique(ctx, core.FieldDeviceID)
		require.NoError(t, err)
		assert.Equal(t, []string{"MON-1", "PUMP-1"}, got.Values)
		assert.True(t, got.Truncated)
	})

	t.Run("unknown field is empty", func(t *testing.T) {
		l, err := NewLookup(setupRepo(t, fixtureLogs...))
		require.NoError(t, err)

		got, err := l.Unique(ctx, "LogData.Nope")
		require.NoError(t, err)
		assert.Empty(t, got.Values)
	})
}

func TestLookup_StorageFailure(t *testing.T) {
	boom := errors.New("closed")
	l, err := NewLookup(failingStore{err: boom})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = l.Project(ctx, []string{core.FieldDeviceID}, nil)
	assert.ErrorIs(t, err, ErrStorage)
	_, err = l.Dump(ctx, nil)
	assert.ErrorIs(t, err, ErrStorage)
	_, err = l.Unique(ctx, core.FieldDeviceID)
	assert.ErrorIs(t, err, ErrStorage)
}
