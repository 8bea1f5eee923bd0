package qdrant

import (
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/logscope/core"
	"github.com/poiesic/logscope/storage"
)

func TestBuildFilter(t *testing.T) {
	assert.Nil(t, buildFilter(nil))
	assert.Nil(t, buildFilter(core.Filter{}))

	f := buildFilter(core.Filter{
		core.FieldDeviceID: core.Exact("ABC123"),
		core.FieldWard:     core.Pattern("North", true),
		core.FieldSummary:  core.Pattern("Battery", false),
	})
	require.NotNil(t, f)
	require.Len(t, f.Must, 3)

	// Conditions follow sorted path order.
	device := f.Must[0].GetField()
	assert.Equal(t, "_txt.DeviceId", device.GetKey())
	assert.Equal(t, "ABC123", device.GetMatch().GetKeyword())

	ward := f.Must[1].GetField()
	assert.Equal(t, "_lc.LogData.Ward", ward.GetKey())
	assert.Equal(t, "north", ward.GetMatch().GetKeyword())

	summary := f.Must[2].GetField()
	assert.Equal(t, "_lc.Summary", summary.GetKey())
	assert.Equal(t, "battery", summary.GetMatch().GetText())
}

func TestBuildFilter_ConditionTypes(t *testing.T) {
	f := buildFilter(core.Filter{core.FieldModel: core.Pattern("bx", false)})
	_, ok := f.Must[0].GetField().GetMatch().GetMatchValue().(*qdrant.Match_Text)
	assert.True(t, ok)
}

func TestNewRepository_RequiresDimension(t *testing.T) {
	_, err := newRepository(DefaultConfig())
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultCollection, cfg.Collection)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
}
