package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLog = `{
	"_id": {"$oid": "65f1c0a2"},
	"DeviceId": "ABC123",
	"UserId": 42,
	"Summary": "Battery low on bed sensor",
	"LogData": {
		"State": "Alarm",
		"Model": "BX-200",
		"Ward": "North",
		"AlertTag": {"TagId": "T-9", "Name": "battery"}
	},
	"embedding": [0.1, 0.2, 0.3]
}`

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "short content", content: "test content"},
		{name: "empty string", content: ""},
		{name: "long content", content: "This is a much longer piece of content that should still hash consistently"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, IDFromContent(tt.content), IDFromContent(tt.content))
		})
	}

	assert.NotEqual(t, IDFromContent("content1"), IDFromContent("content2"))
}

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument([]byte(sampleLog))
	require.NoError(t, err)

	t.Run("lifts embedding out of body", func(t *testing.T) {
		assert.Equal(t, []float32{0.1, 0.2, 0.3}, doc.Vector)
		assert.NotContains(t, string(doc.Raw), "embedding")
		assert.False(t, doc.Has(EmbeddingField))
	})

	t.Run("id derives from _id", func(t *testing.T) {
		again, err := ParseDocument([]byte(`{"_id": {"$oid": "65f1c0a2"}, "DeviceId": "other"}`))
		require.NoError(t, err)
		assert.Equal(t, doc.Id, again.Id)
	})

	t.Run("id derives from body without _id", func(t *testing.T) {
		a, err := ParseDocument([]byte(`{"DeviceId": "X"}`))
		require.NoError(t, err)
		b, err := ParseDocument([]byte(`{"DeviceId":"X"}`))
		require.NoError(t, err)
		assert.Equal(t, a.Id, b.Id)
	})

	t.Run("non-numeric embedding is discarded", func(t *testing.T) {
		d, err := ParseDocument([]byte(`{"DeviceId": "X", "embedding": "nope"}`))
		require.NoError(t, err)
		assert.Nil(t, d.Vector)
		assert.False(t, d.Has(EmbeddingField))
	})

	t.Run("rejects non-objects", func(t *testing.T) {
		_, err := ParseDocument([]byte(`[1, 2]`))
		assert.ErrorIs(t, err, ErrInvalidDocument)
		assert.ErrorIs(t, err, ErrNotObject)

		_, err = ParseDocument([]byte(`{broken`))
		assert.ErrorIs(t, err, ErrInvalidDocument)
	})
}

func TestDocument_Text(t *testing.T) {
	doc, err := ParseDocument([]byte(sampleLog))
	require.NoError(t, err)

	assert.Equal(t, "ABC123", doc.Text(FieldDeviceID))
	assert.Equal(t, "42", doc.Text(FieldUserID))
	assert.Equal(t, "Alarm", doc.Text(FieldState))
	assert.Equal(t, "T-9", doc.Text(FieldTagID))
	assert.Equal(t, "", doc.Text(FieldRoom))
	assert.Equal(t, "", doc.Text("LogData.Ward.Nope"))
	assert.JSONEq(t, `{"TagId": "T-9", "Name": "battery"}`, doc.Text("LogData.AlertTag"))
}

func TestDocument_Project(t *testing.T) {
	doc, err := ParseDocument([]byte(sampleLog))
	require.NoError(t, err)

	t.Run("keeps requested nested paths", func(t *testing.T) {
		p, err := doc.Project([]string{FieldDeviceID, FieldModel, FieldTagName})
		require.NoError(t, err)
		assert.JSONEq(t, `{"DeviceId": "ABC123", "LogData": {"Model": "BX-200", "AlertTag": {"Name": "battery"}}}`, string(p.Raw))
		assert.Equal(t, doc.Id, p.Id)
		assert.Nil(t, p.Vector)
	})

	t.Run("absent paths are omitted", func(t *testing.T) {
		p, err := doc.Project([]string{FieldRoom, FieldDeviceID})
		require.NoError(t, err)
		assert.JSONEq(t, `{"DeviceId": "ABC123"}`, string(p.Raw))
		assert.Equal(t, "", p.Text(FieldRoom))
	})
}

func TestNewDocument_LazyParse(t *testing.T) {
	doc := NewDocument(7, []byte(`{"DeviceId": "Z"}`), nil)
	assert.Equal(t, "Z", doc.Text(FieldDeviceID))

	broken := NewDocument(8, []byte(`{`), nil)
	assert.Equal(t, "", broken.Text(FieldDeviceID))
	_, err := broken.Value()
	assert.ErrorIs(t, err, ErrInvalidDocument)
}
