package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_EmbeddingText(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"DeviceId": "A", "Summary": "door open", "LogData": {"State": "Alarm", "Room": "4"}}`))
	require.NoError(t, err)
	assert.Equal(t, "Summary: door open\nLogData.State: Alarm\nDeviceId: A", doc.EmbeddingText())

	bare, err := ParseDocument([]byte(`{"Other": 1}`))
	require.NoError(t, err)
	assert.Equal(t, `{"Other":1}`, bare.EmbeddingText())
}
