package qdrant

import (
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/logscope/core"
)

const sample = `{"DeviceId": "ABC123", "UserId": 42, "Battery": 3.5, "Active": true, "Note": null,
	"Tags": ["a", "b"], "LogData": {"Ward": "North", "AlertTag": {"TagId": "T-9"}}}`

func TestToPayload(t *testing.T) {
	doc, err := core.ParseDocument([]byte(sample))
	require.NoError(t, err)

	payload, err := toPayload(doc)
	require.NoError(t, err)

	assert.Equal(t, "ABC123", payload["DeviceId"].GetStringValue())
	assert.Equal(t, int64(42), payload["UserId"].GetIntegerValue())
	assert.Equal(t, 3.5, payload["Battery"].GetDoubleValue())
	assert.True(t, payload["Active"].GetBoolValue())
	assert.Len(t, payload["Tags"].GetListValue().GetValues(), 2)
	assert.Equal(t, "North", payload["LogData"].GetStructValue().GetFields()["Ward"].GetStringValue())

	t.Run("text mirror renders scalars", func(t *testing.T) {
		txt := payload[textMirror].GetStructValue().GetFields()
		assert.Equal(t, "42", txt["UserId"].GetStringValue())
		assert.Equal(t, "T-9", txt["LogData"].GetStructValue().GetFields()["AlertTag"].GetStructValue().GetFields()["TagId"].GetStringValue())
		assert.NotContains(t, txt, "Tags")
		assert.NotContains(t, txt, "Note")
	})

	t.Run("lowercase mirror", func(t *testing.T) {
		lc := payload[lowerMirror].GetStructValue().GetFields()
		assert.Equal(t, "abc123", lc["DeviceId"].GetStringValue())
		assert.Equal(t, "north", lc["LogData"].GetStructValue().GetFields()["Ward"].GetStringValue())
	})
}

func TestFromPayload_RoundTrip(t *testing.T) {
	doc, err := core.ParseDocument([]byte(sample))
	require.NoError(t, err)
	payload, err := toPayload(doc)
	require.NoError(t, err)

	body := fromPayload(payload)
	assert.JSONEq(t, sample, string(body))
}

func TestSetNested(t *testing.T) {
	root := map[string]*qdrant.Value{}
	setNested(root, []string{"a", "b", "c"}, qdrant.NewValueString("x"))
	setNested(root, []string{"a", "d"}, qdrant.NewValueString("y"))

	a := root["a"].GetStructValue().GetFields()
	assert.Equal(t, "x", a["b"].GetStructValue().GetFields()["c"].GetStringValue())
	assert.Equal(t, "y", a["d"].GetStringValue())
}

func TestPointVector(t *testing.T) {
	assert.Nil(t, pointVector(nil))

	out := &qdrant.VectorsOutput{
		VectorsOptions: &qdrant.VectorsOutput_Vectors{
			Vectors: &qdrant.NamedVectorsOutput{
				Vectors: map[string]*qdrant.VectorOutput{
					vectorName: {Vector: &qdrant.VectorOutput_Dense{Dense: &qdrant.DenseVector{Data: []float32{1, 2}}}},
				},
			},
		},
	}
	assert.Equal(t, []float32{1, 2}, pointVector(out))
}

func TestFacetText(t *testing.T) {
	assert.Equal(t, "North", facetText(&qdrant.FacetValue{Variant: &qdrant.FacetValue_StringValue{StringValue: "North"}}))
	assert.Equal(t, "7", facetText(&qdrant.FacetValue{Variant: &qdrant.FacetValue_IntegerValue{IntegerValue: 7}}))
	assert.Equal(t, "true", facetText(&qdrant.FacetValue{Variant: &qdrant.FacetValue_BoolValue{BoolValue: true}}))
	assert.Equal(t, "", facetText(nil))
}
