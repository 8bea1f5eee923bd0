package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/logscope/core"
)

func TestExtractStructured(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantFields []string
		wantPairs  []Pair
	}{
		{
			name:       "comma separated",
			input:      "list deviceid, model, ward",
			wantFields: []string{core.FieldDeviceID, core.FieldModel, core.FieldWard},
		},
		{
			name:       "and separated",
			input:      "find deviceid AND summary",
			wantFields: []string{core.FieldDeviceID, core.FieldSummary},
		},
		{
			name:       "punctuation stripped and empties dropped",
			input:      "show (deviceid), , model!",
			wantFields: []string{core.FieldDeviceID, core.FieldModel},
		},
		{
			name:       "key value clause with quotes",
			input:      `list deviceid where ward="North Wing"`,
			wantFields: []string{core.FieldDeviceID},
			wantPairs:  []Pair{{Key: core.FieldWard, Value: "North Wing"}},
		},
		{
			name:       "word clause",
			input:      "list summary having state offline now",
			wantFields: []string{core.FieldSummary},
			wantPairs:  []Pair{{Key: core.FieldState, Value: "offline now"}},
		},
		{
			name:       "multiple clauses",
			input:      "list deviceid for model=bx and ward = 'East'",
			wantFields: []string{core.FieldDeviceID},
			wantPairs: []Pair{
				{Key: core.FieldModel, Value: "bx"},
				{Key: core.FieldWard, Value: "East"},
			},
		},
		{
			name:       "keyword without clause",
			input:      "list deviceid where",
			wantFields: []string{core.FieldDeviceID},
		},
		{
			name:       "unknown field passes through",
			input:      "list LogData.Custom",
			wantFields: []string{"LogData.Custom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, pairs, err := ExtractStructured(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFields, fields)
			assert.Equal(t, tt.wantPairs, pairs)
		})
	}
}

func TestExtractStructured_NoFields(t *testing.T) {
	_, _, err := ExtractStructured("list !!! where ward=north")
	assert.ErrorIs(t, err, ErrNoFields)

	_, _, err = ExtractStructured("what is this")
	assert.ErrorIs(t, err, ErrNoFields)
}

func TestParseClauses_Empty(t *testing.T) {
	assert.Nil(t, ParseClauses(""))
	assert.Nil(t, ParseClauses("  ,  "))
}

func TestUnquote(t *testing.T) {
	assert.Equal(t, "a b", unquote(`"a b"`))
	assert.Equal(t, "a", unquote(`'a'`))
	assert.Equal(t, `"a'`, unquote(`"a'`))
	assert.Equal(t, `"`, unquote(`"`))
}
