package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredicate_Match(t *testing.T) {
	tests := []struct {
		name  string
		pred  Predicate
		value string
		want  bool
	}{
		{"exact equal", Exact("ABC123"), "ABC123", true},
		{"exact is case sensitive", Exact("ABC123"), "abc123", false},
		{"exact rejects substring", Exact("ABC"), "ABC123", false},
		{"anchored ignores case", Pattern("north", true), "North", true},
		{"anchored rejects substring", Pattern("nor", true), "North", false},
		{"unanchored substring", Pattern("ort", false), "North", true},
		{"unanchored ignores case", Pattern("ORT", false), "North", true},
		{"metacharacters are literal", Pattern("a.c", false), "abc", false},
		{"metacharacters match themselves", Pattern("a.c", false), "xa.cx", true},
		{"zero predicate never matches", Predicate{}, "x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pred.Match(tt.value))
			if tt.pred.Kind != 0 {
				assert.Equal(t, tt.want, tt.pred.Regexp().MatchString(tt.value))
			}
		})
	}
}

func TestFilter_Matches(t *testing.T) {
	doc, err := ParseDocument([]byte(sampleLog))
	require.NoError(t, err)

	assert.True(t, Filter(nil).Matches(doc))
	assert.True(t, Filter{FieldDeviceID: Exact("ABC123"), FieldWard: Pattern("nor", false)}.Matches(doc))
	assert.False(t, Filter{FieldDeviceID: Exact("ABC123"), FieldWard: Pattern("nor", true)}.Matches(doc))
	assert.True(t, Filter{FieldUserID: Exact("42")}.Matches(doc))
	assert.False(t, Filter{FieldRoom: Pattern("", false)}.Matches(doc), "missing fields never match")
}

func TestFilter_String(t *testing.T) {
	f := Filter{FieldWard: Pattern("north", true), FieldDeviceID: Exact("A")}
	assert.Equal(t, `{DeviceId="A", LogData.Ward~/(?i)^north$/}`, f.String())
	assert.Equal(t, "{}", Filter{}.String())
	assert.Equal(t, []string{FieldDeviceID, FieldWard}, f.Paths())
}
