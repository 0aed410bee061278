package relation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelationUnmarshalShapes(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		kind   Kind
		id     string
		exists bool
	}{
		{name: "embedded object", input: `{"id":"need-1","label":"Hydration"}`, kind: Embedded, id: "need-1", exists: true},
		{name: "embedded numeric id", input: `{"id":42}`, kind: Embedded, id: "42", exists: true},
		{name: "embedded without id", input: `{"label":"orphan"}`, kind: Embedded},
		{name: "bare string id", input: `"area-7"`, kind: ID, id: "area-7", exists: true},
		{name: "bare numeric id", input: `12`, kind: ID, id: "12", exists: true},
		{name: "null", input: `null`, kind: Absent},
		{name: "empty string", input: `""`, kind: Absent},
		{name: "boolean", input: `true`, kind: Absent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Relation
			require.NoError(t, json.Unmarshal([]byte(tt.input), &r))
			assert.Equal(t, tt.kind, r.Kind())

			id, ok := r.ResolveID()
			assert.Equal(t, tt.exists, ok)
			assert.Equal(t, tt.id, id)
		})
	}
}

func TestRelationMissingFieldIsAbsent(t *testing.T) {
	var doc struct {
		Brand Relation `json:"brand"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{}`), &doc))
	assert.True(t, doc.Brand.IsAbsent())
	assert.Equal(t, "", doc.Brand.IDOrEmpty())
}

func TestListResolveIDsDropsUnresolved(t *testing.T) {
	var l List
	require.NoError(t, json.Unmarshal([]byte(`[{"id":"a"}, "b", null, {"name":"x"}, 3, [1]]`), &l))

	assert.Len(t, l, 6)
	assert.Equal(t, []string{"a", "b", "3"}, l.ResolveIDs())
}

func TestListAcceptsSingleValue(t *testing.T) {
	var l List
	require.NoError(t, json.Unmarshal([]byte(`"only"`), &l))
	assert.Equal(t, []string{"only"}, l.ResolveIDs())

	require.NoError(t, json.Unmarshal([]byte(`null`), &l))
	assert.Empty(t, l.ResolveIDs())
}

func TestRelationScanAndValue(t *testing.T) {
	var r Relation
	require.NoError(t, r.Scan([]byte(`{"id":"brand-1"}`)))
	assert.Equal(t, "brand-1", r.IDOrEmpty())

	require.NoError(t, r.Scan("need-9"))
	assert.Equal(t, ID, r.Kind())
	assert.Equal(t, "need-9", r.IDOrEmpty())

	require.NoError(t, r.Scan(nil))
	assert.True(t, r.IsAbsent())

	value, err := FromObject(map[string]any{"id": "x"}).Value()
	require.NoError(t, err)
	assert.Equal(t, "x", value)

	value, err = None.Value()
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestLocalizedTextResolve(t *testing.T) {
	var text LocalizedText
	require.NoError(t, json.Unmarshal([]byte(`{"en":"Cleanser","it":"Detergente"}`), &text))

	s, ok := text.Resolve("it")
	assert.True(t, ok)
	assert.Equal(t, "Detergente", s)

	// first defined value in document order
	s, ok = text.Resolve("fr")
	assert.True(t, ok)
	assert.Equal(t, "Cleanser", s)
}

func TestLocalizedTextSkipsUndefinedEntries(t *testing.T) {
	var text LocalizedText
	require.NoError(t, json.Unmarshal([]byte(`{"de":null,"fr":7,"it":"Siero"}`), &text))

	s, ok := text.Resolve("en")
	assert.True(t, ok)
	assert.Equal(t, "Siero", s)
}

func TestLocalizedTextPlainAndEmpty(t *testing.T) {
	var plain LocalizedText
	require.NoError(t, json.Unmarshal([]byte(`"Tonico"`), &plain))
	assert.Equal(t, "Tonico", plain.String("en"))

	var empty LocalizedText
	require.NoError(t, json.Unmarshal([]byte(`{}`), &empty))
	_, ok := empty.Resolve("it")
	assert.False(t, ok)
	assert.True(t, empty.IsZero())
}

func TestLocalizedTextRoundTripKeepsOrder(t *testing.T) {
	text := Localized("it", "Viso", "en", "Face")
	b, err := json.Marshal(text)
	require.NoError(t, err)
	assert.JSONEq(t, `{"it":"Viso","en":"Face"}`, string(b))
	assert.Equal(t, `{"it":"Viso","en":"Face"}`, string(b))
}
