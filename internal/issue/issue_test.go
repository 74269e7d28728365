package issue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) Issue {
	t.Helper()
	var i Issue
	require.NoError(t, json.Unmarshal([]byte(raw), &i))
	return i
}

func TestLookup(t *testing.T) {
	root := map[string]any{
		"customfield_10010": map[string]any{
			"requestType": map[string]any{"name": "Get IT help"},
		},
		"customfield_10767": map[string]any{"value": "Service Desk N1"},
		"assignee":          nil,
		"labels":            []any{"a", "b"},
		"scalar":            "text",
	}

	testCases := []struct {
		name   string
		path   string
		want   any
		wantOK bool
	}{
		{name: "Deeply nested value", path: "customfield_10010.requestType.name", want: "Get IT help", wantOK: true},
		{name: "Single level nested value", path: "customfield_10767.value", want: "Service Desk N1", wantOK: true},
		{name: "Top level value", path: "scalar", want: "text", wantOK: true},
		{name: "Missing intermediate key", path: "customfield_99999.value", wantOK: false},
		{name: "Missing final key", path: "customfield_10010.requestType.id", wantOK: false},
		{name: "Intermediate is not an object", path: "scalar.value", wantOK: false},
		{name: "Intermediate is a list", path: "labels.0", wantOK: false},
		{name: "Final value is null", path: "assignee", wantOK: false},
		{name: "Traversing through null", path: "assignee.displayName", wantOK: false},
		{name: "Empty path", path: "", wantOK: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Lookup(root, tc.path)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.Equal(t, tc.want, got)
			} else {
				assert.Nil(t, got)
			}
		})
	}
}

func TestLookupNilRoot(t *testing.T) {
	got, ok := Lookup(nil, "a.b")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestLookupString(t *testing.T) {
	root := map[string]any{"key": "SD-1", "count": 3.0}

	s, ok := LookupString(root, "key")
	assert.True(t, ok)
	assert.Equal(t, "SD-1", s)

	_, ok = LookupString(root, "count")
	assert.False(t, ok, "non-string values should not be reported as strings")
}

func TestResolvedDate(t *testing.T) {
	testCases := []struct {
		name   string
		raw    string
		want   string
		wantOK bool
	}{
		{
			name:   "No changelog",
			raw:    `{"key": "SD-1", "fields": {}}`,
			wantOK: false,
		},
		{
			name: "No status transition to resolved",
			raw: `{"changelog": {"histories": [
				{"created": "2024-01-02T10:00:00.000-0300", "items": [{"field": "status", "toString": "Em andamento"}]},
				{"created": "2024-01-03T10:00:00.000-0300", "items": [{"field": "assignee", "toString": "Resolvido"}]}
			]}}`,
			wantOK: false,
		},
		{
			name: "Single qualifying item",
			raw: `{"changelog": {"histories": [
				{"created": "2024-01-02T10:00:00.000-0300", "items": [{"field": "status", "toString": "Em andamento"}]},
				{"created": "2024-01-05T16:45:00.000-0300", "items": [{"field": "status", "toString": "Resolvido"}]}
			]}}`,
			want:   "2024-01-05T16:45:00.000-0300",
			wantOK: true,
		},
		{
			name: "Last qualifying item wins in changelog order",
			raw: `{"changelog": {"histories": [
				{"created": "2024-03-01T09:00:00.000-0300", "items": [{"field": "status", "toString": "Resolvido"}]},
				{"created": "2024-01-01T09:00:00.000-0300", "items": [{"field": "status", "toString": "Reaberto"}]},
				{"created": "2024-02-01T09:00:00.000-0300", "items": [{"field": "status", "toString": "Resolvido"}]}
			]}}`,
			want:   "2024-02-01T09:00:00.000-0300",
			wantOK: true,
		},
		{
			name: "Qualifying item among other items",
			raw: `{"changelog": {"histories": [
				{"created": "2024-04-10T12:00:00.000+0000", "items": [
					{"field": "resolution", "toString": "Done"},
					{"field": "status", "toString": "Resolvido"}
				]}
			]}}`,
			want:   "2024-04-10T12:00:00.000+0000",
			wantOK: true,
		},
		{
			name:   "Malformed histories",
			raw:    `{"changelog": {"histories": "nope"}}`,
			wantOK: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := decode(t, tc.raw).ResolvedDate("Resolvido")
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEnrich(t *testing.T) {
	t.Run("Stores resolved date under fields", func(t *testing.T) {
		i := decode(t, `{"fields": {"created": "2024-01-01T00:00:00.000+0000"}, "changelog": {"histories": [
			{"created": "2024-01-05T16:45:00.000-0300", "items": [{"field": "status", "toString": "Resolvido"}]}
		]}}`)

		i.Enrich("Resolvido")

		got, ok := LookupString(i, "fields.resolvedDate")
		require.True(t, ok)
		assert.Equal(t, "2024-01-05T16:45:00.000-0300", got)
	})

	t.Run("Leaves unresolved issue untouched", func(t *testing.T) {
		i := decode(t, `{"fields": {}}`)
		i.Enrich("Resolvido")
		assert.NotContains(t, i.Fields(), ResolvedDateField)
	})

	t.Run("Issue without fields is not modified", func(t *testing.T) {
		i := decode(t, `{"changelog": {"histories": [
			{"created": "2024-01-05T16:45:00.000-0300", "items": [{"field": "status", "toString": "Resolvido"}]}
		]}}`)
		i.Enrich("Resolvido")
		assert.Nil(t, i.Fields())
		assert.NotContains(t, i, "fields")
	})
}
