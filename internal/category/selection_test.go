package category

import (
	"encoding/json"
	"errors"
	"testing"

	"pathscategories/resolver/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSelection(t *testing.T) {
	t.Run("Should append the item slug to the selected path", func(t *testing.T) {
		payload, err := NewSelection(catalogRecords(), 4, "air-max")
		require.NoError(t, err)

		assert.Equal(t, domain.CategoryID(4), payload.CategoryID)
		assert.Equal(t, "clothing/shoes/sneakers/air-max", payload.Path)
		assert.Equal(t, []domain.Breadcrumb{
			{Name: "Clothing", Slug: "clothing"},
			{Name: "Shoes", Slug: "clothing/shoes"},
			{Name: "Sneakers", Slug: "clothing/shoes/sneakers"},
		}, payload.Breadcrumbs)
	})

	t.Run("Should propagate resolver errors", func(t *testing.T) {
		_, err := NewSelection(catalogRecords(), 999, "x")
		assert.True(t, errors.Is(err, ErrUnknownSelection))
	})
}

func TestRebase(t *testing.T) {
	payload, err := NewSelection(catalogRecords(), 2, "old-slug")
	require.NoError(t, err)

	rebased := Rebase(payload, "new-slug")
	assert.Equal(t, "clothing/shoes/new-slug", rebased.Path)
	assert.Equal(t, "clothing/shoes/old-slug", payload.Path)

	t.Run("Should fall back to the stored path without breadcrumbs", func(t *testing.T) {
		bare := domain.SelectionPayload{CategoryID: 2, Path: "clothing/shoes/old-slug"}
		assert.Equal(t, "clothing/shoes/new-slug", Rebase(bare, "new-slug").Path)
	})

	t.Run("Should leave a path without separators alone", func(t *testing.T) {
		bare := domain.SelectionPayload{CategoryID: 2, Path: "odd"}
		assert.Equal(t, "odd", Rebase(bare, "new-slug").Path)
	})
}

func TestEncodeSelection(t *testing.T) {
	t.Run("Should emit exactly the three payload keys", func(t *testing.T) {
		payload, err := NewSelection(catalogRecords(), 2, "runner")
		require.NoError(t, err)

		raw, err := EncodeSelection(payload)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"categoryId": 2,
			"path": "clothing/shoes/runner",
			"breadcrumbs": [
				{"name": "Clothing", "slug": "clothing"},
				{"name": "Shoes", "slug": "clothing/shoes"}
			]
		}`, raw)

		var keys map[string]json.RawMessage
		require.NoError(t, json.Unmarshal([]byte(raw), &keys))
		assert.Len(t, keys, 3)
	})

	t.Run("Should encode missing breadcrumbs as an empty array", func(t *testing.T) {
		raw, err := EncodeSelection(domain.SelectionPayload{CategoryID: 1, Path: "a/b"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"categoryId":1,"path":"a/b","breadcrumbs":[]}`, raw)
	})

	t.Run("Should round trip categoryId and path", func(t *testing.T) {
		payload, err := NewSelection(catalogRecords(), 7, "dune")
		require.NoError(t, err)

		raw, err := EncodeSelection(payload)
		require.NoError(t, err)

		decoded, err := DecodeSelection(raw)
		require.NoError(t, err)
		assert.Equal(t, payload.CategoryID, decoded.CategoryID)
		assert.Equal(t, payload.Path, decoded.Path)
		assert.Equal(t, payload.Breadcrumbs, decoded.Breadcrumbs)
	})
}

func TestParseStoredValue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{name: "valid payload", raw: `{"categoryId":2,"path":"clothing/shoes/x","breadcrumbs":[]}`, ok: true},
		{name: "stringified id", raw: `{"categoryId":"2","path":"clothing/shoes/x","breadcrumbs":[]}`, ok: true},
		{name: "extra keys are ignored", raw: `{"categoryId":2,"path":"p","breadcrumbs":[],"other":1}`, ok: true},
		{name: "empty", raw: "", ok: false},
		{name: "whitespace", raw: "   ", ok: false},
		{name: "plain path string", raw: "clothing/shoes/x", ok: false},
		{name: "json string", raw: `"clothing/shoes/x"`, ok: false},
		{name: "missing categoryId", raw: `{"path":"p","breadcrumbs":[]}`, ok: false},
		{name: "null categoryId", raw: `{"categoryId":null,"path":"p","breadcrumbs":[]}`, ok: false},
		{name: "missing path", raw: `{"categoryId":2,"breadcrumbs":[]}`, ok: false},
		{name: "missing breadcrumbs", raw: `{"categoryId":2,"path":"p"}`, ok: false},
		{name: "non numeric id", raw: `{"categoryId":"abc","path":"p","breadcrumbs":[]}`, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, ok := ParseStoredValue(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, domain.CategoryID(2), payload.CategoryID)
				return
			}
			assert.Equal(t, domain.SelectionPayload{}, payload)

			_, err := DecodeSelection(tt.raw)
			assert.True(t, errors.Is(err, ErrMalformedStoredValue))
		})
	}
}
