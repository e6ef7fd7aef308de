package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryIDUnmarshal(t *testing.T) {
	t.Run("Should accept numbers and quoted numbers", func(t *testing.T) {
		var rec struct {
			A CategoryID `json:"a"`
			B CategoryID `json:"b"`
		}
		require.NoError(t, json.Unmarshal([]byte(`{"a": 12, "b": "34"}`), &rec))
		assert.Equal(t, CategoryID(12), rec.A)
		assert.Equal(t, CategoryID(34), rec.B)
	})

	t.Run("Should reject non numeric ids", func(t *testing.T) {
		var id CategoryID
		assert.Error(t, json.Unmarshal([]byte(`"shoes"`), &id))
	})

	t.Run("Should parse a record with a full parent object", func(t *testing.T) {
		var rec CategoryRecord
		require.NoError(t, json.Unmarshal([]byte(`{"id": 2, "name": "Shoes", "slug": "shoes", "parent": {"id": 1, "name": "Clothing"}}`), &rec))
		require.NotNil(t, rec.Parent)
		assert.Equal(t, CategoryID(1), rec.Parent.ID)
		assert.False(t, rec.IsRoot())
	})
}

func TestParseCategoryID(t *testing.T) {
	id, err := ParseCategoryID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, CategoryID(42), id)

	_, err = ParseCategoryID("4.2")
	assert.Error(t, err)
}

func TestFlatEntryLabel(t *testing.T) {
	assert.Equal(t, "Clothing", FlatEntry{Name: "Clothing"}.Label())
	assert.Equal(t, strings.Repeat("\u00a0", 4)+"Shoes", FlatEntry{Name: "Shoes", Depth: 1}.Label())
}
