package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"pathscategories/resolver/internal/config"
	"pathscategories/resolver/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, source string, handler http.HandlerFunc) CategoryClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewCategoryClient(config.CategoriesConfig{
		BaseURL:              server.URL,
		Endpoint:             "/paths/pathscategories",
		Source:               source,
		APIToken:             "secret",
		Timeout:              5,
		MaxRetries:           0,
		MaxRequestsPerSecond: 100,
	})
}

func TestFetchCategories(t *testing.T) {
	t.Run("Should decode a bare records array", func(t *testing.T) {
		c := newTestClient(t, config.SourceJSON, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/paths/pathscategories", r.URL.Path)
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[
				{"id": 1, "name": "Clothing", "slug": "clothing", "parent": null},
				{"id": 2, "name": "Shoes", "slug": "shoes", "parent": {"id": 1, "name": "Clothing"}}
			]`))
		})

		records, err := c.FetchCategories(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []domain.CategoryRecord{
			{ID: 1, Name: "Clothing", Slug: "clothing"},
			{ID: 2, Name: "Shoes", Slug: "shoes", Parent: &domain.ParentRef{ID: 1}},
		}, records)
	})

	t.Run("Should decode a data envelope", func(t *testing.T) {
		c := newTestClient(t, config.SourceJSON, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"data": [{"id": "3", "name": "Books", "slug": "books", "parent": null}]}`))
		})

		records, err := c.FetchCategories(context.Background())
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, domain.CategoryID(3), records[0].ID)
		assert.True(t, records[0].IsRoot())
	})

	t.Run("Should treat an empty array as an empty record set", func(t *testing.T) {
		c := newTestClient(t, config.SourceJSON, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[]`))
		})

		records, err := c.FetchCategories(context.Background())
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("Should treat an empty body as an empty record set", func(t *testing.T) {
		c := newTestClient(t, config.SourceJSON, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		records, err := c.FetchCategories(context.Background())
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("Should fail on an HTTP error", func(t *testing.T) {
		c := newTestClient(t, config.SourceJSON, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})

		_, err := c.FetchCategories(context.Background())
		assert.ErrorContains(t, err, "HTTP error: 403")
	})

	t.Run("Should fail on an unexpected body", func(t *testing.T) {
		c := newTestClient(t, config.SourceJSON, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error": "nope"}`))
		})

		_, err := c.FetchCategories(context.Background())
		assert.ErrorContains(t, err, "failed to parse categories")
	})

	t.Run("Should parse an HTML catalog tree", func(t *testing.T) {
		c := newTestClient(t, config.SourceHTML, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(catalogTreeHTML))
		})

		records, err := c.FetchCategories(context.Background())
		require.NoError(t, err)
		assert.Len(t, records, 4)
	})
}

func TestDecodeRecords(t *testing.T) {
	for _, body := range []string{"", "   ", "null", " null\n"} {
		records, err := decodeRecords([]byte(body))
		require.NoError(t, err, "body %q", body)
		assert.NotNil(t, records)
		assert.Empty(t, records)
	}

	_, err := decodeRecords([]byte(`[{"id": "x"}]`))
	assert.Error(t, err)
}
