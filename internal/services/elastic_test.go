package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"djbooks_back_end/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func elasticServer(t *testing.T, handler http.HandlerFunc) *elasticsearch.Client {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client
}

func TestSearchIndex_IndexBook(t *testing.T) {
	var gotPath string
	var gotDoc map[string]any
	client := elasticServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotDoc)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})

	idx := NewSearchIndex(client, "books", zaptest.NewLogger(t))
	err := idx.IndexBook(context.Background(), models.Book{ID: 5, Title: "Rayuela", Author: "Julio Cortázar", Slug: "rayuela"})
	require.NoError(t, err)

	assert.Equal(t, "PUT /books/_doc/5", gotPath)
	assert.Equal(t, "Rayuela", gotDoc["title"])
	assert.EqualValues(t, 5, gotDoc["id"])
}

func TestSearchIndex_SearchBookIDs(t *testing.T) {
	client := elasticServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/books/_search", r.URL.Path)
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_source":{"id":7,"title":"Aura"}},{"_source":{"id":2,"title":"Aura y otros"}}]}}`))
	})

	ids, err := NewSearchIndex(client, "books", zaptest.NewLogger(t)).SearchBookIDs(context.Background(), "aura", 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 2}, ids)
}

func TestSearchIndex_ErrorStatusIsUnavailable(t *testing.T) {
	client := elasticServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"index_not_found_exception"}`))
	})

	_, err := NewSearchIndex(client, "books", zaptest.NewLogger(t)).SearchBookIDs(context.Background(), "aura", 10)
	assert.ErrorIs(t, err, ErrSearchUnavailable)
}

func TestSearchIndex_NilClient(t *testing.T) {
	idx := NewSearchIndex(nil, "books", zaptest.NewLogger(t))
	_, err := idx.SearchBookIDs(context.Background(), "aura", 10)
	assert.ErrorIs(t, err, ErrSearchUnavailable)
	assert.ErrorIs(t, idx.IndexBook(context.Background(), models.Book{ID: 1}), ErrSearchUnavailable)
}
