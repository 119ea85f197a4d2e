package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noorfaiz5/Book-worm-hub/internal/domain/entity"
)

type recorded struct {
	method string
	path   string
	body   string
}

func fakeES(t *testing.T, reply func(r *http.Request) (int, string)) (*elasticsearch.Client, *[]recorded) {
	t.Helper()
	var (
		mu  sync.Mutex
		got []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		got = append(got, recorded{method: r.Method, path: r.URL.Path, body: string(b)})
		mu.Unlock()
		status, body := reply(r)
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return es, &got
}

func TestBookIndex_Index(t *testing.T) {
	es, got := fakeES(t, func(*http.Request) (int, string) { return http.StatusCreated, `{"result":"created"}` })
	idx := NewBookIndex(es, "books")

	genre := "  Sci-Fi "
	err := idx.Index(context.Background(), entity.Book{
		ID: "b1", UserID: "u1", Title: "Dune", Author: "Herbert", Genre: &genre,
		Status: entity.StatusReading, UpdatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.Len(t, *got, 1)
	req := (*got)[0]
	assert.Equal(t, http.MethodPut, req.method)
	assert.Equal(t, "/books/_doc/b1", req.path)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(req.body), &doc))
	assert.Equal(t, "u1", doc["user_id"])
	assert.Equal(t, "Sci-Fi", doc["genre"])
	assert.Equal(t, "reading", doc["status"])
}

func TestBookIndex_SearchScopesToUser(t *testing.T) {
	es, got := fakeES(t, func(*http.Request) (int, string) {
		return http.StatusOK, `{"hits":{"hits":[{"_id":"b2"},{"_id":"b1"}]}}`
	})
	idx := NewBookIndex(es, "books")

	ids, err := idx.Search(context.Background(), "u1", "dune", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"b2", "b1"}, ids)

	require.Len(t, *got, 1)
	assert.Equal(t, "/books/_search", (*got)[0].path)
	assert.True(t, strings.Contains((*got)[0].body, `"user_id":"u1"`))
	assert.True(t, strings.Contains((*got)[0].body, `"size":20`))
}

func TestBookIndex_SearchError(t *testing.T) {
	es, _ := fakeES(t, func(*http.Request) (int, string) { return http.StatusInternalServerError, `{"error":"boom"}` })
	_, err := NewBookIndex(es, "books").Search(context.Background(), "u1", "x", 5)
	assert.Error(t, err)
}

func TestBookIndex_RemoveIgnoresMissing(t *testing.T) {
	es, got := fakeES(t, func(*http.Request) (int, string) { return http.StatusNotFound, `{"result":"not_found"}` })
	require.NoError(t, NewBookIndex(es, "books").Remove(context.Background(), "b9"))
	assert.Equal(t, http.MethodDelete, (*got)[0].method)
}
