// Package search keeps a full-text index of books in Elasticsearch.
// The index only answers "which ids match"; book data is always read from the store.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/noorfaiz5/Book-worm-hub/internal/domain/entity"
)

// BookMapping is the index mapping used by EnsureIndex at boot.
const BookMapping = `{
  "mappings": {
    "properties": {
      "user_id":    {"type": "keyword"},
      "title":      {"type": "text"},
      "author":     {"type": "text"},
      "genre":      {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "status":     {"type": "keyword"},
      "updated_at": {"type": "date"}
    }
  }
}`

const requestTimeout = 3 * time.Second

type BookIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewBookIndex(es *elasticsearch.Client, index string) *BookIndex {
	return &BookIndex{es: es, index: index}
}

type bookDoc struct {
	UserID    string `json:"user_id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Genre     string `json:"genre,omitempty"`
	Status    string `json:"status"`
	UpdatedAt string `json:"updated_at"`
}

// Index upserts b's searchable fields.
func (i *BookIndex) Index(ctx context.Context, b entity.Book) error {
	body, err := json.Marshal(bookDoc{
		UserID:    b.UserID,
		Title:     b.Title,
		Author:    b.Author,
		Genre:     b.GenreName(),
		Status:    string(b.Status),
		UpdatedAt: b.UpdatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: i.index, DocumentID: b.ID, Body: bytes.NewReader(body), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, i.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("index book %s: %s", b.ID, res.Status())
	}
	return nil
}

// Remove deletes the document for id. A missing document is not an error.
func (i *BookIndex) Remove(ctx context.Context, id string) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := i.es.Delete(i.index, id, i.es.Delete.WithContext(c))
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("remove book %s: %s", id, res.Status())
	}
	return nil
}

// Search returns the ids of userID's books matching q, best match first.
func (i *BookIndex) Search(ctx context.Context, userID, q string, size int) ([]string, error) {
	if size <= 0 || size > 50 {
		size = 20
	}
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{"term": map[string]any{"user_id": userID}},
				},
				"must": []any{
					map[string]any{"multi_match": map[string]any{
						"query":     q,
						"fields":    []string{"title^3", "author^2", "genre"},
						"fuzziness": "AUTO",
					}},
				},
			},
		},
		"_source": false,
		"size":    size,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := i.es.Search(
		i.es.Search.WithContext(c),
		i.es.Search.WithIndex(i.index),
		i.es.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("search books: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}
