package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"djbooks_back_end/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

var ErrSearchUnavailable = errors.New("search index unavailable")

type bookDocument struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Editorial   string   `json:"editorial"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Slug        string   `json:"slug"`
}

// SearchIndex keeps the books index in Elasticsearch. A nil client makes every
// call return ErrSearchUnavailable so callers can fall back to SQL.
type SearchIndex struct {
	client *elasticsearch.Client
	index  string
	logger *zap.Logger
}

func NewSearchIndex(client *elasticsearch.Client, index string, logger *zap.Logger) *SearchIndex {
	return &SearchIndex{client: client, index: index, logger: logger}
}

func (s *SearchIndex) IndexBook(ctx context.Context, b models.Book) error {
	if s.client == nil {
		return ErrSearchUnavailable
	}

	data, err := json.Marshal(bookDocument{
		ID: b.ID, Title: b.Title, Author: b.Author, Editorial: b.Editorial,
		Description: b.Description, Tags: b.Tags, Slug: b.Slug,
	})
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: strconv.FormatInt(b.ID, 10),
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("index book %d: %w", b.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index book %d: %s", b.ID, res.Status())
	}
	s.logger.Debug("book indexed", zap.Int64("book_id", b.ID), zap.String("title", b.Title))
	return nil
}

// SearchBookIDs returns matching book ids, best match first.
func (s *SearchIndex) SearchBookIDs(ctx context.Context, query string, limit int) ([]int64, error) {
	if s.client == nil {
		return nil, ErrSearchUnavailable
	}

	var buf bytes.Buffer
	q := map[string]any{
		"size": limit,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  query,
				"fields": []string{"title^2", "author", "editorial", "description", "tags"},
			},
		},
	}
	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, fmt.Errorf("encode search query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  &buf,
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrSearchUnavailable, res.Status())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source bookDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]int64, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		ids = append(ids, hit.Source.ID)
	}
	return ids, nil
}
