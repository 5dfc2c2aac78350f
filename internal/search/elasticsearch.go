package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/utafrali/reputation/internal/domain"
)

// Engine indexes reviews in Elasticsearch.
type Engine struct {
	client    *elasticsearch.Client
	indexName string
	logger    *slog.Logger
}

type esSearchResponse struct {
	Took int `json:"took"`
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

type esErrorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
	Status int `json:"status"`
}

// New connects to esURL and creates the index when it is missing. An empty
// indexName selects DefaultIndexName.
func New(ctx context.Context, esURL, indexName string, logger *slog.Logger) (*Engine, error) {
	if indexName == "" {
		indexName = DefaultIndexName
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{esURL}})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: create client: %w", err)
	}

	e := &Engine{client: client, indexName: indexName, logger: logger}
	if err := e.ensureIndex(ctx); err != nil {
		return nil, fmt.Errorf("elasticsearch: ensure index: %w", err)
	}
	return e, nil
}

// responseError turns an error response into a Go error, or returns nil.
func responseError(op string, res *esapi.Response, ignore ...int) error {
	if !res.IsError() {
		return nil
	}
	for _, code := range ignore {
		if res.StatusCode == code {
			return nil
		}
	}
	var errResp esErrorResponse
	if err := json.NewDecoder(res.Body).Decode(&errResp); err == nil && errResp.Error.Type != "" {
		return fmt.Errorf("%s: %s: %s", op, errResp.Error.Type, errResp.Error.Reason)
	}
	return fmt.Errorf("%s: unexpected status %s", op, res.Status())
}

// Ping checks whether the cluster is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	res, err := e.client.Ping(e.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	return responseError("elasticsearch ping", res)
}

func (e *Engine) ensureIndex(ctx context.Context) error {
	res, err := e.client.Indices.Exists([]string{e.indexName}, e.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index exists: %w", err)
	}
	_ = res.Body.Close()

	if res.StatusCode == http.StatusOK {
		e.logger.Info("elasticsearch index already exists", slog.String("index", e.indexName))
		return nil
	}

	res, err = e.client.Indices.Create(
		e.indexName,
		e.client.Indices.Create.WithBody(strings.NewReader(buildIndexMapping())),
		e.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if err := responseError("create index", res); err != nil {
		return err
	}
	e.logger.Info("elasticsearch index created", slog.String("index", e.indexName))
	return nil
}

// IndexReview writes or replaces the review's document.
func (e *Engine) IndexReview(ctx context.Context, r *domain.Review) error {
	data, err := json.Marshal(NewDocument(r))
	if err != nil {
		return fmt.Errorf("elasticsearch index: marshal review: %w", err)
	}

	res, err := e.client.Index(
		e.indexName,
		bytes.NewReader(data),
		e.client.Index.WithDocumentID(r.ID),
		e.client.Index.WithRefresh("true"),
		e.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if err := responseError("elasticsearch index", res); err != nil {
		return err
	}
	e.logger.DebugContext(ctx, "indexed review", slog.String("review_id", r.ID))
	return nil
}

// DeleteReview removes the review's document. A missing document is not an
// error.
func (e *Engine) DeleteReview(ctx context.Context, id string) error {
	res, err := e.client.Delete(e.indexName, id, e.client.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch delete: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	return responseError("elasticsearch delete", res, http.StatusNotFound)
}

// Search runs q and returns the matching IDs.
func (e *Engine) Search(ctx context.Context, q Query) (*Result, error) {
	page, perPage := q.pagination()

	data, err := json.Marshal(buildSearchQuery(q, page, perPage))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: marshal query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithIndex(e.indexName),
		e.client.Search.WithBody(bytes.NewReader(data)),
		e.client.Search.WithContext(ctx),
		e.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if err := responseError("elasticsearch search", res); err != nil {
		return nil, err
	}

	var esResp esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, fmt.Errorf("elasticsearch search: decode response: %w", err)
	}

	ids := make([]string, 0, len(esResp.Hits.Hits))
	for _, hit := range esResp.Hits.Hits {
		ids = append(ids, hit.ID)
	}

	return &Result{
		IDs:     ids,
		Total:   esResp.Hits.Total.Value,
		Page:    page,
		PerPage: perPage,
		TookMs:  int64(esResp.Took),
	}, nil
}

// DeleteIndex drops the whole index. A missing index is not an error.
func (e *Engine) DeleteIndex(ctx context.Context) error {
	res, err := e.client.Indices.Delete([]string{e.indexName}, e.client.Indices.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch delete index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	return responseError("elasticsearch delete index", res, http.StatusNotFound)
}

func buildSearchQuery(q Query, page, perPage int) map[string]any {
	var must any = map[string]any{"match_all": map[string]any{}}
	if q.Text != "" {
		must = map[string]any{
			"multi_match": map[string]any{
				"query":     q.Text,
				"fields":    []string{"content^2", "title^2", "author_name", "keywords"},
				"type":      "best_fields",
				"fuzziness": "AUTO",
			},
		}
	}

	var filters []any
	term := func(field, value string) {
		if value != "" {
			filters = append(filters, map[string]any{"term": map[string]any{field: value}})
		}
	}
	term("source_id", q.SourceID)
	term("status", q.Status)
	term("sentiment", q.Sentiment)

	if q.MinRating > 0 || q.MaxRating > 0 {
		r := map[string]any{}
		if q.MinRating > 0 {
			r["gte"] = q.MinRating
		}
		if q.MaxRating > 0 {
			r["lte"] = q.MaxRating
		}
		filters = append(filters, map[string]any{"range": map[string]any{"rating": r}})
	}

	boolQuery := map[string]any{"must": []any{must}}
	if len(filters) > 0 {
		boolQuery["filter"] = filters
	}

	return map[string]any{
		"query":            map[string]any{"bool": boolQuery},
		"from":             (page - 1) * perPage,
		"size":             perPage,
		"track_total_hits": true,
		"_source":          false,
		"sort": []any{
			map[string]any{"_score": "desc"},
			map[string]any{"published_at": "desc"},
		},
	}
}
