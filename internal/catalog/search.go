package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/errors"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/logger"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/models"
)

// Searcher answers free-text catalog queries against Elasticsearch and falls
// back to a Postgres ILIKE scan when the cluster is unreachable.
type Searcher struct {
	client   *elasticsearch.Client
	index    string
	fallback *Repository
	logger   logger.Logger
}

func NewSearcher(client *elasticsearch.Client, index string, fallback *Repository, log logger.Logger) *Searcher {
	if index == "" {
		index = "watches"
	}
	return &Searcher{
		client:   client,
		index:    index,
		fallback: fallback,
		logger:   log,
	}
}

// Search runs a text query. Elasticsearch failures degrade to the Postgres
// fallback instead of surfacing to the caller.
func (s *Searcher) Search(ctx context.Context, text string, filter models.CatalogFilter) ([]models.WatchProduct, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return s.fallback.List(ctx, filter)
	}

	products, err := s.searchElasticsearch(ctx, text, filter)
	if err == nil {
		return products, nil
	}
	if ctx.Err() != nil {
		return nil, errors.NewSearchTimeoutError()
	}

	s.logger.Warn("Elasticsearch search failed, falling back to Postgres", map[string]interface{}{
		"error": err.Error(),
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	return s.fallback.SearchLike(ctx, text, limit)
}

func (s *Searcher) searchElasticsearch(ctx context.Context, text string, filter models.CatalogFilter) ([]models.WatchProduct, error) {
	if s.client == nil {
		return nil, errors.NewElasticsearchConnectionFailedError(fmt.Errorf("no client configured"))
	}

	queryBody := buildProductSearchQuery(text, filter)
	body, _ := json.Marshal(queryBody)

	from := filter.Offset
	if from < 0 {
		from = 0
	}
	size := filter.Limit
	if size <= 0 || size > 100 {
		size = defaultPageSize
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(string(body)),
		From:  &from,
		Size:  &size,
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, errors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil, errors.NewIndexNotFoundError(s.index)
	}
	if res.IsError() {
		return nil, errors.NewSearchQueryFailedError(fmt.Errorf("search query failed: %s", res.Status()))
	}

	var r map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, errors.NewSearchQueryFailedError(err)
	}

	return parseProductHits(r)
}

// buildProductSearchQuery builds the catalog search body: text relevance over
// brand, model, and description, with hard filters for brand and price range.
func buildProductSearchQuery(text string, filter models.CatalogFilter) map[string]interface{} {
	mustClauses := []interface{}{
		map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  text,
				"fields": []string{"brand^3", "model^3", "reference^2", "description"},
				"type":   "best_fields",
			},
		},
	}

	filterClauses := []interface{}{
		map[string]interface{}{
			"term": map[string]interface{}{"is_available": true},
		},
	}

	if filter.Brand != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"brand.keyword": filter.Brand},
		})
	}

	priceRange := map[string]interface{}{}
	if filter.PriceMin > 0 {
		priceRange["gte"] = filter.PriceMin
	}
	if filter.PriceMax > 0 {
		priceRange["lte"] = filter.PriceMax
	}
	if len(priceRange) > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{"price": priceRange},
		})
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   mustClauses,
				"filter": filterClauses,
			},
		},
	}
}

func parseProductHits(r map[string]interface{}) ([]models.WatchProduct, error) {
	hits, ok := r["hits"].(map[string]interface{})
	if !ok {
		return nil, errors.NewSearchQueryFailedError(fmt.Errorf("malformed search response"))
	}

	rawHits, _ := hits["hits"].([]interface{})
	var products []models.WatchProduct
	for _, hit := range rawHits {
		source, ok := hit.(map[string]interface{})["_source"]
		if !ok {
			continue
		}
		raw, err := json.Marshal(source)
		if err != nil {
			continue
		}
		var p models.WatchProduct
		if err := json.Unmarshal(raw, &p); err != nil {
			continue
		}
		products = append(products, p)
	}

	return products, nil
}
