package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/logger"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/models"
)

func newFakeElasticsearch(t *testing.T, handler http.HandlerFunc) *elasticsearch.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{srv.URL},
		// the default transport retries 502/503/504 three times
		DisableRetry: true,
	})
	require.NoError(t, err)
	return client
}

const searchResponse = `{
	"took": 3,
	"hits": {
		"total": {"value": 2},
		"max_score": 1.7,
		"hits": [
			{"_source": {"id": "w1", "brand": "Rolex", "model": "Submariner", "price": 12500, "condition": "Excellent", "isAvailable": true}},
			{"_source": {"id": "w2", "brand": "Rolex", "model": "GMT-Master II", "price": 16200, "condition": "Very Good", "isAvailable": true}}
		]
	}
}`

// ==========================
// Elasticsearch path
// ==========================

func TestSearcher_Search_Elasticsearch(t *testing.T) {
	client := newFakeElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(searchResponse))
	})

	searcher := NewSearcher(client, "watches", nil, logger.NewNoOpLogger())
	products, err := searcher.Search(context.Background(), "submariner", models.CatalogFilter{})
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "w1", products[0].ID)
	assert.Equal(t, "Submariner", products[0].Model)
	assert.Equal(t, 16200.0, products[1].Price)
}

func TestSearcher_Search_FallsBackOnServerError(t *testing.T) {
	client := newFakeElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(productCols)
	productRow(rows, "w9", "Omega", "Speedmaster", 6800)
	mock.ExpectQuery("SELECT (.+) FROM watch_products").
		WithArgs("%speedmaster%", defaultPageSize).
		WillReturnRows(rows)

	searcher := NewSearcher(client, "watches", NewRepository(db), logger.NewNoOpLogger())
	products, err := searcher.Search(context.Background(), "speedmaster", models.CatalogFilter{})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Speedmaster", products[0].Model)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearcher_Search_EmptyTextIsAListing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(productCols)
	productRow(rows, "w1", "Rolex", "Submariner", 12500)
	mock.ExpectQuery("SELECT (.+) FROM watch_products").
		WithArgs(defaultPageSize, 0).
		WillReturnRows(rows)

	searcher := NewSearcher(nil, "watches", NewRepository(db), logger.NewNoOpLogger())
	products, err := searcher.Search(context.Background(), "   ", models.CatalogFilter{})
	require.NoError(t, err)
	require.Len(t, products, 1)
}

// ==========================
// Query builder
// ==========================

func TestBuildProductSearchQuery(t *testing.T) {
	query := buildProductSearchQuery("nautilus", models.CatalogFilter{
		Brand:    "Patek Philippe",
		PriceMin: 50000,
		PriceMax: 120000,
	})

	boolQuery := query["query"].(map[string]interface{})["bool"].(map[string]interface{})

	must := boolQuery["must"].([]interface{})
	require.Len(t, must, 1)
	multiMatch := must[0].(map[string]interface{})["multi_match"].(map[string]interface{})
	assert.Equal(t, "nautilus", multiMatch["query"])

	filters := boolQuery["filter"].([]interface{})
	require.Len(t, filters, 3)

	brandTerm := filters[1].(map[string]interface{})["term"].(map[string]interface{})
	assert.Equal(t, "Patek Philippe", brandTerm["brand.keyword"])

	priceRange := filters[2].(map[string]interface{})["range"].(map[string]interface{})["price"].(map[string]interface{})
	assert.Equal(t, 50000.0, priceRange["gte"])
	assert.Equal(t, 120000.0, priceRange["lte"])
}

func TestBuildProductSearchQuery_NoFilters(t *testing.T) {
	query := buildProductSearchQuery("diver", models.CatalogFilter{})

	boolQuery := query["query"].(map[string]interface{})["bool"].(map[string]interface{})
	filters := boolQuery["filter"].([]interface{})

	// only the availability filter remains
	require.Len(t, filters, 1)
	term := filters[0].(map[string]interface{})["term"].(map[string]interface{})
	assert.Equal(t, true, term["is_available"])
}

func TestParseProductHits_Malformed(t *testing.T) {
	_, err := parseProductHits(map[string]interface{}{"took": 3.0})
	require.Error(t, err)
}
