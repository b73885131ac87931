package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "github.com/Antoniofe-cpu/tempus-concierge/internal/common/errors"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/models"
)

var productCols = []string{
	"id", "brand", "model", "reference", "year", "price", "condition",
	"description", "image_url", "is_available", "created_at", "updated_at",
}

func productRow(rows *sqlmock.Rows, id, brand, model string, price float64) *sqlmock.Rows {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	return rows.AddRow(id, brand, model, "REF-"+id, 2022, price, "Excellent",
		"A fine watch", "https://img.example.com/"+id, true, now, now)
}

// ==========================
// List
// ==========================

func TestRepository_List_NoFilter(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(productCols)
	productRow(rows, "w1", "Rolex", "Submariner", 12500)
	productRow(rows, "w2", "Omega", "Speedmaster", 6800)

	mock.ExpectQuery("SELECT (.+) FROM watch_products").
		WithArgs(defaultPageSize, 0).
		WillReturnRows(rows)

	repo := NewRepository(db)
	products, err := repo.List(context.Background(), models.CatalogFilter{})
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "Rolex", products[0].Brand)
	assert.Equal(t, "Submariner", products[0].Model)
	assert.Equal(t, 12500.0, products[0].Price)
	assert.True(t, products[0].IsAvailable)
	assert.Equal(t, "2026-05-10T12:00:00Z", products[0].CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_List_BrandAndPriceFilter(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(productCols)
	productRow(rows, "w1", "Rolex", "Datejust", 9500)

	mock.ExpectQuery("SELECT (.+) FROM watch_products").
		WithArgs("Rolex", 5000.0, 15000.0, 10, 0).
		WillReturnRows(rows)

	repo := NewRepository(db)
	products, err := repo.List(context.Background(), models.CatalogFilter{
		Brand:    "Rolex",
		PriceMin: 5000,
		PriceMax: 15000,
		Limit:    10,
	})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Datejust", products[0].Model)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_List_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM watch_products").
		WillReturnError(assert.AnError)

	repo := NewRepository(db)
	_, err = repo.List(context.Background(), models.CatalogFilter{})
	require.Error(t, err)

	stdErr, ok := err.(*commonerrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeQueryExecutionFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

// ==========================
// GetByID
// ==========================

func TestRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(productCols)
	productRow(rows, "w1", "Patek Philippe", "Nautilus", 85000)

	mock.ExpectQuery("SELECT (.+) FROM watch_products").
		WithArgs("w1").
		WillReturnRows(rows)

	repo := NewRepository(db)
	product, err := repo.GetByID(context.Background(), "w1")
	require.NoError(t, err)
	assert.Equal(t, "Patek Philippe", product.Brand)
	assert.Equal(t, 2022, product.Year)
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM watch_products").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(productCols))

	repo := NewRepository(db)
	_, err = repo.GetByID(context.Background(), "missing")
	require.Error(t, err)

	stdErr, ok := err.(*commonerrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeResourceNotFound, stdErr.Code)
	assert.False(t, stdErr.Retryable)
}

// ==========================
// SearchLike / Brands
// ==========================

func TestRepository_SearchLike(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(productCols)
	productRow(rows, "w1", "Omega", "Seamaster", 5200)

	mock.ExpectQuery("SELECT (.+) FROM watch_products").
		WithArgs("%seamaster%", defaultPageSize).
		WillReturnRows(rows)

	repo := NewRepository(db)
	products, err := repo.SearchLike(context.Background(), "seamaster", 0)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Seamaster", products[0].Model)
}

func TestRepository_Brands(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"brand"}).
		AddRow("Audemars Piguet").
		AddRow("Omega").
		AddRow("Rolex")

	mock.ExpectQuery("SELECT DISTINCT brand").
		WillReturnRows(rows)

	repo := NewRepository(db)
	brands, err := repo.Brands(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Audemars Piguet", "Omega", "Rolex"}, brands)
}
