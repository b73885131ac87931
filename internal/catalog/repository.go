// Package catalog serves the public watch catalog: filtered listings,
// product detail, and free-text search.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/errors"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/models"
)

const defaultPageSize = 24

// Repository reads catalog products from Postgres.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const productColumns = `id, brand, model, reference, year, price, condition,
	       description, image_url, is_available, created_at, updated_at`

// List returns available products matching the filter, newest first.
func (r *Repository) List(ctx context.Context, filter models.CatalogFilter) ([]models.WatchProduct, error) {
	where := []string{"is_available = TRUE"}
	args := []interface{}{}

	if filter.Brand != "" {
		args = append(args, filter.Brand)
		where = append(where, fmt.Sprintf("LOWER(brand) = LOWER($%d)", len(args)))
	}
	if filter.PriceMin > 0 {
		args = append(args, filter.PriceMin)
		where = append(where, fmt.Sprintf("price >= $%d", len(args)))
	}
	if filter.PriceMax > 0 {
		args = append(args, filter.PriceMax)
		where = append(where, fmt.Sprintf("price <= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)

	query := fmt.Sprintf(`
		SELECT %s
		FROM watch_products
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		productColumns, strings.Join(where, " AND "), len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("catalog_list", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// GetByID returns a single product, available or not.
func (r *Repository) GetByID(ctx context.Context, id string) (*models.WatchProduct, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM watch_products
		WHERE id = $1`, productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewResourceNotFoundError("product", id)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("catalog_get", err)
	}
	return product, nil
}

// SearchLike is the fallback text search used when Elasticsearch is
// unreachable. It matches brand, model, and description.
func (r *Repository) SearchLike(ctx context.Context, text string, limit int) ([]models.WatchProduct, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}

	pattern := "%" + strings.TrimSpace(text) + "%"
	query := fmt.Sprintf(`
		SELECT %s
		FROM watch_products
		WHERE is_available = TRUE
		  AND (brand ILIKE $1 OR model ILIKE $1 OR description ILIKE $1)
		ORDER BY created_at DESC
		LIMIT $2`, productColumns)

	rows, err := r.db.QueryContext(ctx, query, pattern, limit)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("catalog_search_like", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// Brands lists the distinct brands with at least one available product.
func (r *Repository) Brands(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT brand
		FROM watch_products
		WHERE is_available = TRUE
		ORDER BY brand`)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("catalog_brands", err)
	}
	defer rows.Close()

	var brands []string
	for rows.Next() {
		var brand string
		if err := rows.Scan(&brand); err != nil {
			return nil, errors.NewQueryExecutionFailedError("catalog_brands", err)
		}
		brands = append(brands, brand)
	}
	return brands, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*models.WatchProduct, error) {
	var p models.WatchProduct
	var reference, description, imageURL sql.NullString
	var year sql.NullInt64
	var createdAt, updatedAt time.Time

	err := row.Scan(
		&p.ID, &p.Brand, &p.Model, &reference, &year, &p.Price, &p.Condition,
		&description, &imageURL, &p.IsAvailable, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Reference = reference.String
	p.Year = int(year.Int64)
	p.Description = description.String
	p.ImageURL = imageURL.String
	p.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	p.UpdatedAt = updatedAt.UTC().Format(time.RFC3339)

	return &p, nil
}

func scanProducts(rows *sql.Rows) ([]models.WatchProduct, error) {
	var products []models.WatchProduct
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, errors.NewQueryExecutionFailedError("catalog_scan", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("catalog_scan", err)
	}
	return products, nil
}
