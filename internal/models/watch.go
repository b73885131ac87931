// internal/models/watch.go
package models

type WatchProduct struct {
	ID          string  `json:"id"`
	Brand       string  `json:"brand"`
	Model       string  `json:"model"`
	Reference   string  `json:"reference,omitempty"`
	Year        int     `json:"year,omitempty"`
	Price       float64 `json:"price"`
	Condition   string  `json:"condition"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	IsAvailable bool    `json:"isAvailable"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

// CatalogFilter narrows a catalog listing. Zero values mean "no constraint".
type CatalogFilter struct {
	Brand    string  `json:"brand,omitempty"`
	PriceMin float64 `json:"priceMin,omitempty"`
	PriceMax float64 `json:"priceMax,omitempty"`
	Limit    int     `json:"limit,omitempty"`
	Offset   int     `json:"offset,omitempty"`
}
