package dto

import "time"

// SetStockRequest body para PUT /stock (upsert).
type SetStockRequest struct {
	ProductID int64 `json:"product_id"`
	StoreID   int64 `json:"store_id"`
	Quantity  int   `json:"quantity"`
}

// StockResponse cantidad disponible de un producto en una tienda.
type StockResponse struct {
	ProductID int64      `json:"product_id"`
	StoreID   int64      `json:"store_id"`
	Quantity  int        `json:"quantity"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}
