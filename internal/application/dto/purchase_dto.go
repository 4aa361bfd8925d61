package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/purchases-api/internal/domain/entity"
)

// CreatePurchaseRequest body para POST /purchases.
// UserID solo lo respetan admin y vendedor; para los demás roles se toma del token.
type CreatePurchaseRequest struct {
	UserID      int64           `json:"user_id"`
	StoreID     int64           `json:"store_id"`
	ProductID   int64           `json:"product_id"`
	Quantity    int             `json:"quantity"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// SetStatusRequest body para PUT /purchases/:id/status.
type SetStatusRequest struct {
	StatusID int16 `json:"statusId"`
}

// PurchaseResponse compra en respuestas HTTP.
type PurchaseResponse struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	StoreID     int64           `json:"store_id"`
	ProductID   int64           `json:"product_id"`
	Quantity    int             `json:"quantity"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	StatusID    int16           `json:"status_id"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	ArchivedAt  *time.Time      `json:"archived_at,omitempty"`
}

// PurchaseStatusResponse fila del catálogo de estados.
type PurchaseStatusResponse struct {
	ID   int16  `json:"id"`
	Name string `json:"name"`
}

// PurchaseFromEntity mapea la entidad a la respuesta.
func PurchaseFromEntity(p *entity.Purchase) PurchaseResponse {
	return PurchaseResponse{
		ID:          p.ID,
		UserID:      p.UserID,
		StoreID:     p.StoreID,
		ProductID:   p.ProductID,
		Quantity:    p.Quantity,
		TotalAmount: p.TotalAmount,
		StatusID:    int16(p.Status),
		Status:      p.Status.String(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// PurchasesFromEntities mapea un listado; nunca devuelve nil para que el JSON sea [] y no null.
func PurchasesFromEntities(list []*entity.Purchase) []PurchaseResponse {
	out := make([]PurchaseResponse, 0, len(list))
	for _, p := range list {
		out = append(out, PurchaseFromEntity(p))
	}
	return out
}

func ArchivedFromEntities(list []*entity.ArchivedPurchase) []PurchaseResponse {
	out := make([]PurchaseResponse, 0, len(list))
	for _, a := range list {
		r := PurchaseFromEntity(&a.Purchase)
		at := a.ArchivedAt
		r.ArchivedAt = &at
		out = append(out, r)
	}
	return out
}

func StatusesFromEntities(list []entity.PurchaseStatusRecord) []PurchaseStatusResponse {
	out := make([]PurchaseStatusResponse, 0, len(list))
	for _, s := range list {
		out = append(out, PurchaseStatusResponse{ID: int16(s.ID), Name: s.Name})
	}
	return out
}
