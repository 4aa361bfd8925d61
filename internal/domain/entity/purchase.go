package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase es un pedido colocado por un cliente contra una fila de stock (producto, tienda).
// TotalAmount lo calcula el caller (cantidad × precio unitario); aquí no se recalcula.
type Purchase struct {
	ID          int64
	UserID      int64
	StoreID     int64
	ProductID   int64
	Quantity    int
	TotalAmount decimal.Decimal
	Status      PurchaseStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StockKey devuelve la fila de stock que la compra debitó al crearse.
func (p Purchase) StockKey() StockKey {
	return StockKey{ProductID: p.ProductID, StoreID: p.StoreID}
}

// ArchivedPurchase es la copia inmutable de una compra retirada del conjunto vivo.
type ArchivedPurchase struct {
	Purchase
	ArchivedAt time.Time
}

// Archive construye la copia archivada con la marca de tiempo dada.
func (p Purchase) Archive(at time.Time) ArchivedPurchase {
	return ArchivedPurchase{Purchase: p, ArchivedAt: at}
}
