package entity

import "time"

// StockKey identifica una fila del libro de stock: un producto en una tienda.
type StockKey struct {
	ProductID int64
	StoreID   int64
}

// StockEntry representa la cantidad disponible de un producto en una tienda.
// La cantidad nunca es negativa (CHECK en la tabla y validación en los adaptadores).
type StockEntry struct {
	ProductID int64
	StoreID   int64
	Quantity  int
	UpdatedAt time.Time
}

// Key devuelve la clave (producto, tienda) de la fila.
func (s StockEntry) Key() StockKey {
	return StockKey{ProductID: s.ProductID, StoreID: s.StoreID}
}
