package repository

import (
	"context"

	"github.com/jhoicas/purchases-api/internal/domain/entity"
)

// StockRepository define el puerto del libro de stock por producto+tienda.
// GetForUpdate, Decrement e Increment solo son válidos dentro de una transacción (TxRunner).
type StockRepository interface {
	// GetQuantity devuelve la cantidad actual o domain.ErrNotFound si el par nunca se inicializó.
	GetQuantity(ctx context.Context, productID, storeID int64) (int, error)
	// SetQuantity crea la fila si no existe o sobrescribe la cantidad (upsert idempotente).
	SetQuantity(ctx context.Context, productID, storeID int64, quantity int) (*entity.StockEntry, error)
	// GetForUpdate bloquea la fila en exclusiva hasta el commit/rollback (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, productID, storeID int64) (*entity.StockEntry, error)
	// Decrement resta amount de la fila bloqueada.
	Decrement(ctx context.Context, productID, storeID int64, amount int) error
	// Increment suma amount a la fila bloqueada (política de reposición).
	Increment(ctx context.Context, productID, storeID int64, amount int) error
}
