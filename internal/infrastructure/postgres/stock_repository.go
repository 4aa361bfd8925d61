package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/purchases-api/internal/domain"
	"github.com/jhoicas/purchases-api/internal/domain/entity"
	"github.com/jhoicas/purchases-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// GetQuantity obtiene la cantidad actual de un producto en una tienda.
func (r *StockRepo) GetQuantity(ctx context.Context, productID, storeID int64) (int, error) {
	query := `SELECT quantity FROM product_stocks WHERE product_id = $1 AND store_id = $2`
	var qty int
	err := r.q.QueryRow(ctx, query, productID, storeID).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, wrap("get stock", err)
	}
	return qty, nil
}

// SetQuantity inserta o sobrescribe la cantidad (por producto y tienda).
func (r *StockRepo) SetQuantity(ctx context.Context, productID, storeID int64, quantity int) (*entity.StockEntry, error) {
	query := `
		INSERT INTO product_stocks (product_id, store_id, quantity, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (product_id, store_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()
		RETURNING product_id, store_id, quantity, updated_at`
	var e entity.StockEntry
	err := r.q.QueryRow(ctx, query, productID, storeID, quantity).Scan(
		&e.ProductID, &e.StoreID, &e.Quantity, &e.UpdatedAt,
	)
	if err != nil {
		return nil, wrap("upsert stock", err)
	}
	return &e, nil
}

// GetForUpdate obtiene el stock y bloquea la fila para update (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, productID, storeID int64) (*entity.StockEntry, error) {
	query := `
		SELECT product_id, store_id, quantity, updated_at
		FROM product_stocks WHERE product_id = $1 AND store_id = $2
		FOR UPDATE`
	var e entity.StockEntry
	err := r.q.QueryRow(ctx, query, productID, storeID).Scan(
		&e.ProductID, &e.StoreID, &e.Quantity, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, wrap("get stock for update", err)
	}
	return &e, nil
}

// Decrement resta amount. El CHECK (quantity >= 0) de la tabla rechaza cualquier sobreventa.
func (r *StockRepo) Decrement(ctx context.Context, productID, storeID int64, amount int) error {
	return r.add(ctx, "decrement stock", productID, storeID, -amount)
}

// Increment suma amount (reposición al cancelar).
func (r *StockRepo) Increment(ctx context.Context, productID, storeID int64, amount int) error {
	return r.add(ctx, "increment stock", productID, storeID, amount)
}

func (r *StockRepo) add(ctx context.Context, op string, productID, storeID int64, delta int) error {
	query := `
		UPDATE product_stocks SET quantity = quantity + $3, updated_at = now()
		WHERE product_id = $1 AND store_id = $2`
	tag, err := r.q.Exec(ctx, query, productID, storeID, delta)
	if err != nil {
		return wrap(op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}
