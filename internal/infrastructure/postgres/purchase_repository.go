package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/purchases-api/internal/domain"
	"github.com/jhoicas/purchases-api/internal/domain/entity"
	"github.com/jhoicas/purchases-api/internal/domain/repository"
)

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

const purchaseColumns = `id, user_id, store_id, product_id, quantity, total_amount, status_id, created_at, updated_at`

// PurchaseRepo implementación de PurchaseRepository sobre PostgreSQL.
type PurchaseRepo struct {
	q Querier
}

// NewPurchaseRepository construye el adaptador. Acepta pool o tx (Querier).
func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

func (r *PurchaseRepo) Create(ctx context.Context, p *entity.Purchase) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	query := `
		INSERT INTO purchases (user_id, store_id, product_id, quantity, total_amount, status_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		p.UserID, p.StoreID, p.ProductID, p.Quantity, p.TotalAmount, int16(p.Status), p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return wrap("create purchase", err)
	}
	return nil
}

func (r *PurchaseRepo) GetByID(ctx context.Context, id int64) (*entity.Purchase, error) {
	return r.getOne(ctx, "get purchase", `SELECT `+purchaseColumns+` FROM purchases WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila de la compra hasta el fin de la transacción.
func (r *PurchaseRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Purchase, error) {
	return r.getOne(ctx, "get purchase for update", `SELECT `+purchaseColumns+` FROM purchases WHERE id = $1 FOR UPDATE`, id)
}

func (r *PurchaseRepo) getOne(ctx context.Context, op, query string, id int64) (*entity.Purchase, error) {
	p, err := scanPurchase(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, wrap(op, err)
	}
	return p, nil
}

func (r *PurchaseRepo) List(ctx context.Context) ([]*entity.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases ORDER BY created_at DESC, id DESC`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, wrap("list purchases", err)
	}
	defer rows.Close()
	list := make([]*entity.Purchase, 0)
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, wrap("scan purchase", err)
		}
		list = append(list, p)
	}
	return list, wrap("list purchases", rows.Err())
}

func (r *PurchaseRepo) UpdateStatus(ctx context.Context, id int64, status entity.PurchaseStatus, at time.Time) (*entity.Purchase, error) {
	query := `
		UPDATE purchases SET status_id = $2, updated_at = $3
		WHERE id = $1
		RETURNING ` + purchaseColumns
	p, err := scanPurchase(r.q.QueryRow(ctx, query, id, int16(status), at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, wrap("update purchase status", err)
	}
	return p, nil
}

func (r *PurchaseRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM purchases WHERE id = $1`, id)
	if err != nil {
		return wrap("delete purchase", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete purchase %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanPurchase(row pgx.Row) (*entity.Purchase, error) {
	var (
		p      entity.Purchase
		status int16
	)
	err := row.Scan(
		&p.ID, &p.UserID, &p.StoreID, &p.ProductID, &p.Quantity,
		&p.TotalAmount, &status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Status = entity.PurchaseStatus(status)
	return &p, nil
}
