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

var _ repository.ArchiveRepository = (*ArchiveRepo)(nil)

const archivedColumns = purchaseColumns + `, archived_at`

// ArchiveRepo implementación de ArchiveRepository sobre PostgreSQL.
type ArchiveRepo struct {
	q Querier
}

func NewArchiveRepository(q Querier) *ArchiveRepo {
	return &ArchiveRepo{q: q}
}

func (r *ArchiveRepo) Create(ctx context.Context, a *entity.ArchivedPurchase) error {
	query := `
		INSERT INTO archived_purchases (` + archivedColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.UserID, a.StoreID, a.ProductID, a.Quantity, a.TotalAmount,
		int16(a.Status), a.CreatedAt, a.UpdatedAt, a.ArchivedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("compra %d ya archivada: %w", a.ID, domain.ErrConflict)
		}
		return wrap("archive purchase", err)
	}
	return nil
}

func (r *ArchiveRepo) GetByID(ctx context.Context, id int64) (*entity.ArchivedPurchase, error) {
	query := `SELECT ` + archivedColumns + ` FROM archived_purchases WHERE id = $1`
	a, err := scanArchived(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, wrap("get archived purchase", err)
	}
	return a, nil
}

func (r *ArchiveRepo) List(ctx context.Context) ([]*entity.ArchivedPurchase, error) {
	query := `SELECT ` + archivedColumns + ` FROM archived_purchases ORDER BY archived_at DESC, id DESC`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, wrap("list archived purchases", err)
	}
	defer rows.Close()
	list := make([]*entity.ArchivedPurchase, 0)
	for rows.Next() {
		a, err := scanArchived(rows)
		if err != nil {
			return nil, wrap("scan archived purchase", err)
		}
		list = append(list, a)
	}
	return list, wrap("list archived purchases", rows.Err())
}

func scanArchived(row pgx.Row) (*entity.ArchivedPurchase, error) {
	var (
		a      entity.ArchivedPurchase
		status int16
	)
	err := row.Scan(
		&a.ID, &a.UserID, &a.StoreID, &a.ProductID, &a.Quantity,
		&a.TotalAmount, &status, &a.CreatedAt, &a.UpdatedAt, &a.ArchivedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Status = entity.PurchaseStatus(status)
	return &a, nil
}
