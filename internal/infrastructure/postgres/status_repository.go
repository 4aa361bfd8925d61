package postgres

import (
	"context"

	"github.com/jhoicas/purchases-api/internal/domain/entity"
	"github.com/jhoicas/purchases-api/internal/domain/repository"
)

var _ repository.StatusRepository = (*StatusRepo)(nil)

// StatusRepo lee purchase_statuses. No inserta: la siembra está en Migrate.
type StatusRepo struct {
	q Querier
}

func NewStatusRepository(q Querier) *StatusRepo {
	return &StatusRepo{q: q}
}

func (r *StatusRepo) List(ctx context.Context) ([]entity.PurchaseStatusRecord, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name FROM purchase_statuses ORDER BY id`)
	if err != nil {
		return nil, wrap("list purchase statuses", err)
	}
	defer rows.Close()
	list := make([]entity.PurchaseStatusRecord, 0, 5)
	for rows.Next() {
		var (
			id   int16
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, wrap("scan purchase status", err)
		}
		list = append(list, entity.PurchaseStatusRecord{ID: entity.PurchaseStatus(id), Name: name})
	}
	return list, wrap("list purchase statuses", rows.Err())
}
