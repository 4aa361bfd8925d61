package memory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/purchases-api/internal/domain"
	"github.com/jhoicas/purchases-api/internal/domain/entity"
	"github.com/jhoicas/purchases-api/internal/domain/repository"
)

var (
	_ repository.StockRepository    = (*StockRepo)(nil)
	_ repository.PurchaseRepository = (*PurchaseRepo)(nil)
	_ repository.ArchiveRepository  = (*ArchiveRepo)(nil)
	_ repository.StatusRepository   = (*StatusRepo)(nil)
)

// errNegativeStock equivale a la violación del CHECK (quantity >= 0) de PostgreSQL.
var errNegativeStock = errors.New("check constraint: quantity >= 0")

// do ejecuta fn en la tx del repositorio, o en una tx propia si el repositorio no está atado a ninguna.
func do(ctx context.Context, s *Store, t *tx, fn func(t *tx) error) error {
	if t != nil {
		return fn(t)
	}
	return s.inTx(ctx, fn)
}

// StockRepo implementación en memoria de StockRepository.
type StockRepo struct {
	s *Store
	t *tx
}

func (r *StockRepo) GetQuantity(ctx context.Context, productID, storeID int64) (int, error) {
	var qty int
	err := do(ctx, r.s, r.t, func(t *tx) error {
		e, ok := t.readStock(entity.StockKey{ProductID: productID, StoreID: storeID})
		if !ok {
			return domain.ErrNotFound
		}
		qty = e.Quantity
		return nil
	})
	return qty, err
}

func (r *StockRepo) SetQuantity(ctx context.Context, productID, storeID int64, quantity int) (*entity.StockEntry, error) {
	if quantity < 0 {
		return nil, errNegativeStock
	}
	k := entity.StockKey{ProductID: productID, StoreID: storeID}
	var out entity.StockEntry
	err := do(ctx, r.s, r.t, func(t *tx) error {
		if err := t.lockStock(ctx, k); err != nil {
			return err
		}
		out = entity.StockEntry{ProductID: productID, StoreID: storeID, Quantity: quantity, UpdatedAt: time.Now().UTC()}
		t.stock[k] = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *StockRepo) GetForUpdate(ctx context.Context, productID, storeID int64) (*entity.StockEntry, error) {
	k := entity.StockKey{ProductID: productID, StoreID: storeID}
	var out entity.StockEntry
	err := do(ctx, r.s, r.t, func(t *tx) error {
		if err := t.lockStock(ctx, k); err != nil {
			return err
		}
		e, ok := t.readStock(k)
		if !ok {
			return domain.ErrNotFound
		}
		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *StockRepo) Decrement(ctx context.Context, productID, storeID int64, amount int) error {
	return r.add(ctx, productID, storeID, -amount)
}

func (r *StockRepo) Increment(ctx context.Context, productID, storeID int64, amount int) error {
	return r.add(ctx, productID, storeID, amount)
}

func (r *StockRepo) add(ctx context.Context, productID, storeID int64, delta int) error {
	k := entity.StockKey{ProductID: productID, StoreID: storeID}
	return do(ctx, r.s, r.t, func(t *tx) error {
		if err := t.lockStock(ctx, k); err != nil {
			return err
		}
		e, ok := t.readStock(k)
		if !ok {
			return domain.ErrNotFound
		}
		if e.Quantity+delta < 0 {
			return errNegativeStock
		}
		e.Quantity += delta
		e.UpdatedAt = time.Now().UTC()
		t.stock[k] = e
		return nil
	})
}

// PurchaseRepo implementación en memoria de PurchaseRepository.
type PurchaseRepo struct {
	s *Store
	t *tx
}

func (r *PurchaseRepo) Create(ctx context.Context, p *entity.Purchase) error {
	return do(ctx, r.s, r.t, func(t *tx) error {
		p.ID = t.nextPurchaseID()
		now := time.Now().UTC()
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = p.CreatedAt
		}
		t.purchases[p.ID] = *p
		return nil
	})
}

func (r *PurchaseRepo) GetByID(ctx context.Context, id int64) (*entity.Purchase, error) {
	var out entity.Purchase
	err := do(ctx, r.s, r.t, func(t *tx) error {
		p, ok := t.readPurchase(id)
		if !ok {
			return domain.ErrNotFound
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *PurchaseRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Purchase, error) {
	var out entity.Purchase
	err := do(ctx, r.s, r.t, func(t *tx) error {
		if err := t.lockOrder(ctx, id); err != nil {
			return err
		}
		p, ok := t.readPurchase(id)
		if !ok {
			return domain.ErrNotFound
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *PurchaseRepo) List(ctx context.Context) ([]*entity.Purchase, error) {
	var out []*entity.Purchase
	err := do(ctx, r.s, r.t, func(t *tx) error {
		out = t.listPurchases()
		return nil
	})
	return out, err
}

func (r *PurchaseRepo) UpdateStatus(ctx context.Context, id int64, status entity.PurchaseStatus, at time.Time) (*entity.Purchase, error) {
	var out entity.Purchase
	err := do(ctx, r.s, r.t, func(t *tx) error {
		if err := t.lockOrder(ctx, id); err != nil {
			return err
		}
		p, ok := t.readPurchase(id)
		if !ok {
			return domain.ErrNotFound
		}
		p.Status = status
		p.UpdatedAt = at
		t.purchases[id] = p
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *PurchaseRepo) Delete(ctx context.Context, id int64) error {
	return do(ctx, r.s, r.t, func(t *tx) error {
		if err := t.lockOrder(ctx, id); err != nil {
			return err
		}
		if _, ok := t.readPurchase(id); !ok {
			return domain.ErrNotFound
		}
		delete(t.purchases, id)
		t.deleted[id] = true
		return nil
	})
}

// ArchiveRepo implementación en memoria de ArchiveRepository.
type ArchiveRepo struct {
	s *Store
	t *tx
}

func (r *ArchiveRepo) Create(ctx context.Context, a *entity.ArchivedPurchase) error {
	return do(ctx, r.s, r.t, func(t *tx) error {
		if _, exists := t.readArchived(a.ID); exists {
			return fmt.Errorf("compra %d ya archivada: %w", a.ID, domain.ErrConflict)
		}
		t.archived[a.ID] = *a
		return nil
	})
}

func (r *ArchiveRepo) GetByID(ctx context.Context, id int64) (*entity.ArchivedPurchase, error) {
	var out entity.ArchivedPurchase
	err := do(ctx, r.s, r.t, func(t *tx) error {
		a, ok := t.readArchived(id)
		if !ok {
			return domain.ErrNotFound
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ArchiveRepo) List(ctx context.Context) ([]*entity.ArchivedPurchase, error) {
	var out []*entity.ArchivedPurchase
	err := do(ctx, r.s, r.t, func(t *tx) error {
		out = t.listArchived()
		return nil
	})
	return out, err
}

// StatusRepo devuelve el catálogo sembrado en NewStore.
type StatusRepo struct {
	s *Store
}

func (r *StatusRepo) List(_ context.Context) ([]entity.PurchaseStatusRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]entity.PurchaseStatusRecord, len(r.s.statuses))
	copy(out, r.s.statuses)
	return out, nil
}
