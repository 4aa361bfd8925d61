package repository

import (
	"context"
	"time"

	"github.com/jhoicas/purchases-api/internal/domain/entity"
)

// PurchaseRepository define el puerto de persistencia para compras vivas.
type PurchaseRepository interface {
	// Create inserta la compra y completa ID, CreatedAt y UpdatedAt.
	Create(ctx context.Context, purchase *entity.Purchase) error
	GetByID(ctx context.Context, id int64) (*entity.Purchase, error)
	// GetForUpdate bloquea la fila de la compra (transiciones de estado y archivado).
	GetForUpdate(ctx context.Context, id int64) (*entity.Purchase, error)
	// List devuelve todas las compras vivas, la más reciente primero.
	List(ctx context.Context) ([]*entity.Purchase, error)
	UpdateStatus(ctx context.Context, id int64, status entity.PurchaseStatus, at time.Time) (*entity.Purchase, error)
	Delete(ctx context.Context, id int64) error
}

// ArchiveRepository define el puerto del almacén histórico (solo inserción y lectura).
type ArchiveRepository interface {
	Create(ctx context.Context, archived *entity.ArchivedPurchase) error
	GetByID(ctx context.Context, id int64) (*entity.ArchivedPurchase, error)
	List(ctx context.Context) ([]*entity.ArchivedPurchase, error)
}

// StatusRepository lee el catálogo de estados. La siembra se hace en la migración de arranque.
type StatusRepository interface {
	List(ctx context.Context) ([]entity.PurchaseStatusRecord, error)
}
