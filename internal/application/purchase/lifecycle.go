package purchase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/purchases-api/internal/domain"
	"github.com/jhoicas/purchases-api/internal/domain/entity"
	policy "github.com/jhoicas/purchases-api/internal/domain/purchase"
	"github.com/jhoicas/purchases-api/internal/domain/repository"
	"github.com/jhoicas/purchases-api/pkg/logger"
)

// LifecycleUseCase gestiona los estados de una compra ya creada, su archivado y las lecturas.
type LifecycleUseCase struct {
	txRunner    TxRunner
	purchases   repository.PurchaseRepository
	archive     repository.ArchiveRepository
	statuses    repository.StatusRepository
	transitions policy.TransitionPolicy
	restock     policy.RestockPolicy
	cache       PurchaseCache
	events      EventPublisher
	log         *logger.Logger
	now         func() time.Time
}

// NewLifecycleUseCase crea el caso de uso en modo estricto y sin reposición de stock.
func NewLifecycleUseCase(
	txRunner TxRunner,
	purchases repository.PurchaseRepository,
	archive repository.ArchiveRepository,
	statuses repository.StatusRepository,
	log *logger.Logger,
) *LifecycleUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &LifecycleUseCase{
		txRunner:    txRunner,
		purchases:   purchases,
		archive:     archive,
		statuses:    statuses,
		transitions: policy.CanTransition,
		restock:     policy.NoRestock,
		log:         log.Named("purchase_lifecycle"),
		now:         time.Now,
	}
}

// WithPolicies reemplaza las políticas de transición y reposición. Un nil conserva la actual.
func (uc *LifecycleUseCase) WithPolicies(t policy.TransitionPolicy, r policy.RestockPolicy) *LifecycleUseCase {
	if t != nil {
		uc.transitions = t
	}
	if r != nil {
		uc.restock = r
	}
	return uc
}

// WithCache habilita la caché de lectura por ID.
func (uc *LifecycleUseCase) WithCache(c PurchaseCache) *LifecycleUseCase {
	uc.cache = c
	return uc
}

// WithEvents habilita la publicación de eventos de estado y archivado.
func (uc *LifecycleUseCase) WithEvents(p EventPublisher) *LifecycleUseCase {
	uc.events = p
	return uc
}

// WithClock reemplaza el reloj (tests).
func (uc *LifecycleUseCase) WithClock(now func() time.Time) *LifecycleUseCase {
	uc.now = now
	return uc
}

// SetStatus cambia el estado de la compra bloqueando su fila.
// No toca el stock salvo que la política de reposición devuelva unidades.
func (uc *LifecycleUseCase) SetStatus(ctx context.Context, id int64, status entity.PurchaseStatus) (*entity.Purchase, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("estado %d desconocido: %w", status, domain.ErrInvalidInput)
	}
	if id <= 0 {
		return nil, fmt.Errorf("id de compra inválido: %w", domain.ErrInvalidInput)
	}

	ctx, span := tracer.Start(ctx, "purchase.set_status", trace.WithAttributes(
		attribute.Int64("purchase.id", id),
		attribute.String("purchase.status", status.String()),
	))
	defer span.End()

	now := uc.now().UTC()
	var (
		updated *entity.Purchase
		prev    entity.PurchaseStatus
	)
	err := uc.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		purchaseRepo repository.PurchaseRepository,
		_ repository.ArchiveRepository,
	) error {
		current, err := purchaseRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !uc.transitions(current.Status, status) {
			return fmt.Errorf("%s -> %s: %w", current.Status, status, domain.ErrInvalidTransition)
		}
		prev = current.Status

		if n := uc.restock(*current, status); n > 0 {
			if err := stockRepo.Increment(ctx, current.ProductID, current.StoreID, n); err != nil {
				return err
			}
		}

		updated, err = purchaseRepo.UpdateStatus(ctx, id, status, now)
		return err
	})
	if err != nil {
		err = domain.Persistence("cambiar estado de compra", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if uc.cache != nil {
		uc.cache.Store(ctx, updated)
	}
	publish(ctx, uc.events, uc.log, Event{
		Type:       EventPurchaseStatusChanged,
		Purchase:   *updated,
		PrevStatus: prev,
		OccurredAt: now,
	})
	return updated, nil
}

// Archive mueve la compra al almacén histórico: inserta la copia y borra la fila viva en una sola transacción.
func (uc *LifecycleUseCase) Archive(ctx context.Context, id int64) (*entity.ArchivedPurchase, error) {
	if id <= 0 {
		return nil, fmt.Errorf("id de compra inválido: %w", domain.ErrInvalidInput)
	}

	ctx, span := tracer.Start(ctx, "purchase.archive", trace.WithAttributes(attribute.Int64("purchase.id", id)))
	defer span.End()

	now := uc.now().UTC()
	var archived entity.ArchivedPurchase
	err := uc.txRunner.Run(ctx, func(
		_ repository.StockRepository,
		purchaseRepo repository.PurchaseRepository,
		archiveRepo repository.ArchiveRepository,
	) error {
		current, err := purchaseRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		archived = current.Archive(now)
		if err := archiveRepo.Create(ctx, &archived); err != nil {
			return err
		}
		return purchaseRepo.Delete(ctx, id)
	})
	if err != nil {
		err = domain.Persistence("archivar compra", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if uc.cache != nil {
		uc.cache.Tombstone(ctx, id)
	}
	publish(ctx, uc.events, uc.log, Event{
		Type:       EventPurchaseArchived,
		Purchase:   archived.Purchase,
		PrevStatus: archived.Status,
		OccurredAt: now,
	})
	return &archived, nil
}

// Get devuelve una compra viva. Lee primero la caché si está configurada.
// El relleno tras leer la BD no pisa una versión más nueva ni una marca de archivada
// escritas por un SetStatus o Archive que confirmó entre la lectura y el relleno.
func (uc *LifecycleUseCase) Get(ctx context.Context, id int64) (*entity.Purchase, error) {
	if uc.cache != nil {
		if p, ok := uc.cache.Get(ctx, id); ok {
			if p == nil {
				return nil, fmt.Errorf("compra %d archivada: %w", id, domain.ErrNotFound)
			}
			return p, nil
		}
	}
	p, err := uc.purchases.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("obtener compra", err)
	}
	if uc.cache != nil {
		uc.cache.Fill(ctx, p)
	}
	return p, nil
}

// List devuelve las compras vivas, la más reciente primero.
func (uc *LifecycleUseCase) List(ctx context.Context) ([]*entity.Purchase, error) {
	list, err := uc.purchases.List(ctx)
	if err != nil {
		return nil, domain.Persistence("listar compras", err)
	}
	return list, nil
}

func (uc *LifecycleUseCase) ListArchived(ctx context.Context) ([]*entity.ArchivedPurchase, error) {
	list, err := uc.archive.List(ctx)
	if err != nil {
		return nil, domain.Persistence("listar compras archivadas", err)
	}
	return list, nil
}

func (uc *LifecycleUseCase) GetArchived(ctx context.Context, id int64) (*entity.ArchivedPurchase, error) {
	a, err := uc.archive.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("obtener compra archivada", err)
	}
	return a, nil
}

// ListStatuses devuelve el catálogo de estados. Lectura pura: la siembra ocurre al arrancar.
func (uc *LifecycleUseCase) ListStatuses(ctx context.Context) ([]entity.PurchaseStatusRecord, error) {
	list, err := uc.statuses.List(ctx)
	if err != nil {
		return nil, domain.Persistence("listar estados", err)
	}
	return list, nil
}

// Find busca la compra viva y, si no existe, la archivada. archivedAt es nil para compras vivas.
func (uc *LifecycleUseCase) Find(ctx context.Context, id int64) (p *entity.Purchase, archivedAt *time.Time, err error) {
	p, err = uc.Get(ctx, id)
	if err == nil {
		return p, nil, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, nil, err
	}
	a, err := uc.GetArchived(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	at := a.ArchivedAt
	return &a.Purchase, &at, nil
}
