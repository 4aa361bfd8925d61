package purchase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/purchases-api/internal/domain"
	"github.com/jhoicas/purchases-api/internal/domain/entity"
	"github.com/jhoicas/purchases-api/internal/domain/repository"
	"github.com/jhoicas/purchases-api/pkg/logger"
)

var tracer = otel.Tracer("github.com/jhoicas/purchases-api/internal/application/purchase")

// PlaceOrderInput entrada del coordinador de reservas.
type PlaceOrderInput struct {
	UserID         int64
	StoreID        int64
	ProductID      int64
	Quantity       int
	TotalAmount    decimal.Decimal
	IdempotencyKey string
}

func (in PlaceOrderInput) validate() error {
	if in.Quantity <= 0 {
		return fmt.Errorf("cantidad debe ser positiva: %w", domain.ErrInvalidInput)
	}
	if in.UserID <= 0 || in.StoreID <= 0 || in.ProductID <= 0 {
		return fmt.Errorf("user_id, store_id y product_id son obligatorios: %w", domain.ErrInvalidInput)
	}
	if in.TotalAmount.IsNegative() {
		return fmt.Errorf("total_amount negativo: %w", domain.ErrInvalidInput)
	}
	return nil
}

// Fingerprint identifica el contenido de la petición para detectar una clave reutilizada.
func (in PlaceOrderInput) Fingerprint() string {
	return fmt.Sprintf("p%d:s%d:q%d:t%s", in.ProductID, in.StoreID, in.Quantity, in.TotalAmount.String())
}

// PlaceOrderResult compra creada (o recuperada si Replayed).
// ArchivedAt solo se llena cuando el reintento encuentra la compra ya archivada.
type PlaceOrderResult struct {
	Purchase   *entity.Purchase
	Replayed   bool
	ArchivedAt *time.Time
}

// PlaceOrderUseCase es el coordinador de reservas: bloquea la fila de stock (SELECT FOR UPDATE),
// valida disponibilidad, inserta la compra y descuenta el stock en una sola transacción.
type PlaceOrderUseCase struct {
	txRunner    TxRunner
	events      EventPublisher
	idempotency IdempotencyStore
	log         *logger.Logger
	now         func() time.Time
}

// NewPlaceOrderUseCase construye el caso de uso.
func NewPlaceOrderUseCase(txRunner TxRunner, log *logger.Logger) *PlaceOrderUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &PlaceOrderUseCase{
		txRunner: txRunner,
		log:      log.Named("place_order"),
		now:      time.Now,
	}
}

// WithEvents habilita la publicación de purchase.created después del commit.
func (uc *PlaceOrderUseCase) WithEvents(p EventPublisher) *PlaceOrderUseCase {
	uc.events = p
	return uc
}

// WithIdempotency habilita la deduplicación por Idempotency-Key.
func (uc *PlaceOrderUseCase) WithIdempotency(s IdempotencyStore) *PlaceOrderUseCase {
	uc.idempotency = s
	return uc
}

// WithClock reemplaza el reloj (tests).
func (uc *PlaceOrderUseCase) WithClock(now func() time.Time) *PlaceOrderUseCase {
	uc.now = now
	return uc
}

// PlaceOrder coloca una compra.
//
// Retorna:
//   - domain.ErrInvalidInput       cantidad <= 0 o IDs faltantes (antes de abrir la transacción).
//   - domain.ErrOutOfStock         no existe fila de stock para (producto, tienda).
//   - *domain.InsufficientStockError  la fila existe pero no alcanza; trae la cantidad disponible.
//   - domain.ErrRequestInProgress  la misma Idempotency-Key del usuario sigue en curso.
//   - domain.ErrIdempotencyKeyReused  la clave ya se usó con otro producto, tienda, cantidad o monto.
//   - domain.ErrTransientStore     timeout de lock o conexión; seguro reintentar.
//   - domain.ErrPersistence        cualquier otro fallo; la transacción se revirtió completa.
func (uc *PlaceOrderUseCase) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*PlaceOrderResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "purchase.place_order", trace.WithAttributes(
		attribute.Int64("purchase.product_id", in.ProductID),
		attribute.Int64("purchase.store_id", in.StoreID),
		attribute.Int("purchase.quantity", in.Quantity),
	))
	defer span.End()

	idem := in.IdempotencyKey != "" && uc.idempotency != nil
	key := IdempotencyKey{UserID: in.UserID, Key: in.IdempotencyKey}
	fp := in.Fingerprint()
	if idem {
		prev, reserved, err := uc.idempotency.Reserve(ctx, key, fp)
		switch {
		case err != nil:
			// Sin Redis se sigue sin deduplicar: la BD sigue garantizando el invariante de stock.
			uc.log.Ctx(ctx).Warn().Err(err).Str("idempotency_key", key.Key).Msg("no se pudo reservar la clave de idempotencia")
			idem = false
		case reserved:
		case prev.Fingerprint != fp:
			return nil, fmt.Errorf("idempotency key %q: %w", key.Key, domain.ErrIdempotencyKeyReused)
		case prev.PurchaseID == 0:
			return nil, fmt.Errorf("idempotency key %q: %w", key.Key, domain.ErrRequestInProgress)
		default:
			span.SetAttributes(attribute.Bool("purchase.replayed", true))
			return uc.replay(ctx, prev.PurchaseID)
		}
	}

	p, err := uc.reserve(ctx, in)
	if err != nil {
		if idem {
			if relErr := uc.idempotency.Release(ctx, key); relErr != nil {
				uc.log.Ctx(ctx).Warn().Err(relErr).Str("idempotency_key", key.Key).Msg("no se pudo liberar la clave de idempotencia")
			}
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int64("purchase.id", p.ID))

	if idem {
		if err := uc.idempotency.Complete(ctx, key, IdempotencyRecord{PurchaseID: p.ID, Fingerprint: fp}); err != nil {
			uc.log.Ctx(ctx).Warn().Err(err).Str("idempotency_key", key.Key).Int64("purchase_id", p.ID).Msg("no se pudo completar la clave de idempotencia")
		}
	}
	publish(ctx, uc.events, uc.log, Event{Type: EventPurchaseCreated, Purchase: *p, OccurredAt: p.CreatedAt})

	return &PlaceOrderResult{Purchase: p}, nil
}

// replay devuelve la compra de un reintento. Si ya se archivó, devuelve la copia archivada.
func (uc *PlaceOrderUseCase) replay(ctx context.Context, id int64) (*PlaceOrderResult, error) {
	res := &PlaceOrderResult{Replayed: true}
	err := uc.txRunner.Run(ctx, func(
		_ repository.StockRepository,
		purchaseRepo repository.PurchaseRepository,
		archiveRepo repository.ArchiveRepository,
	) error {
		p, err := purchaseRepo.GetByID(ctx, id)
		if err == nil {
			res.Purchase = p
			return nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		a, err := archiveRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		at := a.ArchivedAt
		res.Purchase, res.ArchivedAt = &a.Purchase, &at
		return nil
	})
	if err != nil {
		return nil, domain.Persistence("recuperar compra idempotente", err)
	}
	return res, nil
}

// reserve ejecuta la transacción de reserva.
func (uc *PlaceOrderUseCase) reserve(ctx context.Context, in PlaceOrderInput) (*entity.Purchase, error) {
	now := uc.now().UTC()
	var created *entity.Purchase

	err := uc.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		purchaseRepo repository.PurchaseRepository,
		_ repository.ArchiveRepository,
	) error {
		// Bloquea la fila de stock; las reservas concurrentes del mismo par esperan aquí
		stock, err := stockRepo.GetForUpdate(ctx, in.ProductID, in.StoreID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrOutOfStock
			}
			return err
		}
		if stock.Quantity < in.Quantity {
			return &domain.InsufficientStockError{
				ProductID: in.ProductID,
				StoreID:   in.StoreID,
				Requested: in.Quantity,
				Available: stock.Quantity,
			}
		}

		p := &entity.Purchase{
			UserID:      in.UserID,
			StoreID:     in.StoreID,
			ProductID:   in.ProductID,
			Quantity:    in.Quantity,
			TotalAmount: in.TotalAmount,
			Status:      entity.StatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := purchaseRepo.Create(ctx, p); err != nil {
			return err
		}
		if err := stockRepo.Decrement(ctx, in.ProductID, in.StoreID, in.Quantity); err != nil {
			return err
		}
		created = p
		return nil
	})
	if err != nil {
		return nil, domain.Persistence("reservar stock", err)
	}
	return created, nil
}

func publish(ctx context.Context, pub EventPublisher, log *logger.Logger, ev Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, ev); err != nil {
		log.Ctx(ctx).Warn().Err(err).
			Str("event", ev.Type).
			Int64("purchase_id", ev.Purchase.ID).
			Msg("no se pudo publicar el evento")
	}
}
