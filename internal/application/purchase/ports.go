package purchase

import (
	"context"
	"time"

	"github.com/jhoicas/purchases-api/internal/domain/entity"
	"github.com/jhoicas/purchases-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; si no, Commit. Garantiza atomicidad de la reserva.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockRepository,
		purchaseRepo repository.PurchaseRepository,
		archiveRepo repository.ArchiveRepository,
	) error) error
}

// Tipos de evento publicados después del commit.
const (
	EventPurchaseCreated       = "purchase.created"
	EventPurchaseStatusChanged = "purchase.status_changed"
	EventPurchaseArchived      = "purchase.archived"
)

// Event describe un cambio ya confirmado en la BD.
type Event struct {
	Type       string
	Purchase   entity.Purchase
	PrevStatus entity.PurchaseStatus
	OccurredAt time.Time
}

// EventPublisher publica eventos de compra (Kafka). Nunca se llama dentro de la transacción.
type EventPublisher interface {
	Publish(ctx context.Context, ev Event) error
}

// IdempotencyKey es la Idempotency-Key del cliente acotada a su usuario:
// dos usuarios pueden mandar la misma clave sin verse entre sí.
type IdempotencyKey struct {
	UserID int64
	Key    string
}

// IdempotencyRecord es lo guardado bajo una clave ya reservada.
type IdempotencyRecord struct {
	PurchaseID  int64  // 0 mientras la compra original sigue en curso
	Fingerprint string // huella de la petición original
}

// IdempotencyStore reserva claves Idempotency-Key del cliente.
type IdempotencyStore interface {
	// Reserve marca la clave como en curso con la huella de la petición. Si ya existía
	// devuelve reserved=false y el registro previo.
	Reserve(ctx context.Context, key IdempotencyKey, fingerprint string) (prev IdempotencyRecord, reserved bool, err error)
	// Complete asocia la clave con la compra creada.
	Complete(ctx context.Context, key IdempotencyKey, rec IdempotencyRecord) error
	// Release libera la clave para permitir el reintento.
	Release(ctx context.Context, key IdempotencyKey) error
}

// PurchaseCache cachea compras por ID (Redis). Cada entrada lleva la versión UpdatedAt
// de la compra; una lectura tardía nunca pisa una escritura confirmada más nueva.
// Los fallos se ignoran: la BD es la fuente de verdad.
type PurchaseCache interface {
	// Get devuelve (p, true) en acierto y (nil, true) si la compra fue archivada.
	Get(ctx context.Context, id int64) (*entity.Purchase, bool)
	// Fill guarda una compra leída de la BD solo si la caché no tiene una versión igual o más nueva.
	Fill(ctx context.Context, p *entity.Purchase)
	// Store guarda una compra recién confirmada salvo que la caché tenga una versión más nueva.
	Store(ctx context.Context, p *entity.Purchase)
	// Tombstone marca la compra como archivada; ningún Fill posterior la revive.
	Tombstone(ctx context.Context, id int64)
}

// ReceiptGenerator genera el comprobante PDF de una compra.
type ReceiptGenerator interface {
	GenerateReceiptPDF(ctx context.Context, p entity.Purchase, archivedAt *time.Time) ([]byte, error)
}
