// Package memory implementa los repositorios en proceso con el mismo modelo de
// concurrencia que PostgreSQL: un lock exclusivo por fila (producto, tienda) y por
// compra, tomado con GetForUpdate y liberado al commit o rollback. Las escrituras
// de una transacción se aplican solo al commit.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/purchases-api/internal/application/purchase"
	"github.com/jhoicas/purchases-api/internal/domain"
	"github.com/jhoicas/purchases-api/internal/domain/entity"
	"github.com/jhoicas/purchases-api/internal/domain/repository"
)

var _ purchase.TxRunner = (*Store)(nil)

// DefaultLockTimeout tiempo máximo de espera por un lock de fila.
const DefaultLockTimeout = 5 * time.Second

// Store guarda stock, compras vivas y archivadas.
type Store struct {
	mu        sync.Mutex
	stock     map[entity.StockKey]entity.StockEntry
	purchases map[int64]entity.Purchase
	archived  map[int64]entity.ArchivedPurchase
	statuses  []entity.PurchaseStatusRecord
	nextID    int64

	stockLocks  map[entity.StockKey]chan struct{}
	orderLocks  map[int64]chan struct{}
	lockTimeout time.Duration
}

// Option configura el Store.
type Option func(*Store)

// WithLockTimeout fija la espera máxima por un lock de fila.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.lockTimeout = d
		}
	}
}

// NewStore crea un almacén vacío con el catálogo de estados ya sembrado.
func NewStore(opts ...Option) *Store {
	s := &Store{
		stock:       make(map[entity.StockKey]entity.StockEntry),
		purchases:   make(map[int64]entity.Purchase),
		archived:    make(map[int64]entity.ArchivedPurchase),
		statuses:    entity.DefaultPurchaseStatuses(),
		stockLocks:  make(map[entity.StockKey]chan struct{}),
		orderLocks:  make(map[int64]chan struct{}),
		lockTimeout: DefaultLockTimeout,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run ejecuta fn en una transacción. Si fn falla se descartan todas las escrituras.
func (s *Store) Run(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	purchaseRepo repository.PurchaseRepository,
	archiveRepo repository.ArchiveRepository,
) error) error {
	return s.inTx(ctx, func(t *tx) error {
		return fn(&StockRepo{s: s, t: t}, &PurchaseRepo{s: s, t: t}, &ArchiveRepo{s: s, t: t})
	})
}

// Stock devuelve el repositorio de stock fuera de transacción (cada llamada es su propia tx).
func (s *Store) Stock() *StockRepo { return &StockRepo{s: s} }

func (s *Store) Purchases() *PurchaseRepo { return &PurchaseRepo{s: s} }

func (s *Store) Archive() *ArchiveRepo { return &ArchiveRepo{s: s} }

func (s *Store) Statuses() *StatusRepo { return &StatusRepo{s: s} }

func (s *Store) inTx(ctx context.Context, fn func(t *tx) error) error {
	t := s.begin()
	defer t.release()
	if err := fn(t); err != nil {
		return err
	}
	t.commit()
	return nil
}

func (s *Store) stockLock(k entity.StockKey) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.stockLocks[k]
	if !ok {
		ch = make(chan struct{}, 1)
		s.stockLocks[k] = ch
	}
	return ch
}

func (s *Store) orderLock(id int64) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.orderLocks[id]
	if !ok {
		ch = make(chan struct{}, 1)
		s.orderLocks[id] = ch
	}
	return ch
}

// tx acumula escrituras y los locks tomados hasta el commit o rollback.
type tx struct {
	s *Store

	held       []chan struct{}
	heldStock  map[entity.StockKey]bool
	heldOrders map[int64]bool

	stock     map[entity.StockKey]entity.StockEntry
	purchases map[int64]entity.Purchase
	deleted   map[int64]bool
	archived  map[int64]entity.ArchivedPurchase
}

func (s *Store) begin() *tx {
	return &tx{
		s:          s,
		heldStock:  make(map[entity.StockKey]bool),
		heldOrders: make(map[int64]bool),
		stock:      make(map[entity.StockKey]entity.StockEntry),
		purchases:  make(map[int64]entity.Purchase),
		deleted:    make(map[int64]bool),
		archived:   make(map[int64]entity.ArchivedPurchase),
	}
}

func (t *tx) acquire(ctx context.Context, ch chan struct{}) error {
	timer := time.NewTimer(t.s.lockTimeout)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
		t.held = append(t.held, ch)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("esperando lock: %v: %w", ctx.Err(), domain.ErrTransientStore)
	case <-timer.C:
		return fmt.Errorf("lock timeout tras %s: %w", t.s.lockTimeout, domain.ErrTransientStore)
	}
}

func (t *tx) lockStock(ctx context.Context, k entity.StockKey) error {
	if t.heldStock[k] {
		return nil
	}
	if err := t.acquire(ctx, t.s.stockLock(k)); err != nil {
		return err
	}
	t.heldStock[k] = true
	return nil
}

func (t *tx) lockOrder(ctx context.Context, id int64) error {
	if t.heldOrders[id] {
		return nil
	}
	if err := t.acquire(ctx, t.s.orderLock(id)); err != nil {
		return err
	}
	t.heldOrders[id] = true
	return nil
}

// release libera los locks en orden inverso y descarta los locks de compras que ya no están vivas.
// Los IDs no se reutilizan, así que un waiter con el canal viejo solo verá la fila ausente.
func (t *tx) release() {
	for i := len(t.held) - 1; i >= 0; i-- {
		<-t.held[i]
	}
	t.held = nil

	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range t.heldOrders {
		if _, alive := s.purchases[id]; !alive {
			delete(s.orderLocks, id)
		}
	}
}

func (t *tx) commit() {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range t.stock {
		s.stock[k] = e
	}
	for id, p := range t.purchases {
		s.purchases[id] = p
	}
	for id := range t.deleted {
		delete(s.purchases, id)
	}
	for id, a := range t.archived {
		s.archived[id] = a
	}
}

// Lecturas con read-your-writes: primero lo escrito en la tx, luego lo confirmado.

func (t *tx) readStock(k entity.StockKey) (entity.StockEntry, bool) {
	if e, ok := t.stock[k]; ok {
		return e, true
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	e, ok := t.s.stock[k]
	return e, ok
}

func (t *tx) readPurchase(id int64) (entity.Purchase, bool) {
	if t.deleted[id] {
		return entity.Purchase{}, false
	}
	if p, ok := t.purchases[id]; ok {
		return p, true
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	p, ok := t.s.purchases[id]
	return p, ok
}

func (t *tx) readArchived(id int64) (entity.ArchivedPurchase, bool) {
	if a, ok := t.archived[id]; ok {
		return a, true
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	a, ok := t.s.archived[id]
	return a, ok
}

func (t *tx) nextPurchaseID() int64 {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.nextID++
	return t.s.nextID
}

func (t *tx) listPurchases() []*entity.Purchase {
	t.s.mu.Lock()
	merged := make(map[int64]entity.Purchase, len(t.s.purchases)+len(t.purchases))
	for id, p := range t.s.purchases {
		merged[id] = p
	}
	t.s.mu.Unlock()
	for id, p := range t.purchases {
		merged[id] = p
	}
	out := make([]*entity.Purchase, 0, len(merged))
	for id, p := range merged {
		if t.deleted[id] {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (t *tx) listArchived() []*entity.ArchivedPurchase {
	t.s.mu.Lock()
	merged := make(map[int64]entity.ArchivedPurchase, len(t.s.archived)+len(t.archived))
	for id, a := range t.s.archived {
		merged[id] = a
	}
	t.s.mu.Unlock()
	for id, a := range t.archived {
		merged[id] = a
	}
	out := make([]*entity.ArchivedPurchase, 0, len(merged))
	for _, a := range merged {
		a := a
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ArchivedAt.Equal(out[j].ArchivedAt) {
			return out[i].ArchivedAt.After(out[j].ArchivedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}
