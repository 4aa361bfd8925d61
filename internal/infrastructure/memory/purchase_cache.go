package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/purchases-api/internal/application/purchase"
	"github.com/jhoicas/purchases-api/internal/domain/entity"
)

var _ purchase.PurchaseCache = (*PurchaseCache)(nil)

type cacheEntry struct {
	version  int64
	purchase *entity.Purchase // nil = archivada
}

// PurchaseCache versión en proceso de la caché por ID, con las mismas reglas de versión que la de Redis.
// Sin TTL: se usa en tests y en despliegues de una sola instancia.
type PurchaseCache struct {
	mu      sync.Mutex
	entries map[int64]cacheEntry
}

func NewPurchaseCache() *PurchaseCache {
	return &PurchaseCache{entries: make(map[int64]cacheEntry)}
}

func (c *PurchaseCache) Get(_ context.Context, id int64) (*entity.Purchase, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	if e.purchase == nil {
		return nil, true
	}
	cp := *e.purchase
	return &cp, true
}

func (c *PurchaseCache) Fill(_ context.Context, p *entity.Purchase) {
	c.put(p, true)
}

func (c *PurchaseCache) Store(_ context.Context, p *entity.Purchase) {
	c.put(p, false)
}

func (c *PurchaseCache) Tombstone(_ context.Context, id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = cacheEntry{}
}

// put escribe p salvo que haya una marca de archivada o una versión más nueva.
// Con strict también descarta la misma versión.
func (c *PurchaseCache) put(p *entity.Purchase, strict bool) {
	v := p.UpdatedAt.UnixMicro()
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.entries[p.ID]; ok {
		if cur.purchase == nil || cur.version > v || (strict && cur.version == v) {
			return
		}
	}
	cp := *p
	c.entries[p.ID] = cacheEntry{version: v, purchase: &cp}
}
