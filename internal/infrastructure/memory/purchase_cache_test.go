package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/purchases-api/internal/domain/entity"
)

func TestPurchaseCache_Versiones(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	old := &entity.Purchase{ID: 1, Status: entity.StatusPending, UpdatedAt: t0}
	upd := &entity.Purchase{ID: 1, Status: entity.StatusApproved, UpdatedAt: t0.Add(time.Second)}

	tests := []struct {
		name  string
		apply func(c *PurchaseCache)
		want  entity.PurchaseStatus
	}{
		{"fill vacío", func(c *PurchaseCache) { c.Fill(ctx, old) }, entity.StatusPending},
		{"fill viejo tras store", func(c *PurchaseCache) { c.Store(ctx, upd); c.Fill(ctx, old) }, entity.StatusApproved},
		{"store nuevo tras fill", func(c *PurchaseCache) { c.Fill(ctx, old); c.Store(ctx, upd) }, entity.StatusApproved},
		{"store viejo no pisa", func(c *PurchaseCache) { c.Store(ctx, upd); c.Store(ctx, old) }, entity.StatusApproved},
		{"store misma versión pisa", func(c *PurchaseCache) {
			c.Fill(ctx, old)
			same := *old
			same.Status = entity.StatusCancelled
			c.Store(ctx, &same)
		}, entity.StatusCancelled},
		{"fill misma versión no pisa", func(c *PurchaseCache) {
			c.Store(ctx, old)
			same := *old
			same.Status = entity.StatusCancelled
			c.Fill(ctx, &same)
		}, entity.StatusPending},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewPurchaseCache()
			tc.apply(c)
			p, ok := c.Get(ctx, 1)
			require.True(t, ok)
			require.NotNil(t, p)
			assert.Equal(t, tc.want, p.Status)
		})
	}
}

func TestPurchaseCache_TombstoneBloqueaRellenos(t *testing.T) {
	ctx := context.Background()
	c := NewPurchaseCache()
	p := &entity.Purchase{ID: 3, Status: entity.StatusPending, UpdatedAt: time.Now()}

	_, ok := c.Get(ctx, 3)
	assert.False(t, ok)

	c.Fill(ctx, p)
	c.Tombstone(ctx, 3)
	c.Fill(ctx, p)
	c.Store(ctx, p)

	got, ok := c.Get(ctx, 3)
	assert.True(t, ok)
	assert.Nil(t, got, "archivada")
}

func TestPurchaseCache_GetDevuelveCopia(t *testing.T) {
	ctx := context.Background()
	c := NewPurchaseCache()
	c.Fill(ctx, &entity.Purchase{ID: 1, Status: entity.StatusPending, UpdatedAt: time.Now()})

	p, _ := c.Get(ctx, 1)
	p.Status = entity.StatusCancelled
	again, _ := c.Get(ctx, 1)
	assert.Equal(t, entity.StatusPending, again.Status)
}
