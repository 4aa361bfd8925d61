//go:build integration

package redisx_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/purchases-api/internal/application/purchase"
	"github.com/jhoicas/purchases-api/internal/domain/entity"
	"github.com/jhoicas/purchases-api/internal/infrastructure/redisx"
	"github.com/jhoicas/purchases-api/pkg/config"
)

func startRedis(t *testing.T) config.RedisConfig {
	t.Helper()
	ctx := context.Background()
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	endpoint, err := c.Endpoint(ctx, "")
	require.NoError(t, err)
	return config.RedisConfig{Addr: endpoint}
}

func TestIntegration_Idempotencia(t *testing.T) {
	ctx := context.Background()
	rdb, err := redisx.New(ctx, startRedis(t))
	require.NoError(t, err)
	defer rdb.Close()

	s := redisx.NewIdempotencyStore(rdb)
	k1 := purchase.IdempotencyKey{UserID: 1, Key: "k1"}
	_, reserved, err := s.Reserve(ctx, k1, "fp")
	require.NoError(t, err)
	assert.True(t, reserved)

	prev, reserved, err := s.Reserve(ctx, k1, "fp")
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Zero(t, prev.PurchaseID)
	assert.Equal(t, "fp", prev.Fingerprint)

	// misma clave, otro usuario: registro propio
	_, reserved, err = s.Reserve(ctx, purchase.IdempotencyKey{UserID: 2, Key: "k1"}, "otro")
	require.NoError(t, err)
	assert.True(t, reserved)

	require.NoError(t, s.Complete(ctx, k1, purchase.IdempotencyRecord{PurchaseID: 99, Fingerprint: "fp"}))
	prev, reserved, err = s.Reserve(ctx, k1, "fp")
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Equal(t, purchase.IdempotencyRecord{PurchaseID: 99, Fingerprint: "fp"}, prev)

	require.NoError(t, s.Release(ctx, k1))
	_, reserved, err = s.Reserve(ctx, k1, "fp")
	require.NoError(t, err)
	assert.True(t, reserved)
}

func TestIntegration_CacheDeCompras(t *testing.T) {
	ctx := context.Background()
	rdb, err := redisx.New(ctx, startRedis(t))
	require.NoError(t, err)
	defer rdb.Close()

	c := redisx.NewPurchaseCache(rdb, nil)
	_, ok := c.Get(ctx, 1)
	assert.False(t, ok)

	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p := &entity.Purchase{ID: 1, Quantity: 2, TotalAmount: decimal.RequireFromString("10.50"), Status: entity.StatusPending, UpdatedAt: t0}
	c.Fill(ctx, p)
	got, ok := c.Get(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, entity.StatusPending, got.Status)
	assert.True(t, p.TotalAmount.Equal(got.TotalAmount))

	// un relleno con la misma versión o una vieja no pisa lo escrito por SetStatus
	approved := *p
	approved.Status, approved.UpdatedAt = entity.StatusApproved, t0.Add(time.Second)
	c.Store(ctx, &approved)
	c.Fill(ctx, p)
	stale := approved
	stale.Status = entity.StatusRejected
	c.Fill(ctx, &stale)
	got, ok = c.Get(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, entity.StatusApproved, got.Status)

	c.Tombstone(ctx, 1)
	c.Fill(ctx, &approved)
	got, ok = c.Get(ctx, 1)
	assert.True(t, ok)
	assert.Nil(t, got)

	ttl, err := rdb.PTTL(ctx, "purchase:1").Result()
	require.NoError(t, err)
	assert.Positive(t, ttl)
}
