//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/purchases-api/internal/application/purchase"
	"github.com/jhoicas/purchases-api/internal/domain"
	"github.com/jhoicas/purchases-api/internal/domain/entity"
	"github.com/jhoicas/purchases-api/internal/domain/repository"
	"github.com/jhoicas/purchases-api/internal/infrastructure/postgres"
	"github.com/jhoicas/purchases-api/pkg/config"
)

func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "app",
				"POSTGRES_PASSWORD": "app",
				"POSTGRES_DB":       "purchases",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432")
	require.NoError(t, err)

	pool, err := postgres.NewPool(ctx, config.DBConfig{
		DatabaseURL: fmt.Sprintf("postgres://app:app@%s:%s/purchases?sslmode=disable", host, port.Port()),
		MaxConns:    10,
	})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.Migrate(ctx, pool))
	return pool
}

func TestIntegration_ReservaConcurrente(t *testing.T) {
	ctx := context.Background()
	pool := startPostgres(t)
	stock := postgres.NewStockRepository(pool)
	_, err := stock.SetQuantity(ctx, 1, 1, 5)
	require.NoError(t, err)

	uc := purchase.NewPlaceOrderUseCase(postgres.NewTxRunner(pool, 2*time.Second), nil)

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		oks int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.PlaceOrder(ctx, purchase.PlaceOrderInput{
				UserID: 1, ProductID: 1, StoreID: 1, Quantity: 3, TotalAmount: decimal.NewFromInt(30),
			})
			if err == nil {
				mu.Lock()
				oks++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, oks)
	qty, err := stock.GetQuantity(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, qty)
}

func TestIntegration_LockTimeoutEsTransitorio(t *testing.T) {
	ctx := context.Background()
	pool := startPostgres(t)
	_, err := postgres.NewStockRepository(pool).SetQuantity(ctx, 1, 1, 5)
	require.NoError(t, err)

	holder := postgres.NewTxRunner(pool, 0)
	locked := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = holder.Run(ctx, func(st repository.StockRepository, _ repository.PurchaseRepository, _ repository.ArchiveRepository) error {
			_, err := st.GetForUpdate(ctx, 1, 1)
			close(locked)
			<-done
			return err
		})
	}()
	<-locked
	defer close(done)

	uc := purchase.NewPlaceOrderUseCase(postgres.NewTxRunner(pool, 100*time.Millisecond), nil)
	_, err = uc.PlaceOrder(ctx, purchase.PlaceOrderInput{UserID: 1, ProductID: 1, StoreID: 1, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrTransientStore)
}

func TestIntegration_CicloDeVidaYArchivo(t *testing.T) {
	ctx := context.Background()
	pool := startPostgres(t)
	_, err := postgres.NewStockRepository(pool).SetQuantity(ctx, 1, 1, 5)
	require.NoError(t, err)

	runner := postgres.NewTxRunner(pool, time.Second)
	purchases := postgres.NewPurchaseRepository(pool)
	place := purchase.NewPlaceOrderUseCase(runner, nil)
	lc := purchase.NewLifecycleUseCase(runner, purchases, postgres.NewArchiveRepository(pool), postgres.NewStatusRepository(pool), nil)

	res, err := place.PlaceOrder(ctx, purchase.PlaceOrderInput{UserID: 1, ProductID: 1, StoreID: 1, Quantity: 2, TotalAmount: decimal.RequireFromString("19.90")})
	require.NoError(t, err)

	updated, err := lc.SetStatus(ctx, res.Purchase.ID, entity.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, updated.Status)

	archived, err := lc.Archive(ctx, res.Purchase.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("19.90").Equal(archived.TotalAmount))

	_, err = lc.Get(ctx, res.Purchase.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	statuses, err := lc.ListStatuses(ctx)
	require.NoError(t, err)
	assert.Len(t, statuses, 5)

	// Migrate de nuevo no duplica estados
	require.NoError(t, postgres.Migrate(ctx, pool))
	statuses, err = lc.ListStatuses(ctx)
	require.NoError(t, err)
	assert.Len(t, statuses, 5)
}
