package stock_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/purchases-api/internal/application/dto"
	"github.com/jhoicas/purchases-api/internal/application/stock"
	"github.com/jhoicas/purchases-api/internal/domain"
	"github.com/jhoicas/purchases-api/internal/infrastructure/memory"
)

func TestStockUseCase_SetYGet(t *testing.T) {
	ctx := context.Background()
	uc := stock.NewStockUseCase(memory.NewStore().Stock())

	_, err := uc.Get(ctx, 1, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	out, err := uc.Set(ctx, dto.SetStockRequest{ProductID: 1, StoreID: 1, Quantity: 8})
	require.NoError(t, err)
	assert.Equal(t, 8, out.Quantity)
	assert.NotNil(t, out.UpdatedAt)

	got, err := uc.Get(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 8, got.Quantity)
}

func TestStockUseCase_Validaciones(t *testing.T) {
	ctx := context.Background()
	uc := stock.NewStockUseCase(memory.NewStore().Stock())

	tests := []struct {
		name string
		in   dto.SetStockRequest
	}{
		{"cantidad negativa", dto.SetStockRequest{ProductID: 1, StoreID: 1, Quantity: -1}},
		{"sin producto", dto.SetStockRequest{StoreID: 1, Quantity: 1}},
		{"sin tienda", dto.SetStockRequest{ProductID: 1, Quantity: 1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Set(ctx, tc.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	_, err := uc.Get(ctx, 0, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStockUseCase_CeroEsUnaFilaValida(t *testing.T) {
	ctx := context.Background()
	uc := stock.NewStockUseCase(memory.NewStore().Stock())

	_, err := uc.Set(ctx, dto.SetStockRequest{ProductID: 2, StoreID: 1, Quantity: 0})
	require.NoError(t, err)
	got, err := uc.Get(ctx, 2, 1)
	require.NoError(t, err)
	assert.Zero(t, got.Quantity)
}
