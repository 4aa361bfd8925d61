package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/purchases-api/internal/application/dto"
	"github.com/jhoicas/purchases-api/internal/application/stock"
	"github.com/jhoicas/purchases-api/internal/infrastructure/memory"
	"github.com/jhoicas/purchases-api/pkg/logger"
)

func TestParseStockCSV_Windows1251ConCabecera(t *testing.T) {
	raw, err := charmap.Windows1251.NewEncoder().String("товар;магазин;количество\n1;2;10\n3; 4; 0\n")
	require.NoError(t, err)

	rows, err := parseStockCSV(bytes.NewBufferString(raw), "windows-1251", ';')
	require.NoError(t, err)
	assert.Equal(t, []dto.SetStockRequest{
		{ProductID: 1, StoreID: 2, Quantity: 10},
		{ProductID: 3, StoreID: 4, Quantity: 0},
	}, rows)
}

func TestParseStockCSV_Errores(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		charset string
	}{
		{"cantidad negativa", "1,2,-1\n", "utf-8"},
		{"campos de más", "1,2,3,4\n", "utf-8"},
		{"producto no numérico fuera de la cabecera", "1,2,3\nx,2,3\n", "utf-8"},
		{"charset desconocido", "1,2,3\n", "koi8-r"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseStockCSV(strings.NewReader(tc.input), tc.charset, ',')
			assert.Error(t, err)
		})
	}
}

func TestImportRows_EsIdempotente(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	uc := stock.NewStockUseCase(s.Stock())
	rows := []dto.SetStockRequest{{ProductID: 1, StoreID: 1, Quantity: 5}, {ProductID: 2, StoreID: 1, Quantity: 7}}

	for i := 0; i < 2; i++ {
		require.NoError(t, importRows(ctx, uc, rows, logger.Nop()))
	}
	got, err := uc.Get(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Quantity)
}
