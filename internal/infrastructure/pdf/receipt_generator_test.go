package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/purchases-api/internal/domain/entity"
)

func TestFormatMoney(t *testing.T) {
	tests := map[string]string{
		"0":         "0,00",
		"999":       "999,00",
		"1000":      "1.000,00",
		"1234567.5": "1.234.567,50",
		"-25000":    "-25.000,00",
	}
	for in, want := range tests {
		assert.Equal(t, want, formatMoney(decimal.RequireFromString(in)), in)
	}
}

func TestGenerateReceiptPDF(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p := entity.Purchase{
		ID: 12, UserID: 3, StoreID: 1, ProductID: 9, Quantity: 2,
		TotalAmount: decimal.RequireFromString("3000"), Status: entity.StatusApproved,
		CreatedAt: now, UpdatedAt: now,
	}
	g := NewReceiptGenerator("purchases-api")

	live, err := g.GenerateReceiptPDF(context.Background(), p, nil)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(live, []byte("%PDF")))

	archived, err := g.GenerateReceiptPDF(context.Background(), p, &now)
	require.NoError(t, err)
	assert.NotEmpty(t, archived)
}
