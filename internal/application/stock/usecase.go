package stock

import (
	"context"
	"fmt"

	"github.com/jhoicas/purchases-api/internal/application/dto"
	"github.com/jhoicas/purchases-api/internal/domain"
	"github.com/jhoicas/purchases-api/internal/domain/repository"
)

// StockUseCase expone el libro de stock para administración (alta y consulta por producto+tienda).
type StockUseCase struct {
	repo repository.StockRepository
}

func NewStockUseCase(repo repository.StockRepository) *StockUseCase {
	return &StockUseCase{repo: repo}
}

// Get devuelve la cantidad actual. domain.ErrNotFound si el par nunca se inicializó.
func (uc *StockUseCase) Get(ctx context.Context, productID, storeID int64) (*dto.StockResponse, error) {
	if productID <= 0 || storeID <= 0 {
		return nil, domain.ErrInvalidInput
	}
	qty, err := uc.repo.GetQuantity(ctx, productID, storeID)
	if err != nil {
		return nil, domain.Persistence("obtener stock", err)
	}
	return &dto.StockResponse{ProductID: productID, StoreID: storeID, Quantity: qty}, nil
}

// Set crea o sobrescribe la cantidad. Repetir la misma llamada deja el mismo estado.
func (uc *StockUseCase) Set(ctx context.Context, in dto.SetStockRequest) (*dto.StockResponse, error) {
	if in.ProductID <= 0 || in.StoreID <= 0 {
		return nil, fmt.Errorf("product_id y store_id son obligatorios: %w", domain.ErrInvalidInput)
	}
	if in.Quantity < 0 {
		return nil, fmt.Errorf("quantity no puede ser negativa: %w", domain.ErrInvalidInput)
	}
	e, err := uc.repo.SetQuantity(ctx, in.ProductID, in.StoreID, in.Quantity)
	if err != nil {
		return nil, domain.Persistence("fijar stock", err)
	}
	return &dto.StockResponse{
		ProductID: e.ProductID,
		StoreID:   e.StoreID,
		Quantity:  e.Quantity,
		UpdatedAt: &e.UpdatedAt,
	}, nil
}
