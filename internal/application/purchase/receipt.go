package purchase

import (
	"context"
	"fmt"
)

// ReceiptUseCase genera el comprobante PDF de una compra viva o archivada.
type ReceiptUseCase struct {
	lifecycle *LifecycleUseCase
	generator ReceiptGenerator
}

func NewReceiptUseCase(lifecycle *LifecycleUseCase, generator ReceiptGenerator) *ReceiptUseCase {
	return &ReceiptUseCase{lifecycle: lifecycle, generator: generator}
}

// Render devuelve los bytes del PDF. domain.ErrNotFound si la compra no existe en ninguno de los dos almacenes.
func (uc *ReceiptUseCase) Render(ctx context.Context, id int64) ([]byte, error) {
	p, archivedAt, err := uc.lifecycle.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	pdf, err := uc.generator.GenerateReceiptPDF(ctx, *p, archivedAt)
	if err != nil {
		return nil, fmt.Errorf("generar comprobante: %w", err)
	}
	return pdf, nil
}
