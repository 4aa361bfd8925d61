package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrOutOfStock        = errors.New("sin stock registrado para el producto en la tienda")
	ErrInvalidTransition = errors.New("transición de estado no permitida")

	// ErrRequestInProgress: la misma Idempotency-Key sigue en curso. Es un ErrConflict.
	ErrRequestInProgress = fmt.Errorf("petición en curso: %w", ErrConflict)

	// ErrIdempotencyKeyReused: la clave ya se usó con otro cuerpo de petición.
	ErrIdempotencyKeyReused = errors.New("idempotency key reutilizada con otra petición")

	// ErrInsufficientStock se compara con errors.Is; el detalle viaja en *InsufficientStockError.
	ErrInsufficientStock = errors.New("stock insuficiente")

	// ErrTransientStore: timeout de lock, conexión perdida, serialización. Seguro reintentar.
	ErrTransientStore = errors.New("fallo transitorio del almacenamiento")
	// ErrPersistence: fallo inesperado, no reintentar sin investigar.
	ErrPersistence = errors.New("fallo de persistencia")
)

// InsufficientStockError reporta la cantidad disponible al momento del bloqueo.
// La cantidad solicitada nunca se recorta: el caller decide si reintenta con menos.
type InsufficientStockError struct {
	ProductID int64
	StoreID   int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: producto %d tienda %d (solicitado %d, disponible %d)",
		e.ProductID, e.StoreID, e.Requested, e.Available)
}

// Unwrap permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// Persistence envuelve un error inesperado de almacenamiento conservando la causa.
// Los errores de dominio y los transitorios pasan sin cambios.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsBusiness(err) || errors.Is(err, ErrTransientStore) || errors.Is(err, ErrPersistence) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}

// IsBusiness indica si err es un resultado esperado (4xx), no un fallo de infraestructura.
func IsBusiness(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrInvalidInput, ErrUnauthorized, ErrForbidden, ErrConflict,
		ErrOutOfStock, ErrInsufficientStock, ErrInvalidTransition, ErrIdempotencyKeyReused,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
