package purchase

import "github.com/jhoicas/purchases-api/internal/domain/entity"

// TransitionPolicy decide si una compra puede pasar de from a to.
type TransitionPolicy func(from, to entity.PurchaseStatus) bool

// validNext es la tabla de transiciones:
// pending → {approved, rejected} → completed, pending|approved → cancelled.
var validNext = map[entity.PurchaseStatus]map[entity.PurchaseStatus]bool{
	entity.StatusPending: {
		entity.StatusApproved:  true,
		entity.StatusRejected:  true,
		entity.StatusCancelled: true,
	},
	entity.StatusApproved: {
		entity.StatusCompleted: true,
		entity.StatusCancelled: true,
	},
	entity.StatusRejected: {
		entity.StatusCompleted: true,
	},
	entity.StatusCompleted: {},
	entity.StatusCancelled: {},
}

// CanTransition aplica la tabla de transiciones (modo estricto).
func CanTransition(from, to entity.PurchaseStatus) bool {
	return validNext[from][to]
}

// AnyTransition acepta cualquier estado conocido. Reproduce el comportamiento
// histórico en el que un usuario privilegiado podía fijar cualquier estado.
func AnyTransition(_, to entity.PurchaseStatus) bool {
	return to.Valid()
}

// Transitions devuelve la política según el modo configurado.
func Transitions(strict bool) TransitionPolicy {
	if strict {
		return CanTransition
	}
	return AnyTransition
}
