package purchase

import "github.com/jhoicas/purchases-api/internal/domain/entity"

// RestockPolicy devuelve cuántas unidades regresan al stock cuando una compra
// cambia de estado. El coordinador de reservas no la consulta nunca.
type RestockPolicy func(p entity.Purchase, to entity.PurchaseStatus) int

// NoRestock no devuelve stock en ninguna transición (comportamiento por defecto:
// una compra cancelada o rechazada no repone unidades automáticamente).
func NoRestock(_ entity.Purchase, _ entity.PurchaseStatus) int { return 0 }

// RestockOnCancel repone la cantidad completa al cancelar o rechazar una compra
// que aún retenía stock (pendiente o aprobada).
func RestockOnCancel(p entity.Purchase, to entity.PurchaseStatus) int {
	if to != entity.StatusCancelled && to != entity.StatusRejected {
		return 0
	}
	if p.Status != entity.StatusPending && p.Status != entity.StatusApproved {
		return 0
	}
	return p.Quantity
}

// Restock devuelve la política según la configuración.
func Restock(onCancel bool) RestockPolicy {
	if onCancel {
		return RestockOnCancel
	}
	return NoRestock
}
