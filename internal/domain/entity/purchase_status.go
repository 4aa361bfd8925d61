package entity

// PurchaseStatus es el estado de una compra. Los valores coinciden con los IDs
// sembrados en purchase_statuses, por eso el orden de las constantes no se cambia.
type PurchaseStatus int16

const (
	StatusPending PurchaseStatus = iota + 1
	StatusApproved
	StatusRejected
	StatusCompleted
	StatusCancelled
)

var statusNames = map[PurchaseStatus]string{
	StatusPending:   "Pending",
	StatusApproved:  "Approved",
	StatusRejected:  "Rejected",
	StatusCompleted: "Completed",
	StatusCancelled: "Cancelled",
}

// String devuelve el nombre canónico del estado.
func (s PurchaseStatus) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "Unknown"
}

// Valid indica si el ID corresponde a uno de los cinco estados conocidos.
func (s PurchaseStatus) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// PurchaseStatusRecord es una fila de la tabla purchase_statuses.
type PurchaseStatusRecord struct {
	ID   PurchaseStatus
	Name string
}

// DefaultPurchaseStatuses devuelve los estados canónicos en orden estable.
func DefaultPurchaseStatuses() []PurchaseStatusRecord {
	out := make([]PurchaseStatusRecord, 0, len(statusNames))
	for s := StatusPending; s <= StatusCancelled; s++ {
		out = append(out, PurchaseStatusRecord{ID: s, Name: s.String()})
	}
	return out
}
