package redisx

import "time"

const (
	// Idempotencia de POST /purchases: idem:purchase:create:{user_id}:{key} -> {"purchase_id":0|id,"fingerprint":"..."}
	KeyIdemPurchaseCreate = "idem:purchase:create:%d:%s"

	// Caché de lectura: purchase:{id} -> hash {v: updated_at en µs, data: JSON} o {gone: 1} si se archivó
	KeyPurchase = "purchase:%d"
)

var (
	TTLIdempotency   = 24 * time.Hour
	TTLPurchaseCache = 5 * time.Minute
)
