package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/purchases-api/internal/application/purchase"
)

var _ purchase.IdempotencyStore = (*IdempotencyStore)(nil)

// idemValue lo que se guarda por clave; PurchaseID es 0 mientras la compra sigue en curso.
type idemValue struct {
	PurchaseID  int64  `json:"purchase_id"`
	Fingerprint string `json:"fingerprint"`
}

// IdempotencyStore guarda Idempotency-Key por usuario con SETNX: primero en curso, luego el ID de la compra.
type IdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewIdempotencyStore(rdb *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb, ttl: TTLIdempotency}
}

func idemKey(key purchase.IdempotencyKey) string {
	return fmt.Sprintf(KeyIdemPurchaseCreate, key.UserID, key.Key)
}

func (s *IdempotencyStore) Reserve(ctx context.Context, key purchase.IdempotencyKey, fingerprint string) (purchase.IdempotencyRecord, bool, error) {
	k := idemKey(key)
	pending, err := json.Marshal(idemValue{Fingerprint: fingerprint})
	if err != nil {
		return purchase.IdempotencyRecord{}, false, err
	}
	// Dos intentos: la clave puede expirar entre SETNX y GET
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.rdb.SetNX(ctx, k, pending, s.ttl).Result()
		if err != nil {
			return purchase.IdempotencyRecord{}, false, fmt.Errorf("setnx %s: %w", k, err)
		}
		if ok {
			return purchase.IdempotencyRecord{}, true, nil
		}
		b, err := s.rdb.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return purchase.IdempotencyRecord{}, false, fmt.Errorf("get %s: %w", k, err)
		}
		var v idemValue
		if err := json.Unmarshal(b, &v); err != nil {
			return purchase.IdempotencyRecord{}, false, fmt.Errorf("valor inválido en %s: %w", k, err)
		}
		return purchase.IdempotencyRecord{PurchaseID: v.PurchaseID, Fingerprint: v.Fingerprint}, false, nil
	}
	return purchase.IdempotencyRecord{Fingerprint: fingerprint}, false, nil
}

func (s *IdempotencyStore) Complete(ctx context.Context, key purchase.IdempotencyKey, rec purchase.IdempotencyRecord) error {
	b, err := json.Marshal(idemValue{PurchaseID: rec.PurchaseID, Fingerprint: rec.Fingerprint})
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, idemKey(key), b, s.ttl).Err()
}

func (s *IdempotencyStore) Release(ctx context.Context, key purchase.IdempotencyKey) error {
	return s.rdb.Del(ctx, idemKey(key)).Err()
}
