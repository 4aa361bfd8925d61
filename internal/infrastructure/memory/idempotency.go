package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/purchases-api/internal/application/purchase"
)

var _ purchase.IdempotencyStore = (*IdempotencyStore)(nil)

type idemEntry struct {
	rec       purchase.IdempotencyRecord
	expiresAt time.Time
}

// IdempotencyStore versión en proceso del almacén de claves (misma semántica que la de Redis).
type IdempotencyStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	keys map[purchase.IdempotencyKey]idemEntry
	now  func() time.Time
}

func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{ttl: ttl, keys: make(map[purchase.IdempotencyKey]idemEntry), now: time.Now}
}

func (s *IdempotencyStore) Reserve(_ context.Context, key purchase.IdempotencyKey, fingerprint string) (purchase.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if e, ok := s.keys[key]; ok && now.Before(e.expiresAt) {
		return e.rec, false, nil
	}
	s.keys[key] = idemEntry{
		rec:       purchase.IdempotencyRecord{Fingerprint: fingerprint},
		expiresAt: now.Add(s.ttl),
	}
	return purchase.IdempotencyRecord{}, true, nil
}

func (s *IdempotencyStore) Complete(_ context.Context, key purchase.IdempotencyKey, rec purchase.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = idemEntry{rec: rec, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *IdempotencyStore) Release(_ context.Context, key purchase.IdempotencyKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}
