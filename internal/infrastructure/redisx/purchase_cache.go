package redisx

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/purchases-api/internal/application/purchase"
	"github.com/jhoicas/purchases-api/internal/domain/entity"
	"github.com/jhoicas/purchases-api/pkg/logger"
)

var _ purchase.PurchaseCache = (*PurchaseCache)(nil)

// putScript escribe la compra salvo marca de archivada o versión más nueva.
// ARGV: versión, JSON, TTL en ms, "1" si también descarta la misma versión.
var putScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], 'gone') == 1 then
	return 0
end
local cur = tonumber(redis.call('HGET', KEYS[1], 'v') or '-1')
local v = tonumber(ARGV[1])
if cur > v or (ARGV[4] == '1' and cur == v) then
	return 0
end
redis.call('HSET', KEYS[1], 'v', ARGV[1], 'data', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

// PurchaseCache caché de compras por ID versionada por updated_at. Los errores solo se registran.
type PurchaseCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *logger.Logger
}

func NewPurchaseCache(rdb *redis.Client, log *logger.Logger) *PurchaseCache {
	if log == nil {
		log = logger.Nop()
	}
	return &PurchaseCache{rdb: rdb, ttl: TTLPurchaseCache, log: log.Named("purchase_cache")}
}

func (c *PurchaseCache) Get(ctx context.Context, id int64) (*entity.Purchase, bool) {
	fields, err := c.rdb.HGetAll(ctx, fmt.Sprintf(KeyPurchase, id)).Result()
	if err != nil {
		c.log.Warn().Err(err).Int64("purchase_id", id).Msg("leer caché")
		return nil, false
	}
	if _, gone := fields["gone"]; gone {
		return nil, true
	}
	data, ok := fields["data"]
	if !ok {
		return nil, false
	}
	var p entity.Purchase
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		c.log.Warn().Err(err).Int64("purchase_id", id).Msg("decodificar caché")
		return nil, false
	}
	return &p, true
}

func (c *PurchaseCache) Fill(ctx context.Context, p *entity.Purchase) {
	c.put(ctx, p, true)
}

func (c *PurchaseCache) Store(ctx context.Context, p *entity.Purchase) {
	c.put(ctx, p, false)
}

// Tombstone reemplaza la entrada por la marca de archivada con el mismo TTL.
func (c *PurchaseCache) Tombstone(ctx context.Context, id int64) {
	k := fmt.Sprintf(KeyPurchase, id)
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, k)
		pipe.HSet(ctx, k, "gone", 1)
		pipe.PExpire(ctx, k, c.ttl)
		return nil
	})
	if err != nil {
		c.log.Warn().Err(err).Int64("purchase_id", id).Msg("marcar compra archivada en caché")
	}
}

func (c *PurchaseCache) put(ctx context.Context, p *entity.Purchase, strict bool) {
	b, err := json.Marshal(p)
	if err != nil {
		return
	}
	flag := "0"
	if strict {
		flag = "1"
	}
	k := fmt.Sprintf(KeyPurchase, p.ID)
	err = putScript.Run(ctx, c.rdb, []string{k}, p.UpdatedAt.UnixMicro(), b, c.ttl.Milliseconds(), flag).Err()
	if err != nil {
		c.log.Warn().Err(err).Int64("purchase_id", p.ID).Msg("escribir caché")
	}
}
