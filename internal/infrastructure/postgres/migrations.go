package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/purchases-api/internal/domain/entity"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS purchase_statuses (
		id   SMALLINT PRIMARY KEY,
		name VARCHAR(32) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS product_stocks (
		product_id BIGINT NOT NULL,
		store_id   BIGINT NOT NULL,
		quantity   INTEGER NOT NULL CHECK (quantity >= 0),
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		PRIMARY KEY (product_id, store_id)
	)`,
	`CREATE TABLE IF NOT EXISTS purchases (
		id           BIGSERIAL PRIMARY KEY,
		user_id      BIGINT NOT NULL,
		store_id     BIGINT NOT NULL,
		product_id   BIGINT NOT NULL,
		quantity     INTEGER NOT NULL CHECK (quantity > 0),
		total_amount NUMERIC(18,4) NOT NULL DEFAULT 0,
		status_id    SMALLINT NOT NULL REFERENCES purchase_statuses(id),
		created_at   TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		FOREIGN KEY (product_id, store_id) REFERENCES product_stocks(product_id, store_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_purchases_created_at ON purchases(created_at DESC, id DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_purchases_user_id ON purchases(user_id)`,
	`CREATE TABLE IF NOT EXISTS archived_purchases (
		id           BIGINT PRIMARY KEY,
		user_id      BIGINT NOT NULL,
		store_id     BIGINT NOT NULL,
		product_id   BIGINT NOT NULL,
		quantity     INTEGER NOT NULL,
		total_amount NUMERIC(18,4) NOT NULL,
		status_id    SMALLINT NOT NULL REFERENCES purchase_statuses(id),
		created_at   TIMESTAMP WITH TIME ZONE NOT NULL,
		updated_at   TIMESTAMP WITH TIME ZONE NOT NULL,
		archived_at  TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_archived_purchases_archived_at ON archived_purchases(archived_at DESC)`,
}

// Migrate crea el esquema si no existe y siembra el catálogo de estados.
// Es idempotente: se ejecuta en cada arranque.
func Migrate(ctx context.Context, q Querier) error {
	for _, stmt := range schema {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	for _, s := range entity.DefaultPurchaseStatuses() {
		_, err := q.Exec(ctx,
			`INSERT INTO purchase_statuses (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
			int16(s.ID), s.Name,
		)
		if err != nil {
			return fmt.Errorf("seed purchase status %s: %w", s.Name, err)
		}
	}
	return nil
}
