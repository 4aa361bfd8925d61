package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/purchases-api/pkg/config"
)

func TestBuildPoolConfig(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.DBConfig
		host     string
		maxConns int32
		minConns int32
	}{
		{
			name:     "DATABASE_URL",
			cfg:      config.DBConfig{DatabaseURL: "postgres://u:p@127.0.0.1:6543/compras?sslmode=disable", MaxConns: 10},
			host:     "127.0.0.1",
			maxConns: 10,
			minConns: 2,
		},
		{
			name:     "campos sueltos y MaxConns menor que el mínimo",
			cfg:      config.DBConfig{Host: "127.0.0.1", Port: 5432, User: "u", Password: "p", DBName: "compras", SSLMode: "disable", MaxConns: 1},
			host:     "127.0.0.1",
			maxConns: 1,
			minConns: 1,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pc, err := buildPoolConfig(tc.cfg)
			require.NoError(t, err)
			assert.Equal(t, tc.host, pc.ConnConfig.Host)
			assert.Equal(t, tc.maxConns, pc.MaxConns)
			assert.Equal(t, tc.minConns, pc.MinConns)
			assert.IsType(t, queryTracer{}, pc.ConnConfig.Tracer)
			assert.NotNil(t, pc.AfterConnect)
		})
	}
}

func TestDatabaseURLWithIPv4_SinCambiosSiNoResuelve(t *testing.T) {
	raw := "postgres://u:p@[::1]:5432/db"
	assert.Equal(t, raw, databaseURLWithIPv4(raw))
	assert.Equal(t, "postgres://u:p@127.0.0.1:5432/db", databaseURLWithIPv4("postgres://u:p@127.0.0.1/db"))
}

func TestCompactSQLYSpanName(t *testing.T) {
	stmt := compactSQL(`
		SELECT product_id, quantity
		FROM product_stocks
		FOR UPDATE`)
	assert.Equal(t, "SELECT product_id, quantity FROM product_stocks FOR UPDATE", stmt)
	assert.Equal(t, "db SELECT", spanName(stmt))
	assert.Equal(t, "db", spanName(""))
	assert.Len(t, compactSQL(string(make([]byte, 1000))), maxStatementLen)
}
