package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, 25, cfg.DB.MaxConns)
	assert.Equal(t, 5*time.Second, cfg.Purchases.LockTimeout)
	assert.True(t, cfg.Purchases.StrictTransitions)
	assert.False(t, cfg.Purchases.RestockOnCancel)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Kafka.Enabled())
	assert.False(t, cfg.Otel.Enabled())
	assert.Equal(t, 1.0, cfg.Otel.SampleRatio)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("PURCHASES_LOCK_TIMEOUT_MS", "250")
	v.Set("PURCHASES_STRICT_TRANSITIONS", "false")
	v.Set("PURCHASES_RESTOCK_ON_CANCEL", "true")
	v.Set("KAFKA_BROKERS", "k1:9092, k2:9092,")
	v.Set("REDIS_ADDR", "localhost:6379")
	v.Set("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	v.Set("OTEL_TRACES_SAMPLE_RATIO", "0.25")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Purchases.LockTimeout)
	assert.False(t, cfg.Purchases.StrictTransitions)
	assert.True(t, cfg.Purchases.RestockOnCancel)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Redis.Enabled())
	assert.True(t, cfg.Otel.Enabled())
	assert.Equal(t, 0.25, cfg.Otel.SampleRatio)
}

func TestFromViper_SampleRatioFueraDeRango(t *testing.T) {
	v := viper.New()
	v.Set("OTEL_TRACES_SAMPLE_RATIO", "1.5")
	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestFromViper_LockTimeoutInvalido(t *testing.T) {
	v := viper.New()
	v.Set("PURCHASES_LOCK_TIMEOUT_MS", "0")
	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "purchases", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/purchases?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
