package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("LEDGER_ID_STRATEGY", "counter")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.BackendRedis, cfg.Store.Backend)
	assert.True(t, cfg.Ledger.StrictReversal, "reversión estricta activa por defecto")
	assert.Equal(t, 40, cfg.Ledger.TxRetries)
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, 8080, cfg.HTTP.Port)
}

func TestLoad_LeeVariablesDeEntorno(t *testing.T) {
	t.Setenv("STORE_BACKEND", "POSTGRES")
	t.Setenv("LEDGER_ID_STRATEGY", "scan")
	t.Setenv("LEDGER_STRICT_REVERSAL", "false")
	t.Setenv("LEDGER_TX_RETRIES", "9")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.BackendPostgres, cfg.Store.Backend)
	assert.Equal(t, "scan", cfg.Ledger.IDStrategy)
	assert.False(t, cfg.Ledger.StrictReversal)
	assert.Equal(t, 9, cfg.Ledger.TxRetries)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, 9090, cfg.HTTP.Port)
}

func TestLoad_RechazaValoresInvalidos(t *testing.T) {
	t.Setenv("STORE_BACKEND", "mongo")
	_, err := config.Load()
	assert.Error(t, err)

	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("LEDGER_ID_STRATEGY", "uuid")
	_, err = config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "inv", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/inv?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
