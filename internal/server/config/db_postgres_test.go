package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConnConfig_DevHasNoTLS(t *testing.T) {
	cfg := &Config{
		Env: "dev",
		DB:  DBConfig{DSN: "postgres://u:p@localhost:5432/db", ConnectTimeout: 5 * time.Second},
	}

	cc, err := cfg.connConfig()
	require.NoError(t, err)
	require.Nil(t, cc.TLSConfig)
	require.Empty(t, cc.Fallbacks)
	require.Equal(t, 5*time.Second, cc.ConnectTimeout)
}

func TestConnConfig_ProdUsesTLSWithoutVerification(t *testing.T) {
	cfg := &Config{
		Env: "production",
		DB:  DBConfig{DSN: "postgres://u:p@db.example.com:5432/db"},
	}

	cc, err := cfg.connConfig()
	require.NoError(t, err)
	require.NotNil(t, cc.TLSConfig)
	require.True(t, cc.TLSConfig.InsecureSkipVerify)
}

func TestConnConfig_InvalidDSN(t *testing.T) {
	cfg := &Config{DB: DBConfig{DSN: "://bad"}}

	_, err := cfg.connConfig()
	require.Error(t, err)
}

// Интеграционная проверка с настоящей базой
func TestOpenDB_WithDSN(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping integration test")
	}

	cfg := &Config{DB: DBConfig{DSN: dsn, MaxOpenConns: 4, ConnectTimeout: 5 * time.Second}}

	db, err := OpenDB(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.Equal(t, 4, db.Stats().MaxOpenConnections)

	var x int
	require.NoError(t, db.QueryRow("SELECT 1").Scan(&x))
	require.Equal(t, 1, x)
}
