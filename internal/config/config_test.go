package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"APP_ENV", "HTTP_ADDR", "STORE_DRIVER", "SQLITE_PATH", "REMOTE_DB_URL", "REMOTE_DB_KEY",
	"RESTRICTED_MODE", "CHECKOUT_DELETE_FALLBACK", "RATE_LIMIT", "RATE_WINDOW_SEC", "REDIS_DB",
	"LOG_ENCODING", "CORS_ORIGINS", "CORS_ORIGINS_RESTRICTED", "KAFKA_BROKERS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.Store.Kind)
	assert.Equal(t, ":3002", cfg.HTTPAddr)
	assert.False(t, cfg.Restricted)
	assert.False(t, cfg.CheckoutDeleteFallback)
	assert.Equal(t, 100, cfg.RateLimit)
	assert.Equal(t, time.Minute, cfg.RateWindow)
	assert.Equal(t, "console", cfg.LogEncoding)
	assert.False(t, cfg.KafkaEnabled())
	assert.Len(t, cfg.AllowedOrigins(), 3)
}

func TestFromEnv_RemoteCredentialsSelectPostgres(t *testing.T) {
	clearEnv(t)
	t.Setenv("REMOTE_DB_URL", "postgres://app@db.example.com:5432/orders")
	t.Setenv("REMOTE_DB_KEY", "secret")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, StorePostgres, cfg.Store.Kind)
}

func TestFromEnv_HalfCredentialsFallBackToMemory(t *testing.T) {
	clearEnv(t)
	t.Setenv("REMOTE_DB_URL", "postgres://app@db.example.com:5432/orders")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.Store.Kind)
}

func TestFromEnv_SQLitePathSelectsEmbedded(t *testing.T) {
	clearEnv(t)
	t.Setenv("SQLITE_PATH", "orders.db")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, StoreSQLite, cfg.Store.Kind)
}

func TestFromEnv_ExplicitDriverValidated(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "postgres")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "REMOTE_DB_URL")

	t.Setenv("STORE_DRIVER", "mongo")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "unknown STORE_DRIVER")
}

func TestFromEnv_ProductionIsRestricted(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("CORS_ORIGINS_RESTRICTED", "https://menu.example.com")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.Restricted)
	assert.Equal(t, "json", cfg.LogEncoding)
	assert.Equal(t, []string{"https://menu.example.com"}, cfg.AllowedOrigins())
}

func TestFromEnv_RestrictedOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("RESTRICTED_MODE", "false")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.False(t, cfg.Restricted)
}

func TestFromEnv_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"RATE_LIMIT":               "0",
		"RATE_WINDOW_SEC":          "abc",
		"REDIS_DB":                 "x",
		"RESTRICTED_MODE":          "maybe",
		"CHECKOUT_DELETE_FALLBACK": "sometimes",
		"LOG_ENCODING":             "xml",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			_, err := FromEnv()
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitCSV(" a, ,b ,"))
	assert.Empty(t, splitCSV(""))
}
