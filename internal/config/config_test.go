package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, name := range []string{"CONFIG_FILE", "DATABASE_URL", "HTTP_ADDR", "LEDGER_CURRENCY", "IDEMPOTENCY_TTL", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(name, "")
	}
	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.HTTP.Addr)
	assert.Equal(t, "BRL", c.Ledger.Currency)
	assert.Equal(t, 24*time.Hour, c.Idempotency.TTL)
	assert.Equal(t, []string{"*"}, c.CORS.AllowedOrigins)
	assert.True(t, c.MemoryBacked())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "finledger.yaml")
	body := []byte(`
http:
  addr: ":9000"
database:
  url: "postgres://file"
ledger:
  currency: usd
idempotency:
  ttl: 2h
cors:
  allowed_origins: ["https://app.example"]
`)
	require.NoError(t, os.WriteFile(path, body, 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("JWT_HS256_SECRET", "s3cret")
	t.Setenv("DEV_SEED", "true")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", c.HTTP.Addr)
	assert.Equal(t, "postgres://env", c.Database.URL)
	assert.Equal(t, "USD", c.Ledger.Currency)
	assert.Equal(t, 2*time.Hour, c.Idempotency.TTL)
	assert.Equal(t, []string{"https://app.example"}, c.CORS.AllowedOrigins)
	assert.Equal(t, "s3cret", c.JWT.Secret)
	assert.True(t, c.Dev.Seed)
	assert.False(t, c.MemoryBacked())
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("LEDGER_CURRENCY", "XXXX")
	_, err := Load()
	assert.ErrorContains(t, err, "ledger.currency")

	t.Setenv("LEDGER_CURRENCY", "BRL")
	t.Setenv("LOG_FORMAT", "xml")
	_, err = Load()
	assert.ErrorContains(t, err, "log.format")

	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("LOG_FORMAT", "text")
	_, err = Load()
	assert.ErrorContains(t, err, "read config")
}
