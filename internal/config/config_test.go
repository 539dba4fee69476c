package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
api:
  environment: production
  port: "9090"
  jwt_signing_key: secret
  allowed_cors_domains:
    - https://mkwawa.example
storage:
  driver: memory
rate_limit:
  capacity: 3
  refill_interval: 2s
  ttl: 1s
booking:
  reference_prefix: TST
`)

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", conf.API.Environment)
	assert.Equal(t, "9090", conf.API.Port)
	assert.Equal(t, []string{"https://mkwawa.example"}, conf.API.AllowedCORSDomains)
	assert.Equal(t, 24*time.Hour, conf.API.JWTTTL)
	assert.Equal(t, StorageMemory, conf.Storage.Driver)
	assert.Equal(t, 3, conf.RateLimit.Capacity)
	assert.Equal(t, 1, conf.RateLimit.RefillTokens)
	assert.Equal(t, 10*time.Second, conf.RateLimit.TTL, "ttl is raised to five refill intervals")
	assert.Equal(t, "TST", conf.Booking.ReferencePrefix)
	assert.Equal(t, 8, conf.Booking.ReferenceLength)
	assert.Equal(t, 5, conf.Booking.MaxAttempts)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
api:
  port: "9090"
`)
	t.Setenv("APP_API_PORT", "7000")
	t.Setenv("APP_STORAGE_DRIVER", "memory")

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7000", conf.API.Port)
	assert.Equal(t, StorageMemory, conf.Storage.Driver)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "storage:\n  driver: mongo\n"))
	assert.ErrorContains(t, err, "unknown storage driver")
}

func TestPostgresConfig_DSN(t *testing.T) {
	c := &PostgresConfig{Host: "db", Port: "5432", User: "u", Password: "p", DB: "market", SSLMode: "disable"}

	assert.Equal(t, "postgres://u:p@db:5432/market?sslmode=disable", c.DSN())
}
