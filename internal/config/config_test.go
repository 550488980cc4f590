package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
api:
  environment: test
  port: "9090"
  allowed_cors_domains: ["http://localhost:3000"]
  jwt_signing_key: secret
gin:
  mode: test
postgres:
  host: localhost
  port: "5432"
  user: storefront
  password: storefront
  db: storefront
engine:
  store_timeout: 2s
  order_number_prefix: SF
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	conf, err := Load(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "9090", conf.API.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, conf.API.AllowedCORSDomains)
	assert.Equal(t, 12*time.Hour, conf.API.JWTExpiry)
	assert.Equal(t, 2*time.Second, conf.Engine.StoreTimeout)
	assert.Equal(t, "SF", conf.Engine.OrderNumberPrefix)
	assert.Equal(t, "info", conf.Log.Level)
	assert.Equal(t, float64(60), conf.RateLimit.RequestsPerMinute)
	assert.Equal(t, "host=localhost port=5432 user=storefront password=storefront dbname=storefront sslmode=disable", conf.Postgres.DSN())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("STOREFRONT_API_PORT", "7070")
	t.Setenv("STOREFRONT_ENGINE_ORDER_NUMBER_PREFIX", "ENV")

	conf, err := Load(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "7070", conf.API.Port)
	assert.Equal(t, "ENV", conf.Engine.OrderNumberPrefix)
}

func TestLoad_RejectsZeroTimeout(t *testing.T) {
	t.Setenv("STOREFRONT_ENGINE_STORE_TIMEOUT", "0s")

	_, err := Load(writeConfig(t, sample))
	assert.Error(t, err)
}
