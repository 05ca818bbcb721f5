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
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, QueueMemory, cfg.QueueDriver)
	assert.Equal(t, 168*time.Hour, cfg.TokenTTL())
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins())
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("VIDTUBE_TEST_MARKER=1\nJWT_SECRET=from-file\nPORT=9999\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	// godotenv.Load never overrides variables that are already set, so make
	// sure the ones under test are unset for this process.
	for _, k := range []string{"JWT_SECRET", "PORT", "VIDTUBE_TEST_MARKER"} {
		old, had := os.LookupEnv(k)
		os.Unsetenv(k)
		t.Cleanup(func() {
			if had {
				os.Setenv(k, old)
			} else {
				os.Unsetenv(k)
			}
		})
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, "9999", cfg.Port)
}

func TestValidate(t *testing.T) {
	base := Config{DBDriver: DriverSQLite, QueueDriver: QueueMemory, JWTSecret: "x", TokenTTLHours: 1}
	require.NoError(t, base.Validate())

	bad := base
	bad.DBDriver = "oracle"
	assert.Error(t, bad.Validate())

	bad = base
	bad.DBDriver = DriverPostgres
	assert.Error(t, bad.Validate(), "postgres without DATABASE_URL")

	bad = base
	bad.QueueDriver = "kafka"
	assert.Error(t, bad.Validate())

	bad = base
	bad.JWTSecret = " "
	assert.Error(t, bad.Validate())
}

func TestAllowedOrigins(t *testing.T) {
	c := Config{CORSOrigins: "https://a.example, https://b.example,"}
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.AllowedOrigins())
}
