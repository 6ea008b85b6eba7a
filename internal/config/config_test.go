package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Aidin1998/investboard/internal/advisory"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(zap.NewNop(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 30, cfg.Telemetry.RetentionDays)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)

	mode, err := cfg.Engine.RoundingMode()
	require.NoError(t, err)
	assert.Equal(t, advisory.RoundHalfAwayFromZero, mode)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
database:
  driver: postgres
  dsn: postgres://localhost/investboard
engine:
  rounding: half_even
`), 0o600))

	t.Setenv("INVESTBOARD_SERVER_PORT", "9191")
	t.Setenv("INVESTBOARD_TELEMETRY_RETENTION_DAYS", "7")

	cfg, err := Load(zap.NewNop(), path)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 7, cfg.Telemetry.RetentionDays)

	mode, err := cfg.Engine.RoundingMode()
	require.NoError(t, err)
	assert.Equal(t, advisory.RoundHalfEven, mode)
}

func TestValidateRejects(t *testing.T) {
	base := func() *Config {
		cfg, err := Load(zap.NewNop())
		require.NoError(t, err)
		return cfg
	}

	cfg := base()
	cfg.Database.Driver = "mysql"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Engine.Rounding = "ceiling"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Auth.Enabled = true
	cfg.Auth.JWTSecret = "short"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Kafka.Enabled = true
	cfg.Kafka.Topic = ""
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Environment = "production"
	assert.Error(t, cfg.Validate())
}
