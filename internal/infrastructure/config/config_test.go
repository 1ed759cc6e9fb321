package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "optilog-connector", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 10*time.Second, cfg.Optilog.Timeout)
	assert.Equal(t, 25.0, cfg.Sync.CarrierStdThreshold)
	assert.Equal(t, 300.0, cfg.Sync.CarrierExpThreshold)
	assert.False(t, cfg.Sync.DedupEnabled)
	assert.Equal(t, 10*time.Minute, cfg.Sync.DedupTTL)
	assert.True(t, cfg.Sync.MinOrderDate.IsZero())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("OPTILOG_APP_PORT", "9090")
	t.Setenv("OPTILOG_OPTILOG_API_KEY", "secret-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "secret-key", cfg.Optilog.APIKey)
}

func TestConfig_Validate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, base().validate())
	})

	t.Run("idle conns cannot exceed open conns", func(t *testing.T) {
		cfg := base()
		cfg.Database.MaxIdleConns = 50
		assert.Error(t, cfg.validate())
	})

	t.Run("production requires api key", func(t *testing.T) {
		cfg := base()
		cfg.App.Env = "production"
		cfg.Database.Password = "pw"
		cfg.Database.SSLMode = "require"
		assert.ErrorContains(t, cfg.validate(), "optilog.api_key")
	})

	t.Run("production forbids debug", func(t *testing.T) {
		cfg := base()
		cfg.App.Env = "production"
		cfg.Optilog.APIKey = "k"
		cfg.Database.Password = "pw"
		cfg.Database.SSLMode = "require"
		cfg.Sync.Debug = true
		assert.ErrorContains(t, cfg.validate(), "sync.debug")
	})

	t.Run("sampling ratio out of range", func(t *testing.T) {
		cfg := base()
		cfg.Telemetry.SamplingRatio = 1.5
		assert.Error(t, cfg.validate())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := &DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "sync",
		Password: "p@ss/word",
		DBName:   "optilog",
		SSLMode:  "require",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.internal:5432")
	assert.Contains(t, dsn, "sslmode=require")
	// password must be escaped, not raw
	assert.NotContains(t, dsn, "p@ss/word")
}

func TestToIntMap(t *testing.T) {
	out := toIntMap(map[string]string{"CMD-1": "7", "CMD-2": "-4", "CMD-3": "oops"})

	assert.Equal(t, 7, out["CMD-1"])
	assert.Equal(t, -4, out["CMD-2"])
	_, ok := out["CMD-3"]
	assert.False(t, ok)

	assert.Nil(t, toIntMap(nil))
}
