package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketsync/backend/internal/domain/integration"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"MKT_APP_NAME":                       os.Getenv("MKT_APP_NAME"),
		"MKT_APP_ENV":                        os.Getenv("MKT_APP_ENV"),
		"MKT_APP_PORT":                       os.Getenv("MKT_APP_PORT"),
		"MKT_DATABASE_HOST":                  os.Getenv("MKT_DATABASE_HOST"),
		"MKT_DATABASE_PORT":                  os.Getenv("MKT_DATABASE_PORT"),
		"MKT_DATABASE_USER":                  os.Getenv("MKT_DATABASE_USER"),
		"MKT_DATABASE_PASSWORD":              os.Getenv("MKT_DATABASE_PASSWORD"),
		"MKT_DATABASE_DBNAME":                os.Getenv("MKT_DATABASE_DBNAME"),
		"MKT_DATABASE_SSLMODE":               os.Getenv("MKT_DATABASE_SSLMODE"),
		"MKT_DATABASE_MAX_OPEN_CONNS":        os.Getenv("MKT_DATABASE_MAX_OPEN_CONNS"),
		"MKT_DATABASE_MAX_IDLE_CONNS":        os.Getenv("MKT_DATABASE_MAX_IDLE_CONNS"),
		"MKT_SYNC_PULL_INTERVAL":             os.Getenv("MKT_SYNC_PULL_INTERVAL"),
		"MKT_SYNC_WORKERS":                   os.Getenv("MKT_SYNC_WORKERS"),
		"MKT_MARKETPLACES_TRENDYOL_ENABLED":  os.Getenv("MKT_MARKETPLACES_TRENDYOL_ENABLED"),
		"MKT_MARKETPLACES_TRENDYOL_BASE_URL": os.Getenv("MKT_MARKETPLACES_TRENDYOL_BASE_URL"),
		"MKT_MARKETPLACES_TRENDYOL_API_KEY":  os.Getenv("MKT_MARKETPLACES_TRENDYOL_API_KEY"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "marketsync-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "marketsync", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 15*time.Minute, cfg.Sync.PullInterval)
		assert.Equal(t, 24*time.Hour, cfg.Sync.PullLookback)
		assert.Equal(t, 3, cfg.Sync.Workers)
		assert.Equal(t, time.Hour, cfg.Sync.ProductRetryBackoff)
		assert.Equal(t, 24*time.Hour, cfg.Sync.WebhookDedupWindow)
	})

	t.Run("loads values from environment variables with MKT prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("MKT_APP_NAME", "test-app")
		os.Setenv("MKT_DATABASE_HOST", "testdb.local")
		os.Setenv("MKT_DATABASE_PORT", "5433")
		os.Setenv("MKT_SYNC_PULL_INTERVAL", "5m")
		os.Setenv("MKT_SYNC_WORKERS", "7")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, 5*time.Minute, cfg.Sync.PullInterval)
		assert.Equal(t, 7, cfg.Sync.Workers)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("MKT_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("MKT_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("enabled marketplace requires base url and api key", func(t *testing.T) {
		clearEnv()
		os.Setenv("MKT_MARKETPLACES_TRENDYOL_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "marketplaces.trendyol")
	})

	t.Run("enabled marketplace with credentials passes", func(t *testing.T) {
		clearEnv()
		os.Setenv("MKT_MARKETPLACES_TRENDYOL_ENABLED", "true")
		os.Setenv("MKT_MARKETPLACES_TRENDYOL_BASE_URL", "https://api.trendyol.com/sapigw")
		os.Setenv("MKT_MARKETPLACES_TRENDYOL_API_KEY", "key-123")

		cfg, err := Load()
		require.NoError(t, err)

		enabled := cfg.EnabledMarketplaces()
		assert.Equal(t, []integration.Marketplace{integration.MarketplaceTrendyol}, enabled)
		assert.Equal(t, 30*time.Second, cfg.Marketplaces["trendyol"].Timeout)
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	originalEnv := os.Getenv("MKT_APP_ENV")
	originalPass := os.Getenv("MKT_DATABASE_PASSWORD")
	originalSSL := os.Getenv("MKT_DATABASE_SSLMODE")
	defer func() {
		os.Setenv("MKT_APP_ENV", originalEnv)
		os.Setenv("MKT_DATABASE_PASSWORD", originalPass)
		os.Setenv("MKT_DATABASE_SSLMODE", originalSSL)
	}()

	t.Run("production requires database password", func(t *testing.T) {
		os.Setenv("MKT_APP_ENV", "production")
		os.Unsetenv("MKT_DATABASE_PASSWORD")
		os.Setenv("MKT_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password")
	})

	t.Run("production rejects sslmode disable", func(t *testing.T) {
		os.Setenv("MKT_APP_ENV", "production")
		os.Setenv("MKT_DATABASE_PASSWORD", "secret")
		os.Setenv("MKT_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db.local",
		Port:     5432,
		User:     "sync",
		Password: "p@ss/word",
		DBName:   "marketsync",
		SSLMode:  "require",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.local:5432")
	assert.Contains(t, dsn, "sslmode=require")
	// Special characters in the password must be escaped
	assert.NotContains(t, dsn, "p@ss/word")
}
