package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/marketsync/backend/internal/domain/integration"
)

// Config holds all application configuration
type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Log          LogConfig
	HTTP         HTTPConfig
	Sync         SyncConfig
	Marketplaces map[string]MarketplaceConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	MaxBodySize    int64
	TrustedProxies []string
	// CORSAllowOrigins is empty by default; cross-origin requests are
	// rejected until configured
	CORSAllowOrigins []string
}

// SyncConfig holds sync coordinator configuration
type SyncConfig struct {
	Enabled      bool
	PullInterval time.Duration
	// PullLookback is how far back a scheduled pull lists orders
	PullLookback time.Duration
	Workers      int
	PageSize     int
	MaxRetries   int
	RetryDelay   time.Duration
	JobTimeout   time.Duration
	CallTimeout  time.Duration
	// ProductStaleAfter is the re-push horizon for synced products
	ProductStaleAfter time.Duration
	// ProductRetryBackoff is the hold-off after a failed product push
	ProductRetryBackoff time.Duration
	ProductBatchSize    int
	// WebhookDedupWindow is how long processed deliveries stay remembered
	WebhookDedupWindow time.Duration
	// HistoryLimit caps the in-memory run history
	HistoryLimit int
}

// MarketplaceConfig holds one marketplace's credentials and endpoint.
type MarketplaceConfig struct {
	Enabled   bool
	BaseURL   string
	APIKey    string
	APISecret string
	SellerID  string
	Timeout   time.Duration
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with MKT_ prefix (e.g., MKT_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("MKT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
		},
		Sync: SyncConfig{
			Enabled:             v.GetBool("sync.enabled"),
			PullInterval:        v.GetDuration("sync.pull_interval"),
			PullLookback:        v.GetDuration("sync.pull_lookback"),
			Workers:             v.GetInt("sync.workers"),
			PageSize:            v.GetInt("sync.page_size"),
			MaxRetries:          v.GetInt("sync.max_retries"),
			RetryDelay:          v.GetDuration("sync.retry_delay"),
			JobTimeout:          v.GetDuration("sync.job_timeout"),
			CallTimeout:         v.GetDuration("sync.call_timeout"),
			ProductStaleAfter:   v.GetDuration("sync.product_stale_after"),
			ProductRetryBackoff: v.GetDuration("sync.product_retry_backoff"),
			ProductBatchSize:    v.GetInt("sync.product_batch_size"),
			WebhookDedupWindow:  v.GetDuration("sync.webhook_dedup_window"),
			HistoryLimit:        v.GetInt("sync.history_limit"),
		},
		Marketplaces: make(map[string]MarketplaceConfig),
	}

	for _, m := range integration.AllMarketplaces() {
		key := m.String()
		cfg.Marketplaces[key] = MarketplaceConfig{
			Enabled:   v.GetBool("marketplaces." + key + ".enabled"),
			BaseURL:   v.GetString("marketplaces." + key + ".base_url"),
			APIKey:    v.GetString("marketplaces." + key + ".api_key"),
			APISecret: v.GetString("marketplaces." + key + ".api_secret"),
			SellerID:  v.GetString("marketplaces." + key + ".seller_id"),
			Timeout:   v.GetDuration("marketplaces." + key + ".timeout"),
		}
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "marketsync-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "marketsync"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
	if cfg.Sync.PullInterval == 0 {
		cfg.Sync.PullInterval = 15 * time.Minute
	}
	if cfg.Sync.PullLookback == 0 {
		cfg.Sync.PullLookback = 24 * time.Hour
	}
	if cfg.Sync.Workers == 0 {
		cfg.Sync.Workers = 3
	}
	if cfg.Sync.PageSize == 0 {
		cfg.Sync.PageSize = 50
	}
	if cfg.Sync.MaxRetries == 0 {
		cfg.Sync.MaxRetries = 3
	}
	if cfg.Sync.RetryDelay == 0 {
		cfg.Sync.RetryDelay = 5 * time.Minute
	}
	if cfg.Sync.JobTimeout == 0 {
		cfg.Sync.JobTimeout = 30 * time.Minute
	}
	if cfg.Sync.CallTimeout == 0 {
		cfg.Sync.CallTimeout = 30 * time.Second
	}
	if cfg.Sync.ProductStaleAfter == 0 {
		cfg.Sync.ProductStaleAfter = 24 * time.Hour
	}
	if cfg.Sync.ProductRetryBackoff == 0 {
		cfg.Sync.ProductRetryBackoff = time.Hour
	}
	if cfg.Sync.ProductBatchSize == 0 {
		cfg.Sync.ProductBatchSize = 100
	}
	if cfg.Sync.WebhookDedupWindow == 0 {
		cfg.Sync.WebhookDedupWindow = 24 * time.Hour
	}
	if cfg.Sync.HistoryLimit == 0 {
		cfg.Sync.HistoryLimit = 100
	}
	for key, mc := range cfg.Marketplaces {
		if mc.Timeout == 0 {
			mc.Timeout = 30 * time.Second
			cfg.Marketplaces[key] = mc
		}
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
	}

	for key, mc := range c.Marketplaces {
		if !mc.Enabled {
			continue
		}
		if mc.BaseURL == "" {
			return fmt.Errorf("marketplaces.%s.base_url is required when enabled", key)
		}
		if mc.APIKey == "" {
			return fmt.Errorf("marketplaces.%s.api_key is required when enabled", key)
		}
	}

	return nil
}

// EnabledMarketplaces returns the marketplaces with enabled configuration,
// in the canonical marketplace order.
func (c *Config) EnabledMarketplaces() []integration.Marketplace {
	out := make([]integration.Marketplace, 0, len(c.Marketplaces))
	for _, m := range integration.AllMarketplaces() {
		if mc, ok := c.Marketplaces[m.String()]; ok && mc.Enabled {
			out = append(out, m)
		}
	}
	return out
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
