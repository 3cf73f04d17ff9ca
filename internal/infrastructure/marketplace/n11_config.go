package marketplace

import (
	"errors"

	"github.com/marketsync/backend/internal/infrastructure/config"
)

// N11Config holds configuration for the N11 seller API
type N11Config struct {
	// AppKey and AppSecret come from the N11 seller office
	AppKey    string
	AppSecret string
	// BaseURL is the API endpoint
	BaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// N11ProductionAPIURL is the production API endpoint
const N11ProductionAPIURL = "https://api.n11.com/ms"

// Errors for N11 configuration
var (
	ErrN11ConfigMissingAppKey    = errors.New("n11: app key is required")
	ErrN11ConfigMissingAppSecret = errors.New("n11: app secret is required")
)

// NewN11Config creates a new N11 configuration with defaults
func NewN11Config(appKey, appSecret string) *N11Config {
	return &N11Config{
		AppKey:         appKey,
		AppSecret:      appSecret,
		BaseURL:        N11ProductionAPIURL,
		TimeoutSeconds: 30,
	}
}

// N11ConfigFromApp maps the application-level marketplace settings onto
// the adapter configuration
func N11ConfigFromApp(cfg config.MarketplaceConfig) *N11Config {
	c := NewN11Config(cfg.APIKey, cfg.APISecret)
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		c.TimeoutSeconds = int(cfg.Timeout.Seconds())
	}
	return c
}

// Validate validates the N11 configuration
func (c *N11Config) Validate() error {
	if c.AppKey == "" {
		return ErrN11ConfigMissingAppKey
	}
	if c.AppSecret == "" {
		return ErrN11ConfigMissingAppSecret
	}
	if c.BaseURL == "" {
		c.BaseURL = N11ProductionAPIURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}
