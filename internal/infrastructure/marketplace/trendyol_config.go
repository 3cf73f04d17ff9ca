package marketplace

import (
	"encoding/base64"
	"errors"

	"github.com/marketsync/backend/internal/infrastructure/config"
)

// TrendyolConfig holds configuration for the Trendyol supplier API
type TrendyolConfig struct {
	// APIKey and APISecret come from the Trendyol partner portal
	APIKey    string
	APISecret string
	// SupplierID is the numeric supplier (seller) identifier
	SupplierID string
	// BaseURL is the API endpoint (production or stage)
	BaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// TrendyolProductionAPIURL is the production API endpoint
const TrendyolProductionAPIURL = "https://api.trendyol.com/sapigw"

// Errors for Trendyol configuration
var (
	ErrTrendyolConfigMissingAPIKey     = errors.New("trendyol: api key is required")
	ErrTrendyolConfigMissingAPISecret  = errors.New("trendyol: api secret is required")
	ErrTrendyolConfigMissingSupplierID = errors.New("trendyol: supplier id is required")
)

// NewTrendyolConfig creates a new Trendyol configuration with defaults
func NewTrendyolConfig(apiKey, apiSecret, supplierID string) *TrendyolConfig {
	return &TrendyolConfig{
		APIKey:         apiKey,
		APISecret:      apiSecret,
		SupplierID:     supplierID,
		BaseURL:        TrendyolProductionAPIURL,
		TimeoutSeconds: 30,
	}
}

// TrendyolConfigFromApp maps the application-level marketplace settings
// onto the adapter configuration
func TrendyolConfigFromApp(cfg config.MarketplaceConfig) *TrendyolConfig {
	c := NewTrendyolConfig(cfg.APIKey, cfg.APISecret, cfg.SellerID)
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		c.TimeoutSeconds = int(cfg.Timeout.Seconds())
	}
	return c
}

// Validate validates the Trendyol configuration
func (c *TrendyolConfig) Validate() error {
	if c.APIKey == "" {
		return ErrTrendyolConfigMissingAPIKey
	}
	if c.APISecret == "" {
		return ErrTrendyolConfigMissingAPISecret
	}
	if c.SupplierID == "" {
		return ErrTrendyolConfigMissingSupplierID
	}
	if c.BaseURL == "" {
		c.BaseURL = TrendyolProductionAPIURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}

// BasicAuth returns the Authorization header value. Trendyol uses HTTP
// basic auth with the API key and secret as credentials.
func (c *TrendyolConfig) BasicAuth() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.APIKey+":"+c.APISecret))
}
