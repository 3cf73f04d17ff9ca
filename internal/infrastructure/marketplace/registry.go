package marketplace

import (
	"sync"

	"go.uber.org/zap"

	"github.com/marketsync/backend/internal/domain/integration"
	"github.com/marketsync/backend/internal/infrastructure/config"
)

// Registry resolves marketplace identifiers to clients. Registration
// happens once at start-up; lookups afterwards are read-only.
type Registry struct {
	mu      sync.RWMutex
	clients map[integration.Marketplace]integration.MarketplaceClient
	order   []integration.Marketplace
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[integration.Marketplace]integration.MarketplaceClient),
	}
}

var _ integration.ClientRegistry = (*Registry)(nil)

// Register adds a client. Registering the same marketplace twice
// replaces the previous client and keeps its position.
func (r *Registry) Register(client integration.MarketplaceClient) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := client.Marketplace()
	if _, exists := r.clients[m]; !exists {
		r.order = append(r.order, m)
	}
	r.clients[m] = client
}

// Get returns the client for a marketplace, or ErrClientNotRegistered
func (r *Registry) Get(marketplace integration.Marketplace) (integration.MarketplaceClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, ok := r.clients[marketplace]
	if !ok {
		return nil, integration.ErrClientNotRegistered
	}
	return client, nil
}

// Marketplaces lists the registered marketplaces in registration order
func (r *Registry) Marketplaces() []integration.Marketplace {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]integration.Marketplace, len(r.order))
	copy(out, r.order)
	return out
}

// BuildRegistry constructs clients for every enabled marketplace in the
// configuration. Marketplaces without a native adapter are skipped with
// a warning so one missing integration does not block the rest.
func BuildRegistry(cfg *config.Config, log *zap.Logger) *Registry {
	registry := NewRegistry()

	for _, m := range cfg.EnabledMarketplaces() {
		mcfg := cfg.Marketplaces[m.String()]

		client, err := newClient(m, mcfg)
		if err != nil {
			log.Warn("skipping marketplace",
				zap.String("marketplace", m.String()),
				zap.Error(err))
			continue
		}

		registry.Register(client)
		log.Info("registered marketplace client", zap.String("marketplace", m.String()))
	}

	return registry
}

// newClient builds the native adapter for one marketplace
func newClient(m integration.Marketplace, cfg config.MarketplaceConfig) (integration.MarketplaceClient, error) {
	switch m {
	case integration.MarketplaceTrendyol:
		return NewTrendyolClient(TrendyolConfigFromApp(cfg))
	case integration.MarketplaceN11:
		return NewN11Client(N11ConfigFromApp(cfg))
	default:
		return nil, integration.ErrNotConfigured
	}
}
