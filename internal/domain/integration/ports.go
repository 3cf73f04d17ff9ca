package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Marketplace client port
// ---------------------------------------------------------------------------

// OrderListFilter bounds a remote order listing call.
type OrderListFilter struct {
	StartTime time.Time
	EndTime   time.Time
	// Status filters by remote status string (optional)
	Status string
	// Page is 1-indexed
	Page     int
	PageSize int
}

// RemoteOrderSummary is one row of a remote order listing. The listing
// call is cheap; fetching the full detail is a separate call that can
// fail independently.
type RemoteOrderSummary struct {
	RemoteOrderID string
	// Status is the marketplace's own status string, untranslated
	Status    string
	UpdatedAt time.Time
}

// RemoteOrderPage is one page of a remote order listing.
type RemoteOrderPage struct {
	Orders   []RemoteOrderSummary
	Total    int64
	HasMore  bool
	NextPage int
}

// RemoteOrderItem is a line item on a remote order detail.
type RemoteOrderItem struct {
	RemoteItemID    string
	RemoteProductID string
	RemoteSKU       string
	ProductName     string
	Quantity        int
	UnitPrice       decimal.Decimal
	TotalPrice      decimal.Decimal
}

// RemoteOrder is the full detail of one marketplace order as the
// marketplace reports it.
type RemoteOrder struct {
	RemoteOrderID string
	Status        string
	TotalAmount   decimal.Decimal
	Currency      string

	BuyerName  string
	BuyerEmail string
	BuyerPhone string

	ShippingAddress Address
	BillingAddress  Address
	Items           []RemoteOrderItem

	CargoCarrier        string
	CargoTrackingNumber string

	// RawPayload is the verbatim remote response body
	RawPayload string
	CreatedAt  time.Time
}

// RemoteAck is a marketplace's acknowledgement of an outbound push.
type RemoteAck struct {
	RemoteProductID string
	RemoteSKU       string
	// Raw is the verbatim remote response body
	Raw string
}

// HealthResult reports marketplace connectivity.
type HealthResult struct {
	Healthy bool
	Message string
	Latency time.Duration
}

// MarketplaceClient is the narrow interface through which the engine
// talks to one marketplace. Authentication, request signing and
// pagination mechanics belong to the implementation; the engine never
// constructs marketplace requests itself. Implementations classify
// failures into the sentinel errors of this package (ErrRemoteTimeout,
// ErrRemoteRateLimited, ErrRemoteRejected, ErrRemoteUnavailable,
// ErrRemoteAuthFailed) so pipelines can apply the error taxonomy.
type MarketplaceClient interface {
	// Marketplace returns the marketplace this client serves
	Marketplace() Marketplace

	// ListOrders returns one page of order summaries in remote listing order
	ListOrders(ctx context.Context, filter OrderListFilter) (*RemoteOrderPage, error)

	// GetOrderDetail fetches the full order; may fail independently of
	// the listing call
	GetOrderDetail(ctx context.Context, remoteOrderID string) (*RemoteOrder, error)

	// PushProduct creates or updates the product on the marketplace
	PushProduct(ctx context.Context, product *Product) (*RemoteAck, error)

	// UpdatePrice pushes a price change for an already-mapped product
	UpdatePrice(ctx context.Context, remoteProductID string, price decimal.Decimal) error

	// UpdateStock pushes a quantity change for an already-mapped product
	UpdateStock(ctx context.Context, remoteProductID string, quantity int) error

	// TestConnection verifies credentials and reachability
	TestConnection(ctx context.Context) (*HealthResult, error)
}

// ClientRegistry resolves marketplace identifiers to clients. Clients
// are registered once at start-up; a missing registration is a
// configuration error, not a runtime reflection lookup.
type ClientRegistry interface {
	// Get returns the client for a marketplace, or ErrClientNotRegistered
	Get(marketplace Marketplace) (MarketplaceClient, error)

	// Marketplaces lists the registered marketplaces in registration order
	Marketplaces() []Marketplace
}

// ---------------------------------------------------------------------------
// Commerce store port
// ---------------------------------------------------------------------------

// CommerceStore is the engine's window into the host commerce system.
// Conversion between the canonical model and the host's own order and
// product representations lives entirely behind this interface.
type CommerceStore interface {
	// CreateOrder persists a canonical order and returns the local id
	CreateOrder(ctx context.Context, order *Order) (uuid.UUID, error)

	// UpdateOrderStatus applies a status change to an existing local order
	UpdateOrderStatus(ctx context.Context, localOrderID uuid.UUID, status OrderStatus) error

	// GetProductByLocalID returns the marketplace-facing view of a local product
	GetProductByLocalID(ctx context.Context, marketplace Marketplace, localProductID uuid.UUID) (*Product, error)

	// ListProductsForSync returns active local products with no mapping
	// yet for the marketplace, oldest-updated first. Mapped products are
	// selected through ProductMappingRepository.FindNeedingSync so the
	// two candidate sets never overlap.
	ListProductsForSync(ctx context.Context, marketplace Marketplace, limit int) ([]Product, error)
}

// ---------------------------------------------------------------------------
// Idempotency store port
// ---------------------------------------------------------------------------

// IdempotencyStore remembers processed webhook dedup keys so redelivered
// notifications short-circuit instead of re-applying.
type IdempotencyStore interface {
	// MarkProcessed marks a key as processed with a TTL; returns true if
	// the key was newly marked, false if it was already present
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks whether a key has already been processed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Close releases resources
	Close() error
}
