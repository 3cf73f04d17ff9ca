package integration

import (
	"time"

	"github.com/marketsync/backend/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// Pipeline results
// ---------------------------------------------------------------------------

// ItemError describes one failed item within a batch.
type ItemError struct {
	TargetID string                 `json:"target_id"`
	Class    integration.ErrorClass `json:"class"`
	Message  string                 `json:"message"`
}

// ImportSummary is the outcome of one pipeline run. A single item's
// failure never fails the run; only infrastructure-level errors do.
type ImportSummary struct {
	Marketplace integration.Marketplace `json:"marketplace"`
	Operation   integration.Operation   `json:"operation"`
	Imported    int                     `json:"imported_count"`
	Skipped     int                     `json:"skipped_count"`
	Errors      []ItemError             `json:"errors"`
	Duration    time.Duration           `json:"duration"`
}

// ErrorCount returns the number of failed items.
func (s *ImportSummary) ErrorCount() int {
	return len(s.Errors)
}

// ---------------------------------------------------------------------------
// Webhook types
// ---------------------------------------------------------------------------

// WebhookEvent is the engine-side shape of a marketplace push
// notification. Marketplaces deliver at least once; the reconciler must
// treat redeliveries as replays.
type WebhookEvent struct {
	EventType       string `json:"event_type" binding:"required"`
	RemoteOrderID   string `json:"remote_order_id"`
	RemoteProductID string `json:"remote_product_id"`
	// Status is the marketplace's own status string, untranslated
	Status string `json:"status"`
}

// TargetID returns the entity identifier the event refers to.
func (e *WebhookEvent) TargetID() string {
	if e.RemoteOrderID != "" {
		return e.RemoteOrderID
	}
	return e.RemoteProductID
}

// WebhookResult is the reconciler's answer to the transport layer, which
// decides whether to ask the marketplace for redelivery.
type WebhookResult struct {
	Status    integration.LogStatus `json:"status"`
	Duplicate bool                  `json:"duplicate"`
	Retryable bool                  `json:"retryable"`
	Message   string                `json:"message,omitempty"`
}

// ---------------------------------------------------------------------------
// Dashboard types
// ---------------------------------------------------------------------------

// MarketplaceStats is the dashboard aggregate for one marketplace.
type MarketplaceStats struct {
	Marketplace    integration.Marketplace `json:"marketplace"`
	OrdersMapped   int64                   `json:"orders_mapped"`
	ProductsMapped int64                   `json:"products_mapped"`
	SyncedToday    int64                   `json:"synced_today"`
	ErrorCount     int64                   `json:"error_count"`
	LastSyncAt     *time.Time              `json:"last_sync_at,omitempty"`
	LastError      string                  `json:"last_error,omitempty"`
}

// DashboardStats is the read-only aggregate consumed by the admin UI.
type DashboardStats struct {
	TotalMapped  int64              `json:"total_mapped"`
	SyncedToday  int64              `json:"synced_today"`
	ErrorCount   int64              `json:"error_count"`
	Marketplaces []MarketplaceStats `json:"marketplaces"`
}
