package integration

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the canonical view of a local product as it relates to one
// marketplace. Products originate locally and are pushed outward, so
// (Marketplace, LocalProductID) is the unique key; RemoteProductID is
// assigned by the marketplace acknowledgement.
type Product struct {
	Marketplace     Marketplace
	LocalProductID  uuid.UUID
	RemoteProductID string
	RemoteSKU       string
	Name            string
	Price           decimal.Decimal
	Quantity        int
	SyncStatus      MappingStatus
	// ErrorMessage holds the last push failure, retained until the next
	// successful pass
	ErrorMessage string
	LastSyncAt   *time.Time
}

// NeedsSync reports whether the product should be included in the next
// outbound push. Synced products go stale after staleAfter; products in
// error state are held back until the backoff window has elapsed, so a
// poison product is not retried every cycle but is still retried
// eventually.
func (p *Product) NeedsSync(now time.Time, staleAfter, backoff time.Duration) bool {
	switch p.SyncStatus {
	case MappingStatusDisabled:
		return false
	case MappingStatusError:
		return p.LastSyncAt == nil || now.Sub(*p.LastSyncAt) >= backoff
	case MappingStatusSynced:
		return p.LastSyncAt == nil || now.Sub(*p.LastSyncAt) >= staleAfter
	default:
		return true
	}
}
