package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// MappingStatus
// ---------------------------------------------------------------------------

// MappingStatus is the synchronization state of a mapping record.
type MappingStatus string

const (
	MappingStatusPending  MappingStatus = "pending"
	MappingStatusSynced   MappingStatus = "synced"
	MappingStatusError    MappingStatus = "error"
	MappingStatusDisabled MappingStatus = "disabled"
)

// IsValid returns true if the status is valid
func (s MappingStatus) IsValid() bool {
	switch s {
	case MappingStatusPending, MappingStatusSynced, MappingStatusError, MappingStatusDisabled:
		return true
	default:
		return false
	}
}

// String returns the string representation of MappingStatus
func (s MappingStatus) String() string {
	return string(s)
}

// ---------------------------------------------------------------------------
// MappingRecord
// ---------------------------------------------------------------------------

// MappingRecord is the durable link between a marketplace-scoped remote
// identifier and a local entity. The same envelope backs both order and
// product mappings; the repositories keep them in separate tables with
// different unique keys. Records are created on first sight of a remote
// entity, updated on every re-sync, and never hard-deleted: audit
// continuity is preserved by soft-disabling instead.
type MappingRecord struct {
	ID          uuid.UUID
	Marketplace Marketplace
	// RemoteID is the identifier on the marketplace. Unique per
	// marketplace for orders; assigned by the marketplace ack for products.
	RemoteID string
	// LocalID is the local entity id. Nil until linked for orders; the
	// unique key for products.
	LocalID *uuid.UUID
	// RemoteSKU is the marketplace-facing SKU (product mappings only)
	RemoteSKU    string
	Status       MappingStatus
	ErrorMessage string
	// Version supports optimistic concurrency; it advances on every write
	Version    int64
	LastSyncAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewOrderMapping creates a mapping for a remote order first seen now.
func NewOrderMapping(marketplace Marketplace, remoteOrderID string) (*MappingRecord, error) {
	if !marketplace.IsValid() {
		return nil, ErrInvalidMarketplace
	}
	if remoteOrderID == "" {
		return nil, ErrMappingInvalidKey
	}
	now := time.Now()
	return &MappingRecord{
		ID:          uuid.New(),
		Marketplace: marketplace,
		RemoteID:    remoteOrderID,
		Status:      MappingStatusPending,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// NewProductMapping creates a mapping for a local product first pushed now.
func NewProductMapping(marketplace Marketplace, localProductID uuid.UUID) (*MappingRecord, error) {
	if !marketplace.IsValid() {
		return nil, ErrInvalidMarketplace
	}
	if localProductID == uuid.Nil {
		return nil, ErrMappingInvalidKey
	}
	now := time.Now()
	local := localProductID
	return &MappingRecord{
		ID:          uuid.New(),
		Marketplace: marketplace,
		LocalID:     &local,
		Status:      MappingStatusPending,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Link sets the local entity id. A mapping is linked at most once; an
// attempt to re-link to a different local id fails.
func (r *MappingRecord) Link(localID uuid.UUID) error {
	if localID == uuid.Nil {
		return ErrMappingInvalidKey
	}
	if r.LocalID != nil && *r.LocalID != localID {
		return ErrMappingRelinked
	}
	local := localID
	r.LocalID = &local
	r.UpdatedAt = time.Now()
	return nil
}

// IsLinked reports whether a local entity has been attached.
func (r *MappingRecord) IsLinked() bool {
	return r.LocalID != nil && *r.LocalID != uuid.Nil
}

// RecordSuccess marks the latest sync pass as successful.
func (r *MappingRecord) RecordSuccess() {
	now := time.Now()
	r.Status = MappingStatusSynced
	r.ErrorMessage = ""
	r.LastSyncAt = &now
	r.UpdatedAt = now
}

// RecordFailure marks the latest sync pass as failed, retaining the
// message. The local linkage is left untouched.
func (r *MappingRecord) RecordFailure(message string) {
	now := time.Now()
	r.Status = MappingStatusError
	r.ErrorMessage = message
	r.LastSyncAt = &now
	r.UpdatedAt = now
}

// Disable soft-disables the mapping. Disabled mappings are excluded from
// sync selection but kept for audit continuity.
func (r *MappingRecord) Disable() {
	r.Status = MappingStatusDisabled
	r.UpdatedAt = time.Now()
}

// ---------------------------------------------------------------------------
// Repositories
// ---------------------------------------------------------------------------

// MappingStats is the dashboard-facing aggregate over one mapping table.
type MappingStats struct {
	Total      int64
	Synced     int64
	Errors     int64
	SyncedToday int64
	LastSyncAt *time.Time
}

// OrderMappingRepository persists order mappings keyed by
// (marketplace, remote_order_id).
type OrderMappingRepository interface {
	// FindByRemote finds a mapping by its remote order id
	FindByRemote(ctx context.Context, marketplace Marketplace, remoteOrderID string) (*MappingRecord, error)

	// FindByLocal finds a mapping by the linked local order id
	FindByLocal(ctx context.Context, marketplace Marketplace, localOrderID uuid.UUID) (*MappingRecord, error)

	// Upsert atomically creates or updates the record keyed by
	// (marketplace, remote_order_id). Concurrent callers racing on the
	// same key converge to exactly one row; the loser's write becomes an
	// update. A local id already set is never overwritten.
	Upsert(ctx context.Context, record *MappingRecord) error

	// MarkError sets the status to error without touching the local
	// linkage, creating the record if it does not exist yet
	MarkError(ctx context.Context, marketplace Marketplace, remoteOrderID, message string) error

	// Stats aggregates counts for the dashboard
	Stats(ctx context.Context, marketplace Marketplace) (*MappingStats, error)
}

// ProductMappingRepository persists product mappings keyed by
// (marketplace, local_product_id).
type ProductMappingRepository interface {
	// FindByLocal finds a mapping by the local product id
	FindByLocal(ctx context.Context, marketplace Marketplace, localProductID uuid.UUID) (*MappingRecord, error)

	// FindByRemote finds a mapping by the remote product id
	FindByRemote(ctx context.Context, marketplace Marketplace, remoteProductID string) (*MappingRecord, error)

	// Upsert atomically creates or updates the record keyed by
	// (marketplace, local_product_id), with the same convergence
	// guarantee as the order variant
	Upsert(ctx context.Context, record *MappingRecord) error

	// MarkError sets the status to error for a local product without
	// touching the remote linkage
	MarkError(ctx context.Context, marketplace Marketplace, localProductID uuid.UUID, message string) error

	// FindNeedingSync returns mappings that should be pushed again:
	// pending, stale beyond staleAfter, or in error with the backoff
	// window elapsed. Disabled mappings are never returned.
	FindNeedingSync(ctx context.Context, marketplace Marketplace, now time.Time, staleAfter, backoff time.Duration, limit int) ([]MappingRecord, error)

	// Stats aggregates counts for the dashboard
	Stats(ctx context.Context, marketplace Marketplace) (*MappingStats, error)
}
