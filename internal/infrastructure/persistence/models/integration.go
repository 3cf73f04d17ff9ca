package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marketsync/backend/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// Mapping models
// ---------------------------------------------------------------------------

// OrderMappingModel is the persistence model for order mapping records.
// (marketplace, remote_order_id) is the natural key.
type OrderMappingModel struct {
	ID            uuid.UUID                 `gorm:"type:uuid;primary_key"`
	Marketplace   integration.Marketplace   `gorm:"type:varchar(20);not null;uniqueIndex:idx_order_mappings_remote,priority:1"`
	RemoteOrderID string                    `gorm:"type:varchar(100);not null;uniqueIndex:idx_order_mappings_remote,priority:2"`
	LocalOrderID  *uuid.UUID                `gorm:"type:uuid;index:idx_order_mappings_local"`
	Status        integration.MappingStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	ErrorMessage  string                    `gorm:"type:text"`
	Version       int64                     `gorm:"not null;default:1"`
	LastSyncAt    *time.Time                `gorm:"index"`
	CreatedAt     time.Time                 `gorm:"not null"`
	UpdatedAt     time.Time                 `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderMappingModel) TableName() string {
	return "order_mappings"
}

// ToDomain converts the persistence model to a domain MappingRecord.
func (m *OrderMappingModel) ToDomain() *integration.MappingRecord {
	return &integration.MappingRecord{
		ID:           m.ID,
		Marketplace:  m.Marketplace,
		RemoteID:     m.RemoteOrderID,
		LocalID:      m.LocalOrderID,
		Status:       m.Status,
		ErrorMessage: m.ErrorMessage,
		Version:      m.Version,
		LastSyncAt:   m.LastSyncAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain MappingRecord.
func (m *OrderMappingModel) FromDomain(r *integration.MappingRecord) {
	m.ID = r.ID
	m.Marketplace = r.Marketplace
	m.RemoteOrderID = r.RemoteID
	m.LocalOrderID = r.LocalID
	m.Status = r.Status
	m.ErrorMessage = r.ErrorMessage
	m.Version = r.Version
	m.LastSyncAt = r.LastSyncAt
	m.CreatedAt = r.CreatedAt
	m.UpdatedAt = r.UpdatedAt
}

// OrderMappingModelFromDomain creates a new persistence model from a domain record.
func OrderMappingModelFromDomain(r *integration.MappingRecord) *OrderMappingModel {
	m := &OrderMappingModel{}
	m.FromDomain(r)
	return m
}

// ProductMappingModel is the persistence model for product mapping
// records. (marketplace, local_product_id) is the natural key; the
// remote product id is assigned by the marketplace acknowledgement.
type ProductMappingModel struct {
	ID              uuid.UUID                 `gorm:"type:uuid;primary_key"`
	Marketplace     integration.Marketplace   `gorm:"type:varchar(20);not null;uniqueIndex:idx_product_mappings_local,priority:1;index:idx_product_mappings_remote,priority:1"`
	LocalProductID  uuid.UUID                 `gorm:"type:uuid;not null;uniqueIndex:idx_product_mappings_local,priority:2"`
	RemoteProductID string                    `gorm:"type:varchar(100);index:idx_product_mappings_remote,priority:2"`
	RemoteSKU       string                    `gorm:"type:varchar(100)"`
	Status          integration.MappingStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	ErrorMessage    string                    `gorm:"type:text"`
	Version         int64                     `gorm:"not null;default:1"`
	LastSyncAt      *time.Time                `gorm:"index"`
	CreatedAt       time.Time                 `gorm:"not null"`
	UpdatedAt       time.Time                 `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductMappingModel) TableName() string {
	return "product_mappings"
}

// ToDomain converts the persistence model to a domain MappingRecord.
func (m *ProductMappingModel) ToDomain() *integration.MappingRecord {
	local := m.LocalProductID
	return &integration.MappingRecord{
		ID:           m.ID,
		Marketplace:  m.Marketplace,
		RemoteID:     m.RemoteProductID,
		LocalID:      &local,
		RemoteSKU:    m.RemoteSKU,
		Status:       m.Status,
		ErrorMessage: m.ErrorMessage,
		Version:      m.Version,
		LastSyncAt:   m.LastSyncAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain MappingRecord.
func (m *ProductMappingModel) FromDomain(r *integration.MappingRecord) {
	m.ID = r.ID
	m.Marketplace = r.Marketplace
	m.RemoteProductID = r.RemoteID
	if r.LocalID != nil {
		m.LocalProductID = *r.LocalID
	}
	m.RemoteSKU = r.RemoteSKU
	m.Status = r.Status
	m.ErrorMessage = r.ErrorMessage
	m.Version = r.Version
	m.LastSyncAt = r.LastSyncAt
	m.CreatedAt = r.CreatedAt
	m.UpdatedAt = r.UpdatedAt
}

// ProductMappingModelFromDomain creates a new persistence model from a domain record.
func ProductMappingModelFromDomain(r *integration.MappingRecord) *ProductMappingModel {
	m := &ProductMappingModel{}
	m.FromDomain(r)
	return m
}

// ---------------------------------------------------------------------------
// Sync log model
// ---------------------------------------------------------------------------

// SyncLogModel is the persistence model for the append-only sync log.
type SyncLogModel struct {
	ID               uuid.UUID               `gorm:"type:uuid;primary_key"`
	Marketplace      integration.Marketplace `gorm:"type:varchar(20);not null;index:idx_sync_logs_marketplace_created,priority:1"`
	Operation        integration.Operation   `gorm:"type:varchar(30);not null;index"`
	TargetID         string                  `gorm:"type:varchar(100);index"`
	DedupKey         string                  `gorm:"type:varchar(64);index:idx_sync_logs_dedup"`
	Status           integration.LogStatus   `gorm:"type:varchar(10);not null;index"`
	Message          string                  `gorm:"type:text"`
	ResponseSnapshot string                  `gorm:"type:text"`
	DurationMs       int64                   `gorm:"not null;default:0"`
	CreatedAt        time.Time               `gorm:"not null;index:idx_sync_logs_marketplace_created,priority:2"`
}

// TableName returns the table name for GORM
func (SyncLogModel) TableName() string {
	return "sync_logs"
}

// ToDomain converts the persistence model to a domain LogEntry.
func (m *SyncLogModel) ToDomain() *integration.LogEntry {
	return &integration.LogEntry{
		ID:               m.ID,
		Marketplace:      m.Marketplace,
		Operation:        m.Operation,
		TargetID:         m.TargetID,
		DedupKey:         m.DedupKey,
		Status:           m.Status,
		Message:          m.Message,
		ResponseSnapshot: m.ResponseSnapshot,
		Duration:         time.Duration(m.DurationMs) * time.Millisecond,
		CreatedAt:        m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain LogEntry.
func (m *SyncLogModel) FromDomain(e *integration.LogEntry) {
	m.ID = e.ID
	m.Marketplace = e.Marketplace
	m.Operation = e.Operation
	m.TargetID = e.TargetID
	m.DedupKey = e.DedupKey
	m.Status = e.Status
	m.Message = e.Message
	m.ResponseSnapshot = e.ResponseSnapshot
	m.DurationMs = e.Duration.Milliseconds()
	m.CreatedAt = e.CreatedAt
}

// SyncLogModelFromDomain creates a new persistence model from a domain entry.
func SyncLogModelFromDomain(e *integration.LogEntry) *SyncLogModel {
	m := &SyncLogModel{}
	m.FromDomain(e)
	return m
}

// ---------------------------------------------------------------------------
// Local commerce models
// ---------------------------------------------------------------------------

// LocalOrderModel is the host-side order row created by the import
// pipeline. Address blocks are stored as JSON.
type LocalOrderModel struct {
	ID                  uuid.UUID               `gorm:"type:uuid;primary_key"`
	Marketplace         integration.Marketplace `gorm:"type:varchar(20);not null;index"`
	RemoteOrderID       string                  `gorm:"type:varchar(100);not null"`
	Status              integration.OrderStatus `gorm:"type:varchar(20);not null;index"`
	TotalAmount         decimal.Decimal         `gorm:"type:decimal(12,2);not null"`
	Currency            string                  `gorm:"type:varchar(10);not null"`
	BuyerName           string                  `gorm:"type:varchar(255)"`
	BuyerEmail          string                  `gorm:"type:varchar(255)"`
	BuyerPhone          string                  `gorm:"type:varchar(50)"`
	ShippingAddressJSON string                  `gorm:"type:jsonb;column:shipping_address"`
	BillingAddressJSON  string                  `gorm:"type:jsonb;column:billing_address"`
	CargoCarrier        string                  `gorm:"type:varchar(100)"`
	CargoTrackingNumber string                  `gorm:"type:varchar(100)"`
	RawPayload          string                  `gorm:"type:text"`
	Items               []LocalOrderItemModel   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time               `gorm:"not null"`
	UpdatedAt           time.Time               `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LocalOrderModel) TableName() string {
	return "local_orders"
}

// LocalOrderItemModel is one line item on a local order.
type LocalOrderItemModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	RemoteItemID    string          `gorm:"type:varchar(100)"`
	RemoteProductID string          `gorm:"type:varchar(100)"`
	RemoteSKU       string          `gorm:"type:varchar(100)"`
	LocalProductID  *uuid.UUID      `gorm:"type:uuid;index"`
	ProductName     string          `gorm:"type:varchar(255)"`
	Quantity        int             `gorm:"not null"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// TableName returns the table name for GORM
func (LocalOrderItemModel) TableName() string {
	return "local_order_items"
}

// LocalProductModel is the host-side product row pushed outward by the
// export pipeline.
type LocalProductModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	Name      string          `gorm:"type:varchar(255);not null"`
	SKU       string          `gorm:"type:varchar(100);uniqueIndex"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity  int             `gorm:"not null;default:0"`
	Active    bool            `gorm:"not null;default:true;index"`
	CreatedAt time.Time       `gorm:"not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LocalProductModel) TableName() string {
	return "local_products"
}

// LocalOrderModelFromDomain creates a local order row (with items) from
// a canonical order.
func LocalOrderModelFromDomain(id uuid.UUID, o *integration.Order) *LocalOrderModel {
	m := &LocalOrderModel{
		ID:                  id,
		Marketplace:         o.Marketplace,
		RemoteOrderID:       o.RemoteOrderID,
		Status:              o.Status,
		TotalAmount:         o.TotalAmount,
		Currency:            o.Currency,
		BuyerName:           o.BuyerName,
		BuyerEmail:          o.BuyerEmail,
		BuyerPhone:          o.BuyerPhone,
		CargoCarrier:        o.CargoCarrier,
		CargoTrackingNumber: o.CargoTrackingNumber,
		RawPayload:          o.RawPayload,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
	if b, err := json.Marshal(o.ShippingAddress); err == nil {
		m.ShippingAddressJSON = string(b)
	}
	if b, err := json.Marshal(o.BillingAddress); err == nil {
		m.BillingAddressJSON = string(b)
	}
	m.Items = make([]LocalOrderItemModel, len(o.Items))
	for i, it := range o.Items {
		m.Items[i] = LocalOrderItemModel{
			ID:              uuid.New(),
			OrderID:         id,
			RemoteItemID:    it.RemoteItemID,
			RemoteProductID: it.RemoteProductID,
			RemoteSKU:       it.RemoteSKU,
			LocalProductID:  it.LocalProductID,
			ProductName:     it.ProductName,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
			TotalPrice:      it.TotalPrice,
		}
	}
	return m
}

// ToDomainProduct converts a local product row into the marketplace-facing
// canonical product. Sync state is filled in from the mapping store by
// the caller.
func (m *LocalProductModel) ToDomainProduct(marketplace integration.Marketplace) integration.Product {
	return integration.Product{
		Marketplace:    marketplace,
		LocalProductID: m.ID,
		RemoteSKU:      m.SKU,
		Name:           m.Name,
		Price:          m.Price,
		Quantity:       m.Quantity,
		SyncStatus:     integration.MappingStatusPending,
	}
}
