package integration

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// OrderStatus
// ---------------------------------------------------------------------------

// OrderStatus is the canonical order status shared by every marketplace.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusReturned   OrderStatus = "returned"
)

// IsValid returns true if the status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturned:
		return true
	default:
		return false
	}
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsFinal returns true if no further remote transitions are expected
func (s OrderStatus) IsFinal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturned:
		return true
	default:
		return false
	}
}

// ---------------------------------------------------------------------------
// Canonical order
// ---------------------------------------------------------------------------

// Address is a postal address block on a canonical order.
type Address struct {
	Name       string
	Phone      string
	Line1      string
	Line2      string
	District   string
	City       string
	Province   string
	PostalCode string
	Country    string
}

// OrderItem is a line item on a canonical order.
type OrderItem struct {
	// RemoteItemID is the line identifier on the marketplace
	RemoteItemID string
	// RemoteProductID is the product identifier on the marketplace
	RemoteProductID string
	// RemoteSKU is the marketplace-facing SKU
	RemoteSKU string
	// LocalProductID is the linked local product, if known
	LocalProductID *uuid.UUID
	// ProductName is the display name at order time
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
}

// Order is the canonical, host-system-neutral representation of a
// marketplace order. (Marketplace, RemoteOrderID) is globally unique;
// LocalOrderID, once set, is never re-linked to a different local order.
type Order struct {
	Marketplace   Marketplace
	RemoteOrderID string
	// LocalOrderID is nil until the order has been persisted locally
	LocalOrderID *uuid.UUID
	Status       OrderStatus
	TotalAmount  decimal.Decimal
	Currency     string

	// Buyer contact fields
	BuyerName  string
	BuyerEmail string
	BuyerPhone string

	ShippingAddress Address
	BillingAddress  Address
	Items           []OrderItem

	// Shipment fields reported by the marketplace
	CargoCarrier        string
	CargoTrackingNumber string

	// RawPayload is the opaque remote snapshot kept for debugging and replay
	RawPayload string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks that the order carries the minimum canonical shape.
func (o *Order) Validate() error {
	if !o.Marketplace.IsValid() {
		return ErrInvalidMarketplace
	}
	if o.RemoteOrderID == "" {
		return ErrMappingInvalidKey
	}
	if !o.Status.IsValid() {
		return ErrConversionFailed
	}
	if len(o.Items) == 0 {
		return ErrConversionFailed
	}
	return nil
}
