package integration

// ---------------------------------------------------------------------------
// Status translation
// ---------------------------------------------------------------------------

// StatusTable maps one marketplace's status vocabulary to canonical
// order statuses.
type StatusTable map[string]OrderStatus

// Translator resolves marketplace-specific status strings to the
// canonical OrderStatus. Tables are loaded once at start-up; translation
// is a pure lookup with no side effects. Unknown strings fall back to
// OrderStatusPending and are reported through the second return value so
// callers can log a warning without breaking the pipeline.
type Translator struct {
	tables map[Marketplace]StatusTable
}

// NewTranslator builds a translator over the given tables. Passing nil
// uses the built-in defaults; custom tables are merged over them per
// marketplace, per status string.
func NewTranslator(custom map[Marketplace]StatusTable) *Translator {
	tables := DefaultStatusTables()
	for m, table := range custom {
		merged, ok := tables[m]
		if !ok {
			merged = StatusTable{}
			tables[m] = merged
		}
		for remote, status := range table {
			merged[remote] = status
		}
	}
	return &Translator{tables: tables}
}

// Translate maps a remote status string to the canonical status. The
// second return value is false when the string was not in the table and
// the documented default (pending) was applied.
func (t *Translator) Translate(marketplace Marketplace, remoteStatus string) (OrderStatus, bool) {
	table, ok := t.tables[marketplace]
	if !ok {
		return OrderStatusPending, false
	}
	status, ok := table[remoteStatus]
	if !ok {
		return OrderStatusPending, false
	}
	return status, true
}

// DefaultStatusTables returns the built-in status vocabulary for every
// supported marketplace.
func DefaultStatusTables() map[Marketplace]StatusTable {
	return map[Marketplace]StatusTable{
		MarketplaceN11: {
			"New":       OrderStatusPending,
			"Approved":  OrderStatusProcessing,
			"Shipped":   OrderStatusShipped,
			"Delivered": OrderStatusDelivered,
			"Cancelled": OrderStatusCancelled,
			"Returned":  OrderStatusReturned,
			"Refunded":  OrderStatusReturned,
		},
		MarketplaceEbay: {
			"NOT_STARTED": OrderStatusPending,
			"IN_PROGRESS": OrderStatusProcessing,
			"Shipped":     OrderStatusShipped,
			"FULFILLED":   OrderStatusShipped,
			"COMPLETE":    OrderStatusDelivered,
			"CANCELLED":   OrderStatusCancelled,
		},
		MarketplaceAmazon: {
			"Pending":          OrderStatusPending,
			"Unshipped":        OrderStatusProcessing,
			"PartiallyShipped": OrderStatusShipped,
			"Shipped":          OrderStatusShipped,
			"Canceled":         OrderStatusCancelled,
			"Unfulfillable":    OrderStatusCancelled,
		},
		MarketplaceTrendyol: {
			"Created":   OrderStatusPending,
			"Approved":  OrderStatusProcessing,
			"Picking":   OrderStatusProcessing,
			"Shipped":   OrderStatusShipped,
			"Delivered": OrderStatusDelivered,
			"Cancelled": OrderStatusCancelled,
			"Returned":  OrderStatusReturned,
		},
		MarketplaceHepsiburada: {
			"Approved":   OrderStatusProcessing,
			"Processing": OrderStatusProcessing,
			"Confirmed":  OrderStatusProcessing,
			"Shipped":    OrderStatusShipped,
			"Delivered":  OrderStatusDelivered,
			"Cancelled":  OrderStatusCancelled,
			"Returned":   OrderStatusReturned,
		},
		MarketplaceOzon: {
			"awaiting_packaging": OrderStatusProcessing,
			"awaiting_deliver":   OrderStatusProcessing,
			"delivering":         OrderStatusShipped,
			"delivered":          OrderStatusDelivered,
			"cancelled":          OrderStatusCancelled,
		},
		MarketplacePazarama: {
			"Created":   OrderStatusPending,
			"Approved":  OrderStatusProcessing,
			"Shipped":   OrderStatusShipped,
			"Delivered": OrderStatusDelivered,
			"Cancelled": OrderStatusCancelled,
			"Refunded":  OrderStatusReturned,
		},
	}
}
