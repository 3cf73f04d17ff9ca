package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslate_KnownStatuses(t *testing.T) {
	tr := NewTranslator(nil)

	tests := []struct {
		marketplace Marketplace
		remote      string
		want        OrderStatus
	}{
		{MarketplaceN11, "Approved", OrderStatusProcessing},
		{MarketplaceN11, "Shipped", OrderStatusShipped},
		{MarketplaceN11, "Refunded", OrderStatusReturned},
		{MarketplaceEbay, "Shipped", OrderStatusShipped},
		{MarketplaceEbay, "NOT_STARTED", OrderStatusPending},
		{MarketplaceEbay, "COMPLETE", OrderStatusDelivered},
		{MarketplaceAmazon, "Unshipped", OrderStatusProcessing},
		{MarketplaceAmazon, "PartiallyShipped", OrderStatusShipped},
		{MarketplaceTrendyol, "Picking", OrderStatusProcessing},
		{MarketplaceHepsiburada, "Confirmed", OrderStatusProcessing},
		{MarketplaceOzon, "awaiting_packaging", OrderStatusProcessing},
		{MarketplaceOzon, "delivering", OrderStatusShipped},
		{MarketplacePazarama, "Refunded", OrderStatusReturned},
	}

	for _, tt := range tests {
		t.Run(string(tt.marketplace)+"/"+tt.remote, func(t *testing.T) {
			got, known := tr.Translate(tt.marketplace, tt.remote)
			assert.True(t, known)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTranslate_UnknownStatusFallsBackToPending(t *testing.T) {
	tr := NewTranslator(nil)

	got, known := tr.Translate(MarketplaceN11, "TotallyUnknownStatus")

	assert.False(t, known)
	assert.Equal(t, OrderStatusPending, got)
}

func TestTranslate_UnknownMarketplaceFallsBackToPending(t *testing.T) {
	tr := NewTranslator(nil)

	got, known := tr.Translate(Marketplace("walmart"), "Shipped")

	assert.False(t, known)
	assert.Equal(t, OrderStatusPending, got)
}

func TestTranslate_CustomTableMergesOverDefaults(t *testing.T) {
	tr := NewTranslator(map[Marketplace]StatusTable{
		MarketplaceN11: {
			"Approved":   OrderStatusShipped, // override
			"OnTheTruck": OrderStatusShipped, // addition
		},
	})

	got, known := tr.Translate(MarketplaceN11, "Approved")
	assert.True(t, known)
	assert.Equal(t, OrderStatusShipped, got)

	got, known = tr.Translate(MarketplaceN11, "OnTheTruck")
	assert.True(t, known)
	assert.Equal(t, OrderStatusShipped, got)

	// Untouched defaults survive the merge
	got, known = tr.Translate(MarketplaceN11, "Delivered")
	assert.True(t, known)
	assert.Equal(t, OrderStatusDelivered, got)
}

func TestDefaultStatusTables_CoverAllMarketplaces(t *testing.T) {
	tables := DefaultStatusTables()
	for _, m := range AllMarketplaces() {
		assert.Contains(t, tables, m, "missing default table for %s", m)
		assert.NotEmpty(t, tables[m])
	}
}
