package integration

// Marketplace identifies an external sales channel.
type Marketplace string

const (
	// MarketplaceAmazon represents Amazon marketplaces (MWS/SP-API)
	MarketplaceAmazon Marketplace = "amazon"
	// MarketplaceEbay represents eBay
	MarketplaceEbay Marketplace = "ebay"
	// MarketplaceTrendyol represents Trendyol
	MarketplaceTrendyol Marketplace = "trendyol"
	// MarketplaceN11 represents N11
	MarketplaceN11 Marketplace = "n11"
	// MarketplaceHepsiburada represents Hepsiburada
	MarketplaceHepsiburada Marketplace = "hepsiburada"
	// MarketplaceOzon represents Ozon
	MarketplaceOzon Marketplace = "ozon"
	// MarketplacePazarama represents Pazarama
	MarketplacePazarama Marketplace = "pazarama"
)

// AllMarketplaces lists every marketplace the engine knows about, in a
// stable order suitable for iteration and display.
func AllMarketplaces() []Marketplace {
	return []Marketplace{
		MarketplaceAmazon,
		MarketplaceEbay,
		MarketplaceTrendyol,
		MarketplaceN11,
		MarketplaceHepsiburada,
		MarketplaceOzon,
		MarketplacePazarama,
	}
}

// IsValid returns true if the marketplace identifier is known
func (m Marketplace) IsValid() bool {
	switch m {
	case MarketplaceAmazon, MarketplaceEbay, MarketplaceTrendyol, MarketplaceN11,
		MarketplaceHepsiburada, MarketplaceOzon, MarketplacePazarama:
		return true
	default:
		return false
	}
}

// String returns the string representation of the Marketplace
func (m Marketplace) String() string {
	return string(m)
}

// DisplayName returns a human-readable name for the marketplace
func (m Marketplace) DisplayName() string {
	switch m {
	case MarketplaceAmazon:
		return "Amazon"
	case MarketplaceEbay:
		return "eBay"
	case MarketplaceTrendyol:
		return "Trendyol"
	case MarketplaceN11:
		return "N11"
	case MarketplaceHepsiburada:
		return "Hepsiburada"
	case MarketplaceOzon:
		return "Ozon"
	case MarketplacePazarama:
		return "Pazarama"
	default:
		return string(m)
	}
}
