package marketplace

// Wire types for the Trendyol supplier API. Field names follow the API
// documentation; amounts arrive as JSON numbers and timestamps as unix
// milliseconds.

// TrendyolOrdersResponse is the paged response of the orders endpoint
type TrendyolOrdersResponse struct {
	Content       []TrendyolShipmentPackage `json:"content"`
	Page          int                       `json:"page"`
	Size          int                       `json:"size"`
	TotalElements int64                     `json:"totalElements"`
	TotalPages    int                       `json:"totalPages"`
}

// TrendyolShipmentPackage is one shipment package (Trendyol's order unit)
type TrendyolShipmentPackage struct {
	ID                  int64                  `json:"id"`
	OrderNumber         string                 `json:"orderNumber"`
	Status              string                 `json:"status"`
	ShipmentPackageType string                 `json:"shipmentPackageType"`
	CustomerFirstName   string                 `json:"customerFirstName"`
	CustomerLastName    string                 `json:"customerLastName"`
	CustomerEmail       string                 `json:"customerEmail"`
	GrossAmount         float64                `json:"grossAmount"`
	TotalPrice          float64                `json:"totalPrice"`
	CurrencyCode        string                 `json:"currencyCode"`
	CargoProviderName   string                 `json:"cargoProviderName"`
	CargoTrackingNumber string                 `json:"cargoTrackingNumber"`
	InvoiceAddress      TrendyolAddress        `json:"invoiceAddress"`
	ShipmentAddress     TrendyolAddress        `json:"shipmentAddress"`
	Lines               []TrendyolPackageLine  `json:"lines"`
	OrderDate           int64                  `json:"orderDate"`
	LastModifiedDate    int64                  `json:"lastModifiedDate"`
}

// TrendyolAddress is a shipment or invoice address
type TrendyolAddress struct {
	FullName   string `json:"fullName"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2"`
	District   string `json:"district"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	CountryCode string `json:"countryCode"`
	Phone      string `json:"phone"`
}

// TrendyolPackageLine is one line item of a shipment package
type TrendyolPackageLine struct {
	ID           int64   `json:"id"`
	ProductCode  int64   `json:"productCode"`
	MerchantSKU  string  `json:"merchantSku"`
	Barcode      string  `json:"barcode"`
	ProductName  string  `json:"productName"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`
	Amount       float64 `json:"amount"`
	Discount     float64 `json:"discount"`
	CurrencyCode string  `json:"currencyCode"`
}

// TrendyolProductItem is one product in an outbound push request
type TrendyolProductItem struct {
	Barcode      string  `json:"barcode"`
	Title        string  `json:"title"`
	ProductMainID string `json:"productMainId"`
	StockCode    string  `json:"stockCode"`
	Quantity     int     `json:"quantity"`
	ListPrice    float64 `json:"listPrice"`
	SalePrice    float64 `json:"salePrice"`
	CurrencyType string  `json:"currencyType"`
	VatRate      int     `json:"vatRate"`
}

// TrendyolProductPushRequest is the body of the product create/update call
type TrendyolProductPushRequest struct {
	Items []TrendyolProductItem `json:"items"`
}

// TrendyolBatchResponse acknowledges an accepted batch request
type TrendyolBatchResponse struct {
	BatchRequestID string `json:"batchRequestId"`
}

// TrendyolPriceInventoryItem carries a price or stock update for one SKU
type TrendyolPriceInventoryItem struct {
	Barcode   string   `json:"barcode"`
	Quantity  *int     `json:"quantity,omitempty"`
	SalePrice *float64 `json:"salePrice,omitempty"`
	ListPrice *float64 `json:"listPrice,omitempty"`
}

// TrendyolPriceInventoryRequest is the body of the price-and-inventory call
type TrendyolPriceInventoryRequest struct {
	Items []TrendyolPriceInventoryItem `json:"items"`
}

// TrendyolSupplierAddressesResponse is used as a lightweight
// connectivity probe; the engine only cares that the call succeeds
type TrendyolSupplierAddressesResponse struct {
	SupplierAddresses []struct {
		ID int64 `json:"id"`
	} `json:"supplierAddresses"`
}
