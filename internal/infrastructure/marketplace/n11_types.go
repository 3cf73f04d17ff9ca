package marketplace

// Wire types for the N11 seller API. Amounts arrive as strings in the
// N11 responses and are parsed into decimals at the boundary.

// N11OrderListResponse is the paged response of the order list endpoint
type N11OrderListResponse struct {
	Orders      []N11OrderSummary `json:"orders"`
	TotalCount  int64             `json:"totalCount"`
	CurrentPage int               `json:"currentPage"`
	PageCount   int               `json:"pageCount"`
}

// N11OrderSummary is one row of the order listing
type N11OrderSummary struct {
	OrderNumber      string `json:"orderNumber"`
	Status           string `json:"status"`
	LastModifiedDate string `json:"lastModifiedDate"`
}

// N11OrderDetail is the full order payload
type N11OrderDetail struct {
	OrderNumber   string         `json:"orderNumber"`
	Status        string         `json:"status"`
	TotalAmount   string         `json:"totalAmount"`
	Currency      string         `json:"currency"`
	Buyer         N11Buyer       `json:"buyer"`
	ShippingAddress N11Address   `json:"shippingAddress"`
	BillingAddress  N11Address   `json:"billingAddress"`
	Items         []N11OrderItem `json:"orderItems"`
	CargoCompany  string         `json:"cargoCompany"`
	TrackingNumber string        `json:"trackingNumber"`
	CreateDate    string         `json:"createDate"`
}

// N11Buyer identifies the purchaser
type N11Buyer struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// N11Address is a shipping or billing address
type N11Address struct {
	FullName   string `json:"fullName"`
	Address    string `json:"address"`
	District   string `json:"district"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Phone      string `json:"gsm"`
}

// N11OrderItem is one line item
type N11OrderItem struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"productId"`
	SellerCode  string `json:"productSellerCode"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	Price       string `json:"price"`
	TotalPrice  string `json:"sellerInvoiceAmount"`
}

// N11ProductPushRequest is the body of the product create/update task
type N11ProductPushRequest struct {
	Title       string `json:"title"`
	SellerCode  string `json:"productSellerCode"`
	Price       string `json:"price"`
	Quantity    int    `json:"quantity"`
	CurrencyType string `json:"currencyType"`
}

// N11ProductTaskResponse acknowledges an accepted product task
type N11ProductTaskResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// N11PriceStockItem carries a price or stock update for one listing
type N11PriceStockItem struct {
	ProductID string  `json:"n11ProductId"`
	Price     *string `json:"price,omitempty"`
	Quantity  *int    `json:"quantity,omitempty"`
}

// N11PriceStockRequest is the body of the price-stock update call
type N11PriceStockRequest struct {
	Items []N11PriceStockItem `json:"payload"`
}
