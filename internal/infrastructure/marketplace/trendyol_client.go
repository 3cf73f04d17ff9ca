package marketplace

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/marketsync/backend/internal/domain/integration"
)

// TrendyolClient implements MarketplaceClient for the Trendyol supplier API
type TrendyolClient struct {
	config     *TrendyolConfig
	httpClient *http.Client
}

// NewTrendyolClient creates a new Trendyol client with the given configuration
func NewTrendyolClient(config *TrendyolConfig) (*TrendyolClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &TrendyolClient{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

var _ integration.MarketplaceClient = (*TrendyolClient)(nil)

// Marketplace returns the marketplace this client serves
func (c *TrendyolClient) Marketplace() integration.Marketplace {
	return integration.MarketplaceTrendyol
}

func (c *TrendyolClient) headers() map[string]string {
	return map[string]string{
		"Authorization": c.config.BasicAuth(),
		"User-Agent":    c.config.SupplierID + " - SelfIntegration",
	}
}

func (c *TrendyolClient) ordersURL() string {
	return fmt.Sprintf("%s/suppliers/%s/orders", c.config.BaseURL, c.config.SupplierID)
}

// ListOrders returns one page of shipment packages. Trendyol pages are
// 0-indexed; the engine's filter is 1-indexed.
func (c *TrendyolClient) ListOrders(ctx context.Context, filter integration.OrderListFilter) (*integration.RemoteOrderPage, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size < 1 {
		size = 50
	}

	params := url.Values{}
	params.Set("startDate", strconv.FormatInt(filter.StartTime.UnixMilli(), 10))
	params.Set("endDate", strconv.FormatInt(filter.EndTime.UnixMilli(), 10))
	params.Set("page", strconv.Itoa(page-1))
	params.Set("size", strconv.Itoa(size))
	params.Set("orderByField", "PackageLastModifiedDate")
	params.Set("orderByDirection", "DESC")
	if filter.Status != "" {
		params.Set("status", filter.Status)
	}

	var resp TrendyolOrdersResponse
	if _, err := doJSON(ctx, c.httpClient, http.MethodGet, c.ordersURL()+"?"+params.Encode(), c.headers(), nil, &resp); err != nil {
		return nil, err
	}

	result := &integration.RemoteOrderPage{
		Orders:   make([]integration.RemoteOrderSummary, 0, len(resp.Content)),
		Total:    resp.TotalElements,
		HasMore:  resp.Page+1 < resp.TotalPages,
		NextPage: page + 1,
	}
	for _, pkg := range resp.Content {
		result.Orders = append(result.Orders, integration.RemoteOrderSummary{
			RemoteOrderID: pkg.OrderNumber,
			Status:        pkg.Status,
			UpdatedAt:     time.UnixMilli(pkg.LastModifiedDate),
		})
	}
	return result, nil
}

// GetOrderDetail fetches one order by its order number
func (c *TrendyolClient) GetOrderDetail(ctx context.Context, remoteOrderID string) (*integration.RemoteOrder, error) {
	params := url.Values{}
	params.Set("orderNumber", remoteOrderID)

	var resp TrendyolOrdersResponse
	raw, err := doJSON(ctx, c.httpClient, http.MethodGet, c.ordersURL()+"?"+params.Encode(), c.headers(), nil, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("%w: order %s not found", integration.ErrRemoteRejected, remoteOrderID)
	}

	order := c.convertPackage(&resp.Content[0])
	order.RawPayload = string(raw)
	return order, nil
}

// convertPackage maps a shipment package onto the engine's remote order shape
func (c *TrendyolClient) convertPackage(pkg *TrendyolShipmentPackage) *integration.RemoteOrder {
	order := &integration.RemoteOrder{
		RemoteOrderID:       pkg.OrderNumber,
		Status:              pkg.Status,
		TotalAmount:         decimal.NewFromFloat(pkg.TotalPrice),
		Currency:            pkg.CurrencyCode,
		BuyerName:           strings.TrimSpace(pkg.CustomerFirstName + " " + pkg.CustomerLastName),
		BuyerEmail:          pkg.CustomerEmail,
		ShippingAddress:     convertTrendyolAddress(pkg.ShipmentAddress),
		BillingAddress:      convertTrendyolAddress(pkg.InvoiceAddress),
		CargoCarrier:        pkg.CargoProviderName,
		CargoTrackingNumber: pkg.CargoTrackingNumber,
		CreatedAt:           time.UnixMilli(pkg.OrderDate),
	}
	if order.Currency == "" {
		order.Currency = "TRY"
	}

	order.Items = make([]integration.RemoteOrderItem, 0, len(pkg.Lines))
	for _, line := range pkg.Lines {
		order.Items = append(order.Items, integration.RemoteOrderItem{
			RemoteItemID:    strconv.FormatInt(line.ID, 10),
			RemoteProductID: strconv.FormatInt(line.ProductCode, 10),
			RemoteSKU:       line.MerchantSKU,
			ProductName:     line.ProductName,
			Quantity:        line.Quantity,
			UnitPrice:       decimal.NewFromFloat(line.Price),
			TotalPrice:      decimal.NewFromFloat(line.Amount),
		})
	}
	return order
}

func convertTrendyolAddress(a TrendyolAddress) integration.Address {
	return integration.Address{
		Name:       a.FullName,
		Phone:      a.Phone,
		Line1:      a.Address1,
		Line2:      a.Address2,
		District:   a.District,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.CountryCode,
	}
}

// PushProduct creates or updates the product listing. Trendyol processes
// pushes asynchronously and answers with a batch request id; the engine
// records that id as the remote acknowledgement.
func (c *TrendyolClient) PushProduct(ctx context.Context, product *integration.Product) (*integration.RemoteAck, error) {
	price, _ := product.Price.Float64()
	body := TrendyolProductPushRequest{
		Items: []TrendyolProductItem{{
			Barcode:       product.RemoteSKU,
			Title:         product.Name,
			ProductMainID: product.LocalProductID.String(),
			StockCode:     product.RemoteSKU,
			Quantity:      product.Quantity,
			ListPrice:     price,
			SalePrice:     price,
			CurrencyType:  "TRY",
			VatRate:       20,
		}},
	}

	var resp TrendyolBatchResponse
	raw, err := doJSON(ctx, c.httpClient, http.MethodPost,
		fmt.Sprintf("%s/suppliers/%s/v2/products", c.config.BaseURL, c.config.SupplierID),
		c.headers(), body, &resp)
	if err != nil {
		return nil, err
	}

	return &integration.RemoteAck{
		RemoteProductID: resp.BatchRequestID,
		RemoteSKU:       product.RemoteSKU,
		Raw:             string(raw),
	}, nil
}

// UpdatePrice pushes a price change for an already-listed SKU
func (c *TrendyolClient) UpdatePrice(ctx context.Context, remoteProductID string, price decimal.Decimal) error {
	p, _ := price.Float64()
	body := TrendyolPriceInventoryRequest{
		Items: []TrendyolPriceInventoryItem{{
			Barcode:   remoteProductID,
			SalePrice: &p,
			ListPrice: &p,
		}},
	}
	_, err := doJSON(ctx, c.httpClient, http.MethodPost, c.priceInventoryURL(), c.headers(), body, nil)
	return err
}

// UpdateStock pushes a quantity change for an already-listed SKU
func (c *TrendyolClient) UpdateStock(ctx context.Context, remoteProductID string, quantity int) error {
	body := TrendyolPriceInventoryRequest{
		Items: []TrendyolPriceInventoryItem{{
			Barcode:  remoteProductID,
			Quantity: &quantity,
		}},
	}
	_, err := doJSON(ctx, c.httpClient, http.MethodPost, c.priceInventoryURL(), c.headers(), body, nil)
	return err
}

func (c *TrendyolClient) priceInventoryURL() string {
	return fmt.Sprintf("%s/suppliers/%s/products/price-and-inventory", c.config.BaseURL, c.config.SupplierID)
}

// TestConnection probes the supplier addresses endpoint and reports latency
func (c *TrendyolClient) TestConnection(ctx context.Context) (*integration.HealthResult, error) {
	start := time.Now()
	var resp TrendyolSupplierAddressesResponse
	_, err := doJSON(ctx, c.httpClient, http.MethodGet,
		fmt.Sprintf("%s/suppliers/%s/addresses", c.config.BaseURL, c.config.SupplierID),
		c.headers(), nil, &resp)
	latency := time.Since(start)

	if err != nil {
		return &integration.HealthResult{
			Healthy: false,
			Message: err.Error(),
			Latency: latency,
		}, nil
	}
	return &integration.HealthResult{
		Healthy: true,
		Message: "ok",
		Latency: latency,
	}, nil
}
