package marketplace

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/marketsync/backend/internal/domain/integration"
)

// n11TimeLayout is the timestamp format of the N11 API
const n11TimeLayout = "02/01/2006 15:04:05"

// N11Client implements MarketplaceClient for the N11 seller API
type N11Client struct {
	config     *N11Config
	httpClient *http.Client
}

// NewN11Client creates a new N11 client with the given configuration
func NewN11Client(config *N11Config) (*N11Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &N11Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

var _ integration.MarketplaceClient = (*N11Client)(nil)

// Marketplace returns the marketplace this client serves
func (c *N11Client) Marketplace() integration.Marketplace {
	return integration.MarketplaceN11
}

func (c *N11Client) headers() map[string]string {
	return map[string]string{
		"appkey":    c.config.AppKey,
		"appsecret": c.config.AppSecret,
	}
}

// ListOrders returns one page of order summaries
func (c *N11Client) ListOrders(ctx context.Context, filter integration.OrderListFilter) (*integration.RemoteOrderPage, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size < 1 {
		size = 50
	}

	params := url.Values{}
	params.Set("startDate", filter.StartTime.Format(n11TimeLayout))
	params.Set("endDate", filter.EndTime.Format(n11TimeLayout))
	params.Set("page", strconv.Itoa(page))
	params.Set("size", strconv.Itoa(size))
	if filter.Status != "" {
		params.Set("status", filter.Status)
	}

	var resp N11OrderListResponse
	if _, err := doJSON(ctx, c.httpClient, http.MethodGet,
		c.config.BaseURL+"/orders?"+params.Encode(), c.headers(), nil, &resp); err != nil {
		return nil, err
	}

	result := &integration.RemoteOrderPage{
		Orders:   make([]integration.RemoteOrderSummary, 0, len(resp.Orders)),
		Total:    resp.TotalCount,
		HasMore:  resp.CurrentPage < resp.PageCount,
		NextPage: page + 1,
	}
	for _, o := range resp.Orders {
		summary := integration.RemoteOrderSummary{
			RemoteOrderID: o.OrderNumber,
			Status:        o.Status,
		}
		if t, err := time.ParseInLocation(n11TimeLayout, o.LastModifiedDate, time.Local); err == nil {
			summary.UpdatedAt = t
		}
		result.Orders = append(result.Orders, summary)
	}
	return result, nil
}

// GetOrderDetail fetches the full order payload
func (c *N11Client) GetOrderDetail(ctx context.Context, remoteOrderID string) (*integration.RemoteOrder, error) {
	var resp N11OrderDetail
	raw, err := doJSON(ctx, c.httpClient, http.MethodGet,
		c.config.BaseURL+"/orders/"+url.PathEscape(remoteOrderID), c.headers(), nil, &resp)
	if err != nil {
		return nil, err
	}

	order := &integration.RemoteOrder{
		RemoteOrderID:       resp.OrderNumber,
		Status:              resp.Status,
		TotalAmount:         parseDecimal(resp.TotalAmount),
		Currency:            resp.Currency,
		BuyerName:           resp.Buyer.FullName,
		BuyerEmail:          resp.Buyer.Email,
		BuyerPhone:          resp.Buyer.Phone,
		ShippingAddress:     convertN11Address(resp.ShippingAddress),
		BillingAddress:      convertN11Address(resp.BillingAddress),
		CargoCarrier:        resp.CargoCompany,
		CargoTrackingNumber: resp.TrackingNumber,
		RawPayload:          string(raw),
	}
	if order.Currency == "" {
		order.Currency = "TRY"
	}
	if t, err := time.ParseInLocation(n11TimeLayout, resp.CreateDate, time.Local); err == nil {
		order.CreatedAt = t
	}

	order.Items = make([]integration.RemoteOrderItem, 0, len(resp.Items))
	for _, item := range resp.Items {
		order.Items = append(order.Items, integration.RemoteOrderItem{
			RemoteItemID:    strconv.FormatInt(item.ID, 10),
			RemoteProductID: strconv.FormatInt(item.ProductID, 10),
			RemoteSKU:       item.SellerCode,
			ProductName:     item.ProductName,
			Quantity:        item.Quantity,
			UnitPrice:       parseDecimal(item.Price),
			TotalPrice:      parseDecimal(item.TotalPrice),
		})
	}
	return order, nil
}

func convertN11Address(a N11Address) integration.Address {
	return integration.Address{
		Name:       a.FullName,
		Phone:      a.Phone,
		Line1:      a.Address,
		District:   a.District,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    "TR",
	}
}

// PushProduct submits a product create/update task
func (c *N11Client) PushProduct(ctx context.Context, product *integration.Product) (*integration.RemoteAck, error) {
	body := N11ProductPushRequest{
		Title:        product.Name,
		SellerCode:   product.RemoteSKU,
		Price:        product.Price.StringFixed(2),
		Quantity:     product.Quantity,
		CurrencyType: "TL",
	}

	var resp N11ProductTaskResponse
	raw, err := doJSON(ctx, c.httpClient, http.MethodPost,
		c.config.BaseURL+"/product/tasks", c.headers(), body, &resp)
	if err != nil {
		return nil, err
	}

	return &integration.RemoteAck{
		RemoteProductID: strconv.FormatInt(resp.ID, 10),
		RemoteSKU:       product.RemoteSKU,
		Raw:             string(raw),
	}, nil
}

// UpdatePrice pushes a price change for an already-listed product
func (c *N11Client) UpdatePrice(ctx context.Context, remoteProductID string, price decimal.Decimal) error {
	p := price.StringFixed(2)
	body := N11PriceStockRequest{
		Items: []N11PriceStockItem{{ProductID: remoteProductID, Price: &p}},
	}
	_, err := doJSON(ctx, c.httpClient, http.MethodPost,
		c.config.BaseURL+"/product/price-stock-update", c.headers(), body, nil)
	return err
}

// UpdateStock pushes a quantity change for an already-listed product
func (c *N11Client) UpdateStock(ctx context.Context, remoteProductID string, quantity int) error {
	body := N11PriceStockRequest{
		Items: []N11PriceStockItem{{ProductID: remoteProductID, Quantity: &quantity}},
	}
	_, err := doJSON(ctx, c.httpClient, http.MethodPost,
		c.config.BaseURL+"/product/price-stock-update", c.headers(), body, nil)
	return err
}

// TestConnection probes the order list endpoint with a minimal page and
// reports latency
func (c *N11Client) TestConnection(ctx context.Context) (*integration.HealthResult, error) {
	start := time.Now()
	_, err := doJSON(ctx, c.httpClient, http.MethodGet,
		c.config.BaseURL+"/orders?page=1&size=1", c.headers(), nil, nil)
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

// parseDecimal parses an amount string, treating blanks and malformed
// values as zero
func parseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
