package marketplace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketsync/backend/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// Config Tests
// ---------------------------------------------------------------------------

func TestTrendyolConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *TrendyolConfig
		wantErr error
	}{
		{
			name:   "valid config",
			config: &TrendyolConfig{APIKey: "key", APISecret: "secret", SupplierID: "1234"},
		},
		{
			name:    "missing api key",
			config:  &TrendyolConfig{APISecret: "secret", SupplierID: "1234"},
			wantErr: ErrTrendyolConfigMissingAPIKey,
		},
		{
			name:    "missing api secret",
			config:  &TrendyolConfig{APIKey: "key", SupplierID: "1234"},
			wantErr: ErrTrendyolConfigMissingAPISecret,
		},
		{
			name:    "missing supplier id",
			config:  &TrendyolConfig{APIKey: "key", APISecret: "secret"},
			wantErr: ErrTrendyolConfigMissingSupplierID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, tt.config.BaseURL)
				assert.Greater(t, tt.config.TimeoutSeconds, 0)
			}
		})
	}
}

func TestTrendyolConfig_BasicAuth(t *testing.T) {
	config := NewTrendyolConfig("key", "secret", "1234")
	// base64("key:secret")
	assert.Equal(t, "Basic a2V5OnNlY3JldA==", config.BasicAuth())
}

// ---------------------------------------------------------------------------
// Client Tests
// ---------------------------------------------------------------------------

func newTestTrendyolClient(t *testing.T, serverURL string) *TrendyolClient {
	t.Helper()
	config := NewTrendyolConfig("key", "secret", "1234")
	config.BaseURL = serverURL
	client, err := NewTrendyolClient(config)
	require.NoError(t, err)
	return client
}

func TestNewTrendyolClient(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		client, err := NewTrendyolClient(NewTrendyolConfig("key", "secret", "1234"))
		require.NoError(t, err)
		assert.Equal(t, integration.MarketplaceTrendyol, client.Marketplace())
	})

	t.Run("invalid config", func(t *testing.T) {
		client, err := NewTrendyolClient(&TrendyolConfig{})
		assert.Error(t, err)
		assert.Nil(t, client)
	})
}

func TestTrendyolClient_ListOrders(t *testing.T) {
	t.Run("successful listing", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/suppliers/1234/orders", r.URL.Path)
			assert.Equal(t, "0", r.URL.Query().Get("page"))
			assert.Equal(t, "Basic a2V5OnNlY3JldA==", r.Header.Get("Authorization"))

			json.NewEncoder(w).Encode(TrendyolOrdersResponse{
				Content: []TrendyolShipmentPackage{
					{OrderNumber: "TY-1001", Status: "Created", LastModifiedDate: 1700000000000},
					{OrderNumber: "TY-1002", Status: "Shipped", LastModifiedDate: 1700000100000},
				},
				Page:          0,
				TotalPages:    3,
				TotalElements: 101,
			})
		}))
		defer server.Close()

		client := newTestTrendyolClient(t, server.URL)

		page, err := client.ListOrders(context.Background(), integration.OrderListFilter{
			StartTime: time.Now().Add(-24 * time.Hour),
			EndTime:   time.Now(),
			Page:      1,
			PageSize:  50,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(101), page.Total)
		assert.True(t, page.HasMore)
		assert.Equal(t, 2, page.NextPage)
		require.Len(t, page.Orders, 2)
		assert.Equal(t, "TY-1001", page.Orders[0].RemoteOrderID)
		assert.Equal(t, "Created", page.Orders[0].Status)
	})

	t.Run("classifies rate limiting", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := newTestTrendyolClient(t, server.URL)

		_, err := client.ListOrders(context.Background(), integration.OrderListFilter{Page: 1, PageSize: 10})
		assert.ErrorIs(t, err, integration.ErrRemoteRateLimited)
	})

	t.Run("classifies auth failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		client := newTestTrendyolClient(t, server.URL)

		_, err := client.ListOrders(context.Background(), integration.OrderListFilter{Page: 1, PageSize: 10})
		assert.ErrorIs(t, err, integration.ErrRemoteAuthFailed)
	})

	t.Run("classifies server errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := newTestTrendyolClient(t, server.URL)

		_, err := client.ListOrders(context.Background(), integration.OrderListFilter{Page: 1, PageSize: 10})
		assert.ErrorIs(t, err, integration.ErrRemoteUnavailable)
	})
}

func TestTrendyolClient_GetOrderDetail(t *testing.T) {
	t.Run("converts shipment package to remote order", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "TY-1001", r.URL.Query().Get("orderNumber"))

			json.NewEncoder(w).Encode(TrendyolOrdersResponse{
				Content: []TrendyolShipmentPackage{{
					OrderNumber:       "TY-1001",
					Status:            "Created",
					CustomerFirstName: "Ayşe",
					CustomerLastName:  "Yılmaz",
					CustomerEmail:     "ayse@example.com",
					TotalPrice:        149.90,
					CurrencyCode:      "TRY",
					CargoProviderName: "Yurtiçi Kargo",
					ShipmentAddress: TrendyolAddress{
						FullName: "Ayşe Yılmaz",
						Address1: "Bağdat Cad. 1",
						District: "Kadıköy",
						City:     "İstanbul",
					},
					Lines: []TrendyolPackageLine{{
						ID:          77,
						ProductCode: 999,
						MerchantSKU: "SKU-1",
						ProductName: "Kettle",
						Quantity:    1,
						Price:       149.90,
						Amount:      149.90,
					}},
					OrderDate: 1700000000000,
				}},
			})
		}))
		defer server.Close()

		client := newTestTrendyolClient(t, server.URL)

		order, err := client.GetOrderDetail(context.Background(), "TY-1001")

		require.NoError(t, err)
		assert.Equal(t, "TY-1001", order.RemoteOrderID)
		assert.Equal(t, "Created", order.Status)
		assert.Equal(t, "Ayşe Yılmaz", order.BuyerName)
		assert.True(t, order.TotalAmount.Equal(decimal.NewFromFloat(149.90)))
		assert.Equal(t, "İstanbul", order.ShippingAddress.City)
		require.Len(t, order.Items, 1)
		assert.Equal(t, "SKU-1", order.Items[0].RemoteSKU)
		assert.NotEmpty(t, order.RawPayload)
	})

	t.Run("missing order is a rejection", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(TrendyolOrdersResponse{})
		}))
		defer server.Close()

		client := newTestTrendyolClient(t, server.URL)

		order, err := client.GetOrderDetail(context.Background(), "TY-404")
		assert.Nil(t, order)
		assert.ErrorIs(t, err, integration.ErrRemoteRejected)
	})
}

func TestTrendyolClient_PushProduct(t *testing.T) {
	t.Run("returns batch acknowledgement", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/suppliers/1234/v2/products", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)

			var req TrendyolProductPushRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Len(t, req.Items, 1)
			assert.Equal(t, "SKU-1", req.Items[0].Barcode)

			json.NewEncoder(w).Encode(TrendyolBatchResponse{BatchRequestID: "batch-42"})
		}))
		defer server.Close()

		client := newTestTrendyolClient(t, server.URL)

		ack, err := client.PushProduct(context.Background(), &integration.Product{
			LocalProductID: uuid.New(),
			RemoteSKU:      "SKU-1",
			Name:           "Kettle",
			Price:          decimal.NewFromFloat(149.90),
			Quantity:       12,
		})

		require.NoError(t, err)
		assert.Equal(t, "batch-42", ack.RemoteProductID)
		assert.Equal(t, "SKU-1", ack.RemoteSKU)
		assert.NotEmpty(t, ack.Raw)
	})

	t.Run("rejected listing", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := newTestTrendyolClient(t, server.URL)

		ack, err := client.PushProduct(context.Background(), &integration.Product{RemoteSKU: "SKU-1"})
		assert.Nil(t, ack)
		assert.ErrorIs(t, err, integration.ErrRemoteRejected)
	})
}

func TestTrendyolClient_UpdatePriceAndStock(t *testing.T) {
	var lastBody TrendyolPriceInventoryRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/suppliers/1234/products/price-and-inventory", r.URL.Path)
		lastBody = TrendyolPriceInventoryRequest{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&lastBody))
		json.NewEncoder(w).Encode(TrendyolBatchResponse{BatchRequestID: "batch-1"})
	}))
	defer server.Close()

	client := newTestTrendyolClient(t, server.URL)

	t.Run("price update", func(t *testing.T) {
		err := client.UpdatePrice(context.Background(), "SKU-1", decimal.NewFromFloat(99.50))
		require.NoError(t, err)
		require.Len(t, lastBody.Items, 1)
		require.NotNil(t, lastBody.Items[0].SalePrice)
		assert.InDelta(t, 99.50, *lastBody.Items[0].SalePrice, 0.001)
		assert.Nil(t, lastBody.Items[0].Quantity)
	})

	t.Run("stock update", func(t *testing.T) {
		err := client.UpdateStock(context.Background(), "SKU-1", 7)
		require.NoError(t, err)
		require.Len(t, lastBody.Items, 1)
		require.NotNil(t, lastBody.Items[0].Quantity)
		assert.Equal(t, 7, *lastBody.Items[0].Quantity)
		assert.Nil(t, lastBody.Items[0].SalePrice)
	})
}

func TestTrendyolClient_TestConnection(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/suppliers/1234/addresses", r.URL.Path)
			json.NewEncoder(w).Encode(TrendyolSupplierAddressesResponse{})
		}))
		defer server.Close()

		client := newTestTrendyolClient(t, server.URL)

		health, err := client.TestConnection(context.Background())
		require.NoError(t, err)
		assert.True(t, health.Healthy)
		assert.GreaterOrEqual(t, health.Latency, time.Duration(0))
	})

	t.Run("unhealthy carries the failure message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		client := newTestTrendyolClient(t, server.URL)

		health, err := client.TestConnection(context.Background())
		require.NoError(t, err)
		assert.False(t, health.Healthy)
		assert.NotEmpty(t, health.Message)
	})
}
