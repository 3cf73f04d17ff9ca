package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/marketsync/backend/internal/domain/integration"
)

// MockClientRegistry is a mock implementation of ClientRegistry
type MockClientRegistry struct {
	mock.Mock
}

func (m *MockClientRegistry) Get(marketplace integration.Marketplace) (integration.MarketplaceClient, error) {
	args := m.Called(marketplace)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(integration.MarketplaceClient), args.Error(1)
}

func (m *MockClientRegistry) Marketplaces() []integration.Marketplace {
	args := m.Called()
	return args.Get(0).([]integration.Marketplace)
}

// MockMarketplaceClient is a mock implementation of MarketplaceClient
type MockMarketplaceClient struct {
	mock.Mock
}

func (m *MockMarketplaceClient) Marketplace() integration.Marketplace {
	args := m.Called()
	return args.Get(0).(integration.Marketplace)
}

func (m *MockMarketplaceClient) ListOrders(ctx context.Context, filter integration.OrderListFilter) (*integration.RemoteOrderPage, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.RemoteOrderPage), args.Error(1)
}

func (m *MockMarketplaceClient) GetOrderDetail(ctx context.Context, remoteOrderID string) (*integration.RemoteOrder, error) {
	args := m.Called(ctx, remoteOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.RemoteOrder), args.Error(1)
}

func (m *MockMarketplaceClient) PushProduct(ctx context.Context, product *integration.Product) (*integration.RemoteAck, error) {
	args := m.Called(ctx, product)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.RemoteAck), args.Error(1)
}

func (m *MockMarketplaceClient) UpdatePrice(ctx context.Context, remoteProductID string, price decimal.Decimal) error {
	args := m.Called(ctx, remoteProductID, price)
	return args.Error(0)
}

func (m *MockMarketplaceClient) UpdateStock(ctx context.Context, remoteProductID string, quantity int) error {
	args := m.Called(ctx, remoteProductID, quantity)
	return args.Error(0)
}

func (m *MockMarketplaceClient) TestConnection(ctx context.Context) (*integration.HealthResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.HealthResult), args.Error(1)
}

// MockCommerceStore is a mock implementation of CommerceStore
type MockCommerceStore struct {
	mock.Mock
}

func (m *MockCommerceStore) CreateOrder(ctx context.Context, order *integration.Order) (uuid.UUID, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockCommerceStore) UpdateOrderStatus(ctx context.Context, localOrderID uuid.UUID, status integration.OrderStatus) error {
	args := m.Called(ctx, localOrderID, status)
	return args.Error(0)
}

func (m *MockCommerceStore) GetProductByLocalID(ctx context.Context, marketplace integration.Marketplace, localProductID uuid.UUID) (*integration.Product, error) {
	args := m.Called(ctx, marketplace, localProductID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Product), args.Error(1)
}

func (m *MockCommerceStore) ListProductsForSync(ctx context.Context, marketplace integration.Marketplace, limit int) ([]integration.Product, error) {
	args := m.Called(ctx, marketplace, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.Product), args.Error(1)
}

// MockOrderMappingRepository is a mock implementation of OrderMappingRepository
type MockOrderMappingRepository struct {
	mock.Mock
}

func (m *MockOrderMappingRepository) FindByRemote(ctx context.Context, marketplace integration.Marketplace, remoteOrderID string) (*integration.MappingRecord, error) {
	args := m.Called(ctx, marketplace, remoteOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.MappingRecord), args.Error(1)
}

func (m *MockOrderMappingRepository) FindByLocal(ctx context.Context, marketplace integration.Marketplace, localOrderID uuid.UUID) (*integration.MappingRecord, error) {
	args := m.Called(ctx, marketplace, localOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.MappingRecord), args.Error(1)
}

func (m *MockOrderMappingRepository) Upsert(ctx context.Context, record *integration.MappingRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockOrderMappingRepository) MarkError(ctx context.Context, marketplace integration.Marketplace, remoteOrderID, message string) error {
	args := m.Called(ctx, marketplace, remoteOrderID, message)
	return args.Error(0)
}

func (m *MockOrderMappingRepository) Stats(ctx context.Context, marketplace integration.Marketplace) (*integration.MappingStats, error) {
	args := m.Called(ctx, marketplace)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.MappingStats), args.Error(1)
}

// MockProductMappingRepository is a mock implementation of ProductMappingRepository
type MockProductMappingRepository struct {
	mock.Mock
}

func (m *MockProductMappingRepository) FindByLocal(ctx context.Context, marketplace integration.Marketplace, localProductID uuid.UUID) (*integration.MappingRecord, error) {
	args := m.Called(ctx, marketplace, localProductID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.MappingRecord), args.Error(1)
}

func (m *MockProductMappingRepository) FindByRemote(ctx context.Context, marketplace integration.Marketplace, remoteProductID string) (*integration.MappingRecord, error) {
	args := m.Called(ctx, marketplace, remoteProductID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.MappingRecord), args.Error(1)
}

func (m *MockProductMappingRepository) Upsert(ctx context.Context, record *integration.MappingRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockProductMappingRepository) MarkError(ctx context.Context, marketplace integration.Marketplace, localProductID uuid.UUID, message string) error {
	args := m.Called(ctx, marketplace, localProductID, message)
	return args.Error(0)
}

func (m *MockProductMappingRepository) FindNeedingSync(ctx context.Context, marketplace integration.Marketplace, now time.Time, staleAfter, backoff time.Duration, limit int) ([]integration.MappingRecord, error) {
	args := m.Called(ctx, marketplace, now, staleAfter, backoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.MappingRecord), args.Error(1)
}

func (m *MockProductMappingRepository) Stats(ctx context.Context, marketplace integration.Marketplace) (*integration.MappingStats, error) {
	args := m.Called(ctx, marketplace)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.MappingStats), args.Error(1)
}

// MockSyncLogRepository is a mock implementation of SyncLogRepository
type MockSyncLogRepository struct {
	mock.Mock
}

func (m *MockSyncLogRepository) Append(ctx context.Context, entry *integration.LogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockSyncLogRepository) FindRecentSuccess(ctx context.Context, dedupKey string, since time.Time) (*integration.LogEntry, error) {
	args := m.Called(ctx, dedupKey, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.LogEntry), args.Error(1)
}

func (m *MockSyncLogRepository) List(ctx context.Context, filter integration.LogFilter) ([]integration.LogEntry, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]integration.LogEntry), args.Get(1).(int64), args.Error(2)
}

func (m *MockSyncLogRepository) StatsSince(ctx context.Context, marketplace *integration.Marketplace, since time.Time) (*integration.LogStats, error) {
	args := m.Called(ctx, marketplace, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.LogStats), args.Error(1)
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
