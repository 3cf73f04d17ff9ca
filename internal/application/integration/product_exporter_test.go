package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/marketsync/backend/internal/domain/integration"
)

func newTestExporter(
	clients *MockClientRegistry,
	store *MockCommerceStore,
	mappings *MockProductMappingRepository,
	logs *MockSyncLogRepository,
) *ProductExporter {
	return NewProductExporter(
		clients, store, mappings, logs,
		zap.NewNop(),
		DefaultProductExporterConfig(),
	)
}

func localProduct(id uuid.UUID, m integration.Marketplace) integration.Product {
	return integration.Product{
		Marketplace:    m,
		LocalProductID: id,
		Name:           "Widget",
		Price:          decimal.NewFromFloat(99.90),
		Quantity:       10,
		SyncStatus:     integration.MappingStatusPending,
	}
}

func TestProductExporter_Run_PushesNewProduct(t *testing.T) {
	clients := new(MockClientRegistry)
	client := new(MockMarketplaceClient)
	store := new(MockCommerceStore)
	mappings := new(MockProductMappingRepository)
	logs := new(MockSyncLogRepository)
	exporter := newTestExporter(clients, store, mappings, logs)

	localID := uuid.New()
	product := localProduct(localID, integration.MarketplaceTrendyol)

	clients.On("Get", integration.MarketplaceTrendyol).Return(client, nil)
	mappings.On("FindNeedingSync", mock.Anything, integration.MarketplaceTrendyol, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]integration.MappingRecord{}, nil)
	store.On("ListProductsForSync", mock.Anything, integration.MarketplaceTrendyol, mock.Anything).
		Return([]integration.Product{product}, nil)
	mappings.On("FindByLocal", mock.Anything, integration.MarketplaceTrendyol, localID).
		Return(nil, integration.ErrMappingNotFound)
	client.On("PushProduct", mock.Anything, mock.Anything).
		Return(&integration.RemoteAck{RemoteProductID: "TY-P-1", RemoteSKU: "SKU-1"}, nil)
	mappings.On("Upsert", mock.Anything, mock.MatchedBy(func(r *integration.MappingRecord) bool {
		return r.RemoteID == "TY-P-1" && r.Status == integration.MappingStatusSynced && r.IsLinked()
	})).Return(nil)
	logs.On("Append", mock.Anything, mock.Anything).Return(nil)

	summary, err := exporter.Run(context.Background(), integration.MarketplaceTrendyol)

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	assert.Empty(t, summary.Errors)
	mappings.AssertExpectations(t)
}

func TestProductExporter_Run_PushFailureMarksErrorAndContinues(t *testing.T) {
	clients := new(MockClientRegistry)
	client := new(MockMarketplaceClient)
	store := new(MockCommerceStore)
	mappings := new(MockProductMappingRepository)
	logs := new(MockSyncLogRepository)
	exporter := newTestExporter(clients, store, mappings, logs)

	badID := uuid.New()
	goodID := uuid.New()
	bad := localProduct(badID, integration.MarketplaceEbay)
	good := localProduct(goodID, integration.MarketplaceEbay)

	clients.On("Get", integration.MarketplaceEbay).Return(client, nil)
	mappings.On("FindNeedingSync", mock.Anything, integration.MarketplaceEbay, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]integration.MappingRecord{}, nil)
	store.On("ListProductsForSync", mock.Anything, integration.MarketplaceEbay, mock.Anything).
		Return([]integration.Product{bad, good}, nil)
	mappings.On("FindByLocal", mock.Anything, integration.MarketplaceEbay, mock.Anything).
		Return(nil, integration.ErrMappingNotFound)
	client.On("PushProduct", mock.Anything, mock.MatchedBy(func(p *integration.Product) bool {
		return p.LocalProductID == badID
	})).Return(nil, integration.ErrRemoteRejected)
	client.On("PushProduct", mock.Anything, mock.MatchedBy(func(p *integration.Product) bool {
		return p.LocalProductID == goodID
	})).Return(&integration.RemoteAck{RemoteProductID: "EB-P-2"}, nil)
	mappings.On("MarkError", mock.Anything, integration.MarketplaceEbay, badID, mock.Anything).Return(nil)
	mappings.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	logs.On("Append", mock.Anything, mock.Anything).Return(nil)

	summary, err := exporter.Run(context.Background(), integration.MarketplaceEbay)

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	assert.Len(t, summary.Errors, 1)
	assert.Equal(t, badID.String(), summary.Errors[0].TargetID)
	assert.Equal(t, integration.ErrorClassPermanent, summary.Errors[0].Class)
	mappings.AssertCalled(t, "MarkError", mock.Anything, integration.MarketplaceEbay, badID, mock.Anything)
}

func TestProductExporter_Run_ErroredProductHeldBackUntilBackoff(t *testing.T) {
	clients := new(MockClientRegistry)
	client := new(MockMarketplaceClient)
	store := new(MockCommerceStore)
	mappings := new(MockProductMappingRepository)
	logs := new(MockSyncLogRepository)
	exporter := newTestExporter(clients, store, mappings, logs)

	localID := uuid.New()
	product := localProduct(localID, integration.MarketplaceEbay)

	// A mapping created between selection and push: the re-check finds a
	// recent failure and holds the product back.
	rec, _ := integration.NewProductMapping(integration.MarketplaceEbay, localID)
	rec.RecordFailure("marketplace rejected request")
	recent := time.Now().Add(-5 * time.Minute)
	rec.LastSyncAt = &recent

	clients.On("Get", integration.MarketplaceEbay).Return(client, nil)
	mappings.On("FindNeedingSync", mock.Anything, integration.MarketplaceEbay, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]integration.MappingRecord{}, nil)
	store.On("ListProductsForSync", mock.Anything, integration.MarketplaceEbay, mock.Anything).
		Return([]integration.Product{product}, nil)
	mappings.On("FindByLocal", mock.Anything, integration.MarketplaceEbay, localID).Return(rec, nil)

	summary, err := exporter.Run(context.Background(), integration.MarketplaceEbay)

	assert.NoError(t, err)
	assert.Equal(t, 0, summary.Imported)
	assert.Equal(t, 1, summary.Skipped)
	client.AssertNotCalled(t, "PushProduct", mock.Anything, mock.Anything)
}

func TestProductExporter_Run_ErroredProductRetriedAfterBackoff(t *testing.T) {
	clients := new(MockClientRegistry)
	client := new(MockMarketplaceClient)
	store := new(MockCommerceStore)
	mappings := new(MockProductMappingRepository)
	logs := new(MockSyncLogRepository)
	exporter := newTestExporter(clients, store, mappings, logs)

	localID := uuid.New()
	product := localProduct(localID, integration.MarketplaceN11)

	rec, _ := integration.NewProductMapping(integration.MarketplaceN11, localID)
	rec.RecordFailure("marketplace temporarily unavailable")
	old := time.Now().Add(-2 * time.Hour)
	rec.LastSyncAt = &old

	clients.On("Get", integration.MarketplaceN11).Return(client, nil)
	mappings.On("FindNeedingSync", mock.Anything, integration.MarketplaceN11, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]integration.MappingRecord{*rec}, nil)
	store.On("GetProductByLocalID", mock.Anything, integration.MarketplaceN11, localID).
		Return(&product, nil)
	store.On("ListProductsForSync", mock.Anything, integration.MarketplaceN11, mock.Anything).
		Return([]integration.Product{}, nil)
	client.On("PushProduct", mock.Anything, mock.Anything).
		Return(&integration.RemoteAck{RemoteProductID: "N11-P-5"}, nil)
	mappings.On("Upsert", mock.Anything, mock.MatchedBy(func(r *integration.MappingRecord) bool {
		return r.Status == integration.MappingStatusSynced && r.ErrorMessage == ""
	})).Return(nil)
	logs.On("Append", mock.Anything, mock.Anything).Return(nil)

	summary, err := exporter.Run(context.Background(), integration.MarketplaceN11)

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	mappings.AssertExpectations(t)
}

func TestProductExporter_Run_MappedBacklogSelectedAheadOfFreshCatalog(t *testing.T) {
	clients := new(MockClientRegistry)
	client := new(MockMarketplaceClient)
	store := new(MockCommerceStore)
	mappings := new(MockProductMappingRepository)
	logs := new(MockSyncLogRepository)
	cfg := DefaultProductExporterConfig()
	cfg.BatchSize = 2
	exporter := NewProductExporter(clients, store, mappings, logs, zap.NewNop(), cfg)

	// The pending mapping is found through its sync state, not its
	// position in the catalog, so a catalog full of fresh synced rows
	// cannot crowd it out of the batch.
	localID := uuid.New()
	product := localProduct(localID, integration.MarketplaceTrendyol)
	rec, _ := integration.NewProductMapping(integration.MarketplaceTrendyol, localID)

	clients.On("Get", integration.MarketplaceTrendyol).Return(client, nil)
	mappings.On("FindNeedingSync", mock.Anything, integration.MarketplaceTrendyol, mock.Anything, mock.Anything, mock.Anything, 2).
		Return([]integration.MappingRecord{*rec}, nil)
	store.On("GetProductByLocalID", mock.Anything, integration.MarketplaceTrendyol, localID).
		Return(&product, nil)
	store.On("ListProductsForSync", mock.Anything, integration.MarketplaceTrendyol, 1).
		Return([]integration.Product{}, nil)
	client.On("PushProduct", mock.Anything, mock.Anything).
		Return(&integration.RemoteAck{RemoteProductID: "TY-P-8"}, nil)
	mappings.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	logs.On("Append", mock.Anything, mock.Anything).Return(nil)

	summary, err := exporter.Run(context.Background(), integration.MarketplaceTrendyol)

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	assert.Equal(t, 0, summary.Skipped)
	// Never-pushed products only get the capacity the mapped set left.
	store.AssertCalled(t, "ListProductsForSync", mock.Anything, integration.MarketplaceTrendyol, 1)
	mappings.AssertExpectations(t)
}

func TestProductExporter_Run_OrphanedMappingDisabled(t *testing.T) {
	clients := new(MockClientRegistry)
	client := new(MockMarketplaceClient)
	store := new(MockCommerceStore)
	mappings := new(MockProductMappingRepository)
	logs := new(MockSyncLogRepository)
	exporter := newTestExporter(clients, store, mappings, logs)

	localID := uuid.New()
	rec, _ := integration.NewProductMapping(integration.MarketplaceAmazon, localID)

	clients.On("Get", integration.MarketplaceAmazon).Return(client, nil)
	mappings.On("FindNeedingSync", mock.Anything, integration.MarketplaceAmazon, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]integration.MappingRecord{*rec}, nil)
	store.On("GetProductByLocalID", mock.Anything, integration.MarketplaceAmazon, localID).
		Return(nil, integration.ErrProductNotFound)
	store.On("ListProductsForSync", mock.Anything, integration.MarketplaceAmazon, mock.Anything).
		Return([]integration.Product{}, nil)
	mappings.On("Upsert", mock.Anything, mock.MatchedBy(func(r *integration.MappingRecord) bool {
		return r.Status == integration.MappingStatusDisabled
	})).Return(nil)
	logs.On("Append", mock.Anything, mock.MatchedBy(func(e *integration.LogEntry) bool {
		return e.Status == integration.LogStatusWarning
	})).Return(nil)

	summary, err := exporter.Run(context.Background(), integration.MarketplaceAmazon)

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	client.AssertNotCalled(t, "PushProduct", mock.Anything, mock.Anything)
	mappings.AssertExpectations(t)
}

func TestProductExporter_Run_DisabledMappingNeverPushed(t *testing.T) {
	clients := new(MockClientRegistry)
	client := new(MockMarketplaceClient)
	store := new(MockCommerceStore)
	mappings := new(MockProductMappingRepository)
	logs := new(MockSyncLogRepository)
	exporter := newTestExporter(clients, store, mappings, logs)

	localID := uuid.New()
	product := localProduct(localID, integration.MarketplaceAmazon)

	// Disabled mappings never come back from FindNeedingSync; the guard
	// covers one racing in through the never-pushed path.
	rec, _ := integration.NewProductMapping(integration.MarketplaceAmazon, localID)
	rec.Disable()

	clients.On("Get", integration.MarketplaceAmazon).Return(client, nil)
	mappings.On("FindNeedingSync", mock.Anything, integration.MarketplaceAmazon, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]integration.MappingRecord{}, nil)
	store.On("ListProductsForSync", mock.Anything, integration.MarketplaceAmazon, mock.Anything).
		Return([]integration.Product{product}, nil)
	mappings.On("FindByLocal", mock.Anything, integration.MarketplaceAmazon, localID).Return(rec, nil)

	summary, err := exporter.Run(context.Background(), integration.MarketplaceAmazon)

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	client.AssertNotCalled(t, "PushProduct", mock.Anything, mock.Anything)
}

func TestProductExporter_UpdatePrice_Success(t *testing.T) {
	clients := new(MockClientRegistry)
	client := new(MockMarketplaceClient)
	store := new(MockCommerceStore)
	mappings := new(MockProductMappingRepository)
	logs := new(MockSyncLogRepository)
	exporter := newTestExporter(clients, store, mappings, logs)

	localID := uuid.New()
	rec, _ := integration.NewProductMapping(integration.MarketplaceTrendyol, localID)
	rec.RemoteID = "TY-P-9"
	rec.RecordSuccess()

	price := decimal.NewFromFloat(129.90)
	clients.On("Get", integration.MarketplaceTrendyol).Return(client, nil)
	mappings.On("FindByLocal", mock.Anything, integration.MarketplaceTrendyol, localID).Return(rec, nil)
	client.On("UpdatePrice", mock.Anything, "TY-P-9", price).Return(nil)
	mappings.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	logs.On("Append", mock.Anything, mock.MatchedBy(func(e *integration.LogEntry) bool {
		return e.Operation == integration.OperationUpdatePrice && e.Status == integration.LogStatusSuccess
	})).Return(nil)

	err := exporter.UpdatePrice(context.Background(), integration.MarketplaceTrendyol, localID, price)

	assert.NoError(t, err)
	client.AssertExpectations(t)
	logs.AssertExpectations(t)
}

func TestProductExporter_UpdateStock_UnmappedProduct(t *testing.T) {
	clients := new(MockClientRegistry)
	client := new(MockMarketplaceClient)
	store := new(MockCommerceStore)
	mappings := new(MockProductMappingRepository)
	logs := new(MockSyncLogRepository)
	exporter := newTestExporter(clients, store, mappings, logs)

	localID := uuid.New()
	clients.On("Get", integration.MarketplaceOzon).Return(client, nil)
	mappings.On("FindByLocal", mock.Anything, integration.MarketplaceOzon, localID).
		Return(nil, integration.ErrMappingNotFound)

	err := exporter.UpdateStock(context.Background(), integration.MarketplaceOzon, localID, 5)

	assert.ErrorIs(t, err, integration.ErrMappingNotFound)
	client.AssertNotCalled(t, "UpdateStock", mock.Anything, mock.Anything, mock.Anything)
}
