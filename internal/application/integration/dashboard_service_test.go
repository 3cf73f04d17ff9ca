package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/marketsync/backend/internal/domain/integration"
)

func TestDashboardService_Stats_AggregatesAcrossMarketplaces(t *testing.T) {
	clients := new(MockClientRegistry)
	orderMappings := new(MockOrderMappingRepository)
	prodMappings := new(MockProductMappingRepository)
	logs := new(MockSyncLogRepository)
	service := NewDashboardService(clients, orderMappings, prodMappings, logs, zap.NewNop())

	now := time.Now()
	clients.On("Marketplaces").Return([]integration.Marketplace{
		integration.MarketplaceTrendyol,
		integration.MarketplaceN11,
	})
	orderMappings.On("Stats", mock.Anything, integration.MarketplaceTrendyol).
		Return(&integration.MappingStats{Total: 100, Synced: 90, Errors: 2, SyncedToday: 12, LastSyncAt: &now}, nil)
	prodMappings.On("Stats", mock.Anything, integration.MarketplaceTrendyol).
		Return(&integration.MappingStats{Total: 50, Synced: 48, Errors: 1, SyncedToday: 3}, nil)
	orderMappings.On("Stats", mock.Anything, integration.MarketplaceN11).
		Return(&integration.MappingStats{Total: 40, Synced: 40, SyncedToday: 5}, nil)
	prodMappings.On("Stats", mock.Anything, integration.MarketplaceN11).
		Return(&integration.MappingStats{Total: 10, Synced: 10, SyncedToday: 1}, nil)
	logs.On("StatsSince", mock.Anything, mock.Anything, mock.Anything).
		Return(&integration.LogStats{ErrorCount: 2, LastError: "marketplace rate limited"}, nil)

	stats, err := service.Stats(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, int64(200), stats.TotalMapped)
	assert.Equal(t, int64(21), stats.SyncedToday)
	assert.Equal(t, int64(3), stats.ErrorCount)
	assert.Len(t, stats.Marketplaces, 2)
	assert.Equal(t, int64(100), stats.Marketplaces[0].OrdersMapped)
	assert.Equal(t, int64(50), stats.Marketplaces[0].ProductsMapped)
	assert.Equal(t, "marketplace rate limited", stats.Marketplaces[0].LastError)
}

func TestDashboardService_Stats_DegradesOnPartialFailure(t *testing.T) {
	clients := new(MockClientRegistry)
	orderMappings := new(MockOrderMappingRepository)
	prodMappings := new(MockProductMappingRepository)
	logs := new(MockSyncLogRepository)
	service := NewDashboardService(clients, orderMappings, prodMappings, logs, zap.NewNop())

	clients.On("Marketplaces").Return([]integration.Marketplace{integration.MarketplaceOzon})
	orderMappings.On("Stats", mock.Anything, integration.MarketplaceOzon).
		Return(nil, fmt.Errorf("query timeout"))
	prodMappings.On("Stats", mock.Anything, integration.MarketplaceOzon).
		Return(&integration.MappingStats{Total: 7, Synced: 7}, nil)
	logs.On("StatsSince", mock.Anything, mock.Anything, mock.Anything).
		Return(&integration.LogStats{}, nil)

	stats, err := service.Stats(context.Background())

	assert.NoError(t, err)
	assert.Len(t, stats.Marketplaces, 1)
	assert.Equal(t, int64(0), stats.Marketplaces[0].OrdersMapped)
	assert.Equal(t, int64(7), stats.Marketplaces[0].ProductsMapped)
}

func TestDashboardService_ListLogs_DefaultsPagination(t *testing.T) {
	clients := new(MockClientRegistry)
	orderMappings := new(MockOrderMappingRepository)
	prodMappings := new(MockProductMappingRepository)
	logs := new(MockSyncLogRepository)
	service := NewDashboardService(clients, orderMappings, prodMappings, logs, zap.NewNop())

	logs.On("List", mock.Anything, mock.MatchedBy(func(f integration.LogFilter) bool {
		return f.Page == 1 && f.PageSize == 50
	})).Return([]integration.LogEntry{}, int64(0), nil)

	_, _, err := service.ListLogs(context.Background(), integration.LogFilter{})

	assert.NoError(t, err)
	logs.AssertExpectations(t)
}

func TestDashboardService_Health_RecordsOutcome(t *testing.T) {
	clients := new(MockClientRegistry)
	client := new(MockMarketplaceClient)
	orderMappings := new(MockOrderMappingRepository)
	prodMappings := new(MockProductMappingRepository)
	logs := new(MockSyncLogRepository)
	service := NewDashboardService(clients, orderMappings, prodMappings, logs, zap.NewNop())

	clients.On("Marketplaces").Return([]integration.Marketplace{integration.MarketplaceTrendyol})
	clients.On("Get", integration.MarketplaceTrendyol).Return(client, nil)
	client.On("TestConnection", mock.Anything).
		Return(&integration.HealthResult{Healthy: true, Latency: 120 * time.Millisecond}, nil)
	logs.On("Append", mock.Anything, mock.MatchedBy(func(e *integration.LogEntry) bool {
		return e.Operation == integration.OperationHealthCheck && e.Status == integration.LogStatusSuccess
	})).Return(nil)

	reports := service.Health(context.Background())

	assert.Len(t, reports, 1)
	assert.True(t, reports[0].Healthy)
	assert.Equal(t, int64(120), reports[0].LatencyMs)
	logs.AssertExpectations(t)
}
