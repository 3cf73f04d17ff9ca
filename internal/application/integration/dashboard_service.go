package integration

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/marketsync/backend/internal/domain/integration"
)

// HealthReport is the connectivity answer for one marketplace.
type HealthReport struct {
	Marketplace integration.Marketplace `json:"marketplace"`
	Healthy     bool                    `json:"healthy"`
	Message     string                  `json:"message,omitempty"`
	LatencyMs   int64                   `json:"latency_ms"`
}

// DashboardService serves the read-only aggregates behind the admin UI.
// It only reads mapping and log state; it never triggers a sync.
type DashboardService struct {
	clients       integration.ClientRegistry
	orderMappings integration.OrderMappingRepository
	prodMappings  integration.ProductMappingRepository
	logs          integration.SyncLogRepository
	logger        *zap.Logger
}

// NewDashboardService creates the dashboard read service.
func NewDashboardService(
	clients integration.ClientRegistry,
	orderMappings integration.OrderMappingRepository,
	prodMappings integration.ProductMappingRepository,
	logs integration.SyncLogRepository,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		clients:       clients,
		orderMappings: orderMappings,
		prodMappings:  prodMappings,
		logs:          logs,
		logger:        logger,
	}
}

// Stats aggregates mapping and log state across all registered
// marketplaces. A single marketplace's aggregation failure degrades that
// marketplace's row instead of failing the whole response.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	out := &DashboardStats{
		Marketplaces: make([]MarketplaceStats, 0, len(s.clients.Marketplaces())),
	}

	since := startOfDay(time.Now())
	for _, m := range s.clients.Marketplaces() {
		row := MarketplaceStats{Marketplace: m}

		if stats, err := s.orderMappings.Stats(ctx, m); err != nil {
			s.logger.Warn("order mapping stats failed",
				zap.String("marketplace", m.String()), zap.Error(err))
		} else {
			row.OrdersMapped = stats.Total
			row.SyncedToday += stats.SyncedToday
			row.ErrorCount += stats.Errors
			row.LastSyncAt = latestTime(row.LastSyncAt, stats.LastSyncAt)
		}

		if stats, err := s.prodMappings.Stats(ctx, m); err != nil {
			s.logger.Warn("product mapping stats failed",
				zap.String("marketplace", m.String()), zap.Error(err))
		} else {
			row.ProductsMapped = stats.Total
			row.SyncedToday += stats.SyncedToday
			row.ErrorCount += stats.Errors
			row.LastSyncAt = latestTime(row.LastSyncAt, stats.LastSyncAt)
		}

		if stats, err := s.logs.StatsSince(ctx, &m, since); err != nil {
			s.logger.Warn("sync log stats failed",
				zap.String("marketplace", m.String()), zap.Error(err))
		} else {
			row.LastError = stats.LastError
		}

		out.TotalMapped += row.OrdersMapped + row.ProductsMapped
		out.SyncedToday += row.SyncedToday
		out.ErrorCount += row.ErrorCount
		out.Marketplaces = append(out.Marketplaces, row)
	}

	return out, nil
}

// ListLogs returns sync log entries matching the filter, newest first.
func (s *DashboardService) ListLogs(ctx context.Context, filter integration.LogFilter) ([]integration.LogEntry, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 200 {
		filter.PageSize = 50
	}
	return s.logs.List(ctx, filter)
}

// Health probes every registered marketplace and records the outcome in
// the sync log.
func (s *DashboardService) Health(ctx context.Context) []HealthReport {
	marketplaces := s.clients.Marketplaces()
	reports := make([]HealthReport, 0, len(marketplaces))

	for _, m := range marketplaces {
		report := HealthReport{Marketplace: m}

		client, err := s.clients.Get(m)
		if err != nil {
			report.Message = err.Error()
			reports = append(reports, report)
			continue
		}

		result, err := client.TestConnection(ctx)
		status := integration.LogStatusSuccess
		if err != nil {
			report.Message = err.Error()
			status = integration.LogStatusError
		} else {
			report.Healthy = result.Healthy
			report.Message = result.Message
			report.LatencyMs = result.Latency.Milliseconds()
			if !result.Healthy {
				status = integration.LogStatusError
			}
		}

		entry := integration.NewLogEntry(m, integration.OperationHealthCheck, status, report.Message)
		if err == nil {
			entry.Duration = result.Latency
		}
		if logErr := s.logs.Append(ctx, entry); logErr != nil {
			s.logger.Warn("failed to append sync log entry",
				zap.String("marketplace", m.String()), zap.Error(logErr))
		}

		reports = append(reports, report)
	}

	return reports
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func latestTime(a, b *time.Time) *time.Time {
	if a == nil {
		return b
	}
	if b == nil || a.After(*b) {
		return a
	}
	return b
}
