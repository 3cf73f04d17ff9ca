package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	app "github.com/marketsync/backend/internal/application/integration"
	"github.com/marketsync/backend/internal/domain/integration"
	"github.com/marketsync/backend/internal/interfaces/http/dto"
)

// DashboardReader is the read-only surface behind the admin UI.
type DashboardReader interface {
	Stats(ctx context.Context) (*app.DashboardStats, error)
	ListLogs(ctx context.Context, filter integration.LogFilter) ([]integration.LogEntry, int64, error)
	Health(ctx context.Context) []app.HealthReport
}

// DashboardHandler serves mapping statistics, the sync log and
// marketplace connectivity
type DashboardHandler struct {
	BaseHandler
	reader DashboardReader
	logger *zap.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(reader DashboardReader, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		reader: reader,
		logger: logger,
	}
}

// RegisterRoutes registers dashboard routes
func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	dashboard := rg.Group("/dashboard")
	{
		dashboard.GET("/stats", h.Stats)
		dashboard.GET("/logs", h.Logs)
		dashboard.GET("/health", h.Health)
	}
}

// Stats returns mapping and sync aggregates per marketplace
// GET /api/v1/dashboard/stats
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.reader.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("dashboard stats failed", zap.Error(err))
		h.InternalError(c, err.Error())
		return
	}
	h.Success(c, stats)
}

// Logs returns sync log entries, newest first
// GET /api/v1/dashboard/logs?marketplace=trendyol&status=error&page=1&page_size=50
func (h *DashboardHandler) Logs(c *gin.Context) {
	var req dto.ListLogsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, err.Error())
		return
	}

	if req.Marketplace != "" && !integration.Marketplace(req.Marketplace).IsValid() {
		h.BadRequest(c, "unknown marketplace: "+req.Marketplace)
		return
	}

	filter := req.ToFilter()
	entries, total, err := h.reader.ListLogs(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("sync log listing failed", zap.Error(err))
		h.InternalError(c, err.Error())
		return
	}

	out := make([]dto.LogEntryResponse, len(entries))
	for i := range entries {
		out[i] = dto.LogEntryResponseFromDomain(&entries[i])
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	h.SuccessWithMeta(c, out, total, page, pageSize)
}

// Health probes every registered marketplace
// GET /api/v1/dashboard/health
func (h *DashboardHandler) Health(c *gin.Context) {
	h.Success(c, h.reader.Health(c.Request.Context()))
}
