package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/marketsync/backend/internal/domain/integration"
	"github.com/marketsync/backend/internal/infrastructure/scheduler"
	"github.com/marketsync/backend/internal/interfaces/http/dto"
)

// defaultManualPullWindow is the pull window when the trigger request
// carries no explicit range.
const defaultManualPullWindow = 24 * time.Hour

// SyncCoordinator is the coordinator surface the HTTP layer needs.
type SyncCoordinator interface {
	TriggerPull(marketplace integration.Marketplace, start, end time.Time) (*scheduler.SyncJob, error)
	TriggerPush(marketplace integration.Marketplace) (*scheduler.SyncJob, error)
	History(limit int) []*scheduler.SyncJob
	HistoryByMarketplace(marketplace integration.Marketplace, limit int) []*scheduler.SyncJob
}

// SyncHandler exposes manual sync triggers and run history
type SyncHandler struct {
	BaseHandler
	coordinator SyncCoordinator
	logger      *zap.Logger
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(coordinator SyncCoordinator, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{
		coordinator: coordinator,
		logger:      logger,
	}
}

// RegisterRoutes registers sync routes
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/sync")
	{
		sync.POST("/trigger", h.Trigger)
		sync.GET("/runs", h.Runs)
	}
}

// Trigger schedules a manual sync run
// POST /api/v1/sync/trigger
func (h *SyncHandler) Trigger(c *gin.Context) {
	var req dto.TriggerSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, err.Error())
		return
	}

	marketplace := integration.Marketplace(req.Marketplace)
	if !marketplace.IsValid() {
		h.BadRequest(c, "unknown marketplace: "+req.Marketplace)
		return
	}

	var (
		job *scheduler.SyncJob
		err error
	)

	switch req.Kind {
	case "", string(scheduler.SyncJobKindPullOrders):
		end := time.Now()
		if req.EndTime != nil {
			end = *req.EndTime
		}
		start := end.Add(-defaultManualPullWindow)
		if req.StartTime != nil {
			start = *req.StartTime
		}
		job, err = h.coordinator.TriggerPull(marketplace, start, end)

	case string(scheduler.SyncJobKindPushProducts):
		job, err = h.coordinator.TriggerPush(marketplace)
	}

	if err != nil {
		switch {
		case errors.Is(err, scheduler.ErrInvalidTimeRange):
			h.BadRequest(c, err.Error())
		case errors.Is(err, scheduler.ErrJobQueueFull):
			h.ServiceUnavailable(c, dto.ErrCodeQueueFull, err.Error())
		case errors.Is(err, scheduler.ErrCoordinatorNotRunning):
			h.ServiceUnavailable(c, dto.ErrCodeUnavailable, err.Error())
		default:
			h.InternalError(c, err.Error())
		}
		return
	}

	h.logger.Info("manual sync triggered",
		zap.String("marketplace", marketplace.String()),
		zap.String("kind", string(job.Kind)),
		zap.String("job_id", job.ID.String()),
	)

	h.Accepted(c, dto.SyncJobResponseFromJob(job))
}

// Runs returns recent coordinator run history, newest first
// GET /api/v1/sync/runs?marketplace=trendyol&limit=20
func (h *SyncHandler) Runs(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, ok := parsePositiveInt(raw, 100)
		if !ok {
			h.BadRequest(c, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	if raw := c.Query("marketplace"); raw != "" {
		marketplace := integration.Marketplace(raw)
		if !marketplace.IsValid() {
			h.BadRequest(c, "unknown marketplace: "+raw)
			return
		}
		h.Success(c, dto.SyncJobResponsesFromJobs(h.coordinator.HistoryByMarketplace(marketplace, limit)))
		return
	}

	h.Success(c, dto.SyncJobResponsesFromJobs(h.coordinator.History(limit)))
}

// parsePositiveInt parses a bounded positive integer query value
func parsePositiveInt(raw string, max int) (int, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	if n > max {
		return max, true
	}
	return n, true
}
