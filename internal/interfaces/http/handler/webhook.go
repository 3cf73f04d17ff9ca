package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	app "github.com/marketsync/backend/internal/application/integration"
	"github.com/marketsync/backend/internal/domain/integration"
	"github.com/marketsync/backend/internal/interfaces/http/dto"
)

// WebhookReconciler is the reconciliation surface the HTTP layer needs.
type WebhookReconciler interface {
	Handle(ctx context.Context, marketplace integration.Marketplace, event *app.WebhookEvent) (*app.WebhookResult, error)
}

// WebhookHandler is the per-marketplace push notification ingress. The
// response status tells the marketplace whether to redeliver: 5xx for
// retryable failures, 2xx for everything applied or permanently
// unprocessable after logging.
type WebhookHandler struct {
	BaseHandler
	reconciler WebhookReconciler
	logger     *zap.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(reconciler WebhookReconciler, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		reconciler: reconciler,
		logger:     logger,
	}
}

// RegisterRoutes registers webhook routes
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/:marketplace", h.Receive)
}

// Receive processes one marketplace push notification
// POST /api/v1/webhooks/:marketplace
func (h *WebhookHandler) Receive(c *gin.Context) {
	marketplace := integration.Marketplace(c.Param("marketplace"))
	if !marketplace.IsValid() {
		h.NotFound(c, "unknown marketplace: "+c.Param("marketplace"))
		return
	}

	var event app.WebhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, err.Error())
		return
	}

	result, err := h.reconciler.Handle(c.Request.Context(), marketplace, &event)
	if err != nil {
		switch {
		case result != nil && result.Retryable:
			h.ServiceUnavailable(c, dto.ErrCodeUnavailable, result.Message)
		case errors.Is(err, integration.ErrWebhookPayloadInvalid):
			h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, err.Error())
		default:
			// Permanent failures are acknowledged so the marketplace stops
			// redelivering; the sync log keeps the diagnosis.
			h.Success(c, result)
		}
		return
	}

	h.Success(c, result)
}
