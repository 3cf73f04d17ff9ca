package integration

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/marketsync/backend/internal/domain/integration"
)

// WebhookReconcilerConfig bounds the webhook reconciliation path.
type WebhookReconcilerConfig struct {
	// DedupWindow is how long a processed delivery stays remembered;
	// redeliveries within the window short-circuit as replays
	DedupWindow time.Duration
}

// DefaultWebhookReconcilerConfig covers the redelivery horizons of the
// supported marketplaces.
func DefaultWebhookReconcilerConfig() WebhookReconcilerConfig {
	return WebhookReconcilerConfig{DedupWindow: 24 * time.Hour}
}

// WebhookReconciler applies marketplace push notifications to local
// state. Marketplaces deliver at least once, so every delivery is keyed
// and checked against the idempotency store before any side effect; a
// replayed delivery is acknowledged without re-applying.
type WebhookReconciler struct {
	importer      *OrderImporter
	orderMappings integration.OrderMappingRepository
	prodMappings  integration.ProductMappingRepository
	store         integration.CommerceStore
	logs          integration.SyncLogRepository
	idempotency   integration.IdempotencyStore
	translator    *integration.Translator
	logger        *zap.Logger
	cfg           WebhookReconcilerConfig
}

// NewWebhookReconciler creates the reconciler.
func NewWebhookReconciler(
	importer *OrderImporter,
	orderMappings integration.OrderMappingRepository,
	prodMappings integration.ProductMappingRepository,
	store integration.CommerceStore,
	logs integration.SyncLogRepository,
	idempotency integration.IdempotencyStore,
	translator *integration.Translator,
	logger *zap.Logger,
	cfg WebhookReconcilerConfig,
) *WebhookReconciler {
	if cfg.DedupWindow <= 0 {
		cfg.DedupWindow = DefaultWebhookReconcilerConfig().DedupWindow
	}
	return &WebhookReconciler{
		importer:      importer,
		orderMappings: orderMappings,
		prodMappings:  prodMappings,
		store:         store,
		logs:          logs,
		idempotency:   idempotency,
		translator:    translator,
		logger:        logger,
		cfg:           cfg,
	}
}

// DedupKey derives the replay-detection key for a delivery. Two
// deliveries carrying the same marketplace, event type, target and
// status are the same notification.
func DedupKey(marketplace integration.Marketplace, event *WebhookEvent) string {
	h := sha256.Sum256([]byte(strings.Join([]string{
		marketplace.String(),
		event.EventType,
		event.TargetID(),
		event.Status,
	}, "|")))
	return hex.EncodeToString(h[:])
}

// Handle processes one delivery. The returned result tells the transport
// layer whether the marketplace should redeliver: a retryable failure
// maps to a 5xx-style answer, everything else is acknowledged.
func (r *WebhookReconciler) Handle(ctx context.Context, marketplace integration.Marketplace, event *WebhookEvent) (*WebhookResult, error) {
	started := time.Now()

	if !marketplace.IsValid() {
		return &WebhookResult{
			Status:  integration.LogStatusError,
			Message: integration.ErrInvalidMarketplace.Error(),
		}, integration.ErrInvalidMarketplace
	}
	if event.EventType == "" || event.TargetID() == "" {
		err := fmt.Errorf("%w: event_type and a target id are required", integration.ErrWebhookPayloadInvalid)
		r.appendLog(ctx, marketplace, event, "", integration.LogStatusError, err.Error(), time.Since(started))
		return &WebhookResult{
			Status:  integration.LogStatusError,
			Message: err.Error(),
		}, err
	}

	key := DedupKey(marketplace, event)
	if r.seen(ctx, key) {
		r.logger.Debug("webhook replay ignored",
			zap.String("marketplace", marketplace.String()),
			zap.String("event_type", event.EventType),
			zap.String("dedup_key", key),
		)
		return &WebhookResult{
			Status:    integration.LogStatusSuccess,
			Duplicate: true,
			Message:   "duplicate delivery",
		}, nil
	}

	var err error
	switch {
	case event.RemoteOrderID != "":
		err = r.applyOrderEvent(ctx, marketplace, event)
	case event.RemoteProductID != "":
		err = r.applyProductEvent(ctx, marketplace, event)
	default:
		err = integration.ErrWebhookPayloadInvalid
	}

	if err != nil {
		class := integration.Classify(err)
		r.appendLog(ctx, marketplace, event, key, integration.LogStatusError, err.Error(), time.Since(started))
		r.logger.Warn("webhook reconciliation failed",
			zap.String("marketplace", marketplace.String()),
			zap.String("event_type", event.EventType),
			zap.String("target_id", event.TargetID()),
			zap.String("class", string(class)),
			zap.Error(err),
		)
		return &WebhookResult{
			Status:    integration.LogStatusError,
			Retryable: class.Retryable(),
			Message:   err.Error(),
		}, err
	}

	// Marked only after the side effects committed: a crash in between
	// yields a redelivery, not a lost event.
	if _, markErr := r.idempotency.MarkProcessed(ctx, key, r.cfg.DedupWindow); markErr != nil {
		r.logger.Warn("failed to mark webhook processed",
			zap.String("dedup_key", key),
			zap.Error(markErr),
		)
	}

	r.appendLog(ctx, marketplace, event, key, integration.LogStatusSuccess, "applied", time.Since(started))
	return &WebhookResult{Status: integration.LogStatusSuccess}, nil
}

// seen checks the idempotency store first and the sync log second. The
// store can lose keys inside the window (in-memory fallback restart,
// redis eviction), so a store miss is not proof of a first delivery;
// the log is the durable record and has the final word.
func (r *WebhookReconciler) seen(ctx context.Context, key string) bool {
	processed, err := r.idempotency.IsProcessed(ctx, key)
	if err != nil {
		r.logger.Warn("idempotency store unavailable, falling back to sync log",
			zap.Error(err),
		)
	} else if processed {
		return true
	}

	entry, logErr := r.logs.FindRecentSuccess(ctx, key, time.Now().Add(-r.cfg.DedupWindow))
	if logErr != nil {
		if !errors.Is(logErr, integration.ErrLogEntryNotFound) {
			r.logger.Warn("sync log replay lookup failed", zap.Error(logErr))
		}
		return false
	}
	return entry != nil
}

func (r *WebhookReconciler) applyOrderEvent(ctx context.Context, marketplace integration.Marketplace, event *WebhookEvent) error {
	rec, err := r.orderMappings.FindByRemote(ctx, marketplace, event.RemoteOrderID)
	if err != nil && !errors.Is(err, integration.ErrMappingNotFound) {
		return fmt.Errorf("%w: %v", integration.ErrPersistenceFailed, err)
	}

	// An order the engine has never imported is imported on the spot;
	// the notification is effectively an early pull trigger.
	if rec == nil || !rec.IsLinked() {
		_, err := r.importer.ImportSingle(ctx, marketplace, event.RemoteOrderID)
		return err
	}

	if event.Status == "" {
		return nil
	}

	status, known := r.translator.Translate(marketplace, event.Status)
	if !known {
		r.logger.Warn("unknown remote status in webhook",
			zap.String("marketplace", marketplace.String()),
			zap.String("remote_status", event.Status),
		)
	}

	if err := r.store.UpdateOrderStatus(ctx, *rec.LocalID, status); err != nil {
		return fmt.Errorf("%w: %v", integration.ErrPersistenceFailed, err)
	}

	rec.RecordSuccess()
	if err := r.orderMappings.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("%w: %v", integration.ErrPersistenceFailed, err)
	}
	return nil
}

func (r *WebhookReconciler) applyProductEvent(ctx context.Context, marketplace integration.Marketplace, event *WebhookEvent) error {
	rec, err := r.prodMappings.FindByRemote(ctx, marketplace, event.RemoteProductID)
	if err != nil {
		if errors.Is(err, integration.ErrMappingNotFound) {
			// Products originate locally; a notification for an unmapped
			// remote product cannot be reconciled and never will be.
			return fmt.Errorf("%w: no mapping for remote product %s on %s",
				integration.ErrConversionFailed, event.RemoteProductID, marketplace)
		}
		return fmt.Errorf("%w: %v", integration.ErrPersistenceFailed, err)
	}

	switch strings.ToLower(event.Status) {
	case "rejected", "failed", "suspended":
		rec.RecordFailure(fmt.Sprintf("marketplace reported %s", strings.ToLower(event.Status)))
	default:
		rec.RecordSuccess()
	}

	if err := r.prodMappings.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("%w: %v", integration.ErrPersistenceFailed, err)
	}
	return nil
}

func (r *WebhookReconciler) appendLog(ctx context.Context, marketplace integration.Marketplace, event *WebhookEvent, key string, status integration.LogStatus, message string, duration time.Duration) {
	entry := integration.NewLogEntry(marketplace, integration.OperationWebhook, status, message)
	entry.TargetID = event.TargetID()
	entry.DedupKey = key
	entry.Duration = duration
	if err := r.logs.Append(ctx, entry); err != nil {
		r.logger.Warn("failed to append sync log entry",
			zap.String("marketplace", marketplace.String()),
			zap.Error(err),
		)
	}
}
