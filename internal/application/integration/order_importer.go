package integration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/marketsync/backend/internal/domain/integration"
)

// OrderImporterConfig bounds the order import pipeline.
type OrderImporterConfig struct {
	// CallTimeout caps each external call (marketplace API, persistence)
	CallTimeout time.Duration
	// PageSize is the remote listing page size
	PageSize int
}

// DefaultOrderImporterConfig returns defaults suitable for most
// marketplace APIs.
func DefaultOrderImporterConfig() OrderImporterConfig {
	return OrderImporterConfig{
		CallTimeout: 30 * time.Second,
		PageSize:    50,
	}
}

// OrderImporter pulls remote orders into the host commerce system.
// De-duplication rests on the order mapping store: a remote order whose
// mapping is already linked to a local order is never imported twice.
type OrderImporter struct {
	clients    integration.ClientRegistry
	store      integration.CommerceStore
	mappings   integration.OrderMappingRepository
	logs       integration.SyncLogRepository
	translator *integration.Translator
	logger     *zap.Logger
	cfg        OrderImporterConfig
}

// NewOrderImporter creates an order import pipeline.
func NewOrderImporter(
	clients integration.ClientRegistry,
	store integration.CommerceStore,
	mappings integration.OrderMappingRepository,
	logs integration.SyncLogRepository,
	translator *integration.Translator,
	logger *zap.Logger,
	cfg OrderImporterConfig,
) *OrderImporter {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultOrderImporterConfig().CallTimeout
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultOrderImporterConfig().PageSize
	}
	return &OrderImporter{
		clients:    clients,
		store:      store,
		mappings:   mappings,
		logs:       logs,
		translator: translator,
		logger:     logger,
		cfg:        cfg,
	}
}

// Run imports every order the marketplace lists for the filter window.
// Items are processed in remote listing order; one item's failure never
// aborts the batch. Infrastructure-level failures (no client registered,
// listing unreachable) abort the run and are recorded as a single error
// entry.
func (i *OrderImporter) Run(ctx context.Context, marketplace integration.Marketplace, filter integration.OrderListFilter) (*ImportSummary, error) {
	started := time.Now()
	summary := &ImportSummary{
		Marketplace: marketplace,
		Operation:   integration.OperationImportOrder,
		Errors:      make([]ItemError, 0),
	}

	client, err := i.clients.Get(marketplace)
	if err != nil {
		i.appendRunError(ctx, marketplace, started, err)
		return summary, err
	}

	if filter.PageSize <= 0 {
		filter.PageSize = i.cfg.PageSize
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	for {
		select {
		case <-ctx.Done():
			i.appendRunError(ctx, marketplace, started, ctx.Err())
			summary.Duration = time.Since(started)
			return summary, ctx.Err()
		default:
		}

		page, err := i.listPage(ctx, client, filter)
		if err != nil {
			i.appendRunError(ctx, marketplace, started, err)
			summary.Duration = time.Since(started)
			return summary, fmt.Errorf("list orders: %w", err)
		}

		for idx := range page.Orders {
			i.importOne(ctx, client, marketplace, &page.Orders[idx], summary)
		}

		if !page.HasMore || len(page.Orders) == 0 {
			break
		}
		filter.Page = page.NextPage
	}

	summary.Duration = time.Since(started)

	i.logger.Info("order import finished",
		zap.String("marketplace", marketplace.String()),
		zap.Int("imported", summary.Imported),
		zap.Int("skipped", summary.Skipped),
		zap.Int("errors", summary.ErrorCount()),
		zap.Duration("duration", summary.Duration),
	)

	return summary, nil
}

// ImportSingle imports one remote order by id, outside a batch run. It
// is used by the webhook reconciler when a notification refers to an
// order not seen by any pull yet.
func (i *OrderImporter) ImportSingle(ctx context.Context, marketplace integration.Marketplace, remoteOrderID string) (*ImportSummary, error) {
	summary := &ImportSummary{
		Marketplace: marketplace,
		Operation:   integration.OperationImportOrder,
		Errors:      make([]ItemError, 0),
	}

	client, err := i.clients.Get(marketplace)
	if err != nil {
		return summary, err
	}

	remote := integration.RemoteOrderSummary{RemoteOrderID: remoteOrderID}
	i.importOne(ctx, client, marketplace, &remote, summary)
	if len(summary.Errors) > 0 {
		return summary, fmt.Errorf("integration: import order %s on %s: %s",
			remoteOrderID, marketplace, summary.Errors[0].Message)
	}
	return summary, nil
}

func (i *OrderImporter) listPage(ctx context.Context, client integration.MarketplaceClient, filter integration.OrderListFilter) (*integration.RemoteOrderPage, error) {
	callCtx, cancel := context.WithTimeout(ctx, i.cfg.CallTimeout)
	defer cancel()
	return client.ListOrders(callCtx, filter)
}

// importOne applies the fetch/dedupe/convert/persist/map/log sequence to
// a single remote order. Failures are recorded on the summary and in the
// sync log; they never propagate.
func (i *OrderImporter) importOne(
	ctx context.Context,
	client integration.MarketplaceClient,
	marketplace integration.Marketplace,
	remote *integration.RemoteOrderSummary,
	summary *ImportSummary,
) {
	started := time.Now()

	rec, err := i.mappings.FindByRemote(ctx, marketplace, remote.RemoteOrderID)
	if err != nil && !errors.Is(err, integration.ErrMappingNotFound) {
		i.failItem(ctx, marketplace, remote.RemoteOrderID, started, summary,
			fmt.Errorf("%w: %v", integration.ErrPersistenceFailed, err))
		return
	}

	if rec != nil && rec.IsLinked() {
		summary.Skipped++
		i.appendItemLog(ctx, marketplace, remote.RemoteOrderID, integration.LogStatusSuccess,
			"already imported", "", time.Since(started))
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, i.cfg.CallTimeout)
	detail, err := client.GetOrderDetail(callCtx, remote.RemoteOrderID)
	cancel()
	if err != nil {
		i.failItem(ctx, marketplace, remote.RemoteOrderID, started, summary, err)
		return
	}

	status, known := i.translator.Translate(marketplace, detail.Status)
	if !known {
		i.appendItemLog(ctx, marketplace, remote.RemoteOrderID, integration.LogStatusWarning,
			fmt.Sprintf("unknown remote status %q, defaulting to %s", detail.Status, status), "", 0)
	}

	order := canonicalOrder(marketplace, detail, status)
	if err := order.Validate(); err != nil {
		i.failItemWithSnapshot(ctx, marketplace, remote.RemoteOrderID, started, summary,
			fmt.Errorf("%w: %v", integration.ErrConversionFailed, err), detail.RawPayload)
		return
	}

	persistCtx, cancel := context.WithTimeout(ctx, i.cfg.CallTimeout)
	localID, err := i.store.CreateOrder(persistCtx, order)
	cancel()
	if err != nil {
		// No mapping is written on a failed create, so the next run
		// retries the full import instead of chasing a zombie mapping.
		i.failItem(ctx, marketplace, remote.RemoteOrderID, started, summary,
			fmt.Errorf("%w: %v", integration.ErrPersistenceFailed, err))
		return
	}

	if rec == nil {
		rec, err = integration.NewOrderMapping(marketplace, remote.RemoteOrderID)
		if err != nil {
			i.failItem(ctx, marketplace, remote.RemoteOrderID, started, summary, err)
			return
		}
	}
	if err := rec.Link(localID); err != nil {
		i.failItem(ctx, marketplace, remote.RemoteOrderID, started, summary, err)
		return
	}
	rec.RecordSuccess()

	if err := i.mappings.Upsert(ctx, rec); err != nil {
		i.failItem(ctx, marketplace, remote.RemoteOrderID, started, summary,
			fmt.Errorf("%w: %v", integration.ErrPersistenceFailed, err))
		return
	}

	summary.Imported++
	i.appendItemLog(ctx, marketplace, remote.RemoteOrderID, integration.LogStatusSuccess,
		"imported", "", time.Since(started))
}

func (i *OrderImporter) failItem(ctx context.Context, marketplace integration.Marketplace, targetID string, started time.Time, summary *ImportSummary, err error) {
	i.failItemWithSnapshot(ctx, marketplace, targetID, started, summary, err, "")
}

func (i *OrderImporter) failItemWithSnapshot(ctx context.Context, marketplace integration.Marketplace, targetID string, started time.Time, summary *ImportSummary, err error, snapshot string) {
	summary.Errors = append(summary.Errors, ItemError{
		TargetID: targetID,
		Class:    integration.Classify(err),
		Message:  err.Error(),
	})

	i.logger.Warn("order import item failed",
		zap.String("marketplace", marketplace.String()),
		zap.String("remote_order_id", targetID),
		zap.String("class", string(integration.Classify(err))),
		zap.Error(err),
	)

	i.appendItemLog(ctx, marketplace, targetID, integration.LogStatusError, err.Error(), snapshot, time.Since(started))
}

func (i *OrderImporter) appendItemLog(ctx context.Context, marketplace integration.Marketplace, targetID string, status integration.LogStatus, message, snapshot string, duration time.Duration) {
	entry := integration.NewLogEntry(marketplace, integration.OperationImportOrder, status, message)
	entry.TargetID = targetID
	entry.ResponseSnapshot = snapshot
	entry.Duration = duration
	if err := i.logs.Append(ctx, entry); err != nil {
		i.logger.Warn("failed to append sync log entry",
			zap.String("marketplace", marketplace.String()),
			zap.Error(err),
		)
	}
}

func (i *OrderImporter) appendRunError(ctx context.Context, marketplace integration.Marketplace, started time.Time, err error) {
	i.logger.Error("order import run aborted",
		zap.String("marketplace", marketplace.String()),
		zap.Error(err),
	)
	entry := integration.NewLogEntry(marketplace, integration.OperationImportOrder, integration.LogStatusError, err.Error())
	entry.Duration = time.Since(started)
	if logErr := i.logs.Append(ctx, entry); logErr != nil {
		i.logger.Warn("failed to append sync log entry", zap.Error(logErr))
	}
}

// canonicalOrder converts a remote order detail into the canonical shape.
func canonicalOrder(marketplace integration.Marketplace, detail *integration.RemoteOrder, status integration.OrderStatus) *integration.Order {
	items := make([]integration.OrderItem, len(detail.Items))
	for idx, it := range detail.Items {
		items[idx] = integration.OrderItem{
			RemoteItemID:    it.RemoteItemID,
			RemoteProductID: it.RemoteProductID,
			RemoteSKU:       it.RemoteSKU,
			ProductName:     it.ProductName,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
			TotalPrice:      it.TotalPrice,
		}
	}

	now := time.Now()
	return &integration.Order{
		Marketplace:         marketplace,
		RemoteOrderID:       detail.RemoteOrderID,
		Status:              status,
		TotalAmount:         detail.TotalAmount,
		Currency:            detail.Currency,
		BuyerName:           detail.BuyerName,
		BuyerEmail:          detail.BuyerEmail,
		BuyerPhone:          detail.BuyerPhone,
		ShippingAddress:     detail.ShippingAddress,
		BillingAddress:      detail.BillingAddress,
		Items:               items,
		CargoCarrier:        detail.CargoCarrier,
		CargoTrackingNumber: detail.CargoTrackingNumber,
		RawPayload:          detail.RawPayload,
		CreatedAt:           detail.CreatedAt,
		UpdatedAt:           now,
	}
}
