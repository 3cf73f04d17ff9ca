package integration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/marketsync/backend/internal/domain/integration"
)

// ProductExporterConfig bounds the outbound product push pipeline.
type ProductExporterConfig struct {
	CallTimeout time.Duration
	// BatchSize caps the products considered per run
	BatchSize int
	// StaleAfter is how long a synced product stays fresh before it is
	// pushed again
	StaleAfter time.Duration
	// RetryBackoff is the hold-off after a failed push before the same
	// product is retried
	RetryBackoff time.Duration
}

// DefaultProductExporterConfig returns defaults suitable for most
// marketplace rate limits.
func DefaultProductExporterConfig() ProductExporterConfig {
	return ProductExporterConfig{
		CallTimeout:  30 * time.Second,
		BatchSize:    100,
		StaleAfter:   24 * time.Hour,
		RetryBackoff: time.Hour,
	}
}

// ProductExporter pushes local products outward to marketplaces and
// records the remote identifiers the marketplace assigns. Selection is
// driven by the product mapping state: pending, stale and
// backoff-elapsed error products are pushed; disabled ones never are.
type ProductExporter struct {
	clients  integration.ClientRegistry
	store    integration.CommerceStore
	mappings integration.ProductMappingRepository
	logs     integration.SyncLogRepository
	logger   *zap.Logger
	cfg      ProductExporterConfig
}

// NewProductExporter creates a product push pipeline.
func NewProductExporter(
	clients integration.ClientRegistry,
	store integration.CommerceStore,
	mappings integration.ProductMappingRepository,
	logs integration.SyncLogRepository,
	logger *zap.Logger,
	cfg ProductExporterConfig,
) *ProductExporter {
	def := DefaultProductExporterConfig()
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = def.CallTimeout
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = def.StaleAfter
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = def.RetryBackoff
	}
	return &ProductExporter{
		clients:  clients,
		store:    store,
		mappings: mappings,
		logs:     logs,
		logger:   logger,
		cfg:      cfg,
	}
}

// Run pushes the eligible products for one marketplace. Candidates come
// from two disjoint sets: mappings due for another pass (pending, stale
// or backoff-elapsed) and local products never pushed before, which fill
// whatever batch capacity the mapped set leaves. One product's failure
// never aborts the batch; its mapping is marked with the error and it is
// excluded from retry until the backoff window elapses.
func (e *ProductExporter) Run(ctx context.Context, marketplace integration.Marketplace) (*ImportSummary, error) {
	started := time.Now()
	summary := &ImportSummary{
		Marketplace: marketplace,
		Operation:   integration.OperationImportProduct,
		Errors:      make([]ItemError, 0),
	}

	client, err := e.clients.Get(marketplace)
	if err != nil {
		e.appendRunError(ctx, marketplace, started, err)
		return summary, err
	}

	now := time.Now()

	recs, err := e.mappings.FindNeedingSync(ctx, marketplace, now, e.cfg.StaleAfter, e.cfg.RetryBackoff, e.cfg.BatchSize)
	if err != nil {
		err = fmt.Errorf("%w: %v", integration.ErrPersistenceFailed, err)
		e.appendRunError(ctx, marketplace, started, err)
		return summary, err
	}

	for idx := range recs {
		select {
		case <-ctx.Done():
			e.appendRunError(ctx, marketplace, started, ctx.Err())
			summary.Duration = time.Since(started)
			return summary, ctx.Err()
		default:
		}
		e.pushMapped(ctx, client, marketplace, &recs[idx], now, summary)
	}

	if remaining := e.cfg.BatchSize - len(recs); remaining > 0 {
		products, err := e.store.ListProductsForSync(ctx, marketplace, remaining)
		if err != nil {
			err = fmt.Errorf("%w: %v", integration.ErrPersistenceFailed, err)
			e.appendRunError(ctx, marketplace, started, err)
			return summary, err
		}

		for idx := range products {
			select {
			case <-ctx.Done():
				e.appendRunError(ctx, marketplace, started, ctx.Err())
				summary.Duration = time.Since(started)
				return summary, ctx.Err()
			default:
			}
			e.pushOne(ctx, client, marketplace, &products[idx], nil, now, summary)
		}
	}

	summary.Duration = time.Since(started)

	e.logger.Info("product push finished",
		zap.String("marketplace", marketplace.String()),
		zap.Int("pushed", summary.Imported),
		zap.Int("skipped", summary.Skipped),
		zap.Int("errors", summary.ErrorCount()),
		zap.Duration("duration", summary.Duration),
	)

	return summary, nil
}

// pushMapped loads the product row behind a mapping selected by
// FindNeedingSync and pushes it. A mapping whose local product vanished
// is soft-disabled so it stops matching selection instead of erroring
// every cycle.
func (e *ProductExporter) pushMapped(
	ctx context.Context,
	client integration.MarketplaceClient,
	marketplace integration.Marketplace,
	rec *integration.MappingRecord,
	now time.Time,
	summary *ImportSummary,
) {
	if !rec.IsLinked() {
		e.logger.Warn("product mapping without local id skipped",
			zap.String("marketplace", marketplace.String()),
			zap.String("mapping_id", rec.ID.String()),
		)
		summary.Skipped++
		return
	}

	product, err := e.store.GetProductByLocalID(ctx, marketplace, *rec.LocalID)
	if err != nil {
		if errors.Is(err, integration.ErrProductNotFound) {
			rec.Disable()
			if upErr := e.mappings.Upsert(ctx, rec); upErr != nil {
				e.logger.Warn("failed to disable orphaned product mapping",
					zap.String("marketplace", marketplace.String()),
					zap.String("local_product_id", rec.LocalID.String()),
					zap.Error(upErr),
				)
			}
			e.appendItemLog(ctx, marketplace, rec.LocalID.String(), integration.OperationImportProduct,
				integration.LogStatusWarning, "local product gone, mapping disabled", "", 0)
			summary.Skipped++
			return
		}
		e.failItem(ctx, marketplace, *rec.LocalID, time.Now(), summary,
			fmt.Errorf("%w: %v", integration.ErrPersistenceFailed, err))
		return
	}

	e.pushOne(ctx, client, marketplace, product, rec, now, summary)
}

// pushOne pushes a single product. The mapping record is the source of
// truth for push state; the product row from the commerce store is
// merged with it before the eligibility check. A nil rec means the
// product was selected as never-pushed; the mapping table is re-checked
// in case a concurrent pass created one since selection.
func (e *ProductExporter) pushOne(
	ctx context.Context,
	client integration.MarketplaceClient,
	marketplace integration.Marketplace,
	product *integration.Product,
	rec *integration.MappingRecord,
	now time.Time,
	summary *ImportSummary,
) {
	started := time.Now()

	if rec == nil {
		found, err := e.mappings.FindByLocal(ctx, marketplace, product.LocalProductID)
		if err != nil && !errors.Is(err, integration.ErrMappingNotFound) {
			e.failItem(ctx, marketplace, product.LocalProductID, started, summary,
				fmt.Errorf("%w: %v", integration.ErrPersistenceFailed, err))
			return
		}
		rec = found
	}

	if rec != nil {
		product.SyncStatus = rec.Status
		product.ErrorMessage = rec.ErrorMessage
		product.LastSyncAt = rec.LastSyncAt
		if product.RemoteProductID == "" {
			product.RemoteProductID = rec.RemoteID
		}
		if product.RemoteSKU == "" {
			product.RemoteSKU = rec.RemoteSKU
		}
	}

	if !product.NeedsSync(now, e.cfg.StaleAfter, e.cfg.RetryBackoff) {
		summary.Skipped++
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, e.cfg.CallTimeout)
	ack, err := client.PushProduct(callCtx, product)
	cancel()
	if err != nil {
		if markErr := e.mappings.MarkError(ctx, marketplace, product.LocalProductID, err.Error()); markErr != nil {
			e.logger.Warn("failed to record product push error",
				zap.String("marketplace", marketplace.String()),
				zap.String("local_product_id", product.LocalProductID.String()),
				zap.Error(markErr),
			)
		}
		e.failItem(ctx, marketplace, product.LocalProductID, started, summary, err)
		return
	}

	if rec == nil {
		rec, err = integration.NewProductMapping(marketplace, product.LocalProductID)
		if err != nil {
			e.failItem(ctx, marketplace, product.LocalProductID, started, summary, err)
			return
		}
	}
	if ack.RemoteProductID != "" {
		rec.RemoteID = ack.RemoteProductID
	}
	if ack.RemoteSKU != "" {
		rec.RemoteSKU = ack.RemoteSKU
	}
	rec.RecordSuccess()

	if err := e.mappings.Upsert(ctx, rec); err != nil {
		e.failItem(ctx, marketplace, product.LocalProductID, started, summary,
			fmt.Errorf("%w: %v", integration.ErrPersistenceFailed, err))
		return
	}

	summary.Imported++
	e.appendItemLog(ctx, marketplace, product.LocalProductID.String(), integration.OperationImportProduct,
		integration.LogStatusSuccess, "pushed", ack.Raw, time.Since(started))
}

// UpdatePrice pushes a price change for an already-mapped product.
func (e *ProductExporter) UpdatePrice(ctx context.Context, marketplace integration.Marketplace, localProductID uuid.UUID, price decimal.Decimal) error {
	return e.pushField(ctx, marketplace, localProductID, integration.OperationUpdatePrice, func(client integration.MarketplaceClient, remoteID string) error {
		callCtx, cancel := context.WithTimeout(ctx, e.cfg.CallTimeout)
		defer cancel()
		return client.UpdatePrice(callCtx, remoteID, price)
	})
}

// UpdateStock pushes a quantity change for an already-mapped product.
func (e *ProductExporter) UpdateStock(ctx context.Context, marketplace integration.Marketplace, localProductID uuid.UUID, quantity int) error {
	return e.pushField(ctx, marketplace, localProductID, integration.OperationUpdateStock, func(client integration.MarketplaceClient, remoteID string) error {
		callCtx, cancel := context.WithTimeout(ctx, e.cfg.CallTimeout)
		defer cancel()
		return client.UpdateStock(callCtx, remoteID, quantity)
	})
}

// pushField is the shared path for single-field pushes. The product must
// already be mapped; a missing or unlinked mapping is a caller error.
func (e *ProductExporter) pushField(
	ctx context.Context,
	marketplace integration.Marketplace,
	localProductID uuid.UUID,
	op integration.Operation,
	call func(client integration.MarketplaceClient, remoteID string) error,
) error {
	started := time.Now()

	client, err := e.clients.Get(marketplace)
	if err != nil {
		return err
	}

	rec, err := e.mappings.FindByLocal(ctx, marketplace, localProductID)
	if err != nil {
		return err
	}
	if rec.RemoteID == "" {
		return fmt.Errorf("%w: product %s has no remote id on %s",
			integration.ErrMappingNotFound, localProductID, marketplace)
	}

	if err := call(client, rec.RemoteID); err != nil {
		if markErr := e.mappings.MarkError(ctx, marketplace, localProductID, err.Error()); markErr != nil {
			e.logger.Warn("failed to record push error",
				zap.String("marketplace", marketplace.String()),
				zap.Error(markErr),
			)
		}
		e.appendItemLog(ctx, marketplace, localProductID.String(), op,
			integration.LogStatusError, err.Error(), "", time.Since(started))
		return err
	}

	rec.RecordSuccess()
	if err := e.mappings.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("%w: %v", integration.ErrPersistenceFailed, err)
	}

	e.appendItemLog(ctx, marketplace, localProductID.String(), op,
		integration.LogStatusSuccess, "updated", "", time.Since(started))
	return nil
}

func (e *ProductExporter) failItem(ctx context.Context, marketplace integration.Marketplace, localProductID uuid.UUID, started time.Time, summary *ImportSummary, err error) {
	summary.Errors = append(summary.Errors, ItemError{
		TargetID: localProductID.String(),
		Class:    integration.Classify(err),
		Message:  err.Error(),
	})

	e.logger.Warn("product push item failed",
		zap.String("marketplace", marketplace.String()),
		zap.String("local_product_id", localProductID.String()),
		zap.String("class", string(integration.Classify(err))),
		zap.Error(err),
	)

	e.appendItemLog(ctx, marketplace, localProductID.String(), integration.OperationImportProduct,
		integration.LogStatusError, err.Error(), "", time.Since(started))
}

func (e *ProductExporter) appendItemLog(ctx context.Context, marketplace integration.Marketplace, targetID string, op integration.Operation, status integration.LogStatus, message, snapshot string, duration time.Duration) {
	entry := integration.NewLogEntry(marketplace, op, status, message)
	entry.TargetID = targetID
	entry.ResponseSnapshot = snapshot
	entry.Duration = duration
	if err := e.logs.Append(ctx, entry); err != nil {
		e.logger.Warn("failed to append sync log entry",
			zap.String("marketplace", marketplace.String()),
			zap.Error(err),
		)
	}
}

func (e *ProductExporter) appendRunError(ctx context.Context, marketplace integration.Marketplace, started time.Time, err error) {
	e.logger.Error("product push run aborted",
		zap.String("marketplace", marketplace.String()),
		zap.Error(err),
	)
	entry := integration.NewLogEntry(marketplace, integration.OperationImportProduct, integration.LogStatusError, err.Error())
	entry.Duration = time.Since(started)
	if logErr := e.logs.Append(ctx, entry); logErr != nil {
		e.logger.Warn("failed to append sync log entry", zap.Error(logErr))
	}
}
