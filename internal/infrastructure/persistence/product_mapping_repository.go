package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marketsync/backend/internal/domain/integration"
	"github.com/marketsync/backend/internal/infrastructure/persistence/models"
)

// GormProductMappingRepository implements ProductMappingRepository using GORM
type GormProductMappingRepository struct {
	db *gorm.DB
}

// NewGormProductMappingRepository creates a new GormProductMappingRepository
func NewGormProductMappingRepository(db *gorm.DB) *GormProductMappingRepository {
	return &GormProductMappingRepository{db: db}
}

var _ integration.ProductMappingRepository = (*GormProductMappingRepository)(nil)

// FindByLocal finds a mapping by the local product id
func (r *GormProductMappingRepository) FindByLocal(ctx context.Context, marketplace integration.Marketplace, localProductID uuid.UUID) (*integration.MappingRecord, error) {
	var model models.ProductMappingModel
	if err := r.db.WithContext(ctx).
		Where("marketplace = ? AND local_product_id = ?", marketplace, localProductID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrMappingNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByRemote finds a mapping by the remote product id
func (r *GormProductMappingRepository) FindByRemote(ctx context.Context, marketplace integration.Marketplace, remoteProductID string) (*integration.MappingRecord, error) {
	var model models.ProductMappingModel
	if err := r.db.WithContext(ctx).
		Where("marketplace = ? AND remote_product_id = ?", marketplace, remoteProductID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrMappingNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Upsert atomically creates or updates the record keyed by
// (marketplace, local_product_id)
func (r *GormProductMappingRepository) Upsert(ctx context.Context, record *integration.MappingRecord) error {
	model := models.ProductMappingModelFromDomain(record)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "marketplace"}, {Name: "local_product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"remote_product_id": gorm.Expr("excluded.remote_product_id"),
			"remote_sku":        gorm.Expr("excluded.remote_sku"),
			"status":            gorm.Expr("excluded.status"),
			"error_message":     gorm.Expr("excluded.error_message"),
			"version":           gorm.Expr("product_mappings.version + 1"),
			"last_sync_at":      gorm.Expr("excluded.last_sync_at"),
			"updated_at":        gorm.Expr("excluded.updated_at"),
		}),
	}).Create(model).Error
}

// MarkError sets the status to error for a local product without
// touching the remote linkage
func (r *GormProductMappingRepository) MarkError(ctx context.Context, marketplace integration.Marketplace, localProductID uuid.UUID, message string) error {
	record, err := integration.NewProductMapping(marketplace, localProductID)
	if err != nil {
		return err
	}
	record.RecordFailure(message)

	model := models.ProductMappingModelFromDomain(record)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "marketplace"}, {Name: "local_product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":        gorm.Expr("excluded.status"),
			"error_message": gorm.Expr("excluded.error_message"),
			"version":       gorm.Expr("product_mappings.version + 1"),
			"last_sync_at":  gorm.Expr("excluded.last_sync_at"),
			"updated_at":    gorm.Expr("excluded.updated_at"),
		}),
	}).Create(model).Error
}

// FindNeedingSync selects mappings due for another push: pending ones,
// synced ones whose last pass is older than staleAfter, and errored ones
// whose backoff window has elapsed. Disabled mappings never match.
func (r *GormProductMappingRepository) FindNeedingSync(ctx context.Context, marketplace integration.Marketplace, now time.Time, staleAfter, backoff time.Duration, limit int) ([]integration.MappingRecord, error) {
	var ms []models.ProductMappingModel
	err := r.db.WithContext(ctx).
		Where("marketplace = ?", marketplace).
		Where(
			r.db.Where("status = ?", integration.MappingStatusPending).
				Or("status = ? AND (last_sync_at IS NULL OR last_sync_at <= ?)", integration.MappingStatusSynced, now.Add(-staleAfter)).
				Or("status = ? AND (last_sync_at IS NULL OR last_sync_at <= ?)", integration.MappingStatusError, now.Add(-backoff)),
		).
		Order("last_sync_at ASC NULLS FIRST").
		Limit(limit).
		Find(&ms).Error
	if err != nil {
		return nil, err
	}

	records := make([]integration.MappingRecord, 0, len(ms))
	for _, m := range ms {
		records = append(records, *m.ToDomain())
	}
	return records, nil
}

// Stats aggregates counts for the dashboard
func (r *GormProductMappingRepository) Stats(ctx context.Context, marketplace integration.Marketplace) (*integration.MappingStats, error) {
	return mappingStats(ctx, r.db, models.ProductMappingModel{}.TableName(), marketplace)
}
