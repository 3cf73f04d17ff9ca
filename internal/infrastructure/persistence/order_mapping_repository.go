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

// GormOrderMappingRepository implements OrderMappingRepository using GORM
type GormOrderMappingRepository struct {
	db *gorm.DB
}

// NewGormOrderMappingRepository creates a new GormOrderMappingRepository
func NewGormOrderMappingRepository(db *gorm.DB) *GormOrderMappingRepository {
	return &GormOrderMappingRepository{db: db}
}

var _ integration.OrderMappingRepository = (*GormOrderMappingRepository)(nil)

// FindByRemote finds a mapping by its remote order id
func (r *GormOrderMappingRepository) FindByRemote(ctx context.Context, marketplace integration.Marketplace, remoteOrderID string) (*integration.MappingRecord, error) {
	var model models.OrderMappingModel
	if err := r.db.WithContext(ctx).
		Where("marketplace = ? AND remote_order_id = ?", marketplace, remoteOrderID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrMappingNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByLocal finds a mapping by the linked local order id
func (r *GormOrderMappingRepository) FindByLocal(ctx context.Context, marketplace integration.Marketplace, localOrderID uuid.UUID) (*integration.MappingRecord, error) {
	var model models.OrderMappingModel
	if err := r.db.WithContext(ctx).
		Where("marketplace = ? AND local_order_id = ?", marketplace, localOrderID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrMappingNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Upsert atomically creates or updates the record keyed by
// (marketplace, remote_order_id). Concurrent writers racing on the same
// key converge to one row; a local id already set is never overwritten.
func (r *GormOrderMappingRepository) Upsert(ctx context.Context, record *integration.MappingRecord) error {
	model := models.OrderMappingModelFromDomain(record)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "marketplace"}, {Name: "remote_order_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"local_order_id": gorm.Expr("COALESCE(order_mappings.local_order_id, excluded.local_order_id)"),
			"status":         gorm.Expr("excluded.status"),
			"error_message":  gorm.Expr("excluded.error_message"),
			"version":        gorm.Expr("order_mappings.version + 1"),
			"last_sync_at":   gorm.Expr("excluded.last_sync_at"),
			"updated_at":     gorm.Expr("excluded.updated_at"),
		}),
	}).Create(model).Error
}

// MarkError sets the status to error without touching the local linkage,
// creating the record if it does not exist yet
func (r *GormOrderMappingRepository) MarkError(ctx context.Context, marketplace integration.Marketplace, remoteOrderID, message string) error {
	record, err := integration.NewOrderMapping(marketplace, remoteOrderID)
	if err != nil {
		return err
	}
	record.RecordFailure(message)

	model := models.OrderMappingModelFromDomain(record)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "marketplace"}, {Name: "remote_order_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":        gorm.Expr("excluded.status"),
			"error_message": gorm.Expr("excluded.error_message"),
			"version":       gorm.Expr("order_mappings.version + 1"),
			"last_sync_at":  gorm.Expr("excluded.last_sync_at"),
			"updated_at":    gorm.Expr("excluded.updated_at"),
		}),
	}).Create(model).Error
}

// Stats aggregates counts for the dashboard
func (r *GormOrderMappingRepository) Stats(ctx context.Context, marketplace integration.Marketplace) (*integration.MappingStats, error) {
	return mappingStats(ctx, r.db, models.OrderMappingModel{}.TableName(), marketplace)
}

// mappingStats is shared by the two mapping repositories; both tables
// carry the same status and last_sync_at columns.
func mappingStats(ctx context.Context, db *gorm.DB, table string, marketplace integration.Marketplace) (*integration.MappingStats, error) {
	stats := &integration.MappingStats{}
	base := db.WithContext(ctx).Table(table).Where("marketplace = ?", marketplace)

	if err := base.Session(&gorm.Session{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).
		Where("status = ?", integration.MappingStatusSynced).
		Count(&stats.Synced).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).
		Where("status = ?", integration.MappingStatusError).
		Count(&stats.Errors).Error; err != nil {
		return nil, err
	}

	startOfDay := time.Now().Truncate(24 * time.Hour)
	if err := base.Session(&gorm.Session{}).
		Where("status = ? AND last_sync_at >= ?", integration.MappingStatusSynced, startOfDay).
		Count(&stats.SyncedToday).Error; err != nil {
		return nil, err
	}

	var last struct {
		LastSyncAt *time.Time
	}
	if err := base.Session(&gorm.Session{}).
		Select("MAX(last_sync_at) AS last_sync_at").
		Scan(&last).Error; err != nil {
		return nil, err
	}
	stats.LastSyncAt = last.LastSyncAt

	return stats, nil
}
