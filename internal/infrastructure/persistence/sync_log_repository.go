package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/marketsync/backend/internal/domain/integration"
	"github.com/marketsync/backend/internal/infrastructure/persistence/models"
)

// GormSyncLogRepository implements SyncLogRepository using GORM
type GormSyncLogRepository struct {
	db *gorm.DB
}

// NewGormSyncLogRepository creates a new GormSyncLogRepository
func NewGormSyncLogRepository(db *gorm.DB) *GormSyncLogRepository {
	return &GormSyncLogRepository{db: db}
}

var _ integration.SyncLogRepository = (*GormSyncLogRepository)(nil)

// Append writes one immutable entry
func (r *GormSyncLogRepository) Append(ctx context.Context, entry *integration.LogEntry) error {
	model := models.SyncLogModelFromDomain(entry)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindRecentSuccess returns the most recent success entry with the given
// dedup key written at or after since
func (r *GormSyncLogRepository) FindRecentSuccess(ctx context.Context, dedupKey string, since time.Time) (*integration.LogEntry, error) {
	var model models.SyncLogModel
	if err := r.db.WithContext(ctx).
		Where("dedup_key = ? AND status = ? AND created_at >= ?", dedupKey, integration.LogStatusSuccess, since).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrLogEntryNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns entries matching the filter, newest first, with the total
// count for pagination
func (r *GormSyncLogRepository) List(ctx context.Context, filter integration.LogFilter) ([]integration.LogEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SyncLogModel{})

	if filter.Marketplace != nil {
		query = query.Where("marketplace = ?", *filter.Marketplace)
	}
	if filter.Operation != nil {
		query = query.Where("operation = ?", *filter.Operation)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Since != nil {
		query = query.Where("created_at >= ?", *filter.Since)
	}
	if filter.Until != nil {
		query = query.Where("created_at < ?", *filter.Until)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 50
	}

	var ms []models.SyncLogModel
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	entries := make([]integration.LogEntry, 0, len(ms))
	for _, m := range ms {
		entries = append(entries, *m.ToDomain())
	}
	return entries, total, nil
}

// StatsSince aggregates outcome counts for entries written at or after
// since, scoped to one marketplace when given
func (r *GormSyncLogRepository) StatsSince(ctx context.Context, marketplace *integration.Marketplace, since time.Time) (*integration.LogStats, error) {
	base := r.db.WithContext(ctx).Model(&models.SyncLogModel{}).Where("created_at >= ?", since)
	if marketplace != nil {
		base = base.Where("marketplace = ?", *marketplace)
	}

	stats := &integration.LogStats{}

	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	if err := base.Session(&gorm.Session{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	for _, c := range counts {
		switch integration.LogStatus(c.Status) {
		case integration.LogStatusSuccess:
			stats.SuccessCount = c.Count
		case integration.LogStatusWarning:
			stats.WarningCount = c.Count
		case integration.LogStatusError:
			stats.ErrorCount = c.Count
		}
	}

	var lastErr models.SyncLogModel
	err := base.Session(&gorm.Session{}).
		Where("status = ?", integration.LogStatusError).
		Order("created_at DESC").
		First(&lastErr).Error
	if err == nil {
		stats.LastError = lastErr.Message
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var last struct {
		CreatedAt *time.Time
	}
	if err := base.Session(&gorm.Session{}).
		Select("MAX(created_at) AS created_at").
		Scan(&last).Error; err != nil {
		return nil, err
	}
	stats.LastEntryAt = last.CreatedAt

	return stats, nil
}
