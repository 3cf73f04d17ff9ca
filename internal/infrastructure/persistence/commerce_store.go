package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketsync/backend/internal/domain/integration"
	"github.com/marketsync/backend/internal/infrastructure/persistence/models"
)

// GormCommerceStore implements CommerceStore on the local commerce
// tables. Hosts embedding the engine into an existing system replace
// this with an adapter over their own order and product storage.
type GormCommerceStore struct {
	db *gorm.DB
}

// NewGormCommerceStore creates a new GormCommerceStore
func NewGormCommerceStore(db *gorm.DB) *GormCommerceStore {
	return &GormCommerceStore{db: db}
}

var _ integration.CommerceStore = (*GormCommerceStore)(nil)

// CreateOrder persists a canonical order with its items in one
// transaction and returns the local id
func (s *GormCommerceStore) CreateOrder(ctx context.Context, order *integration.Order) (uuid.UUID, error) {
	id := uuid.New()
	model := models.LocalOrderModelFromDomain(id, order)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(model).Error
	})
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// UpdateOrderStatus applies a status change to an existing local order
func (s *GormCommerceStore) UpdateOrderStatus(ctx context.Context, localOrderID uuid.UUID, status integration.OrderStatus) error {
	result := s.db.WithContext(ctx).
		Model(&models.LocalOrderModel{}).
		Where("id = ?", localOrderID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return integration.ErrOrderNotFound
	}
	return nil
}

// GetProductByLocalID returns the marketplace-facing view of a local product
func (s *GormCommerceStore) GetProductByLocalID(ctx context.Context, marketplace integration.Marketplace, localProductID uuid.UUID) (*integration.Product, error) {
	var model models.LocalProductModel
	if err := s.db.WithContext(ctx).
		Where("id = ?", localProductID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrProductNotFound
		}
		return nil, err
	}
	product := model.ToDomainProduct(marketplace)
	return &product, nil
}

// ListProductsForSync returns active local products that have never
// been pushed to the marketplace, oldest-updated first. Products with a
// mapping are selected through the mapping state instead, so the
// anti-join keeps the two candidate sets disjoint.
func (s *GormCommerceStore) ListProductsForSync(ctx context.Context, marketplace integration.Marketplace, limit int) ([]integration.Product, error) {
	var ms []models.LocalProductModel
	if err := s.db.WithContext(ctx).
		Model(&models.LocalProductModel{}).
		Select("local_products.*").
		Joins("LEFT JOIN product_mappings ON product_mappings.marketplace = ? AND product_mappings.local_product_id = local_products.id", marketplace).
		Where("local_products.active = ?", true).
		Where("product_mappings.id IS NULL").
		Order("local_products.updated_at ASC").
		Limit(limit).
		Find(&ms).Error; err != nil {
		return nil, err
	}

	products := make([]integration.Product, 0, len(ms))
	for _, m := range ms {
		products = append(products, m.ToDomainProduct(marketplace))
	}
	return products, nil
}
