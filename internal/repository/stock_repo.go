package repository

import (
	"context"

	"github.com/rmoralez/pos-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockMovementFilter defines filters for listing stock movements.
type StockMovementFilter struct {
	TenantID    uuid.UUID
	StockItemID *uuid.UUID
	Type        string
	Page        int
	Limit       int
}

type StockRepository interface {
	CreateItem(ctx context.Context, item *model.StockItem) error
	FindItem(ctx context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID, locationID uuid.UUID) (*model.StockItem, error)
	LowStock(ctx context.Context, tenantID uuid.UUID) ([]model.StockItem, error)

	// Transactional primitives — callers must pass the tx instance.
	FindItemForUpdateTx(tx *gorm.DB, tenantID, productID uuid.UUID, variantID *uuid.UUID, locationID uuid.UUID) (*model.StockItem, error)
	FindOrCreateItemTx(tx *gorm.DB, tenantID, productID uuid.UUID, variantID *uuid.UUID, locationID uuid.UUID) (*model.StockItem, error)
	UpdateQuantityTx(tx *gorm.DB, itemID uuid.UUID, quantity int) error
	CreateMovementTx(tx *gorm.DB, m *model.StockMovement) error

	ListMovements(ctx context.Context, filter StockMovementFilter) ([]model.StockMovement, int64, error)
	DB() *gorm.DB
}

type stockRepo struct{ db *gorm.DB }

func NewStockRepository(db *gorm.DB) StockRepository { return &stockRepo{db: db} }

func (r *stockRepo) DB() *gorm.DB { return r.db }

func (r *stockRepo) CreateItem(ctx context.Context, item *model.StockItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func itemKeyQuery(q *gorm.DB, tenantID, productID uuid.UUID, variantID *uuid.UUID, locationID uuid.UUID) *gorm.DB {
	q = q.Where("tenant_id = ? AND product_id = ? AND location_id = ?", tenantID, productID, locationID)
	if variantID != nil {
		return q.Where("variant_id = ?", *variantID)
	}
	return q.Where("variant_id IS NULL")
}

func (r *stockRepo) FindItem(ctx context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID, locationID uuid.UUID) (*model.StockItem, error) {
	var item model.StockItem
	err := itemKeyQuery(r.db.WithContext(ctx), tenantID, productID, variantID, locationID).
		First(&item).Error
	return &item, err
}

// FindItemForUpdateTx locks the stock row so concurrent settlements against
// the same item serialize; this is what makes validate-then-decrement safe
// below snapshot isolation.
func (r *stockRepo) FindItemForUpdateTx(tx *gorm.DB, tenantID, productID uuid.UUID, variantID *uuid.UUID, locationID uuid.UUID) (*model.StockItem, error) {
	var item model.StockItem
	err := itemKeyQuery(tx.Clauses(clause.Locking{Strength: "UPDATE"}), tenantID, productID, variantID, locationID).
		First(&item).Error
	return &item, err
}

func (r *stockRepo) FindOrCreateItemTx(tx *gorm.DB, tenantID, productID uuid.UUID, variantID *uuid.UUID, locationID uuid.UUID) (*model.StockItem, error) {
	item, err := r.FindItemForUpdateTx(tx, tenantID, productID, variantID, locationID)
	if err == nil {
		return item, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	item = &model.StockItem{
		TenantID:   tenantID,
		ProductID:  productID,
		VariantID:  variantID,
		LocationID: locationID,
	}
	if err := tx.Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *stockRepo) UpdateQuantityTx(tx *gorm.DB, itemID uuid.UUID, quantity int) error {
	return tx.Model(&model.StockItem{}).Where("id = ?", itemID).
		Update("quantity", quantity).Error
}

func (r *stockRepo) CreateMovementTx(tx *gorm.DB, m *model.StockMovement) error {
	return tx.Create(m).Error
}

func (r *stockRepo) LowStock(ctx context.Context, tenantID uuid.UUID) ([]model.StockItem, error) {
	var items []model.StockItem
	err := r.db.WithContext(ctx).Preload("Product").
		Where("tenant_id = ? AND quantity <= min_quantity", tenantID).
		Find(&items).Error
	return items, err
}

func (r *stockRepo) ListMovements(ctx context.Context, filter StockMovementFilter) ([]model.StockMovement, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.StockMovement{}).
		Where("tenant_id = ?", filter.TenantID)
	if filter.StockItemID != nil {
		q = q.Where("stock_item_id = ?", *filter.StockItemID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}

	var movs []model.StockMovement
	err := q.Preload("StockItem.Product").
		Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).
		Find(&movs).Error
	return movs, total, err
}
