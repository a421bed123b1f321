package repository

import (
	"context"

	"github.com/rmoralez/pos-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PurchaseOrderFilter struct {
	TenantID uuid.UUID
	Status   string
	Page     int
	Limit    int
}

type PurchaseOrderRepository interface {
	CreateTx(tx *gorm.DB, po *model.PurchaseOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error)
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.PurchaseOrder, error)
	SaveTx(tx *gorm.DB, po *model.PurchaseOrder) error
	NextNumberTx(tx *gorm.DB, tenantID uuid.UUID) (string, error)
	List(ctx context.Context, filter PurchaseOrderFilter) ([]model.PurchaseOrder, int64, error)
	DB() *gorm.DB
}

type purchaseOrderRepo struct{ db *gorm.DB }

func NewPurchaseOrderRepository(db *gorm.DB) PurchaseOrderRepository {
	return &purchaseOrderRepo{db: db}
}

func (r *purchaseOrderRepo) DB() *gorm.DB { return r.db }

func (r *purchaseOrderRepo) CreateTx(tx *gorm.DB, po *model.PurchaseOrder) error {
	return tx.Create(po).Error
}

func (r *purchaseOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	err := r.db.WithContext(ctx).Preload("Items").Preload("Supplier").First(&po, id).Error
	return &po, err
}

func (r *purchaseOrderRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	if err := tx.First(&po, id).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("purchase_order_id = ?", id).Find(&po.Items).Error; err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *purchaseOrderRepo) SaveTx(tx *gorm.DB, po *model.PurchaseOrder) error {
	return tx.Omit("Items", "Supplier").Save(po).Error
}

func (r *purchaseOrderRepo) NextNumberTx(tx *gorm.DB, tenantID uuid.UUID) (string, error) {
	return NextDocumentNumber(tx, "purchase_orders", tenantID, FamilyPurchase)
}

func (r *purchaseOrderRepo) List(ctx context.Context, filter PurchaseOrderFilter) ([]model.PurchaseOrder, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.PurchaseOrder{}).
		Where("tenant_id = ?", filter.TenantID)
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
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
	if limit < 1 {
		limit = 50
	}

	var orders []model.PurchaseOrder
	err := q.Preload("Items").Preload("Supplier").
		Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).
		Find(&orders).Error
	return orders, total, err
}
