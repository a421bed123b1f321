package repository

import (
	"context"

	"github.com/rmoralez/pos-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductFilter struct {
	TenantID uuid.UUID
	Name     string
	SKU      string
	Active   string // "false" | "all" | default actives
	Page     int
	Limit    int
}

type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindVariantByID(ctx context.Context, id uuid.UUID) (*model.ProductVariant, error)
	List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error)
	Update(ctx context.Context, p *model.Product) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) DB() *gorm.DB { return r.db }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Preload("Variants").First(&p, id).Error
	return &p, err
}

func (r *productRepo) FindVariantByID(ctx context.Context, id uuid.UUID) (*model.ProductVariant, error) {
	var v model.ProductVariant
	err := r.db.WithContext(ctx).First(&v, id).Error
	return &v, err
}

func (r *productRepo) List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("tenant_id = ?", filter.TenantID)

	switch filter.Active {
	case "false":
		q = q.Where("is_active = false")
	case "all":
	default:
		q = q.Where("is_active = true")
	}
	if filter.SKU != "" {
		q = q.Where("sku = ?", filter.SKU)
	}
	if filter.Name != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Name+"%")
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

	var products []model.Product
	err := q.Order("name ASC").Offset((page - 1) * limit).Limit(limit).Find(&products).Error
	return products, total, err
}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Omit("Variants").Save(p).Error
}

func (r *productRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).
		Update("is_active", false).Error
}
