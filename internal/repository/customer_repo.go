package repository

import (
	"context"

	"github.com/rmoralez/pos-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomerRepository interface {
	Create(ctx context.Context, c *model.Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	List(ctx context.Context, tenantID uuid.UUID, includeInactive bool) ([]model.Customer, error)
	Update(ctx context.Context, c *model.Customer) error
	DB() *gorm.DB
}

type customerRepo struct{ db *gorm.DB }

func NewCustomerRepository(db *gorm.DB) CustomerRepository { return &customerRepo{db: db} }

func (r *customerRepo) DB() *gorm.DB { return r.db }

func (r *customerRepo) Create(ctx context.Context, c *model.Customer) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *customerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).Preload("Account").First(&c, id).Error
	return &c, err
}

func (r *customerRepo) List(ctx context.Context, tenantID uuid.UUID, includeInactive bool) ([]model.Customer, error) {
	q := r.db.WithContext(ctx).Preload("Account").Where("tenant_id = ?", tenantID)
	if !includeInactive {
		q = q.Where("is_active = true")
	}
	var customers []model.Customer
	err := q.Order("name ASC").Find(&customers).Error
	return customers, err
}

func (r *customerRepo) Update(ctx context.Context, c *model.Customer) error {
	return r.db.WithContext(ctx).Omit("Account").Save(c).Error
}
