package repository

import (
	"context"

	"github.com/rmoralez/pos-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentMethodRepository resolves tenant-level mappings from a payment
// method to the treasury account its funds settle into.
type PaymentMethodRepository interface {
	Upsert(ctx context.Context, m *model.PaymentMethodMapping) error
	FindByMethod(ctx context.Context, tenantID uuid.UUID, method string) (*model.PaymentMethodMapping, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]model.PaymentMethodMapping, error)
}

type paymentMethodRepo struct{ db *gorm.DB }

func NewPaymentMethodRepository(db *gorm.DB) PaymentMethodRepository {
	return &paymentMethodRepo{db: db}
}

func (r *paymentMethodRepo) Upsert(ctx context.Context, m *model.PaymentMethodMapping) error {
	var existing model.PaymentMethodMapping
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND method = ?", m.TenantID, m.Method).
		First(&existing).Error
	if err == nil {
		existing.AccountID = m.AccountID
		*m = existing
		return r.db.WithContext(ctx).Save(&existing).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *paymentMethodRepo) FindByMethod(ctx context.Context, tenantID uuid.UUID, method string) (*model.PaymentMethodMapping, error) {
	var m model.PaymentMethodMapping
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND method = ?", tenantID, method).
		First(&m).Error
	return &m, err
}

func (r *paymentMethodRepo) List(ctx context.Context, tenantID uuid.UUID) ([]model.PaymentMethodMapping, error) {
	var ms []model.PaymentMethodMapping
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Find(&ms).Error
	return ms, err
}
