package repository

import (
	"context"
	"time"

	"github.com/rmoralez/pos-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SaleFilter is bound from the query string of GET /v1/sales.
type SaleFilter struct {
	TenantID uuid.UUID
	Date     string // YYYY-MM-DD; empty = today
	Status   string // COMPLETED | CANCELLED | all
	Page     int
	Limit    int
}

type SaleRepository interface {
	CreateTx(tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error
	NextNumberTx(tx *gorm.DB, tenantID uuid.UUID) (string, error)
	List(ctx context.Context, filter SaleFilter) ([]model.Sale, int64, error)

	// Fiscal issuance bookkeeping, written outside the settlement transaction.
	UpdateFiscal(ctx context.Context, s *model.Sale) error
	ListPendingFiscalRetries(ctx context.Context, due time.Time, limit int) ([]model.Sale, error)

	DB() *gorm.DB
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) CreateTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).
		Preload("Items.Product").Preload("Payments").Preload("Customer").
		First(&s, id).Error
	return &s, err
}

func (r *saleRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error {
	return tx.Model(&model.Sale{}).Where("id = ?", id).Update("status", status).Error
}

func (r *saleRepo) NextNumberTx(tx *gorm.DB, tenantID uuid.UUID) (string, error) {
	return NextDocumentNumber(tx, "sales", tenantID, FamilySale)
}

func (r *saleRepo) List(ctx context.Context, filter SaleFilter) ([]model.Sale, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Sale{}).
		Where("tenant_id = ?", filter.TenantID)

	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Date != "" {
		q = q.Where("DATE(created_at) = ?", filter.Date)
	} else {
		q = q.Where("DATE(created_at) = CURRENT_DATE")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sales []model.Sale
	err := q.Preload("Items").Preload("Payments").
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit).
		Find(&sales).Error
	return sales, total, err
}

func (r *saleRepo) UpdateFiscal(ctx context.Context, s *model.Sale) error {
	return r.db.WithContext(ctx).Model(&model.Sale{}).Where("id = ?", s.ID).
		Updates(map[string]interface{}{
			"fiscal_status":     s.FiscalStatus,
			"fiscal_retries":    s.FiscalRetries,
			"next_fiscal_retry": s.NextFiscalRetry,
			"last_fiscal_error": s.LastFiscalError,
		}).Error
}

func (r *saleRepo) ListPendingFiscalRetries(ctx context.Context, due time.Time, limit int) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).
		Where("fiscal_status = ? AND next_fiscal_retry IS NOT NULL AND next_fiscal_retry <= ?",
			model.FiscalStatusPending, due).
		Order("next_fiscal_retry ASC").Limit(limit).
		Find(&sales).Error
	return sales, err
}
