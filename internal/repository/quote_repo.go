package repository

import (
	"context"

	"github.com/rmoralez/pos-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuoteFilter struct {
	TenantID uuid.UUID
	Status   string
	Page     int
	Limit    int
}

type QuoteRepository interface {
	CreateTx(tx *gorm.DB, q *model.Quote) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Quote, error)
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Quote, error)
	SaveTx(tx *gorm.DB, q *model.Quote) error
	// ReplaceItemsTx deletes the current item set and inserts the new one.
	ReplaceItemsTx(tx *gorm.DB, quoteID uuid.UUID, items []model.QuoteItem) error
	NextNumberTx(tx *gorm.DB, tenantID uuid.UUID) (string, error)
	List(ctx context.Context, filter QuoteFilter) ([]model.Quote, int64, error)
	DB() *gorm.DB
}

type quoteRepo struct{ db *gorm.DB }

func NewQuoteRepository(db *gorm.DB) QuoteRepository { return &quoteRepo{db: db} }

func (r *quoteRepo) DB() *gorm.DB { return r.db }

func (r *quoteRepo) CreateTx(tx *gorm.DB, q *model.Quote) error {
	return tx.Create(q).Error
}

func (r *quoteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Quote, error) {
	var q model.Quote
	err := r.db.WithContext(ctx).Preload("Items").First(&q, id).Error
	return &q, err
}

func (r *quoteRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Quote, error) {
	var q model.Quote
	if err := tx.First(&q, id).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("quote_id = ?", id).Find(&q.Items).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *quoteRepo) SaveTx(tx *gorm.DB, q *model.Quote) error {
	return tx.Omit("Items").Save(q).Error
}

func (r *quoteRepo) ReplaceItemsTx(tx *gorm.DB, quoteID uuid.UUID, items []model.QuoteItem) error {
	if err := tx.Where("quote_id = ?", quoteID).Delete(&model.QuoteItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].QuoteID = quoteID
	}
	return tx.Create(&items).Error
}

func (r *quoteRepo) NextNumberTx(tx *gorm.DB, tenantID uuid.UUID) (string, error) {
	return NextDocumentNumber(tx, "quotes", tenantID, FamilyQuote)
}

func (r *quoteRepo) List(ctx context.Context, filter QuoteFilter) ([]model.Quote, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Quote{}).
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

	var quotes []model.Quote
	err := q.Preload("Items").
		Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).
		Find(&quotes).Error
	return quotes, total, err
}
