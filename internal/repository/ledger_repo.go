package repository

import (
	"context"

	"github.com/rmoralez/pos-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerMovementFilter limits Statement queries.
type LedgerMovementFilter struct {
	AccountID uuid.UUID
	Type      string
	Page      int
	Limit     int
}

// LedgerRepository is the data access contract for the generic balance
// entity and its movement log. Services depend on this interface, not on the
// concrete GORM implementation, enabling unit testing via in-memory stubs.
type LedgerRepository interface {
	CreateAccount(ctx context.Context, a *model.LedgerAccount) error
	FindAccountByID(ctx context.Context, id uuid.UUID) (*model.LedgerAccount, error)
	ListAccounts(ctx context.Context, tenantID uuid.UUID, kind string) ([]model.LedgerAccount, error)

	// Used inside settlement transactions — callers must pass the tx instance.
	FindAccountForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.LedgerAccount, error)
	UpdateBalanceTx(tx *gorm.DB, id uuid.UUID, balance decimal.Decimal) error
	CreateMovementTx(tx *gorm.DB, m *model.LedgerMovement) error
	DeleteMovementTx(tx *gorm.DB, id uuid.UUID) error
	FindMovementsByDocumentTx(tx *gorm.DB, documentID uuid.UUID) ([]model.LedgerMovement, error)

	ListMovements(ctx context.Context, filter LedgerMovementFilter) ([]model.LedgerMovement, int64, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type ledgerRepo struct{ db *gorm.DB }

func NewLedgerRepository(db *gorm.DB) LedgerRepository { return &ledgerRepo{db: db} }

func (r *ledgerRepo) DB() *gorm.DB { return r.db }

func (r *ledgerRepo) CreateAccount(ctx context.Context, a *model.LedgerAccount) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ledgerRepo) FindAccountByID(ctx context.Context, id uuid.UUID) (*model.LedgerAccount, error) {
	var a model.LedgerAccount
	err := r.db.WithContext(ctx).First(&a, id).Error
	return &a, err
}

func (r *ledgerRepo) ListAccounts(ctx context.Context, tenantID uuid.UUID, kind string) ([]model.LedgerAccount, error) {
	var accounts []model.LedgerAccount
	q := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	err := q.Order("name ASC").Find(&accounts).Error
	return accounts, err
}

// FindAccountForUpdateTx takes a row-level lock so concurrent settlements
// against the same account serialize on the store.
func (r *ledgerRepo) FindAccountForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.LedgerAccount, error) {
	var a model.LedgerAccount
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&a, id).Error
	return &a, err
}

func (r *ledgerRepo) UpdateBalanceTx(tx *gorm.DB, id uuid.UUID, balance decimal.Decimal) error {
	return tx.Model(&model.LedgerAccount{}).Where("id = ?", id).
		Update("current_balance", balance).Error
}

func (r *ledgerRepo) CreateMovementTx(tx *gorm.DB, m *model.LedgerMovement) error {
	return tx.Create(m).Error
}

func (r *ledgerRepo) DeleteMovementTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.LedgerMovement{}, id).Error
}

func (r *ledgerRepo) FindMovementsByDocumentTx(tx *gorm.DB, documentID uuid.UUID) ([]model.LedgerMovement, error) {
	var movs []model.LedgerMovement
	err := tx.Where("document_id = ?", documentID).Order("created_at ASC").Find(&movs).Error
	return movs, err
}

func (r *ledgerRepo) ListMovements(ctx context.Context, filter LedgerMovementFilter) ([]model.LedgerMovement, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.LedgerMovement{}).
		Where("account_id = ?", filter.AccountID)
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

	var movs []model.LedgerMovement
	err := q.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&movs).Error
	return movs, total, err
}
