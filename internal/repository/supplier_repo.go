package repository

import (
	"context"

	"github.com/rmoralez/pos-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SupplierRepository interface {
	Create(ctx context.Context, s *model.Supplier) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]model.Supplier, error)

	// Supplier invoices
	CreateInvoiceTx(tx *gorm.DB, inv *model.SupplierInvoice) error
	FindInvoiceByID(ctx context.Context, id uuid.UUID) (*model.SupplierInvoice, error)
	FindInvoiceForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.SupplierInvoice, error)
	SaveInvoiceTx(tx *gorm.DB, inv *model.SupplierInvoice) error
	ListInvoices(ctx context.Context, tenantID uuid.UUID, supplierID *uuid.UUID, status string) ([]model.SupplierInvoice, error)

	// Supplier payments and their allocations
	CreatePaymentTx(tx *gorm.DB, p *model.SupplierPayment) error
	FindPaymentByID(ctx context.Context, id uuid.UUID) (*model.SupplierPayment, error)
	DeleteAllocationsTx(tx *gorm.DB, paymentID uuid.UUID) error
	DeletePaymentTx(tx *gorm.DB, paymentID uuid.UUID) error

	DB() *gorm.DB
}

type supplierRepo struct{ db *gorm.DB }

func NewSupplierRepository(db *gorm.DB) SupplierRepository { return &supplierRepo{db: db} }

func (r *supplierRepo) DB() *gorm.DB { return r.db }

func (r *supplierRepo) Create(ctx context.Context, s *model.Supplier) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *supplierRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	var s model.Supplier
	err := r.db.WithContext(ctx).First(&s, id).Error
	return &s, err
}

func (r *supplierRepo) List(ctx context.Context, tenantID uuid.UUID) ([]model.Supplier, error) {
	var suppliers []model.Supplier
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = true", tenantID).
		Order("name ASC").Find(&suppliers).Error
	return suppliers, err
}

func (r *supplierRepo) CreateInvoiceTx(tx *gorm.DB, inv *model.SupplierInvoice) error {
	return tx.Create(inv).Error
}

func (r *supplierRepo) FindInvoiceByID(ctx context.Context, id uuid.UUID) (*model.SupplierInvoice, error) {
	var inv model.SupplierInvoice
	err := r.db.WithContext(ctx).First(&inv, id).Error
	return &inv, err
}

func (r *supplierRepo) FindInvoiceForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.SupplierInvoice, error) {
	var inv model.SupplierInvoice
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&inv, id).Error
	return &inv, err
}

func (r *supplierRepo) SaveInvoiceTx(tx *gorm.DB, inv *model.SupplierInvoice) error {
	return tx.Save(inv).Error
}

func (r *supplierRepo) ListInvoices(ctx context.Context, tenantID uuid.UUID, supplierID *uuid.UUID, status string) ([]model.SupplierInvoice, error) {
	q := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if supplierID != nil {
		q = q.Where("supplier_id = ?", *supplierID)
	}
	if status != "" && status != "all" {
		q = q.Where("status = ?", status)
	}
	var invoices []model.SupplierInvoice
	err := q.Order("created_at DESC").Find(&invoices).Error
	return invoices, err
}

func (r *supplierRepo) CreatePaymentTx(tx *gorm.DB, p *model.SupplierPayment) error {
	return tx.Create(p).Error
}

func (r *supplierRepo) FindPaymentByID(ctx context.Context, id uuid.UUID) (*model.SupplierPayment, error) {
	var p model.SupplierPayment
	err := r.db.WithContext(ctx).Preload("Allocations").First(&p, id).Error
	return &p, err
}

func (r *supplierRepo) DeleteAllocationsTx(tx *gorm.DB, paymentID uuid.UUID) error {
	return tx.Where("payment_id = ?", paymentID).Delete(&model.PaymentAllocation{}).Error
}

func (r *supplierRepo) DeletePaymentTx(tx *gorm.DB, paymentID uuid.UUID) error {
	return tx.Delete(&model.SupplierPayment{}, paymentID).Error
}
