package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Supplier represents a vendor with commercial data.
type Supplier struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name     string    `gorm:"not null"`
	TaxID    string    `gorm:"type:varchar(20);not null"`
	Email    *string
	Phone    *string
	IsActive bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Purchase order statuses.
const (
	PurchaseStatusDraft     = "DRAFT"
	PurchaseStatusSent      = "SENT"
	PurchaseStatusReceived  = "RECEIVED"
	PurchaseStatusCancelled = "CANCELLED"
)

// PurchaseOrder is a supplier order. Receiving it increments stock through
// the same validated path sales decrement it, and raises a SupplierInvoice.
type PurchaseOrder struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_po_tenant_number"`
	Number     string    `gorm:"uniqueIndex:idx_po_tenant_number;not null"`
	SupplierID uuid.UUID `gorm:"type:uuid;not null;index"`
	LocationID uuid.UUID `gorm:"type:uuid;not null"`
	UserID     uuid.UUID `gorm:"type:uuid;not null"`

	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Status     string     `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	ReceivedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Items    []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID"`
	Supplier *Supplier           `gorm:"foreignKey:SupplierID"`
}

type PurchaseOrderItem struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PurchaseOrderID uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID       uuid.UUID  `gorm:"type:uuid;not null"`
	VariantID       *uuid.UUID `gorm:"type:uuid"`
	Name            string     `gorm:"not null"`
	Quantity        int        `gorm:"not null"`
	UnitCost        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxRate         decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxAmount       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// Supplier invoice statuses, derived from paid_amount vs total.
const (
	SupplierInvoicePending = "pending"
	SupplierInvoicePartial = "partial"
	SupplierInvoicePaid    = "paid"
)

// SupplierInvoice tracks what is owed to a supplier for a received order.
// PaidAmount/Status are only mutated by supplier-payment settlement and
// its symmetric void.
type SupplierInvoice struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	SupplierID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	PurchaseOrderID *uuid.UUID `gorm:"type:uuid"`
	Number          string     `gorm:"not null"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaidAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Status          string          `gorm:"type:varchar(20);not null;default:'pending'"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SupplierPayment settles one or more supplier invoices from a treasury
// account. Allocations record how the amount splits across invoices.
type SupplierPayment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;index"`
	SupplierID uuid.UUID `gorm:"type:uuid;not null;index"`
	// AccountID is the treasury ledger account the payment left from
	AccountID uuid.UUID       `gorm:"type:uuid;not null"`
	Method    string          `gorm:"type:varchar(20);not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Reference *string         `gorm:"type:varchar(60)"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt time.Time

	Allocations []PaymentAllocation `gorm:"foreignKey:PaymentID"`
}

// PaymentAllocation assigns a slice of a supplier payment to one invoice.
// Deleted together with the payment on void.
type PaymentAllocation struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PaymentID uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}
