package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Discount types shared by line items and documents.
const (
	DiscountPercentage = "PERCENTAGE"
	DiscountFixed      = "FIXED"
)

// Payment methods accepted by the reconciler.
const (
	PayMethodCash          = "cash"
	PayMethodDebitCard     = "debit_card"
	PayMethodCreditCard    = "credit_card"
	PayMethodTransfer      = "transfer"
	PayMethodQR            = "qr"
	PayMethodCheck         = "check"
	PayMethodAccountCredit = "account_credit"
)

// Sale statuses. Sales are terminal at creation.
const (
	SaleStatusCompleted = "COMPLETED"
	SaleStatusCancelled = "CANCELLED"
)

// Fiscal issuance statuses tracked on the sale itself; the Invoice row only
// exists after a successful authorization, so "no invoice" is not an error.
const (
	FiscalStatusPending  = "pending"
	FiscalStatusIssued   = "issued"
	FiscalStatusRejected = "rejected"
	FiscalStatusError    = "error"
	FiscalStatusSkipped  = "skipped"
)

// Sale is a settled point-of-sale document. Totals are derived by the pricing
// engine and always satisfy total = subtotal + tax - discount within 1 cent.
type Sale struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_sales_tenant_number"`
	// Number is the human-readable document number, e.g. SALE-000042
	Number     string    `gorm:"uniqueIndex:idx_sales_tenant_number;not null"`
	LocationID uuid.UUID `gorm:"type:uuid;not null;index"`
	// RegisterID is the cash-register ledger account receiving cash entries
	RegisterID uuid.UUID  `gorm:"type:uuid;not null"`
	CustomerID *uuid.UUID `gorm:"type:uuid;index"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null"`

	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountType   *string         `gorm:"type:varchar(10)"`
	DiscountValue  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Status string `gorm:"type:varchar(20);not null;default:'COMPLETED'"`
	// QuoteID backlinks a sale born from a quote conversion
	QuoteID *uuid.UUID `gorm:"type:uuid"`

	// Fiscal issuance bookkeeping — the Invoice row exists only on success
	FiscalStatus    string     `gorm:"type:varchar(20);not null;default:'pending'"`
	FiscalRetries   int        `gorm:"not null;default:0"`
	NextFiscalRetry *time.Time `gorm:"column:next_fiscal_retry"`
	LastFiscalError *string

	CreatedAt time.Time
	UpdatedAt time.Time

	Items    []SaleItem    `gorm:"foreignKey:SaleID"`
	Payments []SalePayment `gorm:"foreignKey:SaleID"`
	Customer *Customer     `gorm:"foreignKey:CustomerID"`
}

// SaleItem is immutable once the owning sale is settled.
type SaleItem struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID  `gorm:"type:uuid;not null"`
	VariantID *uuid.UUID `gorm:"type:uuid"`
	Name      string     `gorm:"not null"` // denormalized for receipts
	Quantity  int        `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"` // tax inclusive
	TaxRate   decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	DiscountType   *string         `gorm:"type:varchar(10)"`
	DiscountValue  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

// SalePayment is one payment entry of a sale. Entries sum to Sale.Total.
type SalePayment struct {
	ID     uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Method string          `gorm:"type:varchar(20);not null"`
	Amount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Reference holds routing metadata: card tail, transfer reference
	Reference *string `gorm:"type:varchar(60)"`
	CreatedAt time.Time
}
