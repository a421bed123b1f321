package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Fiscal invoice classes. Class A carries an itemized tax breakdown, class B
// folds the tax into the total, class C is for exempt issuers/receivers.
const (
	InvoiceTypeA = "invoice_a"
	InvoiceTypeB = "invoice_b"
	InvoiceTypeC = "invoice_c"
)

// Invoice is the fiscal record of a sale, 1:1 with a completed Sale and
// created only after the authority granted an authorization code. A sale
// without an Invoice is a legitimate state (issuance pending or skipped).
type Invoice struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
	SaleID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Type   string    `gorm:"type:varchar(20);not null"`
	// Number is assigned by the authority's sequence for (point_of_sale, type)
	Number      int64 `gorm:"not null"`
	PointOfSale int   `gorm:"not null"`
	// AuthCode is the authorization code (CAE) issued by the fiscal authority
	AuthCode       string    `gorm:"type:varchar(20);not null;column:auth_code"`
	AuthExpiry     time.Time `gorm:"column:auth_expiry"`
	ReceiverTaxID  *string   `gorm:"type:varchar(20)"`
	ReceiverName   *string
	NetAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// PDFPath is relative to PDF_STORAGE_PATH
	PDFPath   *string `gorm:"column:pdf_path"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
