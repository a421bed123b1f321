package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Quote statuses. CONVERTED quotes are immutable.
const (
	QuoteStatusDraft     = "DRAFT"
	QuoteStatusSent      = "SENT"
	QuoteStatusApproved  = "APPROVED"
	QuoteStatusRejected  = "REJECTED"
	QuoteStatusConverted = "CONVERTED"
)

// Quote is a priced offer that may later convert into a sale. On edit the
// full item set is replaced, never patched.
type Quote struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_quotes_tenant_number"`
	Number     string    `gorm:"uniqueIndex:idx_quotes_tenant_number;not null"`
	LocationID uuid.UUID `gorm:"type:uuid;not null"`
	CustomerID *uuid.UUID `gorm:"type:uuid;index"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null"`

	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountType   *string         `gorm:"type:varchar(10)"`
	DiscountValue  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Status string `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	// SaleID backlinks the sale created by conversion
	SaleID    *uuid.UUID `gorm:"type:uuid"`
	ValidUntil *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time

	Items []QuoteItem `gorm:"foreignKey:QuoteID"`
}

type QuoteItem struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	QuoteID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID  `gorm:"type:uuid;not null"`
	VariantID *uuid.UUID `gorm:"type:uuid"`
	Name      string     `gorm:"not null"`
	Quantity  int        `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxRate   decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	DiscountType   *string         `gorm:"type:varchar(10)"`
	DiscountValue  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}
