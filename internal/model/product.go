package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable catalog entry. Prices are tax inclusive: the tax
// portion is extracted at settlement time, never added on top.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID    uuid.UUID `gorm:"type:uuid;not null;index"`
	SKU         string    `gorm:"uniqueIndex:idx_products_tenant_sku;not null"`
	Name        string    `gorm:"index;not null"`
	Description *string
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CostPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// TaxRate is a percentage in [0,100] applied as tax-inclusive
	TaxRate  decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	IsActive bool            `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Variants []ProductVariant `gorm:"foreignKey:ProductID"`
}

// TenantID participates in the SKU uniqueness so two tenants can reuse codes.
func (Product) TableName() string { return "products" }

// ProductVariant is a concrete variation of a product (size, color). A variant
// carries its own stock rows; price overrides are optional.
type ProductVariant struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"not null"`
	UnitPrice *decimal.Decimal `gorm:"type:decimal(12,2)"`
	IsActive  bool             `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Location is a physical stock location (store, warehouse).
type Location struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name     string    `gorm:"not null"`
	IsActive bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
