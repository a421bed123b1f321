package model

import (
	"time"

	"github.com/google/uuid"
)

// StockItem is the on-hand quantity for a (product-or-variant, location) pair.
// VariantID is nil for products without variants. Quantity is only mutated
// through the stock service, which writes a StockMovement per change.
type StockItem struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_stock_item_key"`
	ProductID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_stock_item_key"`
	VariantID  *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_stock_item_key"`
	LocationID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_stock_item_key"`
	Quantity   int        `gorm:"not null;default:0"`
	MinQuantity int       `gorm:"not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

func (StockItem) TableName() string { return "stock_items" }

// Stock movement types.
const (
	StockMovementSale     = "sale"
	StockMovementCancel   = "sale_cancel"
	StockMovementReceipt  = "purchase_receipt"
	StockMovementAdjust   = "manual_adjustment"
)

// StockMovement records one stock mutation. Append-only: movements are never
// updated or deleted; cancellations create mirror entries.
type StockMovement struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	StockItemID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Type           string     `gorm:"type:varchar(30);not null"`
	Quantity       int        `gorm:"not null"` // positive = inflow, negative = outflow
	QuantityBefore int        `gorm:"not null"`
	QuantityAfter  int        `gorm:"not null"`
	Reason         string
	// DocumentID links to the originating sale / purchase order, if any
	DocumentID *uuid.UUID `gorm:"type:uuid"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt  time.Time

	StockItem *StockItem `gorm:"foreignKey:StockItemID"`
}

func (StockMovement) TableName() string { return "stock_movements" }
