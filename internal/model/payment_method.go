package model

import (
	"time"

	"github.com/google/uuid"
)

// PaymentMethodMapping routes a non-cash payment method to the treasury
// account that receives its income. Absence of a mapping is a documented
// configuration gap: the sale is accepted but treasury is not posted.
type PaymentMethodMapping struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_method_mapping"`
	Method   string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_method_mapping"`
	// AccountID is a ledger account of kind cash_account
	AccountID uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PaymentMethodMapping) TableName() string { return "payment_method_mappings" }
