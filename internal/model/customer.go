package model

import (
	"time"

	"github.com/google/uuid"
)

// Customer tax statuses. The fiscal adapter picks the invoice class from this.
const (
	TaxStatusRegistered    = "registered"     // itemized tax breakdown required
	TaxStatusFinalConsumer = "final_consumer" // tax included, no breakdown
	TaxStatusExempt        = "exempt"
)

// Customer holds the counterparty data plus a 1:1 running-account ledger.
type Customer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"not null"`
	TaxID     *string   `gorm:"type:varchar(20)"`
	TaxStatus string    `gorm:"type:varchar(20);not null;default:'final_consumer'"`
	Email     *string
	Phone     *string
	// AccountID is the customer's running-account ledger
	AccountID uuid.UUID `gorm:"type:uuid;not null"`
	IsActive  bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Account *LedgerAccount `gorm:"foreignKey:AccountID"`
}
