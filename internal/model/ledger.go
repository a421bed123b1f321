package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger account kinds. Every balance-bearing entity in the system is a
// LedgerAccount of one of these kinds; its balance is only ever mutated by
// writing a LedgerMovement in the same transaction.
const (
	LedgerKindCustomerAccount = "customer_account"
	LedgerKindPettyCash       = "petty_cash"
	LedgerKindCashAccount     = "cash_account" // treasury (bank, card processor)
	LedgerKindCashRegister    = "cash_register"
)

// Ledger movement types.
const (
	MovementSalePayment    = "sale_payment"
	MovementSaleCancel     = "sale_cancel"
	MovementAccountCharge  = "account_charge"
	MovementAccountCredit  = "account_credit"
	MovementDeposit        = "deposit"
	MovementExpense        = "expense"
	MovementTransferOut    = "transfer_out"
	MovementTransferIn     = "transfer_in"
	MovementSupplierPayout = "supplier_payment"
	MovementVoid           = "void"
	MovementAdjustment     = "adjustment"
)

// LedgerAccount is the generic balance entity: customer running account,
// petty-cash fund, treasury cash account, or cash register.
// For customer accounts the convention is positive = credit in the
// customer's favor, negative = customer owes; CreditLimit (when > 0) caps
// how far negative the balance may go.
type LedgerAccount struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Kind           string          `gorm:"type:varchar(30);not null;index"`
	Name           string          `gorm:"not null"`
	CurrentBalance decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CreditLimit    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	IsActive       bool            `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (LedgerAccount) TableName() string { return "ledger_accounts" }

// LedgerMovement is an immutable event in an account's ledger. Movements are
// NEVER modified; a void applies the negated delta as a compensating entry
// and removes the original booking.
type LedgerMovement struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type          string          `gorm:"type:varchar(30);not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null"` // signed
	BalanceBefore decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Concept       string          `gorm:"not null"`
	// DocumentID references the sale / payment / transfer that caused the entry
	DocumentID *uuid.UUID `gorm:"type:uuid;index"`
	// CorrelationID pairs the two legs of a transfer
	CorrelationID *uuid.UUID `gorm:"type:uuid;index"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt     time.Time
}

func (LedgerMovement) TableName() string { return "ledger_movements" }
