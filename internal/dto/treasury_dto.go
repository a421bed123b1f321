package dto

import "github.com/shopspring/decimal"

type CreateAccountRequest struct {
	Kind           string          `json:"kind"            validate:"required,oneof=cash_account cash_register"`
	Name           string          `json:"name"            validate:"required,min=2"`
	OpeningBalance decimal.Decimal `json:"opening_balance" validate:"min=0"`
}

type CreateFundRequest struct {
	Name           string          `json:"name"            validate:"required,min=2"`
	OpeningBalance decimal.Decimal `json:"opening_balance" validate:"min=0"`
}

type TransferRequest struct {
	FromAccountID string          `json:"from_account_id" validate:"required,uuid"`
	ToAccountID   string          `json:"to_account_id"   validate:"required,uuid"`
	Amount        decimal.Decimal `json:"amount"          validate:"required"`
	Concept       string          `json:"concept"         validate:"required,min=3"`
}

type FundMovementRequest struct {
	Amount  decimal.Decimal `json:"amount"  validate:"required"`
	Concept string          `json:"concept" validate:"required,min=3"`
}

type MethodMappingRequest struct {
	Method    string `json:"method"     validate:"required,oneof=debit_card credit_card transfer qr check"`
	AccountID string `json:"account_id" validate:"required,uuid"`
}

type AccountResponse struct {
	ID             string          `json:"id"`
	Kind           string          `json:"kind"`
	Name           string          `json:"name"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	CreditLimit    decimal.Decimal `json:"credit_limit"`
	IsActive       bool            `json:"is_active"`
}

type MovementResponse struct {
	ID            string          `json:"id"`
	AccountID     string          `json:"account_id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Concept       string          `json:"concept"`
	DocumentID    *string         `json:"document_id,omitempty"`
	CorrelationID *string         `json:"correlation_id,omitempty"`
	CreatedAt     string          `json:"created_at"`
}

type MovementListResponse struct {
	Data  []MovementResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

type StatementFilter struct {
	Type  string `form:"type"`
	Page  int    `form:"page,default=1"    validate:"min=1"`
	Limit int    `form:"limit,default=100" validate:"min=1,max=500"`
}

type AllocationRequest struct {
	InvoiceID string          `json:"invoice_id" validate:"required,uuid"`
	Amount    decimal.Decimal `json:"amount"     validate:"required"`
}

type SupplierPaymentRequest struct {
	SupplierID  string              `json:"supplier_id" validate:"required,uuid"`
	AccountID   string              `json:"account_id"  validate:"required,uuid"`
	Method      string              `json:"method"      validate:"required,oneof=cash transfer check"`
	Amount      decimal.Decimal     `json:"amount"      validate:"required"`
	Reference   *string             `json:"reference"   validate:"omitempty,max=60"`
	Allocations []AllocationRequest `json:"allocations" validate:"required,min=1,dive"`
}
