package dto

import "github.com/shopspring/decimal"

type CustomerRequest struct {
	Name        string          `json:"name"         validate:"required,min=2"`
	TaxID       *string         `json:"tax_id"       validate:"omitempty,max=20"`
	TaxStatus   string          `json:"tax_status"   validate:"omitempty,oneof=registered final_consumer exempt"`
	Email       *string         `json:"email"        validate:"omitempty,email"`
	Phone       *string         `json:"phone"        validate:"omitempty,max=30"`
	CreditLimit decimal.Decimal `json:"credit_limit" validate:"min=0"`
}

type AccountAdjustRequest struct {
	Amount  decimal.Decimal `json:"amount"  validate:"required"`
	Concept string          `json:"concept" validate:"required,min=3"`
}

type CustomerResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	TaxID       *string         `json:"tax_id,omitempty"`
	TaxStatus   string          `json:"tax_status"`
	Email       *string         `json:"email,omitempty"`
	Phone       *string         `json:"phone,omitempty"`
	AccountID   string          `json:"account_id"`
	Balance     decimal.Decimal `json:"balance"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
	IsActive    bool            `json:"is_active"`
}
