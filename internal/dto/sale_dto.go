package dto

import "github.com/shopspring/decimal"

// SaleFilter is bound from the query string of GET /v1/sales.
type SaleFilter struct {
	Date   string `form:"date"`                     // YYYY-MM-DD; empty = today
	Status string `form:"status,default=COMPLETED"` // COMPLETED | CANCELLED | all
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type SaleItemRequest struct {
	ProductID     string          `json:"product_id"     validate:"required,uuid"`
	VariantID     *string         `json:"variant_id"     validate:"omitempty,uuid"`
	Quantity      int             `json:"quantity"       validate:"required,min=1"`
	DiscountType  string          `json:"discount_type"  validate:"omitempty,oneof=PERCENTAGE FIXED"`
	DiscountValue decimal.Decimal `json:"discount_value" validate:"min=0"`
}

type SalePaymentRequest struct {
	Method    string          `json:"method"    validate:"required,oneof=cash debit_card credit_card transfer qr check account_credit"`
	Amount    decimal.Decimal `json:"amount"    validate:"required"`
	Reference *string         `json:"reference" validate:"omitempty,max=60"`
}

type CreateSaleRequest struct {
	LocationID    string               `json:"location_id" validate:"required,uuid"`
	RegisterID    string               `json:"register_id" validate:"required,uuid"`
	CustomerID    *string              `json:"customer_id" validate:"omitempty,uuid"`
	Items         []SaleItemRequest    `json:"items"       validate:"required,min=1,dive"`
	Payments      []SalePaymentRequest `json:"payments"    validate:"required,min=1,dive"`
	DiscountType  string               `json:"discount_type"  validate:"omitempty,oneof=PERCENTAGE FIXED"`
	DiscountValue decimal.Decimal      `json:"discount_value" validate:"min=0"`
}

type CancelSaleRequest struct {
	Reason string `json:"reason" validate:"required,min=5"`
}

type SaleItemResponse struct {
	ProductID      string          `json:"product_id"`
	VariantID      *string         `json:"variant_id,omitempty"`
	Name           string          `json:"name"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	Total          decimal.Decimal `json:"total"`
}

type SalePaymentResponse struct {
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Reference *string         `json:"reference,omitempty"`
}

type SaleResponse struct {
	ID             string                `json:"id"`
	Number         string                `json:"number"`
	LocationID     string                `json:"location_id"`
	CustomerID     *string               `json:"customer_id,omitempty"`
	Items          []SaleItemResponse    `json:"items"`
	Payments       []SalePaymentResponse `json:"payments"`
	Subtotal       decimal.Decimal       `json:"subtotal"`
	TaxAmount      decimal.Decimal       `json:"tax_amount"`
	DiscountAmount decimal.Decimal       `json:"discount_amount"`
	Total          decimal.Decimal       `json:"total"`
	Status         string                `json:"status"`
	FiscalStatus   string                `json:"fiscal_status"`
	QuoteID        *string               `json:"quote_id,omitempty"`
	CreatedAt      string                `json:"created_at"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
