package dto

import "github.com/shopspring/decimal"

type QuoteFilter struct {
	Status string `form:"status,default=all"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type CreateQuoteRequest struct {
	LocationID    string            `json:"location_id" validate:"required,uuid"`
	CustomerID    *string           `json:"customer_id" validate:"omitempty,uuid"`
	Items         []SaleItemRequest `json:"items"       validate:"required,min=1,dive"`
	DiscountType  string            `json:"discount_type"  validate:"omitempty,oneof=PERCENTAGE FIXED"`
	DiscountValue decimal.Decimal   `json:"discount_value" validate:"min=0"`
	ValidUntil    *string           `json:"valid_until"    validate:"omitempty,datetime=2006-01-02"`
}

type QuoteStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=SENT APPROVED REJECTED"`
}

type ConvertQuoteRequest struct {
	RegisterID string               `json:"register_id" validate:"required,uuid"`
	Payments   []SalePaymentRequest `json:"payments"    validate:"required,min=1,dive"`
}

type QuoteResponse struct {
	ID             string             `json:"id"`
	Number         string             `json:"number"`
	LocationID     string             `json:"location_id"`
	CustomerID     *string            `json:"customer_id,omitempty"`
	Items          []SaleItemResponse `json:"items"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	TaxAmount      decimal.Decimal    `json:"tax_amount"`
	DiscountAmount decimal.Decimal    `json:"discount_amount"`
	Total          decimal.Decimal    `json:"total"`
	Status         string             `json:"status"`
	SaleID         *string            `json:"sale_id,omitempty"`
	ValidUntil     *string            `json:"valid_until,omitempty"`
	CreatedAt      string             `json:"created_at"`
}

type QuoteListResponse struct {
	Data  []QuoteResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
