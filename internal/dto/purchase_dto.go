package dto

import "github.com/shopspring/decimal"

type SupplierRequest struct {
	Name  string  `json:"name"   validate:"required,min=2"`
	TaxID string  `json:"tax_id" validate:"required,max=20"`
	Email *string `json:"email"  validate:"omitempty,email"`
	Phone *string `json:"phone"  validate:"omitempty,max=30"`
}

type PurchaseItemRequest struct {
	ProductID string           `json:"product_id" validate:"required,uuid"`
	VariantID *string          `json:"variant_id" validate:"omitempty,uuid"`
	Quantity  int              `json:"quantity"   validate:"required,min=1"`
	UnitCost  *decimal.Decimal `json:"unit_cost"`
}

type CreatePurchaseRequest struct {
	SupplierID string                `json:"supplier_id" validate:"required,uuid"`
	LocationID string                `json:"location_id" validate:"required,uuid"`
	Items      []PurchaseItemRequest `json:"items"       validate:"required,min=1,dive"`
}

type ReceivePurchaseRequest struct {
	InvoiceNumber string `json:"invoice_number" validate:"required,min=1,max=40"`
}

type PurchaseFilter struct {
	Status string `form:"status,default=all"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type SupplierInvoiceFilter struct {
	SupplierID *string `form:"supplier_id" validate:"omitempty,uuid"`
	Status     string  `form:"status,default=all"`
}
