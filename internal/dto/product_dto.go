package dto

import "github.com/shopspring/decimal"

type ProductFilter struct {
	SKU    string `form:"sku"`
	Name   string `form:"name"`
	Active string `form:"active,default=true"` // true | false | all
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type VariantRequest struct {
	Name      string           `json:"name"       validate:"required,min=1"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

type ProductRequest struct {
	SKU         string           `json:"sku"         validate:"required,min=1,max=40"`
	Name        string           `json:"name"        validate:"required,min=2"`
	Description *string          `json:"description"`
	UnitPrice   decimal.Decimal  `json:"unit_price"  validate:"required"`
	CostPrice   decimal.Decimal  `json:"cost_price"  validate:"min=0"`
	TaxRate     decimal.Decimal  `json:"tax_rate"    validate:"min=0,max=100"`
	Variants    []VariantRequest `json:"variants"    validate:"omitempty,dive"`
}
