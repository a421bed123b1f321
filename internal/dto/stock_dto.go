package dto

type StockAdjustRequest struct {
	ProductID  string `json:"product_id"  validate:"required,uuid"`
	VariantID  *string `json:"variant_id" validate:"omitempty,uuid"`
	LocationID string `json:"location_id" validate:"required,uuid"`
	Delta      int    `json:"delta"       validate:"required"`
	Reason     string `json:"reason"      validate:"required,min=5"`
}

type StockMovementFilter struct {
	StockItemID *string `form:"stock_item_id" validate:"omitempty,uuid"`
	Type        string  `form:"type"`
	Page        int     `form:"page,default=1"    validate:"min=1"`
	Limit       int     `form:"limit,default=100" validate:"min=1,max=500"`
}

type StockMovementResponse struct {
	ID             string `json:"id"`
	StockItemID    string `json:"stock_item_id"`
	Product        string `json:"product,omitempty"`
	Type           string `json:"type"`
	Quantity       int    `json:"quantity"`
	QuantityBefore int    `json:"quantity_before"`
	QuantityAfter  int    `json:"quantity_after"`
	Reason         string `json:"reason,omitempty"`
	DocumentID     *string `json:"document_id,omitempty"`
	CreatedAt      string `json:"created_at"`
}

type StockMovementListResponse struct {
	Data  []StockMovementResponse `json:"data"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}

type LowStockItemResponse struct {
	ProductID   string  `json:"product_id"`
	VariantID   *string `json:"variant_id,omitempty"`
	LocationID  string  `json:"location_id"`
	Product     string  `json:"product,omitempty"`
	Quantity    int     `json:"quantity"`
	MinQuantity int     `json:"min_quantity"`
}
