package handler

import (
	"net/http"

	"github.com/rmoralez/pos-sub000/internal/apierror"
	"github.com/rmoralez/pos-sub000/internal/dto"
	"github.com/rmoralez/pos-sub000/internal/middleware"
	"github.com/rmoralez/pos-sub000/internal/repository"
	"github.com/rmoralez/pos-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StockHandler struct{ svc *service.StockService }

func NewStockHandler(svc *service.StockService) *StockHandler { return &StockHandler{svc: svc} }

// Adjust godoc
// @Summary      Manual stock adjustment
// @Description  Applies a signed delta to a stock item and records the movement with its reason.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.StockAdjustRequest true "Adjustment"
// @Success      204
// @Failure      409  {object} apierror.APIError "adjustment would leave stock negative"
// @Router       /v1/stock/adjust [post]
func (h *StockHandler) Adjust(c *gin.Context) {
	var req dto.StockAdjustRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	line := service.StockLine{
		ProductID:  mustUUID(req.ProductID),
		VariantID:  uuidPtr(req.VariantID),
		LocationID: mustUUID(req.LocationID),
	}
	if err := h.svc.Adjust(c.Request.Context(), claims.TenantID, line, req.Delta, req.Reason, claims.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Availability godoc
// @Summary      On-hand quantity
// @Tags         stock
// @Produce      json
// @Security     BearerAuth
// @Param        product_id  query string true  "Product UUID"
// @Param        variant_id  query string false "Variant UUID"
// @Param        location_id query string true  "Location UUID"
// @Success      200 {object} map[string]int
// @Failure      400 {object} apierror.APIError
// @Router       /v1/stock/availability [get]
func (h *StockHandler) Availability(c *gin.Context) {
	productID, err := uuid.Parse(c.Query("product_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid product_id"))
		return
	}
	locationID, err := uuid.Parse(c.Query("location_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid location_id"))
		return
	}
	var variantID *uuid.UUID
	if v := c.Query("variant_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid variant_id"))
			return
		}
		variantID = &id
	}
	claims := middleware.GetClaims(c)

	qty, err := h.svc.Availability(c.Request.Context(), claims.TenantID, productID, variantID, locationID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quantity": qty})
}

// LowStock godoc
// @Summary      Items at or below their minimum
// @Tags         stock
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.LowStockItemResponse
// @Router       /v1/stock/low [get]
func (h *StockHandler) LowStock(c *gin.Context) {
	claims := middleware.GetClaims(c)

	items, err := h.svc.LowStock(c.Request.Context(), claims.TenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list low stock"))
		return
	}
	data := make([]dto.LowStockItemResponse, len(items))
	for i, it := range items {
		data[i] = dto.LowStockItemResponse{
			ProductID:   it.ProductID.String(),
			VariantID:   strPtr(it.VariantID),
			LocationID:  it.LocationID.String(),
			Quantity:    it.Quantity,
			MinQuantity: it.MinQuantity,
		}
		if it.Product != nil {
			data[i].Product = it.Product.Name
		}
	}
	c.JSON(http.StatusOK, data)
}

// ListMovements godoc
// @Summary      Stock movement log
// @Tags         stock
// @Produce      json
// @Security     BearerAuth
// @Param        stock_item_id query string false "Stock item UUID"
// @Param        type          query string false "Movement type"
// @Param        page          query int    false "Page (default 1)"
// @Param        limit         query int    false "Rows per page (default 100)"
// @Success      200 {object} dto.StockMovementListResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/stock/movements [get]
func (h *StockHandler) ListMovements(c *gin.Context) {
	var filter dto.StockMovementFilter
	if !bindQuery(c, &filter) {
		return
	}
	claims := middleware.GetClaims(c)

	movements, total, err := h.svc.ListMovements(c.Request.Context(), repository.StockMovementFilter{
		TenantID:    claims.TenantID,
		StockItemID: uuidPtr(filter.StockItemID),
		Type:        filter.Type,
		Page:        filter.Page,
		Limit:       filter.Limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list movements"))
		return
	}
	data := make([]dto.StockMovementResponse, len(movements))
	for i := range movements {
		data[i] = toStockMovementResponse(&movements[i])
	}
	c.JSON(http.StatusOK, dto.StockMovementListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit})
}
