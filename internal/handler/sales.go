package handler

import (
	"net/http"

	"github.com/rmoralez/pos-sub000/internal/apierror"
	"github.com/rmoralez/pos-sub000/internal/dto"
	"github.com/rmoralez/pos-sub000/internal/middleware"
	"github.com/rmoralez/pos-sub000/internal/repository"
	"github.com/rmoralez/pos-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type SalesHandler struct{ svc *service.SaleService }

func NewSalesHandler(svc *service.SaleService) *SalesHandler { return &SalesHandler{svc: svc} }

// CreateSale godoc
// @Summary      Register a sale
// @Description  Settles a sale atomically: document number, stock decrements and ledger postings commit together. Fiscal issuance is dispatched asynchronously after commit.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateSaleRequest true "Sale detail"
// @Success      201  {object} dto.SaleResponse
// @Failure      409  {object} apierror.APIError "insufficient stock or credit limit exceeded"
// @Failure      422  {object} apierror.APIError "payments do not sum to the total"
// @Router       /v1/sales [post]
func (h *SalesHandler) CreateSale(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	in := service.SaleInput{
		TenantID:      claims.TenantID,
		LocationID:    mustUUID(req.LocationID),
		RegisterID:    mustUUID(req.RegisterID),
		CustomerID:    uuidPtr(req.CustomerID),
		UserID:        claims.UserID,
		Items:         toItemInputs(req.Items),
		Payments:      toPaymentInputs(req.Payments),
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
	}
	sale, err := h.svc.CreateSale(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toSaleResponse(sale))
}

// CancelSale godoc
// @Summary      Cancel a sale
// @Description  Cancels a completed sale: restores stock and voids every ledger posting with compensating entries.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                true "Sale UUID"
// @Param        body body dto.CancelSaleRequest true "Cancellation reason"
// @Success      200  {object} dto.SaleResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/sales/{id} [delete]
func (h *SalesHandler) CancelSale(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CancelSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	sale, err := h.svc.CancelSale(c.Request.Context(), claims.TenantID, id, claims.UserID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSaleResponse(sale))
}

// GetSale godoc
// @Summary      Get a sale
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Sale UUID"
// @Success      200 {object} dto.SaleResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/sales/{id} [get]
func (h *SalesHandler) GetSale(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)

	sale, err := h.svc.GetSale(c.Request.Context(), claims.TenantID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSaleResponse(sale))
}

// ListSales godoc
// @Summary      List sales
// @Description  Paginated sales filtered by date and status.
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        date   query string false "Date YYYY-MM-DD (default: today)"
// @Param        status query string false "COMPLETED | CANCELLED | all"
// @Param        page   query int    false "Page (default 1)"
// @Param        limit  query int    false "Rows per page (default 50)"
// @Success      200    {object} dto.SaleListResponse
// @Failure      400    {object} apierror.APIError
// @Router       /v1/sales [get]
func (h *SalesHandler) ListSales(c *gin.Context) {
	var filter dto.SaleFilter
	if !bindQuery(c, &filter) {
		return
	}
	claims := middleware.GetClaims(c)

	sales, total, err := h.svc.ListSales(c.Request.Context(), repository.SaleFilter{
		TenantID: claims.TenantID,
		Date:     filter.Date,
		Status:   filter.Status,
		Page:     filter.Page,
		Limit:    filter.Limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list sales"))
		return
	}
	data := make([]dto.SaleResponse, len(sales))
	for i := range sales {
		data[i] = toSaleResponse(&sales[i])
	}
	c.JSON(http.StatusOK, dto.SaleListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit})
}

func toItemInputs(items []dto.SaleItemRequest) []service.SaleItemInput {
	out := make([]service.SaleItemInput, len(items))
	for i, it := range items {
		out[i] = service.SaleItemInput{
			ProductID:     mustUUID(it.ProductID),
			VariantID:     uuidPtr(it.VariantID),
			Quantity:      it.Quantity,
			DiscountType:  it.DiscountType,
			DiscountValue: it.DiscountValue,
		}
	}
	return out
}

func toPaymentInputs(payments []dto.SalePaymentRequest) []service.SalePaymentInput {
	out := make([]service.SalePaymentInput, len(payments))
	for i, p := range payments {
		out[i] = service.SalePaymentInput{Method: p.Method, Amount: p.Amount, Reference: p.Reference}
	}
	return out
}
