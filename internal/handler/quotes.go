package handler

import (
	"net/http"
	"time"

	"github.com/rmoralez/pos-sub000/internal/apierror"
	"github.com/rmoralez/pos-sub000/internal/dto"
	"github.com/rmoralez/pos-sub000/internal/middleware"
	"github.com/rmoralez/pos-sub000/internal/repository"
	"github.com/rmoralez/pos-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type QuotesHandler struct{ svc *service.QuoteService }

func NewQuotesHandler(svc *service.QuoteService) *QuotesHandler { return &QuotesHandler{svc: svc} }

// CreateQuote godoc
// @Summary      Create a quote
// @Description  Prices the items from the catalog and stores the offer as DRAFT. Quotes reserve no stock.
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateQuoteRequest true "Quote detail"
// @Success      201  {object} dto.QuoteResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/quotes [post]
func (h *QuotesHandler) CreateQuote(c *gin.Context) {
	var req dto.CreateQuoteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	_ = middleware.GetClaims(c)

	quote, err := h.svc.CreateQuote(c.Request.Context(), h.quoteInput(c, req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toQuoteResponse(quote))
}

// UpdateQuote godoc
// @Summary      Update a quote
// @Description  Replaces the item set and reprices from the current catalog. Only DRAFT and SENT quotes can be edited.
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                 true "Quote UUID"
// @Param        body body dto.CreateQuoteRequest true "New quote detail"
// @Success      200  {object} dto.QuoteResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/quotes/{id} [put]
func (h *QuotesHandler) UpdateQuote(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateQuoteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	quote, err := h.svc.UpdateQuote(c.Request.Context(), claims.TenantID, id, h.quoteInput(c, req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toQuoteResponse(quote))
}

// UpdateStatus godoc
// @Summary      Change quote status
// @Description  Moves a quote through DRAFT → SENT → APPROVED / REJECTED. CONVERTED is only reachable through conversion.
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                 true "Quote UUID"
// @Param        body body dto.QuoteStatusRequest true "Target status"
// @Success      200  {object} dto.QuoteResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/quotes/{id}/status [patch]
func (h *QuotesHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.QuoteStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	quote, err := h.svc.UpdateStatus(c.Request.Context(), claims.TenantID, id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toQuoteResponse(quote))
}

// Convert godoc
// @Summary      Convert a quote into a sale
// @Description  Settles an APPROVED, unexpired quote at its stored prices: re-validates stock and payments, creates the sale and marks the quote CONVERTED.
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                  true "Quote UUID"
// @Param        body body dto.ConvertQuoteRequest true "Register and payments"
// @Success      201  {object} dto.SaleResponse
// @Failure      409  {object} apierror.APIError "insufficient stock or credit limit exceeded"
// @Failure      422  {object} apierror.APIError "payments do not sum to the quote total"
// @Router       /v1/quotes/{id}/convert [post]
func (h *QuotesHandler) Convert(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ConvertQuoteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	sale, err := h.svc.Convert(c.Request.Context(), claims.TenantID, id, service.ConvertInput{
		RegisterID: mustUUID(req.RegisterID),
		UserID:     claims.UserID,
		Payments:   toPaymentInputs(req.Payments),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toSaleResponse(sale))
}

// GetQuote godoc
// @Summary      Get a quote
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Quote UUID"
// @Success      200 {object} dto.QuoteResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/quotes/{id} [get]
func (h *QuotesHandler) GetQuote(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)

	quote, err := h.svc.GetQuote(c.Request.Context(), claims.TenantID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toQuoteResponse(quote))
}

// ListQuotes godoc
// @Summary      List quotes
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "DRAFT | SENT | APPROVED | REJECTED | CONVERTED | all"
// @Param        page   query int    false "Page (default 1)"
// @Param        limit  query int    false "Rows per page (default 50)"
// @Success      200    {object} dto.QuoteListResponse
// @Failure      400    {object} apierror.APIError
// @Router       /v1/quotes [get]
func (h *QuotesHandler) ListQuotes(c *gin.Context) {
	var filter dto.QuoteFilter
	if !bindQuery(c, &filter) {
		return
	}
	claims := middleware.GetClaims(c)

	quotes, total, err := h.svc.ListQuotes(c.Request.Context(), repository.QuoteFilter{
		TenantID: claims.TenantID,
		Status:   filter.Status,
		Page:     filter.Page,
		Limit:    filter.Limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list quotes"))
		return
	}
	data := make([]dto.QuoteResponse, len(quotes))
	for i := range quotes {
		data[i] = toQuoteResponse(&quotes[i])
	}
	c.JSON(http.StatusOK, dto.QuoteListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit})
}

func (h *QuotesHandler) quoteInput(c *gin.Context, req dto.CreateQuoteRequest) service.QuoteInput {
	claims := middleware.GetClaims(c)
	in := service.QuoteInput{
		TenantID:      claims.TenantID,
		LocationID:    mustUUID(req.LocationID),
		CustomerID:    uuidPtr(req.CustomerID),
		UserID:        claims.UserID,
		Items:         toItemInputs(req.Items),
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
	}
	if req.ValidUntil != nil {
		if t, err := time.Parse("2006-01-02", *req.ValidUntil); err == nil {
			// valid through the end of that day
			until := t.Add(24*time.Hour - time.Second)
			in.ValidUntil = &until
		}
	}
	return in
}
