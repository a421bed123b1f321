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

type CustomersHandler struct{ svc *service.CustomerService }

func NewCustomersHandler(svc *service.CustomerService) *CustomersHandler {
	return &CustomersHandler{svc: svc}
}

// CreateCustomer godoc
// @Summary      Create a customer
// @Description  Stores the customer together with a fresh running account in one transaction.
// @Tags         customers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CustomerRequest true "Customer"
// @Success      201  {object} dto.CustomerResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/customers [post]
func (h *CustomersHandler) CreateCustomer(c *gin.Context) {
	var req dto.CustomerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	customer, err := h.svc.CreateCustomer(c.Request.Context(), service.CustomerInput{
		TenantID:    claims.TenantID,
		Name:        req.Name,
		TaxID:       req.TaxID,
		TaxStatus:   req.TaxStatus,
		Email:       req.Email,
		Phone:       req.Phone,
		CreditLimit: req.CreditLimit,
		UserID:      claims.UserID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCustomerResponse(customer))
}

// UpdateCustomer godoc
// @Summary      Update a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string              true "Customer UUID"
// @Param        body body dto.CustomerRequest true "Customer"
// @Success      200  {object} dto.CustomerResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/customers/{id} [put]
func (h *CustomersHandler) UpdateCustomer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CustomerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	customer, err := h.svc.UpdateCustomer(c.Request.Context(), claims.TenantID, id, service.CustomerInput{
		Name:        req.Name,
		TaxID:       req.TaxID,
		TaxStatus:   req.TaxStatus,
		Email:       req.Email,
		Phone:       req.Phone,
		CreditLimit: req.CreditLimit,
		UserID:      claims.UserID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCustomerResponse(customer))
}

// GetCustomer godoc
// @Summary      Get a customer
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Customer UUID"
// @Success      200 {object} dto.CustomerResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/customers/{id} [get]
func (h *CustomersHandler) GetCustomer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)

	customer, err := h.svc.GetCustomer(c.Request.Context(), claims.TenantID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCustomerResponse(customer))
}

// ListCustomers godoc
// @Summary      List customers
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        include_inactive query bool false "Include deactivated customers"
// @Success      200 {array} dto.CustomerResponse
// @Router       /v1/customers [get]
func (h *CustomersHandler) ListCustomers(c *gin.Context) {
	claims := middleware.GetClaims(c)

	customers, err := h.svc.ListCustomers(c.Request.Context(), claims.TenantID, c.Query("include_inactive") == "true")
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list customers"))
		return
	}
	data := make([]dto.CustomerResponse, len(customers))
	for i := range customers {
		data[i] = toCustomerResponse(&customers[i])
	}
	c.JSON(http.StatusOK, data)
}

// Statement godoc
// @Summary      Customer account statement
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string true  "Customer UUID"
// @Param        type  query string false "Movement type"
// @Param        page  query int    false "Page (default 1)"
// @Param        limit query int    false "Rows per page (default 100)"
// @Success      200 {object} dto.MovementListResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/customers/{id}/movements [get]
func (h *CustomersHandler) Statement(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var filter dto.StatementFilter
	if !bindQuery(c, &filter) {
		return
	}
	claims := middleware.GetClaims(c)

	movements, total, err := h.svc.Statement(c.Request.Context(), claims.TenantID, id, repository.LedgerMovementFilter{
		Type:  filter.Type,
		Page:  filter.Page,
		Limit: filter.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMovementList(movements, total, filter.Page, filter.Limit))
}

// Credit godoc
// @Summary      Credit a customer account
// @Description  Books a payment received from the customer onto their running account.
// @Tags         customers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                   true "Customer UUID"
// @Param        body body dto.AccountAdjustRequest true "Amount and concept"
// @Success      201  {object} dto.MovementResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/customers/{id}/credits [post]
func (h *CustomersHandler) Credit(c *gin.Context) {
	h.adjust(c, h.svc.CreditAccount)
}

// Charge godoc
// @Summary      Charge a customer account
// @Description  Books a debt against the running account, subject to the customer's credit limit.
// @Tags         customers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                   true "Customer UUID"
// @Param        body body dto.AccountAdjustRequest true "Amount and concept"
// @Success      201  {object} dto.MovementResponse
// @Failure      409  {object} apierror.APIError "credit limit exceeded"
// @Router       /v1/customers/{id}/charges [post]
func (h *CustomersHandler) Charge(c *gin.Context) {
	h.adjust(c, h.svc.ChargeAccount)
}

func (h *CustomersHandler) adjust(c *gin.Context, op accountOp) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.AccountAdjustRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	movement, err := op(c.Request.Context(), claims.TenantID, id, req.Amount, req.Concept, claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toMovementResponse(movement))
}

type accountOp = fundOp
