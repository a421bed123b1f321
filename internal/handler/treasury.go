package handler

import (
	"net/http"

	"github.com/rmoralez/pos-sub000/internal/apierror"
	"github.com/rmoralez/pos-sub000/internal/dto"
	"github.com/rmoralez/pos-sub000/internal/middleware"
	"github.com/rmoralez/pos-sub000/internal/model"
	"github.com/rmoralez/pos-sub000/internal/repository"
	"github.com/rmoralez/pos-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type TreasuryHandler struct {
	svc     *service.TreasuryService
	ledger  *service.LedgerService
	methods repository.PaymentMethodRepository
}

func NewTreasuryHandler(svc *service.TreasuryService, ledger *service.LedgerService, methods repository.PaymentMethodRepository) *TreasuryHandler {
	return &TreasuryHandler{svc: svc, ledger: ledger, methods: methods}
}

// CreateAccount godoc
// @Summary      Open a treasury account
// @Description  Creates a cash account or cash register. A nonzero opening balance is booked as an initial deposit movement.
// @Tags         treasury
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateAccountRequest true "Account"
// @Success      201  {object} dto.AccountResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/treasury/accounts [post]
func (h *TreasuryHandler) CreateAccount(c *gin.Context) {
	var req dto.CreateAccountRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	account, err := h.svc.CreateAccount(c.Request.Context(), claims.TenantID, req.Kind, req.Name, req.OpeningBalance, claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAccountResponse(account))
}

// ListAccounts godoc
// @Summary      List ledger accounts
// @Tags         treasury
// @Produce      json
// @Security     BearerAuth
// @Param        kind query string false "customer_account | petty_cash | cash_account | cash_register"
// @Success      200 {array} dto.AccountResponse
// @Router       /v1/treasury/accounts [get]
func (h *TreasuryHandler) ListAccounts(c *gin.Context) {
	claims := middleware.GetClaims(c)

	accounts, err := h.ledger.ListAccounts(c.Request.Context(), claims.TenantID, c.Query("kind"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list accounts"))
		return
	}
	data := make([]dto.AccountResponse, len(accounts))
	for i := range accounts {
		data[i] = toAccountResponse(&accounts[i])
	}
	c.JSON(http.StatusOK, data)
}

// Statement godoc
// @Summary      Account statement
// @Description  Paginated movement log of one account, newest first.
// @Tags         treasury
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string true  "Account UUID"
// @Param        type  query string false "Movement type"
// @Param        page  query int    false "Page (default 1)"
// @Param        limit query int    false "Rows per page (default 100)"
// @Success      200 {object} dto.MovementListResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/treasury/accounts/{id}/movements [get]
func (h *TreasuryHandler) Statement(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var filter dto.StatementFilter
	if !bindQuery(c, &filter) {
		return
	}
	claims := middleware.GetClaims(c)

	account, err := h.ledger.GetAccount(c.Request.Context(), id)
	if err != nil || account.TenantID != claims.TenantID {
		c.JSON(http.StatusNotFound, apierror.New("account not found"))
		return
	}
	movements, total, err := h.ledger.Statement(c.Request.Context(), repository.LedgerMovementFilter{
		AccountID: id,
		Type:      filter.Type,
		Page:      filter.Page,
		Limit:     filter.Limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to load statement"))
		return
	}
	c.JSON(http.StatusOK, toMovementList(movements, total, filter.Page, filter.Limit))
}

// Transfer godoc
// @Summary      Transfer between treasury accounts
// @Description  Moves money atomically between two accounts; both legs share a correlation id.
// @Tags         treasury
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.TransferRequest true "Transfer"
// @Success      201  {object} map[string]string
// @Failure      409  {object} apierror.APIError "source account cannot cover the amount"
// @Router       /v1/treasury/transfers [post]
func (h *TreasuryHandler) Transfer(c *gin.Context) {
	var req dto.TransferRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	correlationID, err := h.svc.Transfer(c.Request.Context(), claims.TenantID,
		mustUUID(req.FromAccountID), mustUUID(req.ToAccountID), req.Amount, req.Concept, claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"correlation_id": correlationID.String()})
}

// UpsertMapping godoc
// @Summary      Map a payment method to a treasury account
// @Description  Routes sale income of a non-cash method into the given cash account. Unmapped methods settle without a treasury posting.
// @Tags         treasury
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.MethodMappingRequest true "Mapping"
// @Success      204
// @Failure      400  {object} apierror.APIError
// @Router       /v1/treasury/method-mappings [put]
func (h *TreasuryHandler) UpsertMapping(c *gin.Context) {
	var req dto.MethodMappingRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	accountID := mustUUID(req.AccountID)
	account, err := h.ledger.GetAccount(c.Request.Context(), accountID)
	if err != nil || account.TenantID != claims.TenantID {
		c.JSON(http.StatusNotFound, apierror.New("account not found"))
		return
	}
	if account.Kind != model.LedgerKindCashAccount {
		c.JSON(http.StatusBadRequest, apierror.New("method mappings must target a cash_account"))
		return
	}
	mapping := &model.PaymentMethodMapping{
		TenantID:  claims.TenantID,
		Method:    req.Method,
		AccountID: accountID,
	}
	if err := h.methods.Upsert(c.Request.Context(), mapping); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListMappings godoc
// @Summary      List payment method mappings
// @Tags         treasury
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} model.PaymentMethodMapping
// @Router       /v1/treasury/method-mappings [get]
func (h *TreasuryHandler) ListMappings(c *gin.Context) {
	claims := middleware.GetClaims(c)

	mappings, err := h.methods.List(c.Request.Context(), claims.TenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list mappings"))
		return
	}
	c.JSON(http.StatusOK, mappings)
}

// PaySupplier godoc
// @Summary      Pay supplier invoices
// @Description  Settles one or more supplier invoices from a treasury account. Allocations must sum to the amount; each invoice advances toward paid.
// @Tags         treasury
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.SupplierPaymentRequest true "Payment with allocations"
// @Success      201  {object} model.SupplierPayment
// @Failure      409  {object} apierror.APIError "account cannot cover the amount"
// @Failure      422  {object} apierror.APIError "allocations do not sum to the amount"
// @Router       /v1/treasury/supplier-payments [post]
func (h *TreasuryHandler) PaySupplier(c *gin.Context) {
	var req dto.SupplierPaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	allocations := make([]service.AllocationInput, len(req.Allocations))
	for i, a := range req.Allocations {
		allocations[i] = service.AllocationInput{InvoiceID: mustUUID(a.InvoiceID), Amount: a.Amount}
	}
	payment, err := h.svc.PaySupplier(c.Request.Context(), service.SupplierPaymentInput{
		TenantID:    claims.TenantID,
		SupplierID:  mustUUID(req.SupplierID),
		AccountID:   mustUUID(req.AccountID),
		Method:      req.Method,
		Amount:      req.Amount,
		Reference:   req.Reference,
		Allocations: allocations,
		UserID:      claims.UserID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

// VoidSupplierPayment godoc
// @Summary      Void a supplier payment
// @Description  Reverses a supplier payment: restores invoice balances and voids the ledger posting with a compensating entry.
// @Tags         treasury
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Payment UUID"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/treasury/supplier-payments/{id} [delete]
func (h *TreasuryHandler) VoidSupplierPayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)

	if err := h.svc.VoidSupplierPayment(c.Request.Context(), claims.TenantID, id, claims.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
