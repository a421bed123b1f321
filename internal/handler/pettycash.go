package handler

import (
	"context"
	"net/http"

	"github.com/rmoralez/pos-sub000/internal/dto"
	"github.com/rmoralez/pos-sub000/internal/middleware"
	"github.com/rmoralez/pos-sub000/internal/model"
	"github.com/rmoralez/pos-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PettyCashHandler struct{ svc *service.PettyCashService }

func NewPettyCashHandler(svc *service.PettyCashService) *PettyCashHandler {
	return &PettyCashHandler{svc: svc}
}

// CreateFund godoc
// @Summary      Open a petty-cash fund
// @Tags         petty-cash
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateFundRequest true "Fund"
// @Success      201  {object} dto.AccountResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/petty-cash [post]
func (h *PettyCashHandler) CreateFund(c *gin.Context) {
	var req dto.CreateFundRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	fund, err := h.svc.CreateFund(c.Request.Context(), claims.TenantID, req.Name, req.OpeningBalance, claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAccountResponse(fund))
}

// Deposit godoc
// @Summary      Replenish a fund
// @Tags         petty-cash
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                  true "Fund UUID"
// @Param        body body dto.FundMovementRequest true "Deposit"
// @Success      201  {object} dto.MovementResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/petty-cash/{id}/deposits [post]
func (h *PettyCashHandler) Deposit(c *gin.Context) {
	h.apply(c, h.svc.Deposit)
}

// Expense godoc
// @Summary      Record an expense
// @Description  Books an expense against the fund. The fund balance can never go negative; an expense that would overdraw it is rejected.
// @Tags         petty-cash
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                  true "Fund UUID"
// @Param        body body dto.FundMovementRequest true "Expense"
// @Success      201  {object} dto.MovementResponse
// @Failure      409  {object} apierror.APIError "expense exceeds the fund balance"
// @Router       /v1/petty-cash/{id}/expenses [post]
func (h *PettyCashHandler) Expense(c *gin.Context) {
	h.apply(c, h.svc.Expense)
}

func (h *PettyCashHandler) apply(c *gin.Context, op fundOp) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.FundMovementRequest
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

type fundOp = func(ctx context.Context, tenantID, fundID uuid.UUID, amount decimal.Decimal, concept string, userID uuid.UUID) (*model.LedgerMovement, error)
