package handler

import (
	"net/http"

	"github.com/rmoralez/pos-sub000/internal/apierror"
	"github.com/rmoralez/pos-sub000/internal/dto"
	"github.com/rmoralez/pos-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthHandler struct{ svc *service.AuthService }

func NewAuthHandler(svc *service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// Login godoc
// @Summary      Log in
// @Description  Verifies credentials and issues an access/refresh JWT pair.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body dto.LoginRequest true "Credentials"
// @Success      200  {object} dto.TokenResponse
// @Failure      401  {object} apierror.APIError
// @Router       /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	tenantID, _ := uuid.Parse(req.TenantID)

	pair, err := h.svc.Login(c.Request.Context(), tenantID, req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("invalid credentials"))
		return
	}
	c.JSON(http.StatusOK, toTokenResponse(pair))
}

// Refresh godoc
// @Summary      Refresh tokens
// @Description  Exchanges a valid refresh token for a new access/refresh pair.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body dto.RefreshRequest true "Refresh token"
// @Success      200  {object} dto.TokenResponse
// @Failure      401  {object} apierror.APIError
// @Router       /v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !bindAndValidate(c, &req) {
		return
	}
	pair, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("invalid refresh token"))
		return
	}
	c.JSON(http.StatusOK, toTokenResponse(pair))
}

func toTokenResponse(pair *service.TokenPair) dto.TokenResponse {
	return dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    fmtTime(pair.ExpiresAt),
		User: dto.UserResponse{
			ID:       pair.User.ID.String(),
			Username: pair.User.Username,
			Name:     pair.User.Name,
			Role:     pair.User.Role,
			Location: strPtr(pair.User.LocationID),
		},
	}
}
