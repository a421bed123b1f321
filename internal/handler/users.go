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

type UsersHandler struct{ users repository.UserRepository }

func NewUsersHandler(users repository.UserRepository) *UsersHandler {
	return &UsersHandler{users: users}
}

// CreateUser godoc
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateUserRequest true "User"
// @Success      201  {object} dto.UserResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/users [post]
func (h *UsersHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	hash, err := service.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to hash password"))
		return
	}
	user := &model.User{
		TenantID:     claims.TenantID,
		Username:     req.Username,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		LocationID:   uuidPtr(req.LocationID),
		IsActive:     true,
	}
	if err := h.users.Create(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toUserResponse(user))
}

// UpdateUser godoc
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                true "User UUID"
// @Param        body body dto.UpdateUserRequest true "User"
// @Success      200  {object} dto.UserResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/users/{id} [put]
func (h *UsersHandler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	user, err := h.users.FindByID(c.Request.Context(), id)
	if err != nil || user.TenantID != claims.TenantID {
		c.JSON(http.StatusNotFound, apierror.New("user not found"))
		return
	}
	user.Name = req.Name
	user.Email = req.Email
	user.Role = req.Role
	user.LocationID = uuidPtr(req.LocationID)
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != nil {
		hash, err := service.HashPassword(*req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, apierror.New("failed to hash password"))
			return
		}
		user.PasswordHash = hash
	}
	if err := h.users.Update(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

// ListUsers godoc
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        include_inactive query bool false "Include deactivated users"
// @Success      200 {array} dto.UserResponse
// @Router       /v1/users [get]
func (h *UsersHandler) ListUsers(c *gin.Context) {
	claims := middleware.GetClaims(c)

	users, err := h.users.List(c.Request.Context(), claims.TenantID, c.Query("include_inactive") == "true")
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list users"))
		return
	}
	data := make([]dto.UserResponse, len(users))
	for i := range users {
		data[i] = toUserResponse(&users[i])
	}
	c.JSON(http.StatusOK, data)
}

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:       u.ID.String(),
		Username: u.Username,
		Name:     u.Name,
		Role:     u.Role,
		Location: strPtr(u.LocationID),
	}
}
