package handlers

import (
	"github.com/bugnest/backend/internal/middleware"
	"github.com/bugnest/backend/internal/services"
	"github.com/bugnest/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UpdateProfile handles PUT /api/users/profile.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req services.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.UpdateProfile(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}

// ChangePassword handles PUT /api/users/change-password.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req services.PasswordChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.userService.ChangePassword(middleware.GetUserID(c), &req); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "password changed"})
}

// ListByRole handles GET /api/users?role=ROLE (admin only).
func (h *UserHandler) ListByRole(c *gin.Context) {
	role := c.Query("role")
	if role == "" {
		response.BadRequest(c, "role query parameter required")
		return
	}

	users, err := h.userService.ListByRole(role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, users)
}

// Create handles POST /api/users (admin only).
func (h *UserHandler) Create(c *gin.Context) {
	var req services.UserCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.Create(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}
