package handler

import (
	"errors"
	"net/http"

	"warranty-platform/internal/model"
	"warranty-platform/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves login.
type AuthHandler struct {
	authService *service.AuthenticationService
	users       service.UserService
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(authService *service.AuthenticationService, users service.UserService) *AuthHandler {
	return &AuthHandler{authService: authService, users: users}
}

// Login checks credentials and returns a token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	response, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Me returns the caller's account.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	account, err := h.users.GetUserByID(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

// CreateUser registers a dashboard account.
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// ListUsers lists accounts, optionally by role.
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context(), c.Query("role"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}
