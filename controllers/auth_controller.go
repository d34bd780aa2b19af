package controllers

import (
	"net/http"

	"optionscope/apperrors"
	"optionscope/services"

	"github.com/gin-gonic/gin"
)

// AuthController handles registration and login
type AuthController struct {
	authService *services.AuthService
}

// NewAuthController creates a new auth controller
func NewAuthController(authService *services.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

// CredentialsRequest carries a username/password pair
type CredentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// HandleRegister creates a new user account
// POST /api/v1/auth/register
func (ac *AuthController) HandleRegister(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	user, err := ac.authService.Register(req.Username, req.Password)
	if err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{
			"error":   "Failed to register user",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":       user.ID,
		"username": user.Username,
	})
}

// HandleLogin verifies credentials and issues a bearer token
// POST /api/v1/auth/login
func (ac *AuthController) HandleLogin(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	token, err := ac.authService.Login(req.Username, req.Password)
	if err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{
			"error":   "Failed to log in",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
	})
}
