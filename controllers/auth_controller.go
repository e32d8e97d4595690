package controllers

import (
	"errors"
	"net/http"

	"inkwell/middleware"
	"inkwell/models"
	"inkwell/services"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	authService *services.AuthService
}

func NewAuthController(authService *services.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

// Register godoc
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Account details"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /auth/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := ac.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "User not found", "An error occurred during registration")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user":    user,
	})
}

// Login godoc
// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := ac.authService.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		respondError(c, err, "User not found", "An error occurred during login")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Signed in successfully",
		"access_token": session.AccessToken,
		"user":         session.User,
	})
}

func (ac *AuthController) GetUser(c *gin.Context) {
	token := middleware.BearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Token missing"})
		return
	}

	user, err := ac.authService.GetUser(c.Request.Context(), token)
	if err != nil {
		respondError(c, err, "User not found", "Internal server error")
		return
	}

	c.JSON(http.StatusOK, user)
}

func (ac *AuthController) Logout(c *gin.Context) {
	token := middleware.BearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Token missing"})
		return
	}

	if err := ac.authService.Logout(c.Request.Context(), token); err != nil {
		respondError(c, err, "User not found", "Internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// ResetPassword godoc
// @Summary Change the password of the signed-in user
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.ResetPasswordRequest true "Old and new password"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/reset-password [put]
func (ac *AuthController) ResetPassword(c *gin.Context) {
	token := middleware.BearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Token missing"})
		return
	}

	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := ac.authService.ResetPassword(c.Request.Context(), token, &req)
	if err != nil {
		respondError(c, err, "User not found", "Internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password updated successfully",
		"user":    user,
	})
}
