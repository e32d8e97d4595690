package controllers

import (
	"net/http"

	"inkwell/middleware"
	"inkwell/models"
	"inkwell/services"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	userService *services.UserService
}

func NewUserController(userService *services.UserService) *UserController {
	return &UserController{
		userService: userService,
	}
}

func (uc *UserController) UpdateProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := uc.userService.UpdateProfile(c.Request.Context(), user.ID, &req)
	if err != nil {
		respondError(c, err, "Profile not found", "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Updated profile successfully",
		"user":    updated,
	})
}

func (uc *UserController) UploadAvatar(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	upload, err := readFile(c, "avatarFile")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := uc.userService.UploadAvatar(c.Request.Context(), user.ID, upload)
	if err != nil {
		respondError(c, err, "Profile not found", "Failed to upload avatar")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Uploaded avatar successfully",
		"user":    updated,
	})
}
