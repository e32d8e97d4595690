package controllers

import (
	"net/http"

	"inkwell/models"
	"inkwell/services"

	"github.com/gin-gonic/gin"
)

type CategoryController struct {
	categoryService *services.CategoryService
}

func NewCategoryController(categoryService *services.CategoryService) *CategoryController {
	return &CategoryController{
		categoryService: categoryService,
	}
}

// GetCategories godoc
// @Summary List categories
// @Tags categories
// @Produce json
// @Success 200 {array} models.Category
// @Failure 500 {object} map[string]string
// @Router /categories [get]
func (cc *CategoryController) GetCategories(c *gin.Context) {
	categories, err := cc.categoryService.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Category not found", "Failed to fetch categories")
		return
	}

	c.JSON(http.StatusOK, categories)
}

func (cc *CategoryController) GetCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	category, err := cc.categoryService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Category not found", "Failed to fetch category")
		return
	}

	c.JSON(http.StatusOK, category)
}

func (cc *CategoryController) CreateCategory(c *gin.Context) {
	var req models.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := cc.categoryService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Category not found", "Failed to create category")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Created category successfully",
		"data":    category,
	})
}

func (cc *CategoryController) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	var req models.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := cc.categoryService.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Category not found", "Failed to update category")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Updated category successfully",
		"data":    category,
	})
}

func (cc *CategoryController) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	if err := cc.categoryService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "Category not found", "Failed to delete category")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deleted category successfully"})
}
