package handlers

import (
	"net/http"
	"strings"

	"asset_manager_go/db"
	"asset_manager_go/models"

	"github.com/labstack/echo/v4"
)

// CreateCategoryClassHandler creates an asset classification class
// POST /api/category-classes
func CreateCategoryClassHandler(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}

	slug := req.Slug
	if slug == "" {
		slug = strings.ToLower(strings.ReplaceAll(req.Name, " ", "-"))
	}

	class := models.AssetCategoryClass{Name: req.Name, Slug: slug}
	if err := db.DB.Create(&class).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create class"})
	}
	return c.JSON(http.StatusCreated, class)
}

// CreateCategoryHandler creates an asset category, optionally bound to a class
// POST /api/categories
func CreateCategoryHandler(c echo.Context) error {
	var req struct {
		Name    string `json:"name"`
		Slug    string `json:"slug"`
		ClassID *uint  `json:"class_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}

	slug := req.Slug
	if slug == "" {
		slug = strings.ToLower(strings.ReplaceAll(req.Name, " ", "-"))
	}

	category := models.AssetCategory{Name: req.Name, Slug: slug, ClassID: req.ClassID}
	if err := db.DB.Create(&category).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create category"})
	}
	return c.JSON(http.StatusCreated, category)
}

// ListCategoriesHandler lists categories with their classes preloaded
// GET /api/categories
func ListCategoriesHandler(c echo.Context) error {
	var categories []models.AssetCategory
	if err := db.DB.Preload("Class").Order("name ASC").Find(&categories).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list categories"})
	}
	return c.JSON(http.StatusOK, categories)
}
