package handlers

import (
	"errors"
	"net/http"

	"asset_manager_go/db"
	"asset_manager_go/models"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// CreateOrganizationHandler registers a new organization
// POST /api/organizations
func CreateOrganizationHandler(c echo.Context) error {
	var req struct {
		Name              string `json:"name"`
		LogoURL           string `json:"logo_url"`
		NotificationEmail string `json:"notification_email"`
		Address           string `json:"address"`
		City              string `json:"city"`
		Phone             string `json:"phone"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}

	org := models.Organization{
		Name:              req.Name,
		LogoURL:           req.LogoURL,
		NotificationEmail: req.NotificationEmail,
		Address:           req.Address,
		City:              req.City,
		Phone:             req.Phone,
	}
	if err := db.DB.Create(&org).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create organization"})
	}

	return c.JSON(http.StatusCreated, org)
}

// GetOrganizationHandler returns a single organization
// GET /api/organizations/:id
func GetOrganizationHandler(c echo.Context) error {
	var org models.Organization
	if err := db.DB.First(&org, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Organization not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch organization"})
	}
	return c.JSON(http.StatusOK, org)
}

// UpdateOrganizationHandler updates an organization's profile fields
// PUT /api/organizations/:id
func UpdateOrganizationHandler(c echo.Context) error {
	var org models.Organization
	if err := db.DB.First(&org, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Organization not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch organization"})
	}

	var req struct {
		Name              *string `json:"name"`
		LogoURL           *string `json:"logo_url"`
		NotificationEmail *string `json:"notification_email"`
		Address           *string `json:"address"`
		City              *string `json:"city"`
		Phone             *string `json:"phone"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	if req.Name != nil {
		org.Name = *req.Name
	}
	if req.LogoURL != nil {
		org.LogoURL = *req.LogoURL
	}
	if req.NotificationEmail != nil {
		org.NotificationEmail = *req.NotificationEmail
	}
	if req.Address != nil {
		org.Address = *req.Address
	}
	if req.City != nil {
		org.City = *req.City
	}
	if req.Phone != nil {
		org.Phone = *req.Phone
	}

	if err := db.DB.Save(&org).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update organization"})
	}
	return c.JSON(http.StatusOK, org)
}
