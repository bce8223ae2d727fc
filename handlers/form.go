package handlers

import (
	"errors"
	"net/http"

	"asset_manager_go/db"
	"asset_manager_go/models"
	"asset_manager_go/services"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type formFieldRequest struct {
	Label           string  `json:"label"`
	FieldType       string  `json:"field_type"`
	Position        int     `json:"position"`
	Required        bool    `json:"required"`
	HierarchyLevels *string `json:"hierarchy_levels"`
}

// CreateFormHandler creates a form definition with its fields and optional
// tag configuration
// POST /api/forms
func CreateFormHandler(c echo.Context) error {
	var req struct {
		OrganizationID string             `json:"organization_id"`
		Name           string             `json:"name"`
		TagConfig      *string            `json:"tag_config"`
		TagGroupConfig *string            `json:"tag_group_config"`
		Fields         []formFieldRequest `json:"fields"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if req.OrganizationID == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "organization_id and name are required"})
	}

	// A malformed config would silently disable tag generation later, so
	// reject it at save time instead
	if req.TagConfig != nil && *req.TagConfig != "" && services.ParseTagConfig(req.TagConfig) == nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "tag_config is not valid"})
	}
	if req.TagGroupConfig != nil && *req.TagGroupConfig != "" && services.ParseTagGroupConfig(req.TagGroupConfig) == nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "tag_group_config is not valid"})
	}

	form := models.FormDefinition{
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		TagConfig:      req.TagConfig,
		TagGroupConfig: req.TagGroupConfig,
	}
	for _, f := range req.Fields {
		fieldType := f.FieldType
		if fieldType == "" {
			fieldType = models.FieldTypeText
		}
		form.Fields = append(form.Fields, models.FormField{
			Label:           f.Label,
			FieldType:       fieldType,
			Position:        f.Position,
			Required:        f.Required,
			HierarchyLevels: f.HierarchyLevels,
		})
	}

	if err := db.DB.Create(&form).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create form"})
	}
	return c.JSON(http.StatusCreated, form)
}

// GetFormHandler returns a form definition with its fields
// GET /api/forms/:id
func GetFormHandler(c echo.Context) error {
	var form models.FormDefinition
	err := db.DB.Preload("Fields", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position ASC, id ASC")
	}).First(&form, "id = ?", c.Param("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Form not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch form"})
	}
	return c.JSON(http.StatusOK, form)
}

// UpdateFormTagConfigHandler replaces a form's tag configuration. Existing
// asset identifiers are never rewritten when the configuration changes.
// PUT /api/forms/:id/tag-config
func UpdateFormTagConfigHandler(c echo.Context) error {
	var form models.FormDefinition
	if err := db.DB.First(&form, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Form not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch form"})
	}

	var req struct {
		TagConfig      *string `json:"tag_config"`
		TagGroupConfig *string `json:"tag_group_config"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	if req.TagConfig != nil && *req.TagConfig != "" && services.ParseTagConfig(req.TagConfig) == nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "tag_config is not valid"})
	}
	if req.TagGroupConfig != nil && *req.TagGroupConfig != "" && services.ParseTagGroupConfig(req.TagGroupConfig) == nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "tag_group_config is not valid"})
	}

	form.TagConfig = req.TagConfig
	form.TagGroupConfig = req.TagGroupConfig
	if err := db.DB.Save(&form).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update form"})
	}
	return c.JSON(http.StatusOK, form)
}
