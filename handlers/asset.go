package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"asset_manager_go/config"
	"asset_manager_go/db"
	"asset_manager_go/models"
	"asset_manager_go/services"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// assetRequest is the JSON body for creating or updating an asset
type assetRequest struct {
	OrganizationID string                 `json:"organization_id"`
	Name           string                 `json:"name"`
	Status         string                 `json:"status"`
	ApprovalStatus string                 `json:"approval_status"`
	AssetLocation  string                 `json:"asset_location"`
	CategoryID     *uint                  `json:"category_id"`
	FormID         *uint                  `json:"form_id"`
	FormResponses  map[string]interface{} `json:"form_responses"`
}

// CreateAssetHandler creates an asset with generated identifiers
// POST /api/assets
func CreateAssetHandler(c echo.Context) error {
	var req assetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	if req.OrganizationID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "organization_id is required"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}

	var org models.Organization
	if err := db.DB.First(&org, "id = ?", req.OrganizationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Organization not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load organization"})
	}

	asset, err := services.CreateAsset(db.DB, services.CreateAssetInput{
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		Status:         req.Status,
		ApprovalStatus: req.ApprovalStatus,
		AssetLocation:  req.AssetLocation,
		CategoryID:     req.CategoryID,
		FormID:         req.FormID,
		FormResponses:  req.FormResponses,
	})
	if err != nil {
		return assetErrorResponse(c, err)
	}

	// Notification is optional and must not fail the request
	cfg := c.Get("config").(*config.Config)
	go func() {
		_ = services.SendAssetCreatedEmail(cfg, &org, asset)
	}()

	return c.JSON(http.StatusCreated, asset)
}

// UpdateAssetHandler applies partial changes to an asset
// PUT /api/assets/:id
func UpdateAssetHandler(c echo.Context) error {
	assetID := c.Param("id")

	var req struct {
		Name           *string                `json:"name"`
		Status         *string                `json:"status"`
		ApprovalStatus *string                `json:"approval_status"`
		AssetLocation  *string                `json:"asset_location"`
		CategoryID     *uint                  `json:"category_id"`
		FormResponses  map[string]interface{} `json:"form_responses"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	if req.Status != nil && !models.IsValidAssetStatus(*req.Status) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid status"})
	}
	if req.ApprovalStatus != nil && !models.IsValidApprovalStatus(*req.ApprovalStatus) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid approval status"})
	}

	asset, err := services.UpdateAsset(db.DB, assetID, services.UpdateAssetInput{
		Name:           req.Name,
		Status:         req.Status,
		ApprovalStatus: req.ApprovalStatus,
		AssetLocation:  req.AssetLocation,
		CategoryID:     req.CategoryID,
		FormResponses:  req.FormResponses,
	})
	if err != nil {
		return assetErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, asset)
}

// GetAssetHandler returns a single asset with category and form preloaded
// GET /api/assets/:id
func GetAssetHandler(c echo.Context) error {
	asset, err := services.GetAsset(db.DB, c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Asset not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch asset"})
	}
	return c.JSON(http.StatusOK, asset)
}

// ListAssetsHandler lists an organization's assets, newest first
// GET /api/assets?organization_id=...
func ListAssetsHandler(c echo.Context) error {
	organizationID := c.QueryParam("organization_id")
	if organizationID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "organization_id is required"})
	}

	limit := 100
	if raw := c.QueryParam("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	var assets []models.Asset
	err := db.DB.Preload("Category").Preload("Category.Class").
		Where("organization_id = ?", organizationID).
		Order("created_at DESC").
		Limit(limit).
		Find(&assets).Error
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list assets"})
	}

	return c.JSON(http.StatusOK, assets)
}

// AssetCodeImageHandler streams a rendered code image from storage
// GET /api/assets/:id/codes/:kind  (kind: barcode, qrcode, codes)
func AssetCodeImageHandler(c echo.Context) error {
	assetID := c.Param("id")
	kind := c.Param("kind")

	var asset models.Asset
	if err := db.DB.First(&asset, "id = ?", assetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Asset not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch asset"})
	}

	var key *string
	switch kind {
	case "barcode":
		key = asset.BarcodePath
	case "qrcode":
		key = asset.QRCodePath
	case "codes":
		key = asset.CodeSheetPath
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unknown code kind"})
	}
	if key == nil || *key == "" {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Code image not generated yet"})
	}

	if services.Storage == nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Storage not configured"})
	}

	reader, contentType, err := services.Storage.Get(c.Request().Context(), *key)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Code image not found in storage"})
	}
	defer reader.Close()

	if contentType == "" {
		contentType = "image/png"
	}
	return c.Stream(http.StatusOK, contentType, reader)
}

// RegenerateAssetCodesHandler re-renders an asset's code images on demand
// POST /api/assets/:id/codes
func RegenerateAssetCodesHandler(c echo.Context) error {
	var asset models.Asset
	if err := db.DB.First(&asset, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Asset not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch asset"})
	}

	if err := services.GenerateAssetCodes(db.DB, &asset); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate code images"})
	}

	return c.JSON(http.StatusOK, asset)
}

// assetErrorResponse maps engine errors onto HTTP statuses. Configuration
// and input faults are the caller's problem; exhausted uniqueness retries
// are a conflict.
func assetErrorResponse(c echo.Context, err error) error {
	var genErr *services.GenerationError
	if errors.As(err, &genErr) {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": genErr.Message})
	}
	var conflictErr *services.ConflictError
	if errors.As(err, &conflictErr) {
		return c.JSON(http.StatusConflict, map[string]string{"error": conflictErr.Error()})
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save asset"})
}
