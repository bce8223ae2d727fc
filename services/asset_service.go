package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"asset_manager_go/models"

	"gorm.io/gorm"
)

// maxTagAttempts bounds regenerate-and-retry cycles on tag uniqueness
// conflicts. Under sustained concurrency in one scope, more than this
// many simultaneous conflicts fail the creation; that is an accepted
// limitation, the database constraint stays the arbiter of uniqueness.
const maxTagAttempts = 3

// CreateAssetInput contains the data for creating an asset
type CreateAssetInput struct {
	OrganizationID string
	Name           string
	Status         string
	ApprovalStatus string
	AssetLocation  string
	CategoryID     *uint
	FormID         *uint
	FormResponses  map[string]interface{}
}

// UpdateAssetInput contains the mutable fields of an asset. Nil fields
// are left untouched. Identifiers are never rewritten by an update.
type UpdateAssetInput struct {
	Name           *string
	Status         *string
	ApprovalStatus *string
	AssetLocation  *string
	CategoryID     *uint
	FormResponses  map[string]interface{}
}

// CreateAsset generates identifiers for a new asset and persists it,
// retrying generation on tag uniqueness conflicts up to maxTagAttempts
// times. Generation failures abort before anything is written; conflict
// exhaustion surfaces as *ConflictError. Code images are rendered after
// the insert commits and never fail the creation.
func CreateAsset(db *gorm.DB, input CreateAssetInput) (*models.Asset, error) {
	responses := SanitizeResponses(input.FormResponses)

	responses, err := ProcessCameraAnswers(db, input.FormID, responses)
	if err != nil {
		return nil, err
	}

	tagCfg, groupCfg, err := loadTagConfigs(db, input.FormID)
	if err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = models.AssetStatusAvailable
	}
	approval := input.ApprovalStatus
	if approval == "" {
		approval = models.ApprovalStatusPending
	}

	asset := &models.Asset{
		OrganizationID: input.OrganizationID,
		Name:           input.Name,
		Status:         status,
		ApprovalStatus: approval,
		AssetLocation:  input.AssetLocation,
		CategoryID:     input.CategoryID,
		FormID:         input.FormID,
	}
	if err := asset.SetResponses(responses); err != nil {
		return nil, fmt.Errorf("failed to encode form responses: %w", err)
	}

	builder := NewTagBuilder(db)

	var lastTag string
	var lastErr error
	for attempt := 0; attempt < maxTagAttempts; attempt++ {
		// A retry regenerates with an offset sequence and bypasses the
		// "already has a tag" short-circuit
		force := attempt > 0

		tag, err := builder.GenerateAssetTag(asset, responses, tagCfg, attempt, force)
		if err != nil {
			return nil, err
		}
		if tag != "" {
			asset.AssetTag = &tag
		}
		lastTag = tag

		groupTag, err := builder.GenerateAssetTagGroup(asset, responses, groupCfg, attempt, force)
		if err != nil {
			return nil, err
		}
		if groupTag != "" {
			asset.AssetTagGroup = &groupTag
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			return tx.Create(asset).Error
		})
		if err == nil {
			generateCodesBestEffort(db, asset)
			return asset, nil
		}
		if !isUniqueViolation(err) {
			return nil, fmt.Errorf("failed to create asset: %w", err)
		}
		lastErr = err
	}

	return nil, &ConflictError{Tag: lastTag, Attempts: maxTagAttempts, Err: lastErr}
}

// UpdateAsset applies the given changes. When form responses change,
// tag configuration is re-read and identifiers are computed only for
// assets that do not have one yet; existing identifiers stay untouched.
// Code images are re-rendered when responses or tag-relevant core
// fields changed.
func UpdateAsset(db *gorm.DB, assetID string, input UpdateAssetInput) (*models.Asset, error) {
	var asset models.Asset
	if err := db.First(&asset, "id = ?", assetID).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch asset: %w", err)
	}

	coreChanged := false
	if input.Name != nil && *input.Name != asset.Name {
		asset.Name = *input.Name
		coreChanged = true
	}
	if input.Status != nil && *input.Status != asset.Status {
		asset.Status = *input.Status
		coreChanged = true
	}
	if input.ApprovalStatus != nil && *input.ApprovalStatus != asset.ApprovalStatus {
		asset.ApprovalStatus = *input.ApprovalStatus
		coreChanged = true
	}
	if input.AssetLocation != nil && *input.AssetLocation != asset.AssetLocation {
		asset.AssetLocation = *input.AssetLocation
		coreChanged = true
	}
	if input.CategoryID != nil {
		asset.CategoryID = input.CategoryID
		coreChanged = true
	}

	responsesChanged := false
	if input.FormResponses != nil {
		responses := SanitizeResponses(input.FormResponses)
		responses, err := ProcessCameraAnswers(db, asset.FormID, responses)
		if err != nil {
			return nil, err
		}
		if err := asset.SetResponses(responses); err != nil {
			return nil, fmt.Errorf("failed to encode form responses: %w", err)
		}
		responsesChanged = true

		// An asset created before tags were configured may still be
		// untagged; generation short-circuits when a tag already exists
		if asset.AssetTag == nil || *asset.AssetTag == "" {
			tagCfg, groupCfg, err := loadTagConfigs(db, asset.FormID)
			if err != nil {
				return nil, err
			}
			builder := NewTagBuilder(db)
			tag, err := builder.GenerateAssetTag(&asset, responses, tagCfg, 0, false)
			if err != nil {
				return nil, err
			}
			if tag != "" {
				asset.AssetTag = &tag
			}
			groupTag, err := builder.GenerateAssetTagGroup(&asset, responses, groupCfg, 0, false)
			if err != nil {
				return nil, err
			}
			if groupTag != "" {
				asset.AssetTagGroup = &groupTag
			}
		}
	}

	if err := db.Save(&asset).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, &ConflictError{Tag: derefOrEmpty(asset.AssetTag), Attempts: 1, Err: err}
		}
		return nil, fmt.Errorf("failed to update asset: %w", err)
	}

	if coreChanged || responsesChanged {
		generateCodesBestEffort(db, &asset)
	}

	return &asset, nil
}

// GetAsset fetches an asset with its category and form preloaded
func GetAsset(db *gorm.DB, assetID string) (*models.Asset, error) {
	var asset models.Asset
	err := db.Preload("Category").Preload("Category.Class").Preload("Form").
		First(&asset, "id = ?", assetID).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch asset: %w", err)
	}
	return &asset, nil
}

// loadTagConfigs reads and parses the tag configuration stored on the
// asset's form. A missing form or malformed config simply means no
// configuration.
func loadTagConfigs(db *gorm.DB, formID *uint) (*TagConfig, *TagGroupConfig, error) {
	if formID == nil {
		return nil, nil, nil
	}
	var form models.FormDefinition
	err := db.First(&form, "id = ?", *formID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch form %d: %w", *formID, err)
	}
	return ParseTagConfig(form.TagConfig), ParseTagGroupConfig(form.TagGroupConfig), nil
}

// generateCodesBestEffort renders and stores the asset's code images.
// Failures are logged and never affect the already committed asset.
func generateCodesBestEffort(db *gorm.DB, asset *models.Asset) {
	if err := GenerateAssetCodes(db, asset); err != nil {
		log.Printf("[WARNING] Failed to generate code images for asset %s: %v", asset.ID, err)
	}
}

// isUniqueViolation detects a uniqueness-constraint failure both via
// gorm's translated error and the raw sqlite message
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
