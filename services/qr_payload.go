package services

import (
	"fmt"
	"strings"
	"time"

	"asset_manager_go/models"

	"gorm.io/gorm"
)

// qrPayloadVersion tags the structured payload schema
const qrPayloadVersion = 1

// BuildQRPayload builds the compact structured payload embedded in the
// QR code. Keys without a value are omitted; form responses are only
// included when non-empty.
func BuildQRPayload(asset *models.Asset, responses map[string]interface{}) map[string]interface{} {
	payload := map[string]interface{}{
		"version":      qrPayloadVersion,
		"generated_at": time.Now().UTC().Format(time.RFC3339),
		"asset_id":     asset.ID,
	}

	putIfSet := func(key string, value *string) {
		if value != nil && *value != "" {
			payload[key] = *value
		}
	}
	putIfSet("asset_tag", asset.AssetTag)
	putIfSet("asset_tag_group", asset.AssetTagGroup)
	putIfSet("barcode", asset.AssetTag)

	if asset.Status != "" {
		payload["status"] = asset.Status
	}
	if asset.ApprovalStatus != "" {
		payload["approval_status"] = asset.ApprovalStatus
	}
	if asset.AssetLocation != "" {
		payload["asset_location"] = asset.AssetLocation
	}
	if asset.CategoryID != nil {
		payload["category_id"] = *asset.CategoryID
	}
	if asset.FormID != nil {
		payload["form_id"] = *asset.FormID
	}

	if len(responses) > 0 {
		payload["form_responses"] = responses
	}

	return payload
}

// BuildHumanReadableText builds the multi-line summary embedded in the
// QR code alongside the structured payload: tag, name, status, then one
// line per printable form field in position order. Camera and location
// fields are skipped, as are fields without an answer.
func BuildHumanReadableText(db *gorm.DB, asset *models.Asset, responses map[string]interface{}) (string, error) {
	var lines []string

	if asset.AssetTag != nil && *asset.AssetTag != "" {
		lines = append(lines, fmt.Sprintf("ASSET TAG: %s", *asset.AssetTag))
	}
	lines = append(lines, fmt.Sprintf("NAME: %s", asset.Name))
	lines = append(lines, fmt.Sprintf("STATUS: %s", asset.Status))

	if asset.FormID != nil && len(responses) > 0 {
		var fields []models.FormField
		err := db.Where("form_id = ?", *asset.FormID).
			Order("position ASC, id ASC").
			Find(&fields).Error
		if err != nil {
			return "", fmt.Errorf("failed to fetch form fields: %w", err)
		}

		for _, field := range fields {
			if field.FieldType == models.FieldTypeCamera || field.FieldType == models.FieldTypeLocation {
				continue
			}
			value, ok := responses[fmt.Sprintf("%d", field.ID)]
			if !ok || IsEmptyValue(value) {
				continue
			}
			lines = append(lines, fmt.Sprintf("%s: %s", strings.ToUpper(field.Label), StringifyValue(value)))
		}
	}

	return strings.Join(lines, "\n\n"), nil
}
