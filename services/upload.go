package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"asset_manager_go/models"

	"gorm.io/gorm"
)

const (
	// MaxCameraImageSize caps decoded camera-answer photos
	MaxCameraImageSize = 10 * 1024 * 1024 // 10MB
)

// ProcessCameraAnswers replaces raw image data in camera-type form
// answers with stable storage URLs. Answers that are already URLs pass
// through untouched. The returned map is a copy when anything changed.
func ProcessCameraAnswers(db *gorm.DB, formID *uint, responses map[string]interface{}) (map[string]interface{}, error) {
	if formID == nil || len(responses) == 0 {
		return responses, nil
	}

	var fields []models.FormField
	err := db.Where("form_id = ? AND field_type = ?", *formID, models.FieldTypeCamera).
		Find(&fields).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch camera fields: %w", err)
	}
	if len(fields) == 0 {
		return responses, nil
	}

	var form models.FormDefinition
	if err := db.First(&form, "id = ?", *formID).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch form %d: %w", *formID, err)
	}

	processed := responses
	copied := false
	for _, field := range fields {
		key := fmt.Sprintf("%d", field.ID)
		raw, ok := processed[key].(string)
		if !ok || raw == "" || isURL(raw) {
			continue
		}

		url, err := uploadCameraImage(form.OrganizationID, raw)
		if err != nil {
			return nil, fmt.Errorf("failed to store photo for field %s: %w", key, err)
		}

		if !copied {
			clone := make(map[string]interface{}, len(processed))
			for k, v := range processed {
				clone[k] = v
			}
			processed = clone
			copied = true
		}
		processed[key] = url
	}

	return processed, nil
}

// uploadCameraImage decodes a base64 (optionally data-URI) image,
// validates it, and stores it, returning the stable URL
func uploadCameraImage(organizationID, raw string) (string, error) {
	data, err := decodeImageData(raw)
	if err != nil {
		return "", err
	}
	if len(data) > MaxCameraImageSize {
		return "", fmt.Errorf("image exceeds maximum allowed size of 10MB")
	}

	ext, contentType, err := sniffImageType(data)
	if err != nil {
		return "", err
	}

	if Storage == nil {
		return "", fmt.Errorf("storage not initialized")
	}

	key := GenerateCameraImageKey(organizationID, ext)
	result, err := Storage.UploadReader(context.Background(), bytes.NewReader(data), key, contentType, int64(len(data)))
	if err != nil {
		return "", err
	}
	if result.URL != "" {
		return result.URL, nil
	}
	return result.Key, nil
}

// decodeImageData accepts a data URI or bare base64 payload
func decodeImageData(raw string) ([]byte, error) {
	payload := raw
	if strings.HasPrefix(raw, "data:") {
		idx := strings.Index(raw, ",")
		if idx < 0 {
			return nil, fmt.Errorf("malformed data URI")
		}
		payload = raw[idx+1:]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 image data: %w", err)
	}
	return data, nil
}

// sniffImageType validates PNG/JPEG magic bytes
func sniffImageType(data []byte) (ext string, contentType string, err error) {
	if len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}) {
		return ".png", "image/png", nil
	}
	if len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return ".jpg", "image/jpeg", nil
	}
	return "", "", fmt.Errorf("only PNG and JPEG photos are allowed")
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
