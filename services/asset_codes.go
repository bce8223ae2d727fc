package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"log"

	"asset_manager_go/models"

	"gorm.io/gorm"
)

// Renderer is the shared code renderer, initialized at startup
var Renderer = NewCodeRenderer("")

// codeKey builds the deterministic storage key for a code artifact
func codeKey(assetID, kind string) string {
	return fmt.Sprintf("codes/asset_%s_%s.png", assetID, kind)
}

// GenerateAssetCodes renders the barcode, QR code and code sheet for a
// persisted asset, stores them, and records the paths on the asset row.
// The code sheet is best-effort: any composition failure is logged and
// the sheet is omitted without affecting the other artifacts.
func GenerateAssetCodes(db *gorm.DB, asset *models.Asset) error {
	if Storage == nil {
		return fmt.Errorf("storage not initialized")
	}

	tag := derefOrEmpty(asset.AssetTag)
	if tag == "" {
		tag = asset.ID
	}
	responses := asset.ResponsesMap()

	// Structured payload; the human-readable block is the fallback when
	// it cannot be encoded
	qrContent := ""
	if data, err := json.Marshal(BuildQRPayload(asset, responses)); err == nil {
		qrContent = string(data)
	} else {
		text, terr := BuildHumanReadableText(db, asset, responses)
		if terr != nil {
			return fmt.Errorf("failed to build QR content: %w", terr)
		}
		qrContent = text
	}

	// Organization logo feeds both the QR overlay and the code sheet
	logoURL := ""
	var org models.Organization
	if err := db.First(&org, "id = ?", asset.OrganizationID).Error; err == nil {
		logoURL = org.LogoURL
	}

	barcodeImg, err := Renderer.RenderBarcode(tag)
	if err != nil {
		return fmt.Errorf("failed to render barcode: %w", err)
	}

	qrImg, err := Renderer.RenderQR(qrContent, LogoImage(logoURL), defaultLogoScale)
	if err != nil {
		return fmt.Errorf("failed to render QR code: %w", err)
	}

	ctx := context.Background()
	barcodePath, err := storeCodeImage(ctx, asset.ID, "barcode", barcodeImg)
	if err != nil {
		return err
	}
	qrPath, err := storeCodeImage(ctx, asset.ID, "qrcode", qrImg)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"barcode_path": barcodePath,
		"qr_code_path": qrPath,
	}

	// Sheet composition failures never block the barcode and QR
	sheetImg, err := Renderer.RenderCodeSheet(qrImg, tag, logoURL)
	if err != nil {
		log.Printf("[WARNING] Skipping code sheet for asset %s: %v", asset.ID, err)
	} else {
		sheetPath, err := storeCodeImage(ctx, asset.ID, "codes", sheetImg)
		if err != nil {
			log.Printf("[WARNING] Failed to store code sheet for asset %s: %v", asset.ID, err)
		} else {
			updates["code_sheet_path"] = sheetPath
		}
	}

	if err := db.Model(&models.Asset{}).Where("id = ?", asset.ID).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to record code paths: %w", err)
	}

	if p, ok := updates["barcode_path"].(string); ok {
		asset.BarcodePath = &p
	}
	if p, ok := updates["qr_code_path"].(string); ok {
		asset.QRCodePath = &p
	}
	if p, ok := updates["code_sheet_path"].(string); ok {
		asset.CodeSheetPath = &p
	}

	return nil
}

// LogoImage fetches the organization logo for the QR overlay, returning
// nil when there is none or it cannot be loaded
func LogoImage(logoURL string) image.Image {
	if logoURL == "" {
		return nil
	}
	logo, err := Renderer.FetchLogo(logoURL)
	if err != nil {
		log.Printf("[WARNING] QR logo unavailable: %v", err)
		return nil
	}
	return logo
}

// storeCodeImage encodes and persists one code artifact, returning its
// storage key
func storeCodeImage(ctx context.Context, assetID, kind string, img image.Image) (string, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return "", err
	}
	key := codeKey(assetID, kind)
	if _, err := Storage.UploadReader(ctx, bytes.NewReader(data), key, "image/png", int64(len(data))); err != nil {
		return "", fmt.Errorf("failed to store %s image: %w", kind, err)
	}
	return key, nil
}
