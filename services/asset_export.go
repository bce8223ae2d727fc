package services

import (
	"bytes"
	"fmt"

	"asset_manager_go/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// GenerateAssetExport builds an Excel asset register for an
// organization: one row per asset with its identifiers, category, class,
// status and location.
func GenerateAssetExport(db *gorm.DB, organizationID string) (*bytes.Buffer, error) {
	var assets []models.Asset
	err := db.Preload("Category").Preload("Category.Class").
		Where("organization_id = ?", organizationID).
		Order("created_at ASC").
		Find(&assets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assets: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Assets"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Asset Tag", "Tag Group", "Name", "Category", "Class", "Status", "Approval", "Location", "Created"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheet, "A1", "I1", headerStyle)

	for row, asset := range assets {
		categoryName := ""
		className := ""
		if asset.Category != nil {
			categoryName = asset.Category.Name
			if asset.Category.Class != nil {
				className = asset.Category.Class.Name
			}
		}

		values := []interface{}{
			derefOrEmpty(asset.AssetTag),
			derefOrEmpty(asset.AssetTagGroup),
			asset.Name,
			categoryName,
			className,
			asset.Status,
			asset.ApprovalStatus,
			asset.AssetLocation,
			asset.CreatedAt.Format("2006-01-02"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write export: %w", err)
	}
	return buf, nil
}
