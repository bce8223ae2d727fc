package services

import (
	"context"
	"io"
	"testing"

	"asset_manager_go/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAssetCodesTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	db.AutoMigrate(&models.Organization{}, &models.FormDefinition{}, &models.FormField{}, &models.Asset{})
	return db
}

func TestGenerateAssetCodes(t *testing.T) {
	db := setupAssetCodesTestDB()

	org := models.Organization{Name: "Acme"}
	assert.NoError(t, db.Create(&org).Error)

	tag := "ENG-001"
	asset := models.Asset{
		OrganizationID: org.ID,
		Name:           "Laptop",
		Status:         models.AssetStatusAvailable,
		AssetTag:       &tag,
	}
	assert.NoError(t, db.Create(&asset).Error)

	prev := Storage
	Storage = NewLocalStorage(t.TempDir())
	defer func() { Storage = prev }()

	assert.NoError(t, GenerateAssetCodes(db, &asset))

	assert.NotNil(t, asset.BarcodePath)
	assert.Equal(t, "codes/asset_"+asset.ID+"_barcode.png", *asset.BarcodePath)
	assert.NotNil(t, asset.QRCodePath)
	assert.Equal(t, "codes/asset_"+asset.ID+"_qrcode.png", *asset.QRCodePath)
	assert.NotNil(t, asset.CodeSheetPath)

	// Paths are recorded on the row and the artifacts exist in storage
	var stored models.Asset
	assert.NoError(t, db.First(&stored, "id = ?", asset.ID).Error)
	assert.NotNil(t, stored.BarcodePath)
	assert.NotNil(t, stored.QRCodePath)

	reader, contentType, err := Storage.Get(context.Background(), *asset.BarcodePath)
	assert.NoError(t, err)
	data, _ := io.ReadAll(reader)
	reader.Close()
	assert.Equal(t, "image/png", contentType)
	assert.NotEmpty(t, data)
}

func TestGenerateAssetCodesWithoutStorage(t *testing.T) {
	db := setupAssetCodesTestDB()

	prev := Storage
	Storage = nil
	defer func() { Storage = prev }()

	asset := models.Asset{OrganizationID: "org-1", Name: "Laptop"}
	assert.Error(t, GenerateAssetCodes(db, &asset))
}

func TestGenerateAssetCodesFallsBackToID(t *testing.T) {
	db := setupAssetCodesTestDB()

	org := models.Organization{Name: "Acme"}
	assert.NoError(t, db.Create(&org).Error)

	// No tag: the asset id still yields scannable codes
	asset := models.Asset{OrganizationID: org.ID, Name: "Untagged"}
	assert.NoError(t, db.Create(&asset).Error)

	prev := Storage
	Storage = NewLocalStorage(t.TempDir())
	defer func() { Storage = prev }()

	assert.NoError(t, GenerateAssetCodes(db, &asset))
	assert.NotNil(t, asset.BarcodePath)
}
