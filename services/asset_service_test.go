package services

import (
	"fmt"
	"testing"
	"time"

	"asset_manager_go/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAssetServiceTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	db.AutoMigrate(
		&models.Organization{},
		&models.AssetCategoryClass{},
		&models.AssetCategory{},
		&models.FormDefinition{},
		&models.FormField{},
		&models.Asset{},
	)
	return db
}

func createTestOrg(db *gorm.DB) *models.Organization {
	org := models.Organization{Name: "Acme Corp"}
	if err := db.Create(&org).Error; err != nil {
		panic(err)
	}
	return &org
}

func createTestForm(db *gorm.DB, orgID, tagConfig string) *models.FormDefinition {
	form := models.FormDefinition{OrganizationID: orgID, Name: "Asset Intake"}
	if tagConfig != "" {
		form.TagConfig = &tagConfig
	}
	if err := db.Create(&form).Error; err != nil {
		panic(err)
	}
	return &form
}

func TestCreateAssetWithConfiguredTag(t *testing.T) {
	db := setupAssetServiceTestDB()
	org := createTestOrg(db)
	form := createTestForm(db, org.ID, `{
		"enabled": true,
		"segments": [
			{"type": "field", "field_id": 10, "max_length": 3},
			{"type": "sequence", "length": 3}
		]
	}`)

	asset, err := CreateAsset(db, CreateAssetInput{
		OrganizationID: org.ID,
		Name:           "Dell Laptop",
		FormID:         &form.ID,
		FormResponses:  map[string]interface{}{"10": "Engineering"},
	})
	assert.NoError(t, err)
	assert.NotNil(t, asset.AssetTag)
	assert.Equal(t, "ENG-001", *asset.AssetTag)
	assert.Equal(t, models.AssetStatusAvailable, asset.Status)
	assert.Equal(t, models.ApprovalStatusPending, asset.ApprovalStatus)
	assert.NotEmpty(t, asset.ID)

	// Free-text answers are sanitized before persisting
	dirty, err := CreateAsset(db, CreateAssetInput{
		OrganizationID: org.ID,
		Name:           "Second Laptop",
		FormID:         &form.ID,
		FormResponses: map[string]interface{}{
			"10": "Engineering",
			"11": "<script>x</script>note",
		},
	})
	assert.NoError(t, err)
	assert.Equal(t, "ENG-002", *dirty.AssetTag)
	assert.Equal(t, "note", dirty.ResponsesMap()["11"])
}

func TestCreateAssetRetriesPastUnseenCollision(t *testing.T) {
	db := setupAssetServiceTestDB()
	org := createTestOrg(db)
	form := createTestForm(db, org.ID, `{
		"enabled": true,
		"segments": [
			{"type": "field", "field_id": 10, "max_length": 3},
			{"type": "sequence", "length": 3}
		]
	}`)

	now := time.Now()

	// The colliding tag sits outside the allocator's bounded scan window:
	// an old row holds ENG-001 while enough newer rows match the prefix
	// without carrying a digit run after it
	old := "ENG-001"
	assert.NoError(t, db.Create(&models.Asset{
		OrganizationID: org.ID,
		Name:           "old",
		AssetTag:       &old,
		CreatedAt:      now.Add(-time.Hour),
	}).Error)

	for i := 0; i < DefaultPrefixScanWindow; i++ {
		decoy := fmt.Sprintf("ENG-X%03d", i)
		assert.NoError(t, db.Create(&models.Asset{
			OrganizationID: org.ID,
			Name:           decoy,
			AssetTag:       &decoy,
			CreatedAt:      now.Add(time.Duration(i) * time.Second),
		}).Error)
	}

	// Attempt 0 computes ENG-001 and collides; the retry shifts the
	// sequence and lands on ENG-002
	asset, err := CreateAsset(db, CreateAssetInput{
		OrganizationID: org.ID,
		Name:           "Retry Laptop",
		FormID:         &form.ID,
		FormResponses:  map[string]interface{}{"10": "Engineering"},
	})
	assert.NoError(t, err)
	assert.NotNil(t, asset.AssetTag)
	assert.Equal(t, "ENG-002", *asset.AssetTag)
}

func TestCreateAssetConflictExhaustion(t *testing.T) {
	db := setupAssetServiceTestDB()
	org := createTestOrg(db)

	// A field-only configuration always renders the same tag, so a
	// pre-existing identical tag defeats every retry
	form := createTestForm(db, org.ID, `{
		"enabled": true,
		"segments": [{"type": "field", "field_id": 10, "max_length": 3}]
	}`)

	existing := "ENG"
	assert.NoError(t, db.Create(&models.Asset{
		OrganizationID: org.ID,
		Name:           "occupant",
		AssetTag:       &existing,
	}).Error)

	_, err := CreateAsset(db, CreateAssetInput{
		OrganizationID: org.ID,
		Name:           "Doomed Laptop",
		FormID:         &form.ID,
		FormResponses:  map[string]interface{}{"10": "Engineering"},
	})
	assert.Error(t, err)

	var conflict *ConflictError
	assert.ErrorAs(t, err, &conflict)
	assert.Equal(t, maxTagAttempts, conflict.Attempts)
	assert.Equal(t, "ENG", conflict.Tag)

	// Nothing beyond the occupant was persisted
	var count int64
	db.Model(&models.Asset{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCreateAssetGenerationErrorAborts(t *testing.T) {
	db := setupAssetServiceTestDB()
	org := createTestOrg(db)
	form := createTestForm(db, org.ID, `{
		"enabled": true,
		"segments": [{"type": "field", "field_id": 10}]
	}`)

	_, err := CreateAsset(db, CreateAssetInput{
		OrganizationID: org.ID,
		Name:           "No Answers",
		FormID:         &form.ID,
		FormResponses:  map[string]interface{}{},
	})
	assert.Error(t, err)

	var genErr *GenerationError
	assert.ErrorAs(t, err, &genErr)

	var count int64
	db.Model(&models.Asset{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCreateAssetLegacyScheme(t *testing.T) {
	db := setupAssetServiceTestDB()
	org := createTestOrg(db)

	category := models.AssetCategory{Name: "Computers", Slug: "computers"}
	db.Create(&category)

	asset, err := CreateAsset(db, CreateAssetInput{
		OrganizationID: org.ID,
		Name:           "Legacy Laptop",
		AssetLocation:  "Main Office",
		CategoryID:     &category.ID,
	})
	assert.NoError(t, err)
	assert.NotNil(t, asset.AssetTag)
	assert.Equal(t, "MAI-COMPUTER-001", *asset.AssetTag)
}

func TestUpdateAssetKeepsExistingTag(t *testing.T) {
	db := setupAssetServiceTestDB()
	org := createTestOrg(db)
	form := createTestForm(db, org.ID, `{
		"enabled": true,
		"segments": [
			{"type": "field", "field_id": 10, "max_length": 3},
			{"type": "sequence", "length": 3}
		]
	}`)

	asset, err := CreateAsset(db, CreateAssetInput{
		OrganizationID: org.ID,
		Name:           "Laptop",
		FormID:         &form.ID,
		FormResponses:  map[string]interface{}{"10": "Engineering"},
	})
	assert.NoError(t, err)
	original := *asset.AssetTag

	// Changing answers must not rewrite an existing identifier
	newName := "Renamed Laptop"
	updated, err := UpdateAsset(db, asset.ID, UpdateAssetInput{
		Name:          &newName,
		FormResponses: map[string]interface{}{"10": "Finance"},
	})
	assert.NoError(t, err)
	assert.Equal(t, "Renamed Laptop", updated.Name)
	assert.NotNil(t, updated.AssetTag)
	assert.Equal(t, original, *updated.AssetTag)
}

func TestUpdateAssetGeneratesMissingTag(t *testing.T) {
	db := setupAssetServiceTestDB()
	org := createTestOrg(db)

	// Created without a form, then a configured form is attached
	asset := models.Asset{OrganizationID: org.ID, Name: "Untagged"}
	assert.NoError(t, db.Create(&asset).Error)

	form := createTestForm(db, org.ID, `{
		"enabled": true,
		"segments": [
			{"type": "field", "field_id": 10, "max_length": 3},
			{"type": "sequence", "length": 3}
		]
	}`)
	assert.NoError(t, db.Model(&asset).Update("form_id", form.ID).Error)

	updated, err := UpdateAsset(db, asset.ID, UpdateAssetInput{
		FormResponses: map[string]interface{}{"10": "Engineering"},
	})
	assert.NoError(t, err)
	assert.NotNil(t, updated.AssetTag)
	assert.Equal(t, "ENG-001", *updated.AssetTag)
}

func TestUpdateAssetInvalidFieldsUntouched(t *testing.T) {
	db := setupAssetServiceTestDB()
	org := createTestOrg(db)

	asset, err := CreateAsset(db, CreateAssetInput{
		OrganizationID: org.ID,
		Name:           "Plain",
	})
	assert.NoError(t, err)

	// Nil inputs leave everything as-is
	updated, err := UpdateAsset(db, asset.ID, UpdateAssetInput{})
	assert.NoError(t, err)
	assert.Equal(t, asset.Name, updated.Name)
	assert.Equal(t, asset.Status, updated.Status)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueViolation(fmt.Errorf("UNIQUE constraint failed: assets.asset_tag")))
	assert.False(t, isUniqueViolation(fmt.Errorf("disk I/O error")))
	assert.False(t, isUniqueViolation(nil))
}
