package services

import (
	"testing"
	"time"

	"asset_manager_go/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAllocatorTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	db.AutoMigrate(&models.AssetCategoryClass{}, &models.AssetCategory{}, &models.Asset{})
	return db
}

func seedTaggedAsset(db *gorm.DB, tag, groupTag string, categoryID *uint, createdAt time.Time) {
	asset := models.Asset{
		OrganizationID: "org-alloc",
		Name:           "seed " + tag + groupTag,
		CategoryID:     categoryID,
		CreatedAt:      createdAt,
	}
	if tag != "" {
		asset.AssetTag = &tag
	}
	if groupTag != "" {
		asset.AssetTagGroup = &groupTag
	}
	if err := db.Create(&asset).Error; err != nil {
		panic(err)
	}
}

func TestNextTagSequence(t *testing.T) {
	db := setupAllocatorTestDB()
	allocator := NewSequenceAllocator(db)

	// No prior identifiers: the configured start applies
	next, err := allocator.NextTagSequence("IT-ENG", "-", 1)
	assert.NoError(t, err)
	assert.Equal(t, 1, next)

	next, err = allocator.NextTagSequence("IT-ENG", "-", 100)
	assert.NoError(t, err)
	assert.Equal(t, 100, next)

	now := time.Now()
	seedTaggedAsset(db, "IT-ENG-0001", "", nil, now.Add(-3*time.Minute))
	seedTaggedAsset(db, "IT-ENG-0007", "", nil, now.Add(-2*time.Minute))
	seedTaggedAsset(db, "HR-FIN-0042", "", nil, now.Add(-1*time.Minute))

	// Only identifiers under the prefix count
	next, err = allocator.NextTagSequence("IT-ENG", "-", 1)
	assert.NoError(t, err)
	assert.Equal(t, 8, next)

	next, err = allocator.NextTagSequence("HR-FIN", "-", 1)
	assert.NoError(t, err)
	assert.Equal(t, 43, next)
}

func TestNextTagSequenceBoundedWindow(t *testing.T) {
	db := setupAllocatorTestDB()
	allocator := NewSequenceAllocator(db)
	allocator.PrefixWindow = 2

	now := time.Now()
	seedTaggedAsset(db, "LAB-0009", "", nil, now.Add(-3*time.Minute))
	seedTaggedAsset(db, "LAB-0002", "", nil, now.Add(-2*time.Minute))
	seedTaggedAsset(db, "LAB-0003", "", nil, now.Add(-1*time.Minute))

	// The oldest row falls outside the scan window, so its higher value
	// is not seen; the uniqueness constraint catches any collision later
	next, err := allocator.NextTagSequence("LAB", "-", 1)
	assert.NoError(t, err)
	assert.Equal(t, 4, next)
}

func TestNextGroupSequenceByToken(t *testing.T) {
	db := setupAllocatorTestDB()
	allocator := NewSequenceAllocator(db)

	now := time.Now()
	seedTaggedAsset(db, "", "LAB-EQ-0003", nil, now.Add(-3*time.Minute))
	seedTaggedAsset(db, "", "EQ-0008", nil, now.Add(-2*time.Minute))
	// Token embedded in a longer segment must not count
	seedTaggedAsset(db, "", "XEQY-0099", nil, now.Add(-1*time.Minute))

	next, err := allocator.NextGroupSequence("", "-", 1, SequenceScope{ClassToken: "EQ"})
	assert.NoError(t, err)
	assert.Equal(t, 9, next)
}

func TestNextGroupSequenceByClassID(t *testing.T) {
	db := setupAllocatorTestDB()
	allocator := NewSequenceAllocator(db)

	classA := models.AssetCategoryClass{Name: "IT Equipment", Slug: "it-equipment"}
	db.Create(&classA)
	classB := models.AssetCategoryClass{Name: "Furniture", Slug: "furniture"}
	db.Create(&classB)
	catA := models.AssetCategory{Name: "Laptops", Slug: "laptops", ClassID: &classA.ID}
	db.Create(&catA)
	catB := models.AssetCategory{Name: "Desks", Slug: "desks", ClassID: &classB.ID}
	db.Create(&catB)

	now := time.Now()
	seedTaggedAsset(db, "", "GRP-0004", &catA.ID, now.Add(-2*time.Minute))
	seedTaggedAsset(db, "", "GRP-0010", &catB.ID, now.Add(-1*time.Minute))

	// Scoped to class A, the class B identifier is invisible
	next, err := allocator.NextGroupSequence("GRP", "-", 1, SequenceScope{ClassID: &classA.ID})
	assert.NoError(t, err)
	assert.Equal(t, 5, next)

	next, err = allocator.NextGroupSequence("GRP", "-", 1, SequenceScope{ClassID: &classB.ID})
	assert.NoError(t, err)
	assert.Equal(t, 11, next)
}

func TestNextGroupSequenceWithoutScope(t *testing.T) {
	db := setupAllocatorTestDB()
	allocator := NewSequenceAllocator(db)

	seedTaggedAsset(db, "", "GRP-0002", nil, time.Now())

	next, err := allocator.NextGroupSequence("GRP", "-", 1, SequenceScope{})
	assert.NoError(t, err)
	assert.Equal(t, 3, next)
}

func TestNextFromLeadingRunsEmptyPrefix(t *testing.T) {
	values := []string{"0005", "0002", "ABC-1"}
	assert.Equal(t, 6, nextFromLeadingRuns(values, "", "-", 1))
}
