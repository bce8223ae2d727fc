package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"asset_manager_go/models"

	"gorm.io/gorm"
)

// ClassIdentity is the result of resolving a raw field value to an
// asset category class. Both fields nil means "class unknown", which
// callers treat as a soft miss unless configuration strictly requires
// a class.
type ClassIdentity struct {
	ClassID    *uint
	CategoryID *uint
}

// ResolveAssetClass resolves a class identity from a raw value. Numeric
// values are tried as a class id first, then as a category id (whose
// class is inherited). Non-numeric values are tried as a class slug or
// name (case-insensitive), then as a category name.
func ResolveAssetClass(db *gorm.DB, raw interface{}) (ClassIdentity, error) {
	if raw == nil {
		return ClassIdentity{}, nil
	}

	if id, ok := numericID(raw); ok {
		return resolveClassByID(db, id)
	}

	text := strings.TrimSpace(StringifyValue(raw))
	if text == "" {
		return ClassIdentity{}, nil
	}
	return resolveClassByName(db, text)
}

// ResolveCategoryClass returns the class identity of a category by id
func ResolveCategoryClass(db *gorm.DB, categoryID uint) (ClassIdentity, error) {
	var category models.AssetCategory
	err := db.First(&category, "id = ?", categoryID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ClassIdentity{}, nil
	}
	if err != nil {
		return ClassIdentity{}, fmt.Errorf("failed to fetch category %d: %w", categoryID, err)
	}
	id := category.ID
	return ClassIdentity{ClassID: category.ClassID, CategoryID: &id}, nil
}

func resolveClassByID(db *gorm.DB, id uint) (ClassIdentity, error) {
	var class models.AssetCategoryClass
	err := db.First(&class, "id = ?", id).Error
	if err == nil {
		classID := class.ID
		return ClassIdentity{ClassID: &classID}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return ClassIdentity{}, fmt.Errorf("failed to look up class %d: %w", id, err)
	}

	return ResolveCategoryClass(db, id)
}

func resolveClassByName(db *gorm.DB, text string) (ClassIdentity, error) {
	var class models.AssetCategoryClass
	err := db.Where("LOWER(slug) = ? OR LOWER(name) = ?", strings.ToLower(text), strings.ToLower(text)).
		First(&class).Error
	if err == nil {
		classID := class.ID
		return ClassIdentity{ClassID: &classID}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return ClassIdentity{}, fmt.Errorf("failed to look up class %q: %w", text, err)
	}

	var category models.AssetCategory
	err = db.Where("LOWER(name) = ?", strings.ToLower(text)).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ClassIdentity{}, nil
	}
	if err != nil {
		return ClassIdentity{}, fmt.Errorf("failed to look up category %q: %w", text, err)
	}
	categoryID := category.ID
	return ClassIdentity{ClassID: category.ClassID, CategoryID: &categoryID}, nil
}

// numericID extracts an integral id from the value shapes JSON decoding
// produces
func numericID(raw interface{}) (uint, bool) {
	switch v := raw.(type) {
	case int:
		if v > 0 {
			return uint(v), true
		}
	case int64:
		if v > 0 {
			return uint(v), true
		}
	case uint:
		if v > 0 {
			return v, true
		}
	case float64:
		if v > 0 && v == float64(uint(v)) {
			return uint(v), true
		}
	case string:
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err == nil && n > 0 {
			return uint(n), true
		}
	}
	return 0, false
}
