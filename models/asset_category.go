package models

import (
	"time"

	"gorm.io/gorm"
)

// AssetCategoryClass groups categories into a broader class
// (e.g. "IT Equipment" covering laptops, monitors and phones).
// Group tags are scoped by class.
type AssetCategoryClass struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name string `gorm:"not null" json:"name"`
	Slug string `gorm:"uniqueIndex;not null" json:"slug"`

	Categories []AssetCategory `gorm:"foreignKey:ClassID" json:"categories,omitempty"`
}

// TableName specifies the table name for AssetCategoryClass model
func (AssetCategoryClass) TableName() string {
	return "asset_category_classes"
}

// AssetCategory classifies assets; a category optionally belongs to
// exactly one class.
type AssetCategory struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name string `gorm:"not null" json:"name"`
	Slug string `gorm:"index" json:"slug"`

	ClassID *uint               `gorm:"index" json:"class_id,omitempty"`
	Class   *AssetCategoryClass `gorm:"foreignKey:ClassID" json:"class,omitempty"`

	Assets []Asset `gorm:"foreignKey:CategoryID" json:"-"`
}

// TableName specifies the table name for AssetCategory model
func (AssetCategory) TableName() string {
	return "asset_categories"
}
