package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Asset status constants
const (
	AssetStatusAvailable   = "available"
	AssetStatusInUse       = "in_use"
	AssetStatusMaintenance = "maintenance"
	AssetStatusRetired     = "retired"
)

// Approval status constants
const (
	ApprovalStatusPending  = "pending"
	ApprovalStatusApproved = "approved"
	ApprovalStatusRejected = "rejected"
)

// Asset represents a tracked physical asset
type Asset struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Organization relationship
	OrganizationID string       `gorm:"type:uuid;not null;index" json:"organization_id"`
	Organization   Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`

	Name           string `gorm:"not null" json:"name"`
	Status         string `gorm:"not null;default:available" json:"status"`
	ApprovalStatus string `gorm:"not null;default:pending" json:"approval_status"`
	AssetLocation  string `json:"asset_location"`

	// Category relationship
	CategoryID *uint          `gorm:"index" json:"category_id,omitempty"`
	Category   *AssetCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	// Dynamic form relationship
	FormID *uint           `gorm:"index" json:"form_id,omitempty"`
	Form   *FormDefinition `gorm:"foreignKey:FormID" json:"form,omitempty"`

	// FormResponses holds the submitted dynamic form answers as JSON,
	// keyed by field id
	FormResponses *string `gorm:"type:text" json:"form_responses,omitempty"`

	// Generated identifiers. Uniqueness is enforced by the database; the
	// sequence allocator is only advisory.
	AssetTag      *string `gorm:"size:191;uniqueIndex" json:"asset_tag,omitempty"`
	AssetTagGroup *string `gorm:"size:191;uniqueIndex" json:"asset_tag_group,omitempty"`

	// Generated code artifact paths
	BarcodePath   *string `json:"barcode_path,omitempty"`
	QRCodePath    *string `json:"qr_code_path,omitempty"`
	CodeSheetPath *string `json:"code_sheet_path,omitempty"`
}

// BeforeCreate hook to generate UUID
func (a *Asset) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Asset model
func (Asset) TableName() string {
	return "assets"
}

// ResponsesMap decodes the stored form responses into a map keyed by field id.
// Returns an empty map when no responses are stored or decoding fails.
func (a *Asset) ResponsesMap() map[string]interface{} {
	result := map[string]interface{}{}
	if a.FormResponses == nil || *a.FormResponses == "" {
		return result
	}
	if err := json.Unmarshal([]byte(*a.FormResponses), &result); err != nil {
		return map[string]interface{}{}
	}
	return result
}

// SetResponses serializes and stores the given form responses
func (a *Asset) SetResponses(responses map[string]interface{}) error {
	if responses == nil {
		a.FormResponses = nil
		return nil
	}
	data, err := json.Marshal(responses)
	if err != nil {
		return err
	}
	s := string(data)
	a.FormResponses = &s
	return nil
}

// IsValidAssetStatus checks if the status is valid
func IsValidAssetStatus(status string) bool {
	switch status {
	case AssetStatusAvailable, AssetStatusInUse, AssetStatusMaintenance, AssetStatusRetired:
		return true
	}
	return false
}

// IsValidApprovalStatus checks if the approval status is valid
func IsValidApprovalStatus(status string) bool {
	switch status {
	case ApprovalStatusPending, ApprovalStatusApproved, ApprovalStatusRejected:
		return true
	}
	return false
}
