package models

import (
	"time"

	"gorm.io/gorm"
)

// Form field type constants
const (
	FieldTypeText      = "text"
	FieldTypeNumber    = "number"
	FieldTypeSelect    = "select"
	FieldTypeDate      = "date"
	FieldTypeHierarchy = "hierarchy"
	FieldTypeCamera    = "camera"
	FieldTypeLocation  = "location"
)

// FormDefinition represents a dynamic form describing the extra data
// captured for assets created through it. The per-form tag configuration
// is stored alongside the definition as raw JSON and parsed at
// generation time.
type FormDefinition struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	OrganizationID string       `gorm:"type:uuid;not null;index" json:"organization_id"`
	Organization   Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`

	Name string `gorm:"not null" json:"name"`

	// TagConfig / TagGroupConfig hold the declarative identifier
	// configuration as JSON (see services.TagConfig). Nullable: a form
	// without configuration falls back to the legacy tag scheme.
	TagConfig      *string `gorm:"type:text" json:"tag_config,omitempty"`
	TagGroupConfig *string `gorm:"type:text" json:"tag_group_config,omitempty"`

	Fields []FormField `gorm:"foreignKey:FormID" json:"fields,omitempty"`
}

// TableName specifies the table name for FormDefinition model
func (FormDefinition) TableName() string {
	return "form_definitions"
}

// FormField is a single field of a dynamic form
type FormField struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	FormID uint           `gorm:"not null;index" json:"form_id"`
	Form   FormDefinition `gorm:"foreignKey:FormID" json:"-"`

	Label     string `gorm:"not null" json:"label"`
	FieldType string `gorm:"not null;default:text" json:"field_type"`

	// Position orders fields within the form and in rendered summaries
	Position int  `gorm:"not null;default:0" json:"position"`
	Required bool `gorm:"not null;default:false" json:"required"`

	// HierarchyLevels names the levels of a hierarchy field, outermost
	// first, as a comma-separated list (e.g. "Building,Floor,Room")
	HierarchyLevels *string `json:"hierarchy_levels,omitempty"`
}

// TableName specifies the table name for FormField model
func (FormField) TableName() string {
	return "form_fields"
}
