package models

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Organization represents a tenant owning assets, categories and forms
type Organization struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name string `gorm:"not null" json:"name"`
	Slug string `gorm:"uniqueIndex;not null" json:"slug"`

	// LogoURL is composed into generated code sheets when set
	LogoURL           string `json:"logo_url"`
	NotificationEmail string `json:"notification_email"`

	Address string `json:"address"`
	City    string `json:"city"`
	Phone   string `json:"phone"`

	// Relationships
	Assets []Asset          `gorm:"foreignKey:OrganizationID" json:"-"`
	Forms  []FormDefinition `gorm:"foreignKey:OrganizationID" json:"-"`
}

// BeforeCreate hook to generate UUID and slug
func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	if o.Slug == "" {
		o.Slug = generateOrgSlug(tx, o.Name)
	}
	return nil
}

// TableName specifies the table name for Organization model
func (Organization) TableName() string {
	return "organizations"
}

// generateOrgSlug creates a URL-friendly unique slug from the organization name
func generateOrgSlug(tx *gorm.DB, name string) string {
	slug := strings.ToLower(name)
	slug = strings.ReplaceAll(slug, " ", "-")

	reg := regexp.MustCompile(`[^a-z0-9-]+`)
	slug = reg.ReplaceAllString(slug, "")

	reg = regexp.MustCompile(`-+`)
	slug = reg.ReplaceAllString(slug, "-")

	slug = strings.Trim(slug, "-")

	if len(slug) > 50 {
		slug = slug[:50]
		slug = strings.TrimRight(slug, "-")
	}

	if slug == "" {
		slug = "org"
	}

	// Ensure uniqueness by appending a counter on collision
	originalSlug := slug
	counter := 1
	for {
		var count int64
		tx.Model(&Organization{}).Where("slug = ?", slug).Count(&count)
		if count == 0 {
			return slug
		}
		counter++
		slug = originalSlug + "-" + strconv.Itoa(counter)
	}
}
