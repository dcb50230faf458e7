package models

import "time"

// BadgeCategory classifies a catalog badge by skill area.
type BadgeCategory string

const (
	// BadgeCategoryTechnical covers engineering and tooling skills.
	BadgeCategoryTechnical BadgeCategory = "technical"
	// BadgeCategoryOrganizational covers process and coordination skills.
	BadgeCategoryOrganizational BadgeCategory = "organizational"
	// BadgeCategorySoftskilled covers communication and leadership skills.
	BadgeCategorySoftskilled BadgeCategory = "softskilled"
)

// ValidBadgeCategory reports whether c is a known badge category.
func ValidBadgeCategory(c BadgeCategory) bool {
	switch c {
	case BadgeCategoryTechnical, BadgeCategoryOrganizational, BadgeCategorySoftskilled:
		return true
	}
	return false
}

// BadgeLevel grades a catalog badge. Levels are incomparable tags, not an
// ordered scale: a gold badge never stands in for a silver requirement.
type BadgeLevel string

const (
	// BadgeLevelGold is the gold badge grade.
	BadgeLevelGold BadgeLevel = "gold"
	// BadgeLevelSilver is the silver badge grade.
	BadgeLevelSilver BadgeLevel = "silver"
	// BadgeLevelBronze is the bronze badge grade.
	BadgeLevelBronze BadgeLevel = "bronze"
)

// ValidBadgeLevel reports whether l is a known badge level.
func ValidBadgeLevel(l BadgeLevel) bool {
	switch l {
	case BadgeLevelGold, BadgeLevelSilver, BadgeLevelBronze:
		return true
	}
	return false
}

// CatalogBadge is a skill badge definition users can apply for.
type CatalogBadge struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Name        string        `gorm:"size:120;not null" json:"name"`
	Description string        `gorm:"type:text" json:"description"`
	Icon        string        `json:"icon"`
	Category    BadgeCategory `gorm:"type:varchar(20);not null;index" json:"category"`
	Level       BadgeLevel    `gorm:"type:varchar(10);not null;index" json:"level"`
	IsActive    bool          `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
