package models

import "time"

// BadgeApplicationStatus defines lifecycle states for badge applications.
type BadgeApplicationStatus string

const (
	// BadgeApplicationStatusDraft indicates the application has not been sent for review.
	BadgeApplicationStatusDraft BadgeApplicationStatus = "draft"
	// BadgeApplicationStatusSubmitted indicates the application is awaiting review.
	BadgeApplicationStatusSubmitted BadgeApplicationStatus = "submitted"
	// BadgeApplicationStatusAccepted indicates the badge was granted; only accepted
	// applications can be pledged to a promotion.
	BadgeApplicationStatusAccepted BadgeApplicationStatus = "accepted"
	// BadgeApplicationStatusRejected indicates the application was denied.
	BadgeApplicationStatusRejected BadgeApplicationStatus = "rejected"
	// BadgeApplicationStatusUsedInPromotion indicates the badge is locked by a
	// submitted or approved promotion.
	BadgeApplicationStatusUsedInPromotion BadgeApplicationStatus = "used_in_promotion"
)

// BadgeApplication is a user's claim to a catalog badge.
type BadgeApplication struct {
	ID               uint                   `gorm:"primaryKey" json:"id"`
	OwnerID          uint                   `gorm:"not null;index" json:"owner_id"`
	Owner            *User                  `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	CatalogBadgeID   uint                   `gorm:"not null;index" json:"catalog_badge_id"`
	CatalogBadge     *CatalogBadge          `gorm:"foreignKey:CatalogBadgeID" json:"catalog_badge,omitempty"`
	Evidence         string                 `gorm:"type:text" json:"evidence"`
	Status           BadgeApplicationStatus `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	SubmittedAt      *time.Time             `json:"submitted_at"`
	ReviewedByUserID *uint                  `json:"reviewed_by_user_id"`
	ReviewedByUser   *User                  `gorm:"foreignKey:ReviewedByUserID" json:"reviewed_by_user,omitempty"`
	ReviewedAt       *time.Time             `json:"reviewed_at"`
	ReviewNotes      string                 `gorm:"type:text" json:"review_notes"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}
