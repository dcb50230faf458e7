package models

import "time"

// PromotionStatus defines lifecycle states for promotions. The machine moves
// strictly forward: draft -> submitted -> approved|rejected. A rejected
// promotion is never resubmitted; a new one must be created.
type PromotionStatus string

const (
	// PromotionStatusDraft indicates the promotion is being assembled by its owner.
	PromotionStatusDraft PromotionStatus = "draft"
	// PromotionStatusSubmitted indicates the promotion is awaiting an admin decision.
	PromotionStatusSubmitted PromotionStatus = "submitted"
	// PromotionStatusApproved is terminal; reserved badges are permanently consumed.
	PromotionStatusApproved PromotionStatus = "approved"
	// PromotionStatusRejected is terminal; reserved badges are released.
	PromotionStatusRejected PromotionStatus = "rejected"
)

// Promotion is a user's submission for moving up one level on a career path.
type Promotion struct {
	ID               uint               `gorm:"primaryKey" json:"id"`
	TemplateID       uint               `gorm:"not null;index" json:"template_id"`
	Template         *PromotionTemplate `gorm:"foreignKey:TemplateID" json:"template,omitempty"`
	CreatedByUserID  uint               `gorm:"not null;index" json:"created_by_user_id"`
	CreatedByUser    *User              `gorm:"foreignKey:CreatedByUserID" json:"created_by_user,omitempty"`
	Path             CareerPath         `gorm:"type:varchar(20);not null" json:"path"`
	FromLevel        string             `gorm:"size:40;not null" json:"from_level"`
	ToLevel          string             `gorm:"size:40;not null" json:"to_level"`
	Status           PromotionStatus    `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	SubmittedAt      *time.Time         `json:"submitted_at"`
	ReviewedByUserID *uint              `json:"reviewed_by_user_id"`
	ReviewedByUser   *User              `gorm:"foreignKey:ReviewedByUserID" json:"reviewed_by_user,omitempty"`
	ReviewedAt       *time.Time         `json:"reviewed_at"`
	ReviewReason     string             `gorm:"type:text" json:"review_reason"`
	Badges           []PromotionBadge   `gorm:"foreignKey:PromotionID" json:"badges,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}
