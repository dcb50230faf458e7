package models

import "time"

// PromotionBadge reserves one accepted badge application for one promotion.
//
// Invariant: a badge application carries at most one unconsumed reservation
// across the whole system. This is enforced by a partial unique index on
// badge_application_id where consumed = false (see database.Migrate), so two
// racing reservations resolve deterministically at the storage layer.
// Consumed flips to true only when the owning promotion is approved; rows are
// deleted outright when the promotion is rejected or deleted, or when a badge
// is removed from a draft.
type PromotionBadge struct {
	PromotionID        uint              `gorm:"primaryKey;autoIncrement:false" json:"promotion_id"`
	Promotion          *Promotion        `gorm:"foreignKey:PromotionID" json:"promotion,omitempty"`
	BadgeApplicationID uint              `gorm:"primaryKey;autoIncrement:false" json:"badge_application_id"`
	BadgeApplication   *BadgeApplication `gorm:"foreignKey:BadgeApplicationID" json:"badge_application,omitempty"`
	AssignedByUserID   uint              `gorm:"not null" json:"assigned_by_user_id"`
	Consumed           bool              `gorm:"not null;default:false" json:"consumed"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (PromotionBadge) TableName() string {
	return "promotion_badges"
}
