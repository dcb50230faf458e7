// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// CareerPath identifies which career ladder a user or template belongs to.
type CareerPath string

const (
	// CareerPathTechnical is the engineering ladder.
	CareerPathTechnical CareerPath = "technical"
	// CareerPathFinancial is the finance ladder.
	CareerPathFinancial CareerPath = "financial"
	// CareerPathManagement is the management ladder.
	CareerPathManagement CareerPath = "management"
)

// ValidCareerPath reports whether p is a known career path.
func ValidCareerPath(p CareerPath) bool {
	switch p {
	case CareerPathTechnical, CareerPathFinancial, CareerPathManagement:
		return true
	}
	return false
}

// User represents an account in the Laurel application.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"unique;not null" json:"username"`
	Email        string         `gorm:"unique;not null" json:"email"`
	Password     string         `gorm:"not null" json:"-"`
	IsAdmin      bool           `gorm:"not null;default:false" json:"is_admin"`
	Path         CareerPath     `gorm:"type:varchar(20)" json:"path,omitempty"`
	CurrentLevel string         `gorm:"size:40" json:"current_level,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
