package database

import (
	"fmt"

	"laurel/internal/models"

	"gorm.io/gorm"
)

// Migrate runs AutoMigrate for all domain models and applies the manual
// migrations GORM cannot express.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.CatalogBadge{},
		&models.BadgeApplication{},
		&models.PromotionTemplate{},
		&models.Promotion{},
		&models.PromotionBadge{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return EnsureReservationIndex(db)
}

// EnsureReservationIndex creates the partial unique index that enforces the
// single-unconsumed-reservation invariant: at most one reservation row with
// consumed = false may exist per badge application, system-wide. Two
// concurrent reservation attempts on the same badge then resolve at the
// storage layer: one commits, the other fails with a uniqueness violation.
// GORM's AutoMigrate cannot express partial indexes, hence the manual DDL.
// The statement is valid for both Postgres and SQLite (test databases).
func EnsureReservationIndex(db *gorm.DB) error {
	stmt := `CREATE UNIQUE INDEX IF NOT EXISTS uq_promotion_badges_unconsumed
		ON promotion_badges (badge_application_id) WHERE consumed = false`
	if err := db.Exec(stmt).Error; err != nil {
		return fmt.Errorf("failed to create reservation uniqueness index: %w", err)
	}
	return nil
}
