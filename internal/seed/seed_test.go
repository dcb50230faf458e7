package seed

import (
	"testing"

	"laurel/internal/database"
	"laurel/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func seedTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

func TestSeedPopulatesDemoData(t *testing.T) {
	db := seedTestDB(t)

	if err := Seed(db, Options{NumUsers: 6, SkipBcrypt: true}); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	// NumUsers regular users plus the admin
	if userCount != 7 {
		t.Fatalf("expected 7 users, got %d", userCount)
	}

	var adminCount int64
	if err := db.Model(&models.User{}).Where("is_admin = ?", true).Count(&adminCount).Error; err != nil {
		t.Fatalf("count admins: %v", err)
	}
	if adminCount != 1 {
		t.Fatalf("expected exactly 1 admin, got %d", adminCount)
	}

	var badgeCount int64
	if err := db.Model(&models.CatalogBadge{}).Count(&badgeCount).Error; err != nil {
		t.Fatalf("count catalog badges: %v", err)
	}
	// 3 categories x 3 levels
	if badgeCount != 9 {
		t.Fatalf("expected 9 catalog badges, got %d", badgeCount)
	}

	var templateCount int64
	if err := db.Model(&models.PromotionTemplate{}).Where("is_active = ?", true).Count(&templateCount).Error; err != nil {
		t.Fatalf("count templates: %v", err)
	}
	if templateCount == 0 {
		t.Fatal("expected active templates, got none")
	}

	var applicationCount int64
	if err := db.Model(&models.BadgeApplication{}).
		Where("status = ?", models.BadgeApplicationStatusAccepted).
		Count(&applicationCount).Error; err != nil {
		t.Fatalf("count applications: %v", err)
	}
	if applicationCount == 0 {
		t.Fatal("expected accepted badge applications, got none")
	}
}

func TestSeededTemplatesValidate(t *testing.T) {
	db := seedTestDB(t)

	if err := Seed(db, Options{NumUsers: 3, SkipBcrypt: true}); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	var templates []models.PromotionTemplate
	if err := db.Find(&templates).Error; err != nil {
		t.Fatalf("load templates: %v", err)
	}
	for _, template := range templates {
		if err := template.Rules.Validate(); err != nil {
			t.Errorf("template %d has invalid rules: %v", template.ID, err)
		}
		if template.FromLevel == template.ToLevel {
			t.Errorf("template %d promotes to its own level %q", template.ID, template.FromLevel)
		}
	}
}

func TestFactoryDryRunWritesNothing(t *testing.T) {
	db := seedTestDB(t)
	factory := NewFactory(db, Options{DryRun: true, SkipBcrypt: true})

	user, err := factory.CreateUser()
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("dry-run user should get a synthetic ID")
	}

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 0 {
		t.Fatalf("dry-run persisted %d users", count)
	}
}
