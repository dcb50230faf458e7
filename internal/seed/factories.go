// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"time"

	"laurel/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db, opts: opts, nextID: 1000}
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username:     gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:        gofakeit.Email(),
		Path:         models.CareerPathTechnical,
		CurrentLevel: "engineer-1",
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = "Password123!seed"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("Password123!seed"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: %s", user.Username)
		return user, nil
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateCatalogBadge constructs and persists a catalog badge definition.
func (f *Factory) CreateCatalogBadge(category models.BadgeCategory, level models.BadgeLevel, overrides ...func(*models.CatalogBadge)) (*models.CatalogBadge, error) {
	badge := &models.CatalogBadge{
		Name:        fmt.Sprintf("%s %s", gofakeit.HackerAdjective(), gofakeit.HackerNoun()),
		Description: gofakeit.Sentence(10),
		Icon:        fmt.Sprintf("https://api.dicebear.com/7.x/shapes/svg?seed=%s", gofakeit.UUID()),
		Category:    category,
		Level:       level,
		IsActive:    true,
	}

	for _, override := range overrides {
		override(badge)
	}

	if f.opts.DryRun {
		f.nextID++
		badge.ID = f.nextID
		log.Printf("[dry-run] CreateCatalogBadge: %s (%s/%s)", badge.Name, badge.Category, badge.Level)
		return badge, nil
	}

	if err := f.db.Create(badge).Error; err != nil {
		return nil, err
	}
	return badge, nil
}

// CreateBadgeApplication constructs and persists an application by the given
// owner for the given catalog badge. Status defaults to accepted because most
// seed scenarios need pledgeable badges.
func (f *Factory) CreateBadgeApplication(owner *models.User, badge *models.CatalogBadge, overrides ...func(*models.BadgeApplication)) (*models.BadgeApplication, error) {
	submitted := time.Now().Add(-time.Duration(gofakeit.Number(1, 60)) * 24 * time.Hour)
	reviewed := submitted.Add(time.Duration(gofakeit.Number(1, 72)) * time.Hour)

	application := &models.BadgeApplication{
		OwnerID:        owner.ID,
		CatalogBadgeID: badge.ID,
		Evidence:       gofakeit.Paragraph(1, 3, 8, "\n"),
		Status:         models.BadgeApplicationStatusAccepted,
		SubmittedAt:    &submitted,
		ReviewedAt:     &reviewed,
	}

	for _, override := range overrides {
		override(application)
	}

	if f.opts.DryRun {
		f.nextID++
		application.ID = f.nextID
		log.Printf("[dry-run] CreateBadgeApplication: owner=%d badge=%d status=%s",
			application.OwnerID, application.CatalogBadgeID, application.Status)
		return application, nil
	}

	if err := f.db.Create(application).Error; err != nil {
		return nil, err
	}
	return application, nil
}

// CreateTemplate constructs and persists an active promotion template.
func (f *Factory) CreateTemplate(path models.CareerPath, fromLevel, toLevel string, rules models.TemplateRules, overrides ...func(*models.PromotionTemplate)) (*models.PromotionTemplate, error) {
	template := &models.PromotionTemplate{
		Path:      path,
		FromLevel: fromLevel,
		ToLevel:   toLevel,
		Rules:     rules,
		IsActive:  true,
	}

	for _, override := range overrides {
		override(template)
	}

	if f.opts.DryRun {
		f.nextID++
		template.ID = f.nextID
		log.Printf("[dry-run] CreateTemplate: %s %s -> %s", template.Path, template.FromLevel, template.ToLevel)
		return template, nil
	}

	if err := f.db.Create(template).Error; err != nil {
		return nil, err
	}
	return template, nil
}

// CreatePromotion constructs and persists a draft promotion for the given
// owner against the given template.
func (f *Factory) CreatePromotion(owner *models.User, template *models.PromotionTemplate, overrides ...func(*models.Promotion)) (*models.Promotion, error) {
	promotion := &models.Promotion{
		TemplateID:      template.ID,
		CreatedByUserID: owner.ID,
		Path:            template.Path,
		FromLevel:       template.FromLevel,
		ToLevel:         template.ToLevel,
		Status:          models.PromotionStatusDraft,
	}

	for _, override := range overrides {
		override(promotion)
	}

	if f.opts.DryRun {
		f.nextID++
		promotion.ID = f.nextID
		log.Printf("[dry-run] CreatePromotion: owner=%d template=%d", promotion.CreatedByUserID, promotion.TemplateID)
		return promotion, nil
	}

	if err := f.db.Create(promotion).Error; err != nil {
		return nil, err
	}
	return promotion, nil
}
