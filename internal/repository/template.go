// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"

	"laurel/internal/cache"
	"laurel/internal/models"

	"gorm.io/gorm"
)

// TemplateRepository defines persistence operations for promotion templates.
type TemplateRepository interface {
	GetByID(ctx context.Context, id uint) (*models.PromotionTemplate, error)
	ListActive(ctx context.Context) ([]models.PromotionTemplate, error)
	List(ctx context.Context, limit, offset int) ([]models.PromotionTemplate, error)
	Create(ctx context.Context, template *models.PromotionTemplate) error
	SetActive(ctx context.Context, id uint, active bool) error
	UpdateRules(ctx context.Context, id uint, rules models.TemplateRules) error
}

type templateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository returns a new TemplateRepository implementation.
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) GetByID(ctx context.Context, id uint) (*models.PromotionTemplate, error) {
	var template models.PromotionTemplate
	key := cache.TemplateKey(id)

	err := cache.Aside(ctx, key, &template, cache.TemplateTTL, func() error {
		if err := r.db.WithContext(ctx).First(&template, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Template", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *templateRepository) ListActive(ctx context.Context) ([]models.PromotionTemplate, error) {
	var templates []models.PromotionTemplate
	err := cache.Aside(ctx, cache.TemplateListKey, &templates, cache.TemplateTTL, func() error {
		if err := r.db.WithContext(ctx).
			Where("is_active = ?", true).
			Order("path ASC, from_level ASC").
			Find(&templates).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *templateRepository) List(ctx context.Context, limit, offset int) ([]models.PromotionTemplate, error) {
	var templates []models.PromotionTemplate
	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&templates).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return templates, nil
}

func (r *templateRepository) Create(ctx context.Context, template *models.PromotionTemplate) error {
	if err := template.Rules.Validate(); err != nil {
		return models.NewValidationError(err.Error())
	}
	if err := r.db.WithContext(ctx).Create(template).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.TemplateListKey)
	return nil
}

func (r *templateRepository) SetActive(ctx context.Context, id uint, active bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.PromotionTemplate{}).
		Where("id = ?", id).
		Update("is_active", active)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Template", id)
	}
	cache.InvalidateTemplate(ctx, id)
	return nil
}

// UpdateRules rewrites a template's rule set. Active templates are immutable:
// editing rules under pending promotions would retroactively change their
// eligibility, so edits are refused until the template is deactivated.
func (r *templateRepository) UpdateRules(ctx context.Context, id uint, rules models.TemplateRules) error {
	if err := rules.Validate(); err != nil {
		return models.NewValidationError(err.Error())
	}

	var template models.PromotionTemplate
	if err := r.db.WithContext(ctx).First(&template, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Template", id)
		}
		return models.NewInternalError(err)
	}
	if template.IsActive {
		return models.NewValidationError("active templates cannot be edited; deactivate it first")
	}

	if err := r.db.WithContext(ctx).
		Model(&template).
		Update("rules", rules).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateTemplate(ctx, id)
	return nil
}
