package repository

import (
	"context"
	"errors"

	"laurel/internal/models"

	"gorm.io/gorm"
)

// PromotionRepository defines persistence operations for promotions.
type PromotionRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Promotion, error)
	GetByIDWithBadges(ctx context.Context, id uint) (*models.Promotion, error)
	ListByOwner(ctx context.Context, ownerID uint, limit, offset int) ([]models.Promotion, error)
	ListByStatus(ctx context.Context, status models.PromotionStatus, limit, offset int) ([]models.Promotion, error)
	Create(ctx context.Context, promotion *models.Promotion) error
}

type promotionRepository struct {
	db *gorm.DB
}

// NewPromotionRepository returns a new PromotionRepository implementation.
func NewPromotionRepository(db *gorm.DB) PromotionRepository {
	return &promotionRepository{db: db}
}

func (r *promotionRepository) GetByID(ctx context.Context, id uint) (*models.Promotion, error) {
	var promotion models.Promotion
	if err := r.db.WithContext(ctx).First(&promotion, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Promotion", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &promotion, nil
}

func (r *promotionRepository) GetByIDWithBadges(ctx context.Context, id uint) (*models.Promotion, error) {
	var promotion models.Promotion
	if err := r.db.WithContext(ctx).
		Preload("Template").
		Preload("Badges").
		Preload("Badges.BadgeApplication").
		Preload("Badges.BadgeApplication.CatalogBadge").
		First(&promotion, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Promotion", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &promotion, nil
}

func (r *promotionRepository) ListByOwner(ctx context.Context, ownerID uint, limit, offset int) ([]models.Promotion, error) {
	var promotions []models.Promotion
	if err := r.db.WithContext(ctx).
		Preload("Template").
		Where("created_by_user_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&promotions).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return promotions, nil
}

func (r *promotionRepository) ListByStatus(ctx context.Context, status models.PromotionStatus, limit, offset int) ([]models.Promotion, error) {
	var promotions []models.Promotion
	if err := r.db.WithContext(ctx).
		Preload("Template").
		Preload("CreatedByUser").
		Where("status = ?", status).
		Order("submitted_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&promotions).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return promotions, nil
}

func (r *promotionRepository) Create(ctx context.Context, promotion *models.Promotion) error {
	if err := r.db.WithContext(ctx).Create(promotion).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
