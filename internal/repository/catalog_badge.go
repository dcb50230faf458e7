package repository

import (
	"context"
	"errors"

	"laurel/internal/cache"
	"laurel/internal/models"

	"gorm.io/gorm"
)

// CatalogBadgeRepository defines persistence operations for the badge catalog.
type CatalogBadgeRepository interface {
	GetByID(ctx context.Context, id uint) (*models.CatalogBadge, error)
	ListActive(ctx context.Context) ([]models.CatalogBadge, error)
	List(ctx context.Context, limit, offset int) ([]models.CatalogBadge, error)
	Create(ctx context.Context, badge *models.CatalogBadge) error
	SetActive(ctx context.Context, id uint, active bool) error
}

type catalogBadgeRepository struct {
	db *gorm.DB
}

// NewCatalogBadgeRepository returns a new CatalogBadgeRepository implementation.
func NewCatalogBadgeRepository(db *gorm.DB) CatalogBadgeRepository {
	return &catalogBadgeRepository{db: db}
}

func (r *catalogBadgeRepository) GetByID(ctx context.Context, id uint) (*models.CatalogBadge, error) {
	var badge models.CatalogBadge
	key := cache.CatalogBadgeKey(id)

	err := cache.Aside(ctx, key, &badge, cache.CatalogBadgeTTL, func() error {
		if err := r.db.WithContext(ctx).First(&badge, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Catalog badge", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &badge, nil
}

func (r *catalogBadgeRepository) ListActive(ctx context.Context) ([]models.CatalogBadge, error) {
	var badges []models.CatalogBadge

	err := cache.Aside(ctx, cache.CatalogListKey, &badges, cache.CatalogBadgeTTL, func() error {
		if err := r.db.WithContext(ctx).
			Where("is_active = ?", true).
			Order("category, level, name").
			Find(&badges).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return badges, nil
}

func (r *catalogBadgeRepository) List(ctx context.Context, limit, offset int) ([]models.CatalogBadge, error) {
	var badges []models.CatalogBadge
	if err := r.db.WithContext(ctx).
		Order("id").
		Limit(limit).
		Offset(offset).
		Find(&badges).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return badges, nil
}

func (r *catalogBadgeRepository) Create(ctx context.Context, badge *models.CatalogBadge) error {
	if !models.ValidBadgeCategory(badge.Category) {
		return models.NewValidationError("unknown badge category")
	}
	if !models.ValidBadgeLevel(badge.Level) {
		return models.NewValidationError("unknown badge level")
	}
	if err := r.db.WithContext(ctx).Create(badge).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.CatalogListKey)
	return nil
}

func (r *catalogBadgeRepository) SetActive(ctx context.Context, id uint, active bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.CatalogBadge{}).
		Where("id = ?", id).
		Update("is_active", active)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Catalog badge", id)
	}
	cache.InvalidateCatalogBadge(ctx, id)
	return nil
}
