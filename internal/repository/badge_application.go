package repository

import (
	"context"
	"errors"

	"laurel/internal/models"

	"gorm.io/gorm"
)

// BadgeApplicationRepository defines persistence operations for badge applications.
type BadgeApplicationRepository interface {
	GetByID(ctx context.Context, id uint) (*models.BadgeApplication, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.BadgeApplication, error)
	ListByOwner(ctx context.Context, ownerID uint, limit, offset int) ([]models.BadgeApplication, error)
	ListByStatus(ctx context.Context, status models.BadgeApplicationStatus, limit, offset int) ([]models.BadgeApplication, error)
	Create(ctx context.Context, app *models.BadgeApplication) error
	Save(ctx context.Context, app *models.BadgeApplication) error
	Delete(ctx context.Context, id uint) error
}

type badgeApplicationRepository struct {
	db *gorm.DB
}

// NewBadgeApplicationRepository returns a new BadgeApplicationRepository implementation.
func NewBadgeApplicationRepository(db *gorm.DB) BadgeApplicationRepository {
	return &badgeApplicationRepository{db: db}
}

func (r *badgeApplicationRepository) GetByID(ctx context.Context, id uint) (*models.BadgeApplication, error) {
	var app models.BadgeApplication
	if err := r.db.WithContext(ctx).
		Preload("CatalogBadge").
		First(&app, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Badge application", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &app, nil
}

func (r *badgeApplicationRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.BadgeApplication, error) {
	var apps []models.BadgeApplication
	if len(ids) == 0 {
		return apps, nil
	}
	if err := r.db.WithContext(ctx).
		Preload("CatalogBadge").
		Where("id IN ?", ids).
		Find(&apps).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return apps, nil
}

func (r *badgeApplicationRepository) ListByOwner(ctx context.Context, ownerID uint, limit, offset int) ([]models.BadgeApplication, error) {
	var apps []models.BadgeApplication
	if err := r.db.WithContext(ctx).
		Preload("CatalogBadge").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&apps).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return apps, nil
}

func (r *badgeApplicationRepository) ListByStatus(ctx context.Context, status models.BadgeApplicationStatus, limit, offset int) ([]models.BadgeApplication, error) {
	var apps []models.BadgeApplication
	if err := r.db.WithContext(ctx).
		Preload("CatalogBadge").
		Preload("Owner").
		Where("status = ?", status).
		Order("submitted_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&apps).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return apps, nil
}

func (r *badgeApplicationRepository) Create(ctx context.Context, app *models.BadgeApplication) error {
	if err := r.db.WithContext(ctx).Create(app).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *badgeApplicationRepository) Save(ctx context.Context, app *models.BadgeApplication) error {
	if err := r.db.WithContext(ctx).Save(app).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *badgeApplicationRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.BadgeApplication{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Badge application", id)
	}
	return nil
}
