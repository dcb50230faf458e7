package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"laurel/internal/cache"
	"laurel/internal/featureflags"
	"laurel/internal/models"
	"laurel/internal/observability"
	"laurel/internal/repository"
	"laurel/internal/validation"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PromotionService drives the reservation ledger and the promotion lifecycle.
//
// Every mutating operation runs in one transaction holding a row lock on the
// promotion, so the status update and its badge cascade commit or roll back
// together. The "one unconsumed reservation per badge" invariant is enforced
// twice: an in-transaction pre-check that can name the offending badge, and
// the partial unique index that settles races the pre-check cannot see.
type PromotionService struct {
	db            *gorm.DB
	promotionRepo repository.PromotionRepository
	templateRepo  repository.TemplateRepository
	badgeRepo     repository.BadgeApplicationRepository
	userRepo      repository.UserRepository
	flags         *featureflags.Manager
}

// NewPromotionService returns a new PromotionService.
func NewPromotionService(
	db *gorm.DB,
	promotionRepo repository.PromotionRepository,
	templateRepo repository.TemplateRepository,
	badgeRepo repository.BadgeApplicationRepository,
	userRepo repository.UserRepository,
	flags *featureflags.Manager,
) *PromotionService {
	return &PromotionService{
		db:            db,
		promotionRepo: promotionRepo,
		templateRepo:  templateRepo,
		badgeRepo:     badgeRepo,
		userRepo:      userRepo,
		flags:         flags,
	}
}

// canModifyDraft reports whether the caller may mutate a draft promotion.
// Normally only the owner can; with delegated pledging enabled, admins may
// assemble drafts on the owner's behalf.
func (s *PromotionService) canModifyDraft(caller *models.User, promotion *models.Promotion) bool {
	if caller.ID == promotion.CreatedByUserID {
		return true
	}
	return caller.IsAdmin && s.flags.Enabled(featureflags.FlagDelegatedPledging, caller.ID)
}

// CreatePromotion opens a draft promotion for the caller bound to an active
// template matching the caller's path and current level.
func (s *PromotionService) CreatePromotion(ctx context.Context, callerID, templateID uint) (*models.Promotion, error) {
	template, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if !template.IsActive {
		return nil, models.NewValidationError("template is not active")
	}

	caller, err := s.userRepo.GetByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if caller.Path != template.Path {
		return nil, models.NewValidationError(fmt.Sprintf("template targets the %s path, caller is on %s", template.Path, caller.Path))
	}
	if caller.CurrentLevel != template.FromLevel {
		return nil, models.NewValidationError(fmt.Sprintf("template starts from level %q, caller is at %q", template.FromLevel, caller.CurrentLevel))
	}

	promotion := &models.Promotion{
		TemplateID:      template.ID,
		CreatedByUserID: callerID,
		Path:            template.Path,
		FromLevel:       template.FromLevel,
		ToLevel:         template.ToLevel,
		Status:          models.PromotionStatusDraft,
	}
	if err := s.promotionRepo.Create(ctx, promotion); err != nil {
		return nil, err
	}
	return s.promotionRepo.GetByIDWithBadges(ctx, promotion.ID)
}

// GetPromotion loads a promotion with its template and reservations.
func (s *PromotionService) GetPromotion(ctx context.Context, id uint) (*models.Promotion, error) {
	return s.promotionRepo.GetByIDWithBadges(ctx, id)
}

// ListMine returns the caller's promotions, newest first.
func (s *PromotionService) ListMine(ctx context.Context, callerID uint, limit, offset int) ([]models.Promotion, error) {
	return s.promotionRepo.ListByOwner(ctx, callerID, limit, offset)
}

// ListSubmitted returns the review queue, oldest submission first.
func (s *PromotionService) ListSubmitted(ctx context.Context, limit, offset int) ([]models.Promotion, error) {
	return s.promotionRepo.ListByStatus(ctx, models.PromotionStatusSubmitted, limit, offset)
}

// AddBadges reserves accepted badge applications for a draft promotion.
// The whole batch succeeds or the whole batch fails; the first offending
// badge id is named in the error. Reserving does not change any badge
// application's status.
func (s *PromotionService) AddBadges(ctx context.Context, callerID, promotionID uint, badgeIDs []uint) (int, error) {
	span, ctx := observability.NewSpan(ctx, "ledger.add_badges")
	defer span.End()

	if err := validation.ValidateBadgeBatch(badgeIDs); err != nil {
		return 0, models.NewValidationError(err.Error())
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		promotion, err := s.lockDraftForCaller(tx, promotionID, callerID, "add badges to")
		if err != nil {
			return err
		}

		for _, id := range badgeIDs {
			var app models.BadgeApplication
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&app, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return models.NewNotFoundError("Badge application", id)
				}
				return err
			}
			if app.OwnerID != promotion.CreatedByUserID {
				return models.NewForbiddenError(fmt.Sprintf("badge application %d does not belong to the promotion owner", id))
			}
			if app.Status != models.BadgeApplicationStatusAccepted {
				return models.NewConflictError(id, fmt.Sprintf("not reservable in status %q", app.Status))
			}

			var existing models.PromotionBadge
			err := tx.Where("badge_application_id = ? AND consumed = ?", id, false).First(&existing).Error
			switch {
			case err == nil:
				observability.ReservationConflicts.Inc()
				if existing.PromotionID == promotionID {
					return models.NewConflictError(id, "already reserved by this promotion")
				}
				return models.NewConflictError(id, "already reserved by another promotion")
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}

			reservation := models.PromotionBadge{
				PromotionID:        promotionID,
				BadgeApplicationID: id,
				AssignedByUserID:   callerID,
			}
			if err := tx.Create(&reservation).Error; err != nil {
				// The partial unique index is the authority on races the
				// pre-check missed.
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					observability.ReservationConflicts.Inc()
					return models.NewConflictError(id, "reservation race lost")
				}
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		span.SetError(txErr)
		return 0, txErr
	}

	observability.ReservationsActive.Add(float64(len(badgeIDs)))
	return len(badgeIDs), nil
}

// RemoveBadges releases reservations from a draft promotion. Every id must be
// reserved by this promotion; otherwise the whole batch fails.
func (s *PromotionService) RemoveBadges(ctx context.Context, callerID, promotionID uint, badgeIDs []uint) (int, error) {
	span, ctx := observability.NewSpan(ctx, "ledger.remove_badges")
	defer span.End()

	if err := validation.ValidateBadgeBatch(badgeIDs); err != nil {
		return 0, models.NewValidationError(err.Error())
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.lockDraftForCaller(tx, promotionID, callerID, "remove badges from"); err != nil {
			return err
		}

		for _, id := range badgeIDs {
			var reservation models.PromotionBadge
			err := tx.Where("promotion_id = ? AND badge_application_id = ? AND consumed = ?", promotionID, id, false).
				First(&reservation).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return models.NewNotFoundError("Reservation for badge application", id)
				}
				return err
			}
			if err := tx.Where("promotion_id = ? AND badge_application_id = ?", promotionID, id).
				Delete(&models.PromotionBadge{}).Error; err != nil {
				return err
			}
			// Draft reservations never advance badge status, but releasing
			// must restore a soft-locked badge if it finds one.
			if err := tx.Model(&models.BadgeApplication{}).
				Where("id = ? AND status = ?", id, models.BadgeApplicationStatusUsedInPromotion).
				Update("status", models.BadgeApplicationStatusAccepted).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		span.SetError(txErr)
		return 0, txErr
	}

	observability.ReservationsActive.Sub(float64(len(badgeIDs)))
	return len(badgeIDs), nil
}

// Evaluate recomputes eligibility for a promotion from its current unconsumed
// reservations. Pure read; never cached.
func (s *PromotionService) Evaluate(ctx context.Context, promotionID uint) (*models.EvaluationResult, error) {
	promotion, err := s.promotionRepo.GetByIDWithBadges(ctx, promotionID)
	if err != nil {
		return nil, err
	}
	template := promotion.Template
	if template == nil {
		template, err = s.templateRepo.GetByID(ctx, promotion.TemplateID)
		if err != nil {
			return nil, err
		}
	}

	result := Evaluate(template.Rules, ReservedBadgesOf(promotion))

	outcome := "unsatisfied"
	if result.AllSatisfied {
		outcome = "satisfied"
	}
	observability.EligibilityEvaluations.WithLabelValues(outcome).Inc()
	return &result, nil
}

// Submit moves a draft to submitted. The eligibility gate re-runs inside the
// transaction; on success every reserved badge application is soft-locked as
// used_in_promotion.
func (s *PromotionService) Submit(ctx context.Context, callerID, promotionID uint) (*models.Promotion, error) {
	span, ctx := observability.NewSpan(ctx, "promotion.submit")
	defer span.End()

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		promotion, err := s.lockPromotion(tx, promotionID)
		if err != nil {
			return err
		}
		if promotion.CreatedByUserID != callerID {
			return models.NewForbiddenError("only the promotion owner can submit it")
		}
		if promotion.Status != models.PromotionStatusDraft {
			return models.NewInvalidStateError("submit", promotion.Status)
		}

		var template models.PromotionTemplate
		if err := tx.First(&template, promotion.TemplateID).Error; err != nil {
			return err
		}

		reservations, err := reservationsOf(tx, promotionID)
		if err != nil {
			return err
		}
		badges := make([]ReservedBadge, 0, len(reservations))
		badgeAppIDs := make([]uint, 0, len(reservations))
		for _, pb := range reservations {
			if pb.BadgeApplication == nil || pb.BadgeApplication.CatalogBadge == nil {
				return fmt.Errorf("reservation %d/%d is missing its badge application", pb.PromotionID, pb.BadgeApplicationID)
			}
			badges = append(badges, ReservedBadge{
				BadgeApplicationID: pb.BadgeApplicationID,
				Category:           pb.BadgeApplication.CatalogBadge.Category,
				Level:              pb.BadgeApplication.CatalogBadge.Level,
			})
			badgeAppIDs = append(badgeAppIDs, pb.BadgeApplicationID)
		}

		result := Evaluate(template.Rules, badges)
		if !result.AllSatisfied {
			observability.EligibilityEvaluations.WithLabelValues("unsatisfied").Inc()
			return models.NewValidationFailedError(result.Unsatisfied())
		}
		observability.EligibilityEvaluations.WithLabelValues("satisfied").Inc()

		now := time.Now()
		if err := tx.Model(&models.Promotion{}).Where("id = ?", promotionID).Updates(map[string]any{
			"status":       models.PromotionStatusSubmitted,
			"submitted_at": now,
		}).Error; err != nil {
			return err
		}
		if len(badgeAppIDs) > 0 {
			if err := tx.Model(&models.BadgeApplication{}).
				Where("id IN ?", badgeAppIDs).
				Update("status", models.BadgeApplicationStatusUsedInPromotion).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		span.SetError(txErr)
		return nil, txErr
	}

	observability.PromotionTransitions.WithLabelValues(string(models.PromotionStatusSubmitted)).Inc()
	return s.promotionRepo.GetByIDWithBadges(ctx, promotionID)
}

// Approve resolves a submitted promotion in the owner's favor. Reservations
// become consumed for good and the owner advances to the template's target
// level.
func (s *PromotionService) Approve(ctx context.Context, reviewerID, promotionID uint, note string) (*models.Promotion, error) {
	span, ctx := observability.NewSpan(ctx, "promotion.approve")
	defer span.End()

	if err := validation.ValidateReviewReason(note, false); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := s.requireAdmin(ctx, reviewerID); err != nil {
		return nil, err
	}

	var consumed int64
	var ownerID uint
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		promotion, err := s.lockPromotion(tx, promotionID)
		if err != nil {
			return err
		}
		if promotion.Status != models.PromotionStatusSubmitted {
			return models.NewInvalidStateError("approve", promotion.Status)
		}
		ownerID = promotion.CreatedByUserID

		now := time.Now()
		if err := tx.Model(&models.Promotion{}).Where("id = ?", promotionID).Updates(map[string]any{
			"status":              models.PromotionStatusApproved,
			"reviewed_by_user_id": reviewerID,
			"reviewed_at":         now,
			"review_reason":       note,
		}).Error; err != nil {
			return err
		}

		res := tx.Model(&models.PromotionBadge{}).
			Where("promotion_id = ?", promotionID).
			Update("consumed", true)
		if res.Error != nil {
			return res.Error
		}
		consumed = res.RowsAffected

		// The owner moves up one level. Skip silently if their path or level
		// changed since the draft was opened; the approval still stands.
		if err := tx.Model(&models.User{}).
			Where("id = ? AND path = ? AND current_level = ?", promotion.CreatedByUserID, promotion.Path, promotion.FromLevel).
			Update("current_level", promotion.ToLevel).Error; err != nil {
			return err
		}
		return nil
	})
	if txErr != nil {
		span.SetError(txErr)
		return nil, txErr
	}

	cache.InvalidateUser(ctx, ownerID)
	observability.PromotionTransitions.WithLabelValues(string(models.PromotionStatusApproved)).Inc()
	observability.ReservationsActive.Sub(float64(consumed))
	return s.promotionRepo.GetByIDWithBadges(ctx, promotionID)
}

// Reject resolves a submitted promotion against the owner. All reservations
// are deleted and their badge applications revert to accepted, free to be
// pledged to a new promotion.
func (s *PromotionService) Reject(ctx context.Context, reviewerID, promotionID uint, reason string) (*models.Promotion, error) {
	span, ctx := observability.NewSpan(ctx, "promotion.reject")
	defer span.End()

	if err := validation.ValidateReviewReason(reason, true); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := s.requireAdmin(ctx, reviewerID); err != nil {
		return nil, err
	}

	var released int
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		promotion, err := s.lockPromotion(tx, promotionID)
		if err != nil {
			return err
		}
		if promotion.Status != models.PromotionStatusSubmitted {
			return models.NewInvalidStateError("reject", promotion.Status)
		}

		var reservations []models.PromotionBadge
		if err := tx.Where("promotion_id = ?", promotionID).Find(&reservations).Error; err != nil {
			return err
		}
		badgeAppIDs := make([]uint, 0, len(reservations))
		for _, pb := range reservations {
			badgeAppIDs = append(badgeAppIDs, pb.BadgeApplicationID)
		}
		released = len(badgeAppIDs)

		if err := tx.Where("promotion_id = ?", promotionID).Delete(&models.PromotionBadge{}).Error; err != nil {
			return err
		}
		if len(badgeAppIDs) > 0 {
			if err := tx.Model(&models.BadgeApplication{}).
				Where("id IN ?", badgeAppIDs).
				Update("status", models.BadgeApplicationStatusAccepted).Error; err != nil {
				return err
			}
		}

		now := time.Now()
		return tx.Model(&models.Promotion{}).Where("id = ?", promotionID).Updates(map[string]any{
			"status":              models.PromotionStatusRejected,
			"reviewed_by_user_id": reviewerID,
			"reviewed_at":         now,
			"review_reason":       reason,
		}).Error
	})
	if txErr != nil {
		span.SetError(txErr)
		return nil, txErr
	}

	observability.PromotionTransitions.WithLabelValues(string(models.PromotionStatusRejected)).Inc()
	observability.ReservationsActive.Sub(float64(released))
	return s.promotionRepo.GetByIDWithBadges(ctx, promotionID)
}

// Delete removes a draft promotion and its reservations. Submitted and
// resolved promotions are permanent records and cannot be deleted.
func (s *PromotionService) Delete(ctx context.Context, callerID, promotionID uint) error {
	var released int64
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		promotion, err := s.lockPromotion(tx, promotionID)
		if err != nil {
			return err
		}
		if promotion.CreatedByUserID != callerID {
			return models.NewForbiddenError("only the promotion owner can delete it")
		}
		if promotion.Status != models.PromotionStatusDraft {
			return models.NewInvalidStateError("delete", promotion.Status)
		}

		res := tx.Where("promotion_id = ?", promotionID).Delete(&models.PromotionBadge{})
		if res.Error != nil {
			return res.Error
		}
		released = res.RowsAffected
		return tx.Delete(&models.Promotion{}, promotionID).Error
	})
	if txErr != nil {
		return txErr
	}

	observability.ReservationsActive.Sub(float64(released))
	return nil
}

func (s *PromotionService) requireAdmin(ctx context.Context, userID uint) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.IsAdmin {
		return models.NewForbiddenError("administrator role required")
	}
	return nil
}

// lockPromotion takes a FOR UPDATE row lock on the promotion, serializing
// concurrent lifecycle transitions on it.
func (s *PromotionService) lockPromotion(tx *gorm.DB, promotionID uint) (*models.Promotion, error) {
	var promotion models.Promotion
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&promotion, promotionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Promotion", promotionID)
		}
		return nil, err
	}
	return &promotion, nil
}

// lockDraftForCaller locks the promotion and checks the ledger preconditions
// shared by AddBadges and RemoveBadges.
func (s *PromotionService) lockDraftForCaller(tx *gorm.DB, promotionID, callerID uint, operation string) (*models.Promotion, error) {
	promotion, err := s.lockPromotion(tx, promotionID)
	if err != nil {
		return nil, err
	}

	var caller models.User
	if err := tx.First(&caller, callerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", callerID)
		}
		return nil, err
	}
	if !s.canModifyDraft(&caller, promotion) {
		return nil, models.NewForbiddenError("only the promotion owner can modify its badges")
	}
	if promotion.Status != models.PromotionStatusDraft {
		return nil, models.NewInvalidStateError(operation, promotion.Status)
	}
	return promotion, nil
}

// reservationsOf loads the unconsumed reservations for a promotion. Callers
// hold the promotion row lock; that lock, not this query, serializes access.
func reservationsOf(tx *gorm.DB, promotionID uint) ([]models.PromotionBadge, error) {
	var reservations []models.PromotionBadge
	err := tx.Preload("BadgeApplication").
		Preload("BadgeApplication.CatalogBadge").
		Where("promotion_id = ? AND consumed = ?", promotionID, false).
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}
