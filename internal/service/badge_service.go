package service

import (
	"context"
	"fmt"
	"time"

	"laurel/internal/models"
	"laurel/internal/repository"
	"laurel/internal/validation"
)

// BadgeService handles badge applications: users claim catalog badges with
// evidence, admins accept or reject the claims. Only accepted applications
// can later be pledged to a promotion.
type BadgeService struct {
	badgeRepo   repository.BadgeApplicationRepository
	catalogRepo repository.CatalogBadgeRepository
	userRepo    repository.UserRepository
}

// NewBadgeService returns a new BadgeService.
func NewBadgeService(
	badgeRepo repository.BadgeApplicationRepository,
	catalogRepo repository.CatalogBadgeRepository,
	userRepo repository.UserRepository,
) *BadgeService {
	return &BadgeService{
		badgeRepo:   badgeRepo,
		catalogRepo: catalogRepo,
		userRepo:    userRepo,
	}
}

// Apply opens a draft application for a catalog badge.
func (s *BadgeService) Apply(ctx context.Context, callerID, catalogBadgeID uint, evidence string) (*models.BadgeApplication, error) {
	if err := validation.ValidateEvidence(evidence); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	badge, err := s.catalogRepo.GetByID(ctx, catalogBadgeID)
	if err != nil {
		return nil, err
	}
	if !badge.IsActive {
		return nil, models.NewValidationError("catalog badge is not active")
	}

	app := &models.BadgeApplication{
		OwnerID:        callerID,
		CatalogBadgeID: badge.ID,
		Evidence:       evidence,
		Status:         models.BadgeApplicationStatusDraft,
	}
	if err := s.badgeRepo.Create(ctx, app); err != nil {
		return nil, err
	}
	return s.badgeRepo.GetByID(ctx, app.ID)
}

// UpdateEvidence edits a draft application's evidence.
func (s *BadgeService) UpdateEvidence(ctx context.Context, callerID, applicationID uint, evidence string) (*models.BadgeApplication, error) {
	if err := validation.ValidateEvidence(evidence); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	app, err := s.ownedApplication(ctx, callerID, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != models.BadgeApplicationStatusDraft {
		return nil, models.NewValidationError(fmt.Sprintf("cannot edit application in status %q", app.Status))
	}

	app.Evidence = evidence
	if err := s.badgeRepo.Save(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// SubmitApplication sends a draft application for admin review.
func (s *BadgeService) SubmitApplication(ctx context.Context, callerID, applicationID uint) (*models.BadgeApplication, error) {
	app, err := s.ownedApplication(ctx, callerID, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != models.BadgeApplicationStatusDraft {
		return nil, models.NewValidationError(fmt.Sprintf("cannot submit application in status %q", app.Status))
	}

	now := time.Now()
	app.Status = models.BadgeApplicationStatusSubmitted
	app.SubmittedAt = &now
	if err := s.badgeRepo.Save(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// Review decides a submitted application. accept moves it to accepted,
// making it reservable; otherwise it is rejected with the given notes.
func (s *BadgeService) Review(ctx context.Context, reviewerID, applicationID uint, accept bool, notes string) (*models.BadgeApplication, error) {
	if err := validation.ValidateReviewReason(notes, !accept); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	reviewer, err := s.userRepo.GetByID(ctx, reviewerID)
	if err != nil {
		return nil, err
	}
	if !reviewer.IsAdmin {
		return nil, models.NewForbiddenError("administrator role required")
	}

	app, err := s.badgeRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != models.BadgeApplicationStatusSubmitted {
		return nil, models.NewValidationError(fmt.Sprintf("cannot review application in status %q", app.Status))
	}

	now := time.Now()
	if accept {
		app.Status = models.BadgeApplicationStatusAccepted
	} else {
		app.Status = models.BadgeApplicationStatusRejected
	}
	app.ReviewedByUserID = &reviewerID
	app.ReviewedAt = &now
	app.ReviewNotes = notes
	if err := s.badgeRepo.Save(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// DeleteDraft removes an application that was never submitted.
func (s *BadgeService) DeleteDraft(ctx context.Context, callerID, applicationID uint) error {
	app, err := s.ownedApplication(ctx, callerID, applicationID)
	if err != nil {
		return err
	}
	if app.Status != models.BadgeApplicationStatusDraft {
		return models.NewValidationError(fmt.Sprintf("cannot delete application in status %q", app.Status))
	}
	return s.badgeRepo.Delete(ctx, applicationID)
}

// ListMine returns the caller's applications.
func (s *BadgeService) ListMine(ctx context.Context, callerID uint, limit, offset int) ([]models.BadgeApplication, error) {
	return s.badgeRepo.ListByOwner(ctx, callerID, limit, offset)
}

// ListReviewQueue returns submitted applications awaiting a decision.
func (s *BadgeService) ListReviewQueue(ctx context.Context, limit, offset int) ([]models.BadgeApplication, error) {
	return s.badgeRepo.ListByStatus(ctx, models.BadgeApplicationStatusSubmitted, limit, offset)
}

func (s *BadgeService) ownedApplication(ctx context.Context, callerID, applicationID uint) (*models.BadgeApplication, error) {
	app, err := s.badgeRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.OwnerID != callerID {
		return nil, models.NewForbiddenError("only the application owner can do that")
	}
	return app, nil
}
