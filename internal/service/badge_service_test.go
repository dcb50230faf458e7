package service

import (
	"context"
	"errors"
	"testing"

	"laurel/internal/models"
)

type badgeRepoStub struct {
	getByIDFn      func(context.Context, uint) (*models.BadgeApplication, error)
	getByIDsFn     func(context.Context, []uint) ([]models.BadgeApplication, error)
	listByOwnerFn  func(context.Context, uint, int, int) ([]models.BadgeApplication, error)
	listByStatusFn func(context.Context, models.BadgeApplicationStatus, int, int) ([]models.BadgeApplication, error)
	createFn       func(context.Context, *models.BadgeApplication) error
	saveFn         func(context.Context, *models.BadgeApplication) error
	deleteFn       func(context.Context, uint) error
}

func (s *badgeRepoStub) GetByID(ctx context.Context, id uint) (*models.BadgeApplication, error) {
	return s.getByIDFn(ctx, id)
}
func (s *badgeRepoStub) GetByIDs(ctx context.Context, ids []uint) ([]models.BadgeApplication, error) {
	return s.getByIDsFn(ctx, ids)
}
func (s *badgeRepoStub) ListByOwner(ctx context.Context, ownerID uint, limit, offset int) ([]models.BadgeApplication, error) {
	return s.listByOwnerFn(ctx, ownerID, limit, offset)
}
func (s *badgeRepoStub) ListByStatus(ctx context.Context, status models.BadgeApplicationStatus, limit, offset int) ([]models.BadgeApplication, error) {
	return s.listByStatusFn(ctx, status, limit, offset)
}
func (s *badgeRepoStub) Create(ctx context.Context, app *models.BadgeApplication) error {
	return s.createFn(ctx, app)
}
func (s *badgeRepoStub) Save(ctx context.Context, app *models.BadgeApplication) error {
	return s.saveFn(ctx, app)
}
func (s *badgeRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

type catalogRepoStub struct {
	getByIDFn    func(context.Context, uint) (*models.CatalogBadge, error)
	listActiveFn func(context.Context) ([]models.CatalogBadge, error)
	listFn       func(context.Context, int, int) ([]models.CatalogBadge, error)
	createFn     func(context.Context, *models.CatalogBadge) error
	setActiveFn  func(context.Context, uint, bool) error
}

func (s *catalogRepoStub) GetByID(ctx context.Context, id uint) (*models.CatalogBadge, error) {
	return s.getByIDFn(ctx, id)
}
func (s *catalogRepoStub) ListActive(ctx context.Context) ([]models.CatalogBadge, error) {
	return s.listActiveFn(ctx)
}
func (s *catalogRepoStub) List(ctx context.Context, limit, offset int) ([]models.CatalogBadge, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *catalogRepoStub) Create(ctx context.Context, badge *models.CatalogBadge) error {
	return s.createFn(ctx, badge)
}
func (s *catalogRepoStub) SetActive(ctx context.Context, id uint, active bool) error {
	return s.setActiveFn(ctx, id, active)
}

type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
	listFn          func(context.Context, int, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}

func noopBadgeRepo() *badgeRepoStub {
	return &badgeRepoStub{
		getByIDFn: func(context.Context, uint) (*models.BadgeApplication, error) {
			return &models.BadgeApplication{}, nil
		},
		getByIDsFn: func(context.Context, []uint) ([]models.BadgeApplication, error) { return nil, nil },
		listByOwnerFn: func(context.Context, uint, int, int) ([]models.BadgeApplication, error) {
			return nil, nil
		},
		listByStatusFn: func(context.Context, models.BadgeApplicationStatus, int, int) ([]models.BadgeApplication, error) {
			return nil, nil
		},
		createFn: func(context.Context, *models.BadgeApplication) error { return nil },
		saveFn:   func(context.Context, *models.BadgeApplication) error { return nil },
		deleteFn: func(context.Context, uint) error { return nil },
	}
}

func noopCatalogRepo() *catalogRepoStub {
	return &catalogRepoStub{
		getByIDFn: func(context.Context, uint) (*models.CatalogBadge, error) {
			return &models.CatalogBadge{ID: 1, IsActive: true}, nil
		},
		listActiveFn: func(context.Context) ([]models.CatalogBadge, error) { return nil, nil },
		listFn:       func(context.Context, int, int) ([]models.CatalogBadge, error) { return nil, nil },
		createFn:     func(context.Context, *models.CatalogBadge) error { return nil },
		setActiveFn:  func(context.Context, uint, bool) error { return nil },
	}
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:       func(context.Context, uint) (*models.User, error) { return &models.User{}, nil },
		getByEmailFn:    func(context.Context, string) (*models.User, error) { return &models.User{}, nil },
		getByUsernameFn: func(context.Context, string) (*models.User, error) { return &models.User{}, nil },
		createFn:        func(context.Context, *models.User) error { return nil },
		updateFn:        func(context.Context, *models.User) error { return nil },
		listFn:          func(context.Context, int, int) ([]models.User, error) { return nil, nil },
	}
}

func expectCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != code {
		t.Fatalf("expected %s app error, got %#v", code, err)
	}
}

func TestBadgeServiceApplyInactiveBadge(t *testing.T) {
	catalog := noopCatalogRepo()
	catalog.getByIDFn = func(context.Context, uint) (*models.CatalogBadge, error) {
		return &models.CatalogBadge{ID: 4, IsActive: false}, nil
	}

	svc := NewBadgeService(noopBadgeRepo(), catalog, noopUserRepo())
	_, err := svc.Apply(context.Background(), 1, 4, "evidence text")
	expectCode(t, err, "VALIDATION_ERROR")
}

func TestBadgeServiceApplyRequiresEvidence(t *testing.T) {
	svc := NewBadgeService(noopBadgeRepo(), noopCatalogRepo(), noopUserRepo())
	_, err := svc.Apply(context.Background(), 1, 4, "   ")
	expectCode(t, err, "VALIDATION_ERROR")
}

func TestBadgeServiceSubmitOwnerOnly(t *testing.T) {
	repo := noopBadgeRepo()
	repo.getByIDFn = func(context.Context, uint) (*models.BadgeApplication, error) {
		return &models.BadgeApplication{ID: 7, OwnerID: 2, Status: models.BadgeApplicationStatusDraft}, nil
	}

	svc := NewBadgeService(repo, noopCatalogRepo(), noopUserRepo())
	_, err := svc.SubmitApplication(context.Background(), 3, 7)
	expectCode(t, err, "FORBIDDEN")
}

func TestBadgeServiceSubmitDraftOnly(t *testing.T) {
	repo := noopBadgeRepo()
	repo.getByIDFn = func(context.Context, uint) (*models.BadgeApplication, error) {
		return &models.BadgeApplication{ID: 7, OwnerID: 3, Status: models.BadgeApplicationStatusAccepted}, nil
	}

	svc := NewBadgeService(repo, noopCatalogRepo(), noopUserRepo())
	_, err := svc.SubmitApplication(context.Background(), 3, 7)
	expectCode(t, err, "VALIDATION_ERROR")
}

func TestBadgeServiceSubmitStampsTime(t *testing.T) {
	var saved *models.BadgeApplication
	repo := noopBadgeRepo()
	repo.getByIDFn = func(context.Context, uint) (*models.BadgeApplication, error) {
		return &models.BadgeApplication{ID: 7, OwnerID: 3, Status: models.BadgeApplicationStatusDraft}, nil
	}
	repo.saveFn = func(_ context.Context, app *models.BadgeApplication) error {
		saved = app
		return nil
	}

	svc := NewBadgeService(repo, noopCatalogRepo(), noopUserRepo())
	app, err := svc.SubmitApplication(context.Background(), 3, 7)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if app.Status != models.BadgeApplicationStatusSubmitted || app.SubmittedAt == nil {
		t.Fatalf("unexpected application after submit: %+v", app)
	}
	if saved == nil {
		t.Fatal("expected Save to be called")
	}
}

func TestBadgeServiceReviewRequiresAdmin(t *testing.T) {
	users := noopUserRepo()
	users.getByIDFn = func(context.Context, uint) (*models.User, error) {
		return &models.User{ID: 9, IsAdmin: false}, nil
	}

	svc := NewBadgeService(noopBadgeRepo(), noopCatalogRepo(), users)
	_, err := svc.Review(context.Background(), 9, 7, true, "")
	expectCode(t, err, "FORBIDDEN")
}

func TestBadgeServiceReviewRejectNeedsNotes(t *testing.T) {
	users := noopUserRepo()
	users.getByIDFn = func(context.Context, uint) (*models.User, error) {
		return &models.User{ID: 9, IsAdmin: true}, nil
	}

	svc := NewBadgeService(noopBadgeRepo(), noopCatalogRepo(), users)
	_, err := svc.Review(context.Background(), 9, 7, false, "")
	expectCode(t, err, "VALIDATION_ERROR")
}

func TestBadgeServiceReviewAccept(t *testing.T) {
	users := noopUserRepo()
	users.getByIDFn = func(context.Context, uint) (*models.User, error) {
		return &models.User{ID: 9, IsAdmin: true}, nil
	}
	repo := noopBadgeRepo()
	repo.getByIDFn = func(context.Context, uint) (*models.BadgeApplication, error) {
		return &models.BadgeApplication{ID: 7, OwnerID: 3, Status: models.BadgeApplicationStatusSubmitted}, nil
	}

	svc := NewBadgeService(repo, noopCatalogRepo(), users)
	app, err := svc.Review(context.Background(), 9, 7, true, "solid evidence")
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if app.Status != models.BadgeApplicationStatusAccepted {
		t.Fatalf("expected accepted, got %q", app.Status)
	}
	if app.ReviewedByUserID == nil || *app.ReviewedByUserID != 9 || app.ReviewedAt == nil {
		t.Fatalf("reviewer fields not stamped: %+v", app)
	}
}

func TestBadgeServiceDeleteDraftOnly(t *testing.T) {
	repo := noopBadgeRepo()
	repo.getByIDFn = func(context.Context, uint) (*models.BadgeApplication, error) {
		return &models.BadgeApplication{ID: 7, OwnerID: 3, Status: models.BadgeApplicationStatusUsedInPromotion}, nil
	}

	svc := NewBadgeService(repo, noopCatalogRepo(), noopUserRepo())
	err := svc.DeleteDraft(context.Background(), 3, 7)
	expectCode(t, err, "VALIDATION_ERROR")
}
