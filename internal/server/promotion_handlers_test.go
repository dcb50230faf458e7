package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"laurel/internal/config"
	"laurel/internal/database"
	"laurel/internal/featureflags"
	"laurel/internal/models"
	"laurel/internal/repository"
	"laurel/internal/service"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupPromotionTestServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	s := &Server{
		config:        &config.Config{JWTSecret: "test_secret"},
		db:            db,
		userRepo:      repository.NewUserRepository(db),
		catalogRepo:   repository.NewCatalogBadgeRepository(db),
		badgeRepo:     repository.NewBadgeApplicationRepository(db),
		templateRepo:  repository.NewTemplateRepository(db),
		promotionRepo: repository.NewPromotionRepository(db),
		featureFlags:  featureflags.NewManager(""),
	}
	s.badgeService = service.NewBadgeService(s.badgeRepo, s.catalogRepo, s.userRepo)
	s.promotionService = service.NewPromotionService(db, s.promotionRepo, s.templateRepo, s.badgeRepo, s.userRepo, s.featureFlags)
	return s, db
}

type promotionWebFixture struct {
	owner    models.User
	admin    models.User
	template models.PromotionTemplate
	badges   []models.BadgeApplication
}

func promotionWebSetup(t *testing.T, db *gorm.DB) promotionWebFixture {
	t.Helper()

	owner := models.User{Username: "nadia", Email: "nadia@example.com", Password: "x",
		Path: models.CareerPathTechnical, CurrentLevel: "engineer-2"}
	if err := db.Create(&owner).Error; err != nil {
		t.Fatalf("create owner: %v", err)
	}
	admin := models.User{Username: "boris", Email: "boris@example.com", Password: "x", IsAdmin: true}
	if err := db.Create(&admin).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}

	template := models.PromotionTemplate{
		Path: models.CareerPathTechnical, FromLevel: "engineer-2", ToLevel: "engineer-3",
		IsActive: true,
		Rules: models.TemplateRules{
			{Category: models.RuleCategoryTechnical, Level: models.BadgeLevelGold, Count: 2},
			{Category: models.RuleCategoryAny, Level: models.BadgeLevelSilver, Count: 1},
		},
	}
	if err := db.Create(&template).Error; err != nil {
		t.Fatalf("create template: %v", err)
	}

	catalog := []models.CatalogBadge{
		{Name: "Go Services", Category: models.BadgeCategoryTechnical, Level: models.BadgeLevelGold, IsActive: true},
		{Name: "Schema Design", Category: models.BadgeCategoryTechnical, Level: models.BadgeLevelGold, IsActive: true},
		{Name: "Roadmapping", Category: models.BadgeCategoryOrganizational, Level: models.BadgeLevelSilver, IsActive: true},
	}
	var badges []models.BadgeApplication
	for i := range catalog {
		if err := db.Create(&catalog[i]).Error; err != nil {
			t.Fatalf("create catalog badge: %v", err)
		}
		app := models.BadgeApplication{
			OwnerID:        owner.ID,
			CatalogBadgeID: catalog[i].ID,
			Status:         models.BadgeApplicationStatusAccepted,
			Evidence:       "earned it",
		}
		if err := db.Create(&app).Error; err != nil {
			t.Fatalf("create badge application: %v", err)
		}
		badges = append(badges, app)
	}

	return promotionWebFixture{owner: owner, admin: admin, template: template, badges: badges}
}

func jsonRequest(method, target string, payload any) *http.Request {
	var body *bytes.Reader
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func registerPromotionRoutes(app *fiber.App, s *Server, callerID uint) {
	asCaller := func(handler fiber.Handler) fiber.Handler {
		return func(c *fiber.Ctx) error {
			c.Locals("userID", callerID)
			return handler(c)
		}
	}
	app.Post("/promotions", asCaller(s.CreatePromotion))
	app.Get("/promotions/:id", asCaller(s.GetPromotion))
	app.Post("/promotions/:id/badges", asCaller(s.AddPromotionBadges))
	app.Delete("/promotions/:id/badges", asCaller(s.RemovePromotionBadges))
	app.Get("/promotions/:id/evaluation", asCaller(s.EvaluatePromotion))
	app.Post("/promotions/:id/submit", asCaller(s.SubmitPromotion))
	app.Delete("/promotions/:id", asCaller(s.DeletePromotion))
	app.Put("/admin/promotions/:id/approve", asCaller(s.ApprovePromotion))
	app.Put("/admin/promotions/:id/reject", asCaller(s.RejectPromotion))
}

func TestPromotionLifecycleOverHTTP(t *testing.T) {
	s, db := setupPromotionTestServer(t)
	fx := promotionWebSetup(t, db)

	ownerApp := fiber.New()
	registerPromotionRoutes(ownerApp, s, fx.owner.ID)
	adminApp := fiber.New()
	registerPromotionRoutes(adminApp, s, fx.admin.ID)

	// draft
	resp, _ := ownerApp.Test(jsonRequest(http.MethodPost, "/promotions", fiber.Map{"template_id": fx.template.ID}))
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create promotion: expected 201, got %d", resp.StatusCode)
	}
	var promotion models.Promotion
	if err := json.NewDecoder(resp.Body).Decode(&promotion); err != nil {
		t.Fatalf("decode promotion: %v", err)
	}

	// premature submit is a 422, not a silent success
	resp, _ = ownerApp.Test(jsonRequest(http.MethodPost, fmt.Sprintf("/promotions/%d/submit", promotion.ID), nil))
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("empty submit: expected 422, got %d", resp.StatusCode)
	}

	// reserve all three
	ids := []uint{fx.badges[0].ID, fx.badges[1].ID, fx.badges[2].ID}
	resp, _ = ownerApp.Test(jsonRequest(http.MethodPost, fmt.Sprintf("/promotions/%d/badges", promotion.ID),
		fiber.Map{"badge_application_ids": ids}))
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add badges: expected 200, got %d", resp.StatusCode)
	}

	// evaluation says all satisfied
	resp, _ = ownerApp.Test(jsonRequest(http.MethodGet, fmt.Sprintf("/promotions/%d/evaluation", promotion.ID), nil))
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("evaluate: expected 200, got %d", resp.StatusCode)
	}
	var evaluation models.EvaluationResult
	if err := json.NewDecoder(resp.Body).Decode(&evaluation); err != nil {
		t.Fatalf("decode evaluation: %v", err)
	}
	if !evaluation.AllSatisfied {
		t.Fatalf("expected all rules satisfied, got %+v", evaluation)
	}

	// submit
	resp, _ = ownerApp.Test(jsonRequest(http.MethodPost, fmt.Sprintf("/promotions/%d/submit", promotion.ID), nil))
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d", resp.StatusCode)
	}

	// non-admin approval is forbidden
	resp, _ = ownerApp.Test(jsonRequest(http.MethodPut, fmt.Sprintf("/admin/promotions/%d/approve", promotion.ID), nil))
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("owner approve: expected 403, got %d", resp.StatusCode)
	}

	// admin approves
	resp, _ = adminApp.Test(jsonRequest(http.MethodPut, fmt.Sprintf("/admin/promotions/%d/approve", promotion.ID),
		fiber.Map{"note": "well earned"}))
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin approve: expected 200, got %d", resp.StatusCode)
	}

	var owner models.User
	if err := db.First(&owner, fx.owner.ID).Error; err != nil {
		t.Fatalf("reload owner: %v", err)
	}
	if owner.CurrentLevel != "engineer-3" {
		t.Errorf("expected owner promoted to engineer-3, got %q", owner.CurrentLevel)
	}

	// approving twice reports the current status
	resp, _ = adminApp.Test(jsonRequest(http.MethodPut, fmt.Sprintf("/admin/promotions/%d/approve", promotion.ID), nil))
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("double approve: expected 409, got %d", resp.StatusCode)
	}
}

func TestPromotionConflictAndVisibilityOverHTTP(t *testing.T) {
	s, db := setupPromotionTestServer(t)
	fx := promotionWebSetup(t, db)

	stranger := models.User{Username: "casper", Email: "casper@example.com", Password: "x",
		Path: models.CareerPathTechnical, CurrentLevel: "engineer-2"}
	if err := db.Create(&stranger).Error; err != nil {
		t.Fatalf("create stranger: %v", err)
	}

	ownerApp := fiber.New()
	registerPromotionRoutes(ownerApp, s, fx.owner.ID)
	strangerApp := fiber.New()
	registerPromotionRoutes(strangerApp, s, stranger.ID)
	adminApp := fiber.New()
	registerPromotionRoutes(adminApp, s, fx.admin.ID)

	resp, _ := ownerApp.Test(jsonRequest(http.MethodPost, "/promotions", fiber.Map{"template_id": fx.template.ID}))
	defer func() { _ = resp.Body.Close() }()
	var promotion models.Promotion
	if err := json.NewDecoder(resp.Body).Decode(&promotion); err != nil {
		t.Fatalf("decode promotion: %v", err)
	}

	resp, _ = ownerApp.Test(jsonRequest(http.MethodPost, fmt.Sprintf("/promotions/%d/badges", promotion.ID),
		fiber.Map{"badge_application_ids": []uint{fx.badges[0].ID}}))
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reserve: expected 200, got %d", resp.StatusCode)
	}

	// reserving the same badge again conflicts and names the badge
	resp, _ = ownerApp.Test(jsonRequest(http.MethodPost, fmt.Sprintf("/promotions/%d/badges", promotion.ID),
		fiber.Map{"badge_application_ids": []uint{fx.badges[0].ID}}))
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("re-reserve: expected 409, got %d", resp.StatusCode)
	}
	var conflictBody struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&conflictBody); err != nil {
		t.Fatalf("decode conflict: %v", err)
	}
	if !strings.Contains(conflictBody.Error, fmt.Sprintf("%d", fx.badges[0].ID)) {
		t.Errorf("conflict message should name the badge, got %q", conflictBody.Error)
	}

	// strangers cannot see the promotion, admins can
	resp, _ = strangerApp.Test(jsonRequest(http.MethodGet, fmt.Sprintf("/promotions/%d", promotion.ID), nil))
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("stranger get: expected 403, got %d", resp.StatusCode)
	}
	resp, _ = adminApp.Test(jsonRequest(http.MethodGet, fmt.Sprintf("/promotions/%d", promotion.ID), nil))
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin get: expected 200, got %d", resp.StatusCode)
	}

	// oversized batches are rejected outright
	big := make([]uint, 101)
	for i := range big {
		big[i] = uint(i + 1)
	}
	resp, _ = ownerApp.Test(jsonRequest(http.MethodPost, fmt.Sprintf("/promotions/%d/badges", promotion.ID),
		fiber.Map{"badge_application_ids": big}))
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("oversized batch: expected 400, got %d", resp.StatusCode)
	}

	// rejection requires a reason
	resp, _ = ownerApp.Test(jsonRequest(http.MethodPost, fmt.Sprintf("/promotions/%d/badges", promotion.ID),
		fiber.Map{"badge_application_ids": []uint{fx.badges[1].ID, fx.badges[2].ID}}))
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reserve rest: expected 200, got %d", resp.StatusCode)
	}
	resp, _ = ownerApp.Test(jsonRequest(http.MethodPost, fmt.Sprintf("/promotions/%d/submit", promotion.ID), nil))
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d", resp.StatusCode)
	}
	resp, _ = adminApp.Test(jsonRequest(http.MethodPut, fmt.Sprintf("/admin/promotions/%d/reject", promotion.ID),
		fiber.Map{"reason": ""}))
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("blank reason reject: expected 400, got %d", resp.StatusCode)
	}
	resp, _ = adminApp.Test(jsonRequest(http.MethodPut, fmt.Sprintf("/admin/promotions/%d/reject", promotion.ID),
		fiber.Map{"reason": "not enough operational impact"}))
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reject: expected 200, got %d", resp.StatusCode)
	}

	// rejection released the badges back to accepted
	var app models.BadgeApplication
	if err := db.First(&app, fx.badges[0].ID).Error; err != nil {
		t.Fatalf("reload badge application: %v", err)
	}
	if app.Status != models.BadgeApplicationStatusAccepted {
		t.Errorf("expected badge released to accepted, got %q", app.Status)
	}
}
