// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"log"
	"time"

	_ "laurel/docs" // swagger docs
	"laurel/internal/bootstrap"
	"laurel/internal/config"
	"laurel/internal/featureflags"
	"laurel/internal/middleware"
	"laurel/internal/models"
	"laurel/internal/repository"
	"laurel/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config           *config.Config
	db               *gorm.DB
	redis            *redis.Client
	app              *fiber.App
	promMiddleware   *fiberprometheus.FiberPrometheus
	userRepo         repository.UserRepository
	catalogRepo      repository.CatalogBadgeRepository
	badgeRepo        repository.BadgeApplicationRepository
	templateRepo     repository.TemplateRepository
	promotionRepo    repository.PromotionRepository
	featureFlags     *featureflags.Manager
	badgeService     *service.BadgeService
	promotionService *service.PromotionService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(cfg)
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and
// optionally performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	middleware.InitMiddleware(cfg, redisClient)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("laurel-api"),
		userRepo:       repository.NewUserRepository(db),
		catalogRepo:    repository.NewCatalogBadgeRepository(db),
		badgeRepo:      repository.NewBadgeApplicationRepository(db),
		templateRepo:   repository.NewTemplateRepository(db),
		promotionRepo:  repository.NewPromotionRepository(db),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	server.badgeService = service.NewBadgeService(server.badgeRepo, server.catalogRepo, server.userRepo)
	server.promotionService = service.NewPromotionService(
		db,
		server.promotionRepo,
		server.templateRepo,
		server.badgeRepo,
		server.userRepo,
		server.featureFlags,
	)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}
	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before middlewares that can short-circuit (e.g. limiter) so
	// browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)
	api.Get("/", s.HealthCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Laurel Backend Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", middleware.AuthRequired, s.Logout)

	// Public catalog and template reads
	catalog := api.Group("/catalog")
	catalog.Get("/", s.GetCatalog)
	catalog.Get("/:id", s.GetCatalogBadge)

	templates := api.Group("/templates")
	templates.Get("/", s.GetActiveTemplates)
	templates.Get("/:id", s.GetTemplate)

	// Protected routes
	protected := api.Group("", middleware.AuthRequired)

	// User routes
	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Get("/", s.AdminRequired(), s.GetAllUsers)

	// Badge application routes
	badges := protected.Group("/badge-applications")
	badges.Post("/", middleware.RateLimit(
		s.redis, 10, time.Minute, "badge_apply"), s.CreateBadgeApplication)
	badges.Get("/me", s.GetMyBadgeApplications)
	badges.Post("/:id/submit", s.SubmitBadgeApplication)
	badges.Put("/:id", s.UpdateBadgeApplication)
	badges.Delete("/:id", s.DeleteBadgeApplication)

	// Promotion routes
	promotions := protected.Group("/promotions")
	promotions.Post("/", s.CreatePromotion)
	promotions.Get("/me", s.GetMyPromotions)
	// Specific /:id/:resource routes BEFORE generic /:id route
	promotions.Post("/:id/badges", s.AddPromotionBadges)
	promotions.Delete("/:id/badges", s.RemovePromotionBadges)
	promotions.Get("/:id/evaluation", s.EvaluatePromotion)
	promotions.Post("/:id/submit", s.SubmitPromotion)
	promotions.Get("/:id", s.GetPromotion)
	promotions.Delete("/:id", s.DeletePromotion)

	// Admin routes
	admin := protected.Group("/admin", s.AdminRequired())
	admin.Get("/feature-flags", s.GetFeatureFlags)

	adminCatalog := admin.Group("/catalog")
	adminCatalog.Post("/", s.CreateCatalogBadge)
	adminCatalog.Post("/:id/activate", s.ActivateCatalogBadge)
	adminCatalog.Post("/:id/deactivate", s.DeactivateCatalogBadge)

	adminBadges := admin.Group("/badge-applications")
	adminBadges.Get("/", s.GetBadgeReviewQueue)
	adminBadges.Post("/:id/accept", s.AcceptBadgeApplication)
	adminBadges.Post("/:id/reject", s.RejectBadgeApplication)

	adminTemplates := admin.Group("/templates")
	adminTemplates.Post("/", s.CreateTemplate)
	adminTemplates.Get("/", s.GetAllTemplates)
	adminTemplates.Post("/:id/activate", s.ActivateTemplate)
	adminTemplates.Post("/:id/deactivate", s.DeactivateTemplate)
	adminTemplates.Put("/:id/rules", s.UpdateTemplateRules)

	adminPromotions := admin.Group("/promotions")
	adminPromotions.Get("/", s.GetSubmittedPromotions)
	adminPromotions.Post("/:id/approve", s.ApprovePromotion)
	adminPromotions.Post("/:id/reject", s.RejectPromotion)
}

// HealthCheck is a legacy/simple alias for ReadinessCheck
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return s.ReadinessCheck(c)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status":  overallStatus,
		"version": "1.0.0",
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(uint)

		admin, err := s.isAdmin(c, userID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if !admin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}

		return c.Next()
	}
}

// GetFeatureFlags handles GET /api/admin/feature-flags
// @Summary Evaluated feature flags
// @Tags admin
// @Produce json
// @Success 200 {object} object{flags=map[string]bool}
// @Security BearerAuth
// @Router /admin/feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	return c.JSON(fiber.Map{
		"flags": s.featureFlags.Snapshot(userID),
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "Laurel API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
