package server

import (
	"laurel/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetCatalog handles GET /api/catalog. Only active badges are listed.
// @Summary List active catalog badges
// @Tags catalog
// @Produce json
// @Success 200 {array} models.CatalogBadge
// @Router /catalog [get]
func (s *Server) GetCatalog(c *fiber.Ctx) error {
	badges, err := s.catalogRepo.ListActive(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(badges)
}

// GetCatalogBadge handles GET /api/catalog/:id
// @Summary Get a catalog badge
// @Tags catalog
// @Produce json
// @Param id path int true "Catalog badge ID"
// @Success 200 {object} models.CatalogBadge
// @Failure 404 {object} models.ErrorResponse
// @Router /catalog/{id} [get]
func (s *Server) GetCatalogBadge(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	badge, err := s.catalogRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(badge)
}

// CreateCatalogBadge handles POST /api/admin/catalog
// @Summary Create a catalog badge
// @Tags admin
// @Accept json
// @Produce json
// @Param request body object{name=string,description=string,icon=string,category=string,level=string} true "Badge definition"
// @Success 201 {object} models.CatalogBadge
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/catalog [post]
func (s *Server) CreateCatalogBadge(c *fiber.Ctx) error {
	var req struct {
		Name        string               `json:"name"`
		Description string               `json:"description"`
		Icon        string               `json:"icon"`
		Category    models.BadgeCategory `json:"category"`
		Level       models.BadgeLevel    `json:"level"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Name == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Badge name is required"))
	}

	badge := &models.CatalogBadge{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Category:    req.Category,
		Level:       req.Level,
		IsActive:    true,
	}
	if err := s.catalogRepo.Create(c.Context(), badge); err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(badge)
}

// ActivateCatalogBadge handles POST /api/admin/catalog/:id/activate
// @Summary Activate a catalog badge
// @Tags admin
// @Produce json
// @Param id path int true "Catalog badge ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/catalog/{id}/activate [post]
func (s *Server) ActivateCatalogBadge(c *fiber.Ctx) error {
	return s.setCatalogBadgeActive(c, true)
}

// DeactivateCatalogBadge handles POST /api/admin/catalog/:id/deactivate.
// Existing applications and reservations are untouched; the badge just
// stops accepting new applications.
// @Summary Deactivate a catalog badge
// @Tags admin
// @Produce json
// @Param id path int true "Catalog badge ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/catalog/{id}/deactivate [post]
func (s *Server) DeactivateCatalogBadge(c *fiber.Ctx) error {
	return s.setCatalogBadgeActive(c, false)
}

func (s *Server) setCatalogBadgeActive(c *fiber.Ctx, active bool) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.catalogRepo.SetActive(c.Context(), id, active); err != nil {
		return respondServiceError(c, err)
	}

	message := "Catalog badge deactivated"
	if active {
		message = "Catalog badge activated"
	}
	return c.JSON(fiber.Map{"message": message})
}
