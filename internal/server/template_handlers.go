package server

import (
	"laurel/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetActiveTemplates handles GET /api/templates
// @Summary List active promotion templates
// @Tags templates
// @Produce json
// @Success 200 {array} models.PromotionTemplate
// @Router /templates [get]
func (s *Server) GetActiveTemplates(c *fiber.Ctx) error {
	templates, err := s.templateRepo.ListActive(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(templates)
}

// GetTemplate handles GET /api/templates/:id
// @Summary Get a promotion template
// @Tags templates
// @Produce json
// @Param id path int true "Template ID"
// @Success 200 {object} models.PromotionTemplate
// @Failure 404 {object} models.ErrorResponse
// @Router /templates/{id} [get]
func (s *Server) GetTemplate(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	template, err := s.templateRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(template)
}

// CreateTemplate handles POST /api/admin/templates. Templates are created
// inactive; rules can still be edited until activation.
// @Summary Create a promotion template
// @Tags admin
// @Accept json
// @Produce json
// @Param request body object{path=string,from_level=string,to_level=string,rules=[]models.TemplateRule} true "Template definition"
// @Success 201 {object} models.PromotionTemplate
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/templates [post]
func (s *Server) CreateTemplate(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Path      models.CareerPath    `json:"path"`
		FromLevel string               `json:"from_level"`
		ToLevel   string               `json:"to_level"`
		Rules     models.TemplateRules `json:"rules"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if !models.ValidCareerPath(req.Path) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unknown career path"))
	}
	if req.FromLevel == "" || req.ToLevel == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("from_level and to_level are required"))
	}
	if req.FromLevel == req.ToLevel {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("from_level and to_level must differ"))
	}

	template := &models.PromotionTemplate{
		Path:            req.Path,
		FromLevel:       req.FromLevel,
		ToLevel:         req.ToLevel,
		Rules:           req.Rules,
		IsActive:        false,
		CreatedByUserID: &userID,
	}
	if err := s.templateRepo.Create(c.Context(), template); err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(template)
}

// GetAllTemplates handles GET /api/admin/templates
// @Summary List all promotion templates
// @Tags admin
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} models.PromotionTemplate
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/templates [get]
func (s *Server) GetAllTemplates(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	templates, err := s.templateRepo.List(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(templates)
}

// ActivateTemplate handles POST /api/admin/templates/:id/activate
// @Summary Activate a promotion template
// @Tags admin
// @Produce json
// @Param id path int true "Template ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/templates/{id}/activate [post]
func (s *Server) ActivateTemplate(c *fiber.Ctx) error {
	return s.setTemplateActive(c, true)
}

// DeactivateTemplate handles POST /api/admin/templates/:id/deactivate.
// Promotions already drafted against the template keep working; only new
// drafts are blocked.
// @Summary Deactivate a promotion template
// @Tags admin
// @Produce json
// @Param id path int true "Template ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/templates/{id}/deactivate [post]
func (s *Server) DeactivateTemplate(c *fiber.Ctx) error {
	return s.setTemplateActive(c, false)
}

func (s *Server) setTemplateActive(c *fiber.Ctx, active bool) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.templateRepo.SetActive(c.Context(), id, active); err != nil {
		return respondServiceError(c, err)
	}

	message := "Template deactivated"
	if active {
		message = "Template activated"
	}
	return c.JSON(fiber.Map{"message": message})
}

// UpdateTemplateRules handles PUT /api/admin/templates/:id/rules
// @Summary Replace a template's rule set
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Template ID"
// @Param request body object{rules=[]models.TemplateRule} true "New rules"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/templates/{id}/rules [put]
func (s *Server) UpdateTemplateRules(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Rules models.TemplateRules `json:"rules"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.templateRepo.UpdateRules(c.Context(), id, req.Rules); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Template rules updated"})
}
