package server

import (
	"laurel/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreateBadgeApplication handles POST /api/badge-applications
// @Summary Apply for a badge
// @Tags badge-applications
// @Accept json
// @Produce json
// @Param request body object{catalog_badge_id=int,evidence=string} true "Application"
// @Success 201 {object} models.BadgeApplication
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /badge-applications [post]
func (s *Server) CreateBadgeApplication(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		CatalogBadgeID uint   `json:"catalog_badge_id"`
		Evidence       string `json:"evidence"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.CatalogBadgeID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("catalog_badge_id is required"))
	}

	application, err := s.badgeService.Apply(c.Context(), userID, req.CatalogBadgeID, req.Evidence)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(application)
}

// GetMyBadgeApplications handles GET /api/badge-applications/me
// @Summary List own badge applications
// @Tags badge-applications
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} models.BadgeApplication
// @Security BearerAuth
// @Router /badge-applications/me [get]
func (s *Server) GetMyBadgeApplications(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	page := parsePagination(c, 20)

	applications, err := s.badgeService.ListMine(c.Context(), userID, page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(applications)
}

// SubmitBadgeApplication handles POST /api/badge-applications/:id/submit
// @Summary Submit a badge application for review
// @Tags badge-applications
// @Produce json
// @Param id path int true "Application ID"
// @Success 200 {object} models.BadgeApplication
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /badge-applications/{id}/submit [post]
func (s *Server) SubmitBadgeApplication(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	application, err := s.badgeService.SubmitApplication(c.Context(), userID, id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(application)
}

// UpdateBadgeApplication handles PUT /api/badge-applications/:id
// @Summary Update a draft application's evidence
// @Tags badge-applications
// @Accept json
// @Produce json
// @Param id path int true "Application ID"
// @Param request body object{evidence=string} true "Evidence"
// @Success 200 {object} models.BadgeApplication
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /badge-applications/{id} [put]
func (s *Server) UpdateBadgeApplication(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Evidence string `json:"evidence"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	application, err := s.badgeService.UpdateEvidence(c.Context(), userID, id, req.Evidence)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(application)
}

// DeleteBadgeApplication handles DELETE /api/badge-applications/:id
// @Summary Delete a draft application
// @Tags badge-applications
// @Produce json
// @Param id path int true "Application ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /badge-applications/{id} [delete]
func (s *Server) DeleteBadgeApplication(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.badgeService.DeleteDraft(c.Context(), userID, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Badge application deleted"})
}

// GetBadgeReviewQueue handles GET /api/admin/badge-applications
// @Summary List submitted badge applications awaiting review
// @Tags admin
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} models.BadgeApplication
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/badge-applications [get]
func (s *Server) GetBadgeReviewQueue(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	applications, err := s.badgeService.ListReviewQueue(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(applications)
}

// AcceptBadgeApplication handles POST /api/admin/badge-applications/:id/accept
// @Summary Accept a badge application
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Application ID"
// @Param request body object{notes=string} false "Review notes"
// @Success 200 {object} models.BadgeApplication
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/badge-applications/{id}/accept [post]
func (s *Server) AcceptBadgeApplication(c *fiber.Ctx) error {
	return s.reviewBadgeApplication(c, true)
}

// RejectBadgeApplication handles POST /api/admin/badge-applications/:id/reject
// @Summary Reject a badge application
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Application ID"
// @Param request body object{notes=string} true "Review notes"
// @Success 200 {object} models.BadgeApplication
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/badge-applications/{id}/reject [post]
func (s *Server) RejectBadgeApplication(c *fiber.Ctx) error {
	return s.reviewBadgeApplication(c, false)
}

func (s *Server) reviewBadgeApplication(c *fiber.Ctx, accept bool) error {
	reviewerID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Notes string `json:"notes"`
	}
	if len(c.Body()) > 0 {
		if parseErr := c.BodyParser(&req); parseErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
	}

	application, err := s.badgeService.Review(c.Context(), reviewerID, id, accept, req.Notes)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(application)
}
