package server

import (
	"laurel/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreatePromotion handles POST /api/promotions
// @Summary Start a promotion draft
// @Tags promotions
// @Accept json
// @Produce json
// @Param request body object{template_id=int} true "Template to draft against"
// @Success 201 {object} models.Promotion
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /promotions [post]
func (s *Server) CreatePromotion(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		TemplateID uint `json:"template_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.TemplateID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("template_id is required"))
	}

	promotion, err := s.promotionService.CreatePromotion(c.Context(), userID, req.TemplateID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(promotion)
}

// GetMyPromotions handles GET /api/promotions/me
// @Summary List own promotions
// @Tags promotions
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} models.Promotion
// @Security BearerAuth
// @Router /promotions/me [get]
func (s *Server) GetMyPromotions(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	page := parsePagination(c, 20)

	promotions, err := s.promotionService.ListMine(c.Context(), userID, page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(promotions)
}

// GetPromotion handles GET /api/promotions/:id. Owners see their own
// promotions; admins see everyone's.
// @Summary Get a promotion with its reservations
// @Tags promotions
// @Produce json
// @Param id path int true "Promotion ID"
// @Success 200 {object} models.Promotion
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /promotions/{id} [get]
func (s *Server) GetPromotion(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	promotion, err := s.promotionService.GetPromotion(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	if promotion.CreatedByUserID != userID {
		admin, adminErr := s.isAdminByUserID(c.Context(), userID)
		if adminErr != nil {
			return respondServiceError(c, adminErr)
		}
		if !admin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("You do not have access to this promotion"))
		}
	}
	return c.JSON(promotion)
}

// badgeBatchRequest is the body of both reservation endpoints.
type badgeBatchRequest struct {
	BadgeApplicationIDs []uint `json:"badge_application_ids"`
}

// AddPromotionBadges handles POST /api/promotions/:id/badges. The batch is
// all-or-nothing: one bad badge fails the whole request and reserves nothing.
// @Summary Reserve badges for a promotion
// @Tags promotions
// @Accept json
// @Produce json
// @Param id path int true "Promotion ID"
// @Param request body badgeBatchRequest true "Badge application IDs (1-100)"
// @Success 200 {object} object{reserved=int,message=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /promotions/{id}/badges [post]
func (s *Server) AddPromotionBadges(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req badgeBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	reserved, err := s.promotionService.AddBadges(c.Context(), userID, id, req.BadgeApplicationIDs)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"reserved": reserved,
		"message":  "Badges reserved",
	})
}

// RemovePromotionBadges handles DELETE /api/promotions/:id/badges
// @Summary Release badge reservations from a promotion
// @Tags promotions
// @Accept json
// @Produce json
// @Param id path int true "Promotion ID"
// @Param request body badgeBatchRequest true "Badge application IDs (1-100)"
// @Success 200 {object} object{released=int,message=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /promotions/{id}/badges [delete]
func (s *Server) RemovePromotionBadges(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req badgeBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	released, err := s.promotionService.RemoveBadges(c.Context(), userID, id, req.BadgeApplicationIDs)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"released": released,
		"message":  "Reservations released",
	})
}

// EvaluatePromotion handles GET /api/promotions/:id/evaluation. The result is
// computed fresh on every call and never stored.
// @Summary Evaluate a promotion against its template rules
// @Tags promotions
// @Produce json
// @Param id path int true "Promotion ID"
// @Success 200 {object} models.EvaluationResult
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /promotions/{id}/evaluation [get]
func (s *Server) EvaluatePromotion(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	promotion, err := s.promotionService.GetPromotion(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	if promotion.CreatedByUserID != userID {
		admin, adminErr := s.isAdminByUserID(c.Context(), userID)
		if adminErr != nil {
			return respondServiceError(c, adminErr)
		}
		if !admin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("You do not have access to this promotion"))
		}
	}

	result, err := s.promotionService.Evaluate(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}

// SubmitPromotion handles POST /api/promotions/:id/submit
// @Summary Submit a promotion for review
// @Tags promotions
// @Produce json
// @Param id path int true "Promotion ID"
// @Success 200 {object} models.Promotion
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /promotions/{id}/submit [post]
func (s *Server) SubmitPromotion(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	promotion, err := s.promotionService.Submit(c.Context(), userID, id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(promotion)
}

// DeletePromotion handles DELETE /api/promotions/:id
// @Summary Delete a promotion draft
// @Tags promotions
// @Produce json
// @Param id path int true "Promotion ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /promotions/{id} [delete]
func (s *Server) DeletePromotion(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.promotionService.Delete(c.Context(), userID, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Promotion deleted"})
}
