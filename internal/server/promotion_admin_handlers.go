package server

import (
	"laurel/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetSubmittedPromotions handles GET /api/admin/promotions
// @Summary List submitted promotions awaiting review
// @Tags admin
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} models.Promotion
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/promotions [get]
func (s *Server) GetSubmittedPromotions(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	promotions, err := s.promotionService.ListSubmitted(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(promotions)
}

// ApprovePromotion handles POST /api/admin/promotions/:id/approve. Approval
// consumes the promotion's reservations permanently.
// @Summary Approve a submitted promotion
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Promotion ID"
// @Param request body object{note=string} false "Optional review note"
// @Success 200 {object} models.Promotion
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/promotions/{id}/approve [post]
func (s *Server) ApprovePromotion(c *fiber.Ctx) error {
	reviewerID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Note string `json:"note"`
	}
	if len(c.Body()) > 0 {
		if parseErr := c.BodyParser(&req); parseErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
	}

	promotion, err := s.promotionService.Approve(c.Context(), reviewerID, id, req.Note)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(promotion)
}

// RejectPromotion handles POST /api/admin/promotions/:id/reject. A reason is
// mandatory; rejection releases the promotion's reservations.
// @Summary Reject a submitted promotion
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Promotion ID"
// @Param request body object{reason=string} true "Rejection reason"
// @Success 200 {object} models.Promotion
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/promotions/{id}/reject [post]
func (s *Server) RejectPromotion(c *fiber.Ctx) error {
	reviewerID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	promotion, err := s.promotionService.Reject(c.Context(), reviewerID, id, req.Reason)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(promotion)
}
