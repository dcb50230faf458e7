package server

import (
	"laurel/internal/models"
	"laurel/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
// @Summary Get own profile
// @Tags users
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me. Only the username, career path,
// and current level can be changed here; email and admin status cannot.
// @Summary Update own profile
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{username=string,path=string,current_level=string} true "Profile fields"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Username     *string            `json:"username"`
		Path         *models.CareerPath `json:"path"`
		CurrentLevel *string            `json:"current_level"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	if req.Username != nil && *req.Username != user.Username {
		if vErr := validation.ValidateUsername(*req.Username); vErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(vErr.Error()))
		}
		taken, lookupErr := s.userRepo.GetByUsername(c.Context(), *req.Username)
		if lookupErr != nil {
			return respondServiceError(c, lookupErr)
		}
		if taken != nil {
			return models.RespondWithError(c, fiber.StatusConflict,
				models.NewValidationError("Username already taken"))
		}
		user.Username = *req.Username
	}
	if req.Path != nil {
		if *req.Path != "" && !models.ValidCareerPath(*req.Path) {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Unknown career path"))
		}
		user.Path = *req.Path
	}
	if req.CurrentLevel != nil {
		user.CurrentLevel = *req.CurrentLevel
	}

	if updateErr := s.userRepo.Update(c.Context(), user); updateErr != nil {
		return respondServiceError(c, updateErr)
	}
	return c.JSON(user)
}

// GetAllUsers handles GET /api/users (admin only)
// @Summary List users
// @Tags users
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} models.User
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users [get]
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	users, err := s.userRepo.List(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(users)
}
