package server

import (
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreateGroup handles POST /admin/groups. Groups are curated by admins only;
// there is no self-serve group creation.
func (s *Server) CreateGroup(c *fiber.Ctx) error {
	var req struct {
		Title       string `json:"title" form:"title"`
		Slug        string `json:"slug" form:"slug"`
		Description string `json:"description" form:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Title == "" || req.Slug == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Title and slug are required"))
	}

	group := &models.Group{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
	}
	if err := s.groupRepo.Create(c.Context(), group); err != nil {
		if models.CodeOf(err) == models.CodeValidation {
			return models.RespondWithError(c, fiber.StatusConflict, err)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Status(fiber.StatusCreated).JSON(group)
}

// ClearFeedCache handles POST /admin/cache/clear: drop the front-page
// snapshot so the next request rebuilds it.
func (s *Server) ClearFeedCache(c *fiber.Ctx) error {
	s.feedService.ClearCache()
	return c.JSON(fiber.Map{
		"message": "Feed cache cleared",
	})
}
