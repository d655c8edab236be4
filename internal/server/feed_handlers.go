package server

import (
	"github.com/gofiber/fiber/v2"
)

// MainFeed handles GET /. Only the bare request with no page parameter goes
// through the listing cache; explicit page requests always hit the database.
func (s *Server) MainFeed(c *fiber.Ctx) error {
	cacheable := c.Query("page") == ""

	page, err := s.feedService.MainFeed(c.Context(), parsePage(c), cacheable)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"page": page,
	})
}

// GroupFeed handles GET /group/:slug
func (s *Server) GroupFeed(c *fiber.Ctx) error {
	result, err := s.feedService.GroupFeed(c.Context(), c.Params("slug"), parsePage(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(result)
}

// AuthorFeed handles GET /:username. Anonymous viewers get the profile too,
// just without an actionable follow button.
func (s *Server) AuthorFeed(c *fiber.Ctx) error {
	viewerID := s.optionalUserID(c)

	profile, err := s.feedService.AuthorFeed(c.Context(), c.Params("username"), parsePage(c), viewerID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(profile)
}

// FollowedFeed handles GET /follow: posts from authors the viewer follows.
func (s *Server) FollowedFeed(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	page, err := s.feedService.FollowedFeed(c.Context(), userID, parsePage(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"page": page,
	})
}
