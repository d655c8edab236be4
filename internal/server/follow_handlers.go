package server

import (
	"github.com/gofiber/fiber/v2"
)

// Follow handles POST /:username/follow. Following an already-followed author
// or yourself changes nothing; either way the caller lands on the profile.
func (s *Server) Follow(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	username := c.Params("username")

	if err := s.followService.Follow(c.Context(), userID, username); err != nil {
		return s.respondError(c, err)
	}
	return c.Redirect("/"+username, fiber.StatusFound)
}

// Unfollow handles POST /:username/unfollow, the idempotent inverse.
func (s *Server) Unfollow(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	username := c.Params("username")

	if err := s.followService.Unfollow(c.Context(), userID, username); err != nil {
		return s.respondError(c, err)
	}
	return c.Redirect("/"+username, fiber.StatusFound)
}
