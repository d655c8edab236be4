package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AddComment handles POST /:username/:post_id/comment. Whether the comment
// was stored or rejected as empty, the caller lands back on the detail page;
// only valid comments persist.
func (s *Server) AddComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	username := c.Params("username")

	postID, err := parsePostID(c)
	if err != nil {
		return s.respondError(c, err)
	}

	text := c.FormValue("text")
	_, err = s.contentService.AddComment(c.Context(), service.AddCommentInput{
		CallerID:       userID,
		PostID:         postID,
		AuthorUsername: username,
		Text:           text,
	})
	if err != nil && models.CodeOf(err) != models.CodeValidation {
		return s.respondError(c, err)
	}

	return c.Redirect(postDetailPath(username, postID), fiber.StatusFound)
}
