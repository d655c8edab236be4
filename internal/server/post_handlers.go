package server

import (
	"fmt"

	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// NewPostForm handles GET /new: the authoring form with the selectable groups.
func (s *Server) NewPostForm(c *fiber.Ctx) error {
	groups, err := s.groupRepo.List(c.Context())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"groups": groups,
		"values": fiber.Map{"text": "", "group": ""},
	})
}

// CreatePost handles POST /new. Success redirects to the main feed; invalid
// input re-renders the form with field errors. The freshly created post does
// not bust the listing cache, stale front pages within the TTL are accepted.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	text := c.FormValue("text")
	groupRaw := c.FormValue("group")
	values := fiber.Map{"text": text, "group": groupRaw}

	groupID, err := parseGroupID(groupRaw)
	if err != nil {
		return formErrorResponse(c, err, values)
	}
	upload, err := readUpload(c, "image")
	if err != nil {
		return s.respondError(c, err)
	}

	_, err = s.contentService.CreatePost(c.Context(), service.CreatePostInput{
		AuthorID: userID,
		Text:     text,
		GroupID:  groupID,
		Image:    upload,
	})
	if err != nil {
		if models.CodeOf(err) == models.CodeValidation {
			return formErrorResponse(c, err, values)
		}
		return s.respondError(c, err)
	}

	return c.Redirect("/", fiber.StatusFound)
}

// PostDetail handles GET /:username/:post_id. The post must belong to the
// named author; an id under somebody else's username is a 404, not a leak.
func (s *Server) PostDetail(c *fiber.Ctx) error {
	postID, err := parsePostID(c)
	if err != nil {
		return s.respondError(c, err)
	}

	detail, err := s.contentService.GetPost(c.Context(), postID, c.Params("username"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(detail)
}

// EditPostForm handles GET /:username/:post_id/edit. Only the author sees the
// form; everyone else bounces to the post detail page.
func (s *Server) EditPostForm(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	username := c.Params("username")

	postID, err := parsePostID(c)
	if err != nil {
		return s.respondError(c, err)
	}

	post, err := s.postRepo.GetByIDAndAuthor(c.Context(), postID, username)
	if err != nil {
		return s.respondError(c, err)
	}
	if post.AuthorID != userID {
		return c.Redirect(postDetailPath(username, postID), fiber.StatusFound)
	}

	groups, err := s.groupRepo.List(c.Context())
	if err != nil {
		return s.respondError(c, err)
	}

	group := ""
	if post.GroupID != nil {
		group = fmt.Sprintf("%d", *post.GroupID)
	}
	return c.JSON(fiber.Map{
		"groups": groups,
		"values": fiber.Map{"text": post.Text, "group": group, "image": post.Image},
	})
}

// EditPost handles POST /:username/:post_id/edit. Non-authors are redirected
// to the detail page with nothing changed; the publication date survives every
// edit untouched.
func (s *Server) EditPost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	username := c.Params("username")

	postID, err := parsePostID(c)
	if err != nil {
		return s.respondError(c, err)
	}

	text := c.FormValue("text")
	groupRaw := c.FormValue("group")
	values := fiber.Map{"text": text, "group": groupRaw}

	groupID, err := parseGroupID(groupRaw)
	if err != nil {
		return formErrorResponse(c, err, values)
	}
	upload, err := readUpload(c, "image")
	if err != nil {
		return s.respondError(c, err)
	}

	_, err = s.contentService.EditPost(c.Context(), service.EditPostInput{
		CallerID:       userID,
		PostID:         postID,
		AuthorUsername: username,
		Text:           text,
		GroupID:        groupID,
		Image:          upload,
	})
	if err != nil {
		if models.CodeOf(err) == models.CodeUnauthorized {
			return c.Redirect(postDetailPath(username, postID), fiber.StatusFound)
		}
		if models.CodeOf(err) == models.CodeValidation {
			return formErrorResponse(c, err, values)
		}
		return s.respondError(c, err)
	}

	return c.Redirect(postDetailPath(username, postID), fiber.StatusFound)
}

func postDetailPath(username string, postID uint) string {
	return fmt.Sprintf("/%s/%d", username, postID)
}
