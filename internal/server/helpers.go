package server

import (
	"errors"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"inkwell/internal/media"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// parsePage reads the ?page= query parameter. Anything unparseable falls back
// to page 1; range clamping happens in the feed service, never here.
func parsePage(c *fiber.Ctx) int {
	raw := c.Query("page")
	if raw == "" {
		return 1
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	return page
}

// parsePostID reads the :post_id path parameter.
func parsePostID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("post_id"), 10, 32)
	if err != nil {
		return 0, models.NewNotFoundError("Post", c.Params("post_id"))
	}
	return uint(id), nil
}

// parseGroupID reads an optional group form value. Empty means no group.
func parseGroupID(raw string) (*uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, models.NewFieldValidationError("group", "Unknown group")
	}
	groupID := uint(id)
	return &groupID, nil
}

// readUpload loads an optional multipart image field into memory for
// validation and storage. A missing field is not an error.
func readUpload(c *fiber.Ctx, field string) (*media.Upload, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}
	return uploadFromHeader(header)
}

func uploadFromHeader(header *multipart.FileHeader) (*media.Upload, error) {
	file, err := header.Open()
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &media.Upload{Filename: header.Filename, Content: content}, nil
}

// respondError maps a service error to its response. NotFound renders the
// custom 404 payload with the requested path, authorization failures bounce
// to the login prompt like every other protected page, everything unexpected
// the generic 500.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	switch models.CodeOf(err) {
	case models.CodeNotFound:
		return s.NotFound(c)
	case models.CodeValidation:
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	case models.CodeUnauthorized:
		return c.Redirect("/auth/login", fiber.StatusFound)
	default:
		return ErrorHandler(c, err)
	}
}

// formErrorResponse re-renders a form view with field errors at status 200,
// the way a server-rendered page would. Non-field errors pass through.
func formErrorResponse(c *fiber.Ctx, err error, values fiber.Map) error {
	if models.CodeOf(err) == models.CodeValidation {
		payload := fiber.Map{
			"errors": fiber.Map{},
			"values": values,
		}
		if field := models.FieldOf(err); field != "" {
			message := err.Error()
			var appErr *models.AppError
			if errors.As(err, &appErr) {
				message = appErr.Message
			}
			payload["errors"] = fiber.Map{field: message}
		}
		return c.Status(fiber.StatusOK).JSON(payload)
	}
	return err
}
