package server

import (
	"strconv"

	"quill/internal/models"
	"quill/internal/pagination"

	"github.com/gofiber/fiber/v2"
)

// renderPage emits a named page with its template context. The frontend owns
// the markup; the server ships data.
func renderPage(c *fiber.Ctx, template string, context fiber.Map) error {
	return c.JSON(fiber.Map{
		"template": template,
		"context":  context,
	})
}

// pageNumber reads the ?page= query parameter.
func pageNumber(c *fiber.Ctx) int {
	return pagination.ParsePageParam(c.Query("page"))
}

// paramID parses a numeric route parameter.
func paramID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewNotFoundError("post", raw)
	}
	return uint(id), nil
}

// formGroupID parses the optional group field of a post form. An empty value
// means no group.
func formGroupID(c *fiber.Ctx) (*uint, error) {
	raw := c.FormValue("group")
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, models.NewFieldValidationError([]models.FieldError{
			{Field: "group", Message: "Select a valid group"},
		})
	}
	groupID := uint(id)
	return &groupID, nil
}

// handleServiceError maps service errors to HTTP responses.
func handleServiceError(c *fiber.Ctx, err error) error {
	switch {
	case models.IsNotFound(err):
		return models.RespondWithError(c, fiber.StatusNotFound, err)
	case models.IsValidation(err):
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	case models.IsForbidden(err):
		return models.RespondWithError(c, fiber.StatusForbidden, err)
	default:
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
}
