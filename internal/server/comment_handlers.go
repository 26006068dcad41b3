package server

import (
	"fmt"

	"quill/internal/middleware"
	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AddComment attaches a comment to a post and returns to the detail page.
// An invalid form also lands on the detail page, just without a new comment;
// the detail view shows the unchanged thread either way.
func (s *Server) AddComment(c *fiber.Ctx) error {
	postID, err := paramID(c, "id")
	if err != nil {
		return handleServiceError(c, err)
	}

	_, err = s.commentService.Add(c.UserContext(), middleware.UserID(c), postID, c.FormValue("text"))
	if err != nil && !models.IsValidation(err) {
		return handleServiceError(c, err)
	}

	return c.Redirect(fmt.Sprintf("/posts/%d/", postID), fiber.StatusFound)
}
