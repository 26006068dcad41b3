package server

import (
	"quill/internal/middleware"
	"quill/internal/pagination"

	"github.com/gofiber/fiber/v2"
)

// Feed renders posts by every author the viewer follows.
func (s *Server) Feed(c *fiber.Ctx) error {
	posts, err := s.followService.Feed(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return renderPage(c, "posts/follow.html", fiber.Map{
		"page_obj": pagination.Paginate(posts, pageNumber(c)),
	})
}

// Follow subscribes the viewer to an author and shows them their feed.
// Self-follows and repeat follows change nothing.
func (s *Server) Follow(c *fiber.Ctx) error {
	if err := s.followService.Follow(c.UserContext(), middleware.UserID(c), c.Params("username")); err != nil {
		return handleServiceError(c, err)
	}
	return c.Redirect("/follow/", fiber.StatusFound)
}

// Unfollow drops the subscription and returns to the home page.
func (s *Server) Unfollow(c *fiber.Ctx) error {
	if err := s.followService.Unfollow(c.UserContext(), middleware.UserID(c), c.Params("username")); err != nil {
		return handleServiceError(c, err)
	}
	return c.Redirect("/", fiber.StatusFound)
}
