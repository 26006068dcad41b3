package server

import (
	"strings"

	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SignupForm renders the registration form.
func (s *Server) SignupForm(c *fiber.Ctx) error {
	return renderPage(c, "users/signup.html", fiber.Map{})
}

// Signup registers a new user and sends them to the login page.
func (s *Server) Signup(c *fiber.Ctx) error {
	_, err := s.userService.Signup(c.UserContext(), service.SignupInput{
		Username: c.FormValue("username"),
		Email:    c.FormValue("email"),
		Password: c.FormValue("password"),
	})
	if err != nil {
		if models.IsValidation(err) {
			return renderPage(c, "users/signup.html", fiber.Map{
				"errors":   models.ValidationFields(err),
				"username": c.FormValue("username"),
				"email":    c.FormValue("email"),
			})
		}
		return handleServiceError(c, err)
	}

	return c.Redirect(middleware.LoginPath, fiber.StatusFound)
}

// LoginForm renders the login form, keeping the next parameter for the
// post-login redirect.
func (s *Server) LoginForm(c *fiber.Ctx) error {
	return renderPage(c, "users/login.html", fiber.Map{
		"next": c.Query("next"),
	})
}

// safeNext keeps redirects on-site. Anything that is not a local absolute
// path falls back to the home page.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	return next
}

// Login checks credentials, sets the session cookie and redirects to the
// page the browser originally asked for.
func (s *Server) Login(c *fiber.Ctx) error {
	user, err := s.userService.Authenticate(c.UserContext(), c.FormValue("username"), c.FormValue("password"))
	if err != nil {
		return renderPage(c, "users/login.html", fiber.Map{
			"errors": []models.FieldError{
				{Field: "__all__", Message: "Invalid username or password"},
			},
			"username": c.FormValue("username"),
			"next":     c.FormValue("next"),
		})
	}

	token, err := middleware.IssueSession(s.config.SessionSecret, user.ID)
	if err != nil {
		return handleServiceError(c, models.NewInternalError(err))
	}
	c.Cookie(middleware.SessionCookie(token))

	next := c.FormValue("next")
	if next == "" {
		next = c.Query("next")
	}
	return c.Redirect(safeNext(next), fiber.StatusFound)
}

// Logout clears the session and returns to the home page.
func (s *Server) Logout(c *fiber.Ctx) error {
	c.Cookie(middleware.ExpiredSessionCookie())
	return c.Redirect("/", fiber.StatusFound)
}
