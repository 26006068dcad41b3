// Package middleware provides authentication, logging and rate limiting
// middleware for the application.
package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// SessionCookieName is the HTTP-only cookie carrying the session token.
	SessionCookieName = "quill_session"
	// UserIDLocal is the Fiber locals key holding the authenticated user ID.
	UserIDLocal = "userID"
	// LoginPath is where unauthenticated browsers are sent.
	LoginPath = "/auth/login/"

	sessionLifetime = 14 * 24 * time.Hour
)

// IssueSession signs a session token for the given user.
func IssueSession(secret string, userID uint) (string, error) {
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(sessionLifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// SessionCookie wraps a signed token in the session cookie.
func SessionCookie(token string) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(sessionLifetime),
	}
}

// ExpiredSessionCookie returns a cookie that clears the session.
func ExpiredSessionCookie() *fiber.Cookie {
	return &fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-time.Hour),
	}
}

// userIDFromToken validates the token and extracts the subject user ID.
func userIDFromToken(secret, tokenString string) (uint, bool) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}
	subStr, ok := claims["sub"].(string)
	if !ok {
		return 0, false
	}
	userID, err := strconv.ParseUint(subStr, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(userID), true
}

// loginRedirectTarget appends the attempted path so login can send the
// browser back. The path goes through verbatim, not URL-encoded, matching the
// links templates expect.
func loginRedirectTarget(path string) string {
	return LoginPath + "?next=" + path
}

// CurrentUser resolves the session cookie if present and stores the user ID
// in locals. Anonymous requests pass through untouched.
func CurrentUser(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenString := c.Cookies(SessionCookieName); tokenString != "" {
			if userID, ok := userIDFromToken(secret, tokenString); ok {
				c.Locals(UserIDLocal, userID)
			}
		}
		return c.Next()
	}
}

// AuthRequired redirects anonymous requests to the login page with a next
// parameter. It expects CurrentUser to have run first.
func AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals(UserIDLocal) == nil {
			return c.Redirect(loginRedirectTarget(c.Path()), fiber.StatusFound)
		}
		return c.Next()
	}
}

// UserID returns the authenticated user ID from locals, or 0 for anonymous
// requests.
func UserID(c *fiber.Ctx) uint {
	if uid, ok := c.Locals(UserIDLocal).(uint); ok {
		return uid
	}
	return 0
}
