package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"quill/internal/config"
	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServer struct {
	srv   *Server
	app   *fiber.App
	db    *gorm.DB
	redis *miniredis.Miniredis
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	cfg := &config.Config{
		Port:                 "0",
		SessionSecret:        "test-session-secret-for-handlers",
		MediaRoot:            t.TempDir(),
		IndexCacheTTLSeconds: 20,
		Env:                  "test",
	}

	db := testutil.NewTestDB(t)
	mr, client := testutil.NewTestRedis(t)

	srv, err := NewServerWithDeps(cfg, db, client)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupMiddleware(app)
	srv.SetupRoutes(app)

	return &testServer{srv: srv, app: app, db: db, redis: mr}
}

// page is the decoded render payload.
type page struct {
	Template string                     `json:"template"`
	Context  map[string]json.RawMessage `json:"context"`
}

func (ts *testServer) get(t *testing.T, path string, cookie *http.Cookie) *http.Response {
	t.Helper()

	req := httptest.NewRequest("GET", path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (ts *testServer) postForm(t *testing.T, path string, form url.Values, cookie *http.Cookie) *http.Response {
	t.Helper()

	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodePage(t *testing.T, resp *http.Response) page {
	t.Helper()

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var p page
	require.NoError(t, json.Unmarshal(body, &p), "body: %s", body)
	return p
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

// signupAndLogin registers a user through the HTTP surface and returns their
// session cookie.
func (ts *testServer) signupAndLogin(t *testing.T, username string) *http.Cookie {
	t.Helper()

	resp := ts.postForm(t, "/auth/signup/", url.Values{
		"username": {username},
		"email":    {username + "@example.com"},
		"password": {"a long enough password"},
	}, nil)
	resp.Body.Close()
	require.Equal(t, fiber.StatusFound, resp.StatusCode)

	resp = ts.postForm(t, "/auth/login/", url.Values{
		"username": {username},
		"password": {"a long enough password"},
	}, nil)
	resp.Body.Close()
	require.Equal(t, fiber.StatusFound, resp.StatusCode)

	for _, cookie := range resp.Cookies() {
		if cookie.Name == middleware.SessionCookieName && cookie.Value != "" {
			return cookie
		}
	}
	t.Fatal("session cookie not set after login")
	return nil
}

func (ts *testServer) userByName(t *testing.T, username string) *models.User {
	t.Helper()

	var user models.User
	require.NoError(t, ts.db.Where("username = ?", username).First(&user).Error)
	return &user
}
