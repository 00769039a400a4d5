package user

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func makeAuthApp(t *testing.T) (*fiber.App, *Service) {
	t.Helper()
	tokens := NewTokens(testSecret)
	service := NewService(NewInMemoryRepository(nil), tokens)
	app := fiber.New()
	api := app.Group("/api")
	NewHandler(service).RegisterRoutes(api, NewAuthMiddleware(testSecret))
	return app, service
}

func doJSON(t *testing.T, app *fiber.App, method, path, body, token string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := app.Test(req)
	require.NoError(t, err)
	defer res.Body.Close()

	out := map[string]any{}
	raw, _ := io.ReadAll(res.Body)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return res.StatusCode, out
}

func TestAuthRoutes_Registered(t *testing.T) {
	app, _ := makeAuthApp(t)

	routes := map[string]bool{}
	for _, grp := range app.Stack() {
		for _, r := range grp {
			routes[r.Method+" "+r.Path] = true
		}
	}
	for _, want := range []string{
		"POST /api/auth/register",
		"POST /api/auth/login",
		"GET /api/auth/me",
		"POST /api/auth/forgot-password",
		"POST /api/auth/reset-password",
	} {
		if !routes[want] {
			t.Fatalf("expected route %q to be registered", want)
		}
	}
}

func TestRegisterLoginMe(t *testing.T) {
	app, _ := makeAuthApp(t)

	status, body := doJSON(t, app, http.MethodPost, "/api/auth/register",
		`{"name":"Mai","email":"mai@example.com","password":"pw123"}`, "")
	require.Equal(t, fiber.StatusCreated, status)
	assert.NotEmpty(t, body["token"])
	u := body["user"].(map[string]any)
	assert.Equal(t, "customer", u["role"])
	assert.NotContains(t, u, "password")

	status, _ = doJSON(t, app, http.MethodPost, "/api/auth/register",
		`{"name":"Mai","email":"mai@example.com","password":"pw123"}`, "")
	assert.Equal(t, fiber.StatusConflict, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/auth/register", `{"email":"x@example.com"}`, "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/auth/login",
		`{"email":"mai@example.com","password":"wrong"}`, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body = doJSON(t, app, http.MethodPost, "/api/auth/login",
		`{"email":"mai@example.com","password":"pw123"}`, "")
	require.Equal(t, fiber.StatusOK, status)
	token := body["token"].(string)

	status, body = doJSON(t, app, http.MethodGet, "/api/auth/me", "", token)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "mai@example.com", body["email"])
	assert.NotContains(t, body, "password")
}

func TestMe_RejectsBadTokens(t *testing.T) {
	app, _ := makeAuthApp(t)

	status, body := doJSON(t, app, http.MethodGet, "/api/auth/me", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Invalid or expired token", body["message"])

	status, _ = doJSON(t, app, http.MethodGet, "/api/auth/me", "", "not-a-jwt")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	other, err := NewTokens("another-secret").Issue(User{ID: 1, Role: RoleAdmin})
	require.NoError(t, err)
	status, _ = doJSON(t, app, http.MethodGet, "/api/auth/me", "", other)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestForgotAndResetPassword(t *testing.T) {
	app, _ := makeAuthApp(t)

	status, _ := doJSON(t, app, http.MethodPost, "/api/auth/register",
		`{"name":"Ann","email":"ann@example.com","password":"old"}`, "")
	require.Equal(t, fiber.StatusCreated, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/auth/forgot-password", `{"email":"nobody@example.com"}`, "")
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body := doJSON(t, app, http.MethodPost, "/api/auth/forgot-password", `{"email":"ann@example.com"}`, "")
	require.Equal(t, fiber.StatusOK, status)
	resetToken := body["resetToken"].(string)

	// a reset token is not a session token
	status, _ = doJSON(t, app, http.MethodGet, "/api/auth/me", "", resetToken)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/auth/reset-password",
		`{"resetToken":"`+resetToken+`","newPassword":"new"}`, "")
	require.Equal(t, fiber.StatusOK, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/auth/login", `{"email":"ann@example.com","password":"old"}`, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	status, body = doJSON(t, app, http.MethodPost, "/api/auth/login", `{"email":"ann@example.com","password":"new"}`, "")
	require.Equal(t, fiber.StatusOK, status)

	// and a session token is not a reset token
	session := body["token"].(string)
	status, _ = doJSON(t, app, http.MethodPost, "/api/auth/reset-password",
		`{"resetToken":"`+session+`","newPassword":"x"}`, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestRequireAdmin(t *testing.T) {
	tokens := NewTokens(testSecret)
	app := fiber.New()
	app.Get("/admin", NewAuthMiddleware(testSecret), RequireAdmin, func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	customer, err := tokens.Issue(User{ID: 2, Role: RoleCustomer})
	require.NoError(t, err)
	admin, err := tokens.Issue(User{ID: 1, Role: RoleAdmin})
	require.NoError(t, err)

	status, body := doJSON(t, app, http.MethodGet, "/admin", "", customer)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "admin access required", body["message"])

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
}
