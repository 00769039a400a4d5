package readybox

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/gifty-backend/internal/user/usertest"
)

func makeReadyBoxApp(t *testing.T) *fiber.App {
	t.Helper()
	f := newFixture(t)
	app := fiber.New()
	NewHandler(f.svc).RegisterRoutes(app.Group("/api"), usertest.Auth)
	return app
}

func send(t *testing.T, app *fiber.App, method, path, body, role string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set(usertest.HeaderUserID, "1")
		req.Header.Set(usertest.HeaderRole, role)
	}
	res, err := app.Test(req)
	require.NoError(t, err)
	raw, _ := io.ReadAll(res.Body)
	return res, raw
}

func TestReadyBoxes_AdminLifecycle(t *testing.T) {
	app := makeReadyBoxApp(t)

	res, _ := send(t, app, http.MethodPost, "/api/readyboxes", `{"name":"X","giftBoxId":1}`, "customer")
	assert.Equal(t, fiber.StatusForbidden, res.StatusCode)
	res, _ = send(t, app, http.MethodPost, "/api/readyboxes", `{"name":"X","giftBoxId":1}`, "")
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)

	res, raw := send(t, app, http.MethodPost, "/api/readyboxes", `{"name":""}`, "admin")
	require.Equal(t, fiber.StatusBadRequest, res.StatusCode)
	assert.Contains(t, string(raw), "giftBoxId")

	res, raw = send(t, app, http.MethodPost, "/api/readyboxes", `{"name":"X","giftBoxId":42}`, "admin")
	require.Equal(t, fiber.StatusBadRequest, res.StatusCode)
	assert.Contains(t, string(raw), "gift box not found")

	res, raw = send(t, app, http.MethodPost, "/api/readyboxes",
		`{"name":"Valentine","giftBoxId":1,"items":[{"productId":1,"quantity":2}]}`, "admin")
	require.Equal(t, fiber.StatusCreated, res.StatusCode, string(raw))
	var created View
	require.NoError(t, json.Unmarshal(raw, &created))
	assert.True(t, created.IsActive)
	assert.True(t, created.TotalPrice.Equal(decimal.NewFromInt(29)))

	res, raw = send(t, app, http.MethodPut, "/api/readyboxes/1", `{"isActive":false}`, "admin")
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	var updated View
	require.NoError(t, json.Unmarshal(raw, &updated))
	assert.False(t, updated.IsActive)
	assert.Equal(t, "Valentine", updated.Name)

	res, raw = send(t, app, http.MethodGet, "/api/readyboxes", "", "")
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.JSONEq(t, `[]`, string(raw))

	res, raw = send(t, app, http.MethodGet, "/api/readyboxes/all", "", "admin")
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	var all []View
	require.NoError(t, json.Unmarshal(raw, &all))
	assert.Len(t, all, 1)

	res, _ = send(t, app, http.MethodGet, "/api/readyboxes/all", "", "customer")
	assert.Equal(t, fiber.StatusForbidden, res.StatusCode)

	res, raw = send(t, app, http.MethodGet, "/api/readyboxes/1", "", "")
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	var one map[string]any
	require.NoError(t, json.Unmarshal(raw, &one))
	items := one["items"].([]any)
	assert.Equal(t, "Rose Bouquet", items[0].(map[string]any)["product"].(map[string]any)["name"])

	res, _ = send(t, app, http.MethodDelete, "/api/readyboxes/1", "", "admin")
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	res, _ = send(t, app, http.MethodDelete, "/api/readyboxes/1", "", "admin")
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode)
	res, _ = send(t, app, http.MethodGet, "/api/readyboxes/1", "", "")
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode)
	res, _ = send(t, app, http.MethodGet, "/api/readyboxes/x", "", "")
	assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
}
