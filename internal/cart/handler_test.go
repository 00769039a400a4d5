package cart

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

	"github.com/wichananm65/gifty-backend/internal/user/usertest"
)

func makeCartApp(t *testing.T) *fiber.App {
	t.Helper()
	f := newFixture(t, nil)
	app := fiber.New()
	NewHandler(f.svc).RegisterRoutes(app.Group("/api"), usertest.Auth)
	return app
}

func send(t *testing.T, app *fiber.App, method, path, body, userID string) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(usertest.HeaderUserID, userID)
	}
	res, err := app.Test(req)
	require.NoError(t, err)

	var out map[string]any
	raw, _ := io.ReadAll(res.Body)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return res, out
}

func TestCartRoutes_RequireAuth(t *testing.T) {
	app := makeCartApp(t)

	res, _ := send(t, app, http.MethodGet, "/api/cart", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
	res, _ = send(t, app, http.MethodPost, "/api/cart/add", `{"productId":1}`, "")
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}

func TestGetCart_EmptyForNewUser(t *testing.T) {
	app := makeCartApp(t)

	res, body := send(t, app, http.MethodGet, "/api/cart", "", "7")
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Equal(t, []any{}, body["items"])
	assert.Nil(t, body["giftBox"])
}

func TestAddToCart_DefaultsToOne(t *testing.T) {
	app := makeCartApp(t)

	res, body := send(t, app, http.MethodPost, "/api/cart/add", `{"productId":1}`, "7")
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	line := items[0].(map[string]any)
	assert.Equal(t, float64(1), line["quantity"])
	assert.Equal(t, "Teddy", line["product"].(map[string]any)["name"])

	_, body = send(t, app, http.MethodPost, "/api/cart/add", `{"productId":1,"quantity":2}`, "7")
	line = body["items"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(3), line["quantity"])

	// other users do not see it
	_, body = send(t, app, http.MethodGet, "/api/cart", "", "8")
	assert.Empty(t, body["items"])
}

func TestAddToCart_Errors(t *testing.T) {
	app := makeCartApp(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"missing product id", `{}`, fiber.StatusBadRequest},
		{"malformed", `{"productId":`, fiber.StatusBadRequest},
		{"unknown product", `{"productId":99}`, fiber.StatusBadRequest},
		{"inactive product", `{"productId":3}`, fiber.StatusBadRequest},
		{"zero quantity", `{"productId":1,"quantity":0}`, fiber.StatusBadRequest},
		{"decrement without cart", `{"productId":1,"quantity":-1}`, fiber.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, _ := send(t, app, http.MethodPost, "/api/cart/add", tt.body, "7")
			assert.Equal(t, tt.status, res.StatusCode)
		})
	}
}

func TestUpdateAndRemove(t *testing.T) {
	app := makeCartApp(t)

	res, _ := send(t, app, http.MethodPut, "/api/cart/update", `{"productId":1,"quantity":2}`, "7")
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode)

	send(t, app, http.MethodPost, "/api/cart/add", `{"productId":1}`, "7")
	send(t, app, http.MethodPost, "/api/cart/add", `{"productId":2}`, "7")

	res, body := send(t, app, http.MethodPut, "/api/cart/update", `{"productId":1,"quantity":4}`, "7")
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Equal(t, float64(4), body["items"].([]any)[0].(map[string]any)["quantity"])

	res, _ = send(t, app, http.MethodPut, "/api/cart/update", `{"productId":99,"quantity":1}`, "7")
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode)

	res, body = send(t, app, http.MethodPut, "/api/cart/update", `{"productId":1}`, "7")
	assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "quantity is required", body["message"])
	_, body = send(t, app, http.MethodGet, "/api/cart", "", "7")
	assert.Len(t, body["items"], 2)

	_, body = send(t, app, http.MethodPut, "/api/cart/update", `{"productId":1,"quantity":0}`, "7")
	assert.Len(t, body["items"], 1)

	res, body = send(t, app, http.MethodDelete, "/api/cart/remove/2", "", "7")
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Empty(t, body["items"])

	res, _ = send(t, app, http.MethodDelete, "/api/cart/remove/abc", "", "7")
	assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
}

func TestSetGiftBoxAndClear(t *testing.T) {
	app := makeCartApp(t)

	res, _ := send(t, app, http.MethodPut, "/api/cart/giftbox", `{"giftBoxId":9}`, "7")
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode)

	res, body := send(t, app, http.MethodPut, "/api/cart/giftbox", `{"giftBoxId":1}`, "7")
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Equal(t, "Small", body["giftBox"].(map[string]any)["name"])

	res, body = send(t, app, http.MethodDelete, "/api/cart/clear", "", "7")
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Equal(t, "Cart cleared", body["message"])

	_, body = send(t, app, http.MethodGet, "/api/cart", "", "7")
	assert.Nil(t, body["giftBox"])

	res, _ = send(t, app, http.MethodDelete, "/api/cart/clear", "", "7")
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
}
