// Package usertest fakes authentication for handler tests.
package usertest

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/wichananm65/gifty-backend/internal/user"
)

const (
	HeaderUserID = "X-User-ID"
	HeaderRole   = "X-User-Role"
)

// Auth injects a jwt.Token into locals when X-User-ID is present and
// responds 401 otherwise, mirroring the real middleware's contract.
func Auth(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Get(HeaderUserID))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid or expired token"})
	}
	role := c.Get(HeaderRole)
	if role == "" {
		role = user.RoleCustomer
	}
	c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"user_id": id, "role": role}, Valid: true})
	return c.Next()
}
