package user

import (
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"
)

// NewAuthMiddleware verifies the bearer token and stores it in
// c.Locals("user"). Every failure, including a reset token presented as a
// session token, produces the same 401 body.
func NewAuthMiddleware(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:    []byte(secret),
		SigningMethod: "HS256",
		SuccessHandler: func(c *fiber.Ctx) error {
			if claims, ok := claimsFromCtx(c); !ok || claims[claimPurpose] != nil {
				return unauthorized(c)
			}
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, _ error) error {
			return unauthorized(c)
		},
	})
}

// RequireAdmin must run after the auth middleware.
func RequireAdmin(c *fiber.Ctx) error {
	if GetRoleFromCtx(c) != RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin access required"})
	}
	return c.Next()
}

// GetUserIDFromCtx extracts the user_id claim from the JWT stored in
// c.Locals("user"). Shared by every package that serves authenticated routes.
func GetUserIDFromCtx(c *fiber.Ctx) (int, error) {
	claims, ok := claimsFromCtx(c)
	if !ok {
		return 0, fiber.ErrUnauthorized
	}
	id, ok := intClaim(claims[claimUserID])
	if !ok || id <= 0 {
		return 0, fiber.ErrUnauthorized
	}
	return id, nil
}

// GetRoleFromCtx returns the role claim, or "" when absent.
func GetRoleFromCtx(c *fiber.Ctx) string {
	claims, ok := claimsFromCtx(c)
	if !ok {
		return ""
	}
	role, _ := claims[claimRole].(string)
	return role
}

func claimsFromCtx(c *fiber.Ctx) (jwt.MapClaims, bool) {
	tok, ok := c.Locals("user").(*jwt.Token)
	if !ok || tok == nil {
		return nil, false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	return claims, ok
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid or expired token"})
}
