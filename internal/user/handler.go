package user

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	ResetToken  string `json:"resetToken"`
	NewPassword string `json:"newPassword"`
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r fiber.Router, requireAuth fiber.Handler) {
	auth := r.Group("/auth")
	auth.Post("/register", h.register)
	auth.Post("/login", h.login)
	auth.Post("/forgot-password", h.forgotPassword)
	auth.Post("/reset-password", h.resetPassword)
	auth.Get("/me", requireAuth, h.me)
}

func (h *Handler) register(c *fiber.Ctx) error {
	payload := new(registerRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.isMissingRequiredFields() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "name, email and password are required"})
	}

	created, token, err := h.service.Register(c.UserContext(), payload.Name, payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Email already registered"})
		}
		return fmt.Errorf("register user: %w", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registration successful",
		"user":    created,
		"token":   token,
	})
}

func (h *Handler) login(c *fiber.Ctx) error {
	payload := new(loginRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	u, token, err := h.service.Authenticate(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid email or password"})
		}
		return fmt.Errorf("authenticate: %w", err)
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    u,
		"token":   token,
	})
}

// me returns the account behind the current token, without the password.
func (h *Handler) me(c *fiber.Ctx) error {
	userID, err := GetUserIDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}

	u, err := h.service.GetByID(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "user not found"})
		}
		return fmt.Errorf("load user: %w", err)
	}
	return c.JSON(sanitizeUser(u))
}

func (h *Handler) forgotPassword(c *fiber.Ctx) error {
	payload := new(forgotPasswordRequest)
	if err := c.BodyParser(payload); err != nil || strings.TrimSpace(payload.Email) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "email is required"})
	}

	token, err := h.service.ForgotPassword(c.UserContext(), payload.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "No account with that email"})
		}
		return fmt.Errorf("forgot password: %w", err)
	}

	return c.JSON(fiber.Map{
		"message":    "Reset token generated",
		"resetToken": token,
	})
}

func (h *Handler) resetPassword(c *fiber.Ctx) error {
	payload := new(resetPasswordRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.ResetToken == "" || payload.NewPassword == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "resetToken and newPassword are required"})
	}

	err := h.service.ResetPassword(c.UserContext(), payload.ResetToken, payload.NewPassword)
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"message": "Password reset successful"})
	case errors.Is(err, ErrInvalidResetToken), errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid or expired reset token"})
	default:
		return fmt.Errorf("reset password: %w", err)
	}
}

func (r registerRequest) isMissingRequiredFields() bool {
	return strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Email) == "" || r.Password == ""
}
