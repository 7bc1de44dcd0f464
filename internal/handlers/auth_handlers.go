package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/shelterfinder/shelterfinder/internal/middleware"
	"github.com/shelterfinder/shelterfinder/internal/repository"
	"github.com/shelterfinder/shelterfinder/internal/services"
)

type AuthHandler struct {
	svc *services.AuthService
	log *zap.SugaredLogger
}

func NewAuthHandler(svc *services.AuthService, log *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{svc: svc, log: log}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body."})
	}

	token, user, err := h.svc.Register(c.Context(), in)
	if err != nil {
		var vf *services.ValidationFailed
		switch {
		case errors.As(err, &vf):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Validation Error", "errors": vf.Fields})
		case errors.Is(err, repository.ErrEmailTaken):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "User already exists with this email"})
		}
		h.log.Errorw("registration failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error during registration"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"token": token, "user": user})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body."})
	}
	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Please provide email and password"})
	}

	token, user, err := h.svc.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid credentials"})
		}
		h.log.Errorw("login failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error during login"})
	}

	return c.JSON(fiber.Map{"token": token, "user": user})
}

// Me returns the authenticated user's record, password hash excluded by the
// model's json tags.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.UserIDKey).(string)

	user, err := h.svc.CurrentUser(c.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
		}
		h.log.Errorw("failed to fetch authenticated user", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error"})
	}
	return c.JSON(user)
}
