package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/shelterfinder/shelterfinder/internal/middleware"
	"github.com/shelterfinder/shelterfinder/internal/repository"
	"github.com/shelterfinder/shelterfinder/internal/services"
)

type UserHandler struct {
	svc *services.UserService
	log *zap.SugaredLogger
}

func NewUserHandler(svc *services.UserService, log *zap.SugaredLogger) *UserHandler {
	return &UserHandler{svc: svc, log: log}
}

func (h *UserHandler) AddBookmark(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.UserIDKey).(string)

	err := h.svc.AddBookmark(c.Context(), userID, c.Params("shelterId"))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrShelterNotFound), errors.Is(err, repository.ErrInvalidID):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Shelter not found"})
		case errors.Is(err, repository.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
		}
		h.log.Errorw("failed to add bookmark", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error while adding bookmark"})
	}
	return c.JSON(fiber.Map{"message": "Shelter bookmarked successfully"})
}

func (h *UserHandler) RemoveBookmark(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.UserIDKey).(string)

	err := h.svc.RemoveBookmark(c.Context(), userID, c.Params("shelterId"))
	if err != nil {
		if errors.Is(err, repository.ErrInvalidID) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid shelter ID format."})
		}
		h.log.Errorw("failed to remove bookmark", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error while removing bookmark"})
	}
	return c.JSON(fiber.Map{"message": "Bookmark removed successfully"})
}

func (h *UserHandler) ListBookmarks(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.UserIDKey).(string)

	shelters, err := h.svc.Bookmarks(c.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
		}
		h.log.Errorw("failed to fetch bookmarks", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error while fetching bookmarks"})
	}
	return c.JSON(shelters)
}

func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.svc.ListUsers(c.Context())
	if err != nil {
		h.log.Errorw("failed to fetch users", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server Error"})
	}
	return c.JSON(users)
}
