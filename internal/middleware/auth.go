package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/shelterfinder/shelterfinder/internal/repository"
	"github.com/shelterfinder/shelterfinder/internal/utils"
)

// UserIDKey is the fiber locals key the resolved user id is stored under.
const UserIDKey = "user_id"

// Protect verifies the bearer token and resolves it to a live user record.
// A syntactically valid token whose user has since been deleted is rejected.
func Protect(jwtManager *utils.JWTManager, users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get("Authorization")
		if auth == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not authorized, no token provided"})
		}

		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not authorized, malformed authorization header"})
		}

		claims, err := jwtManager.Verify(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not authorized, token failed"})
		}

		user, err := users.FindByID(c.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) || errors.Is(err, repository.ErrInvalidID) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not authorized, user not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error"})
		}

		c.Locals(UserIDKey, user.ID.Hex())
		return c.Next()
	}
}
