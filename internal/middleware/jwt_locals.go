package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/freelance_be/internal/models"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/utils"
)

// AttachJWTLocals copies the verified claims into the userId and role locals.
func AttachJWTLocals() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("user").(*utils.Claims)
		if !ok || claims == nil {
			return fiber.ErrUnauthorized
		}

		uid, err := uuid.Parse(strings.TrimSpace(claims.UserID))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid user id")
		}

		c.Locals("userId", uid)
		c.Locals("role", models.Role(strings.ToLower(strings.TrimSpace(claims.Role))))
		return c.Next()
	}
}

// CurrentUser returns the caller resolved by JWTAuth and AttachJWTLocals.
func CurrentUser(c *fiber.Ctx) (uuid.UUID, models.Role, error) {
	uid, ok := c.Locals("userId").(uuid.UUID)
	if !ok || uid == uuid.Nil {
		return uuid.Nil, "", fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	role, _ := c.Locals("role").(models.Role)
	return uid, role, nil
}
