package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/freelance_be/internal/utils"
)

// TokenCookie carries the session JWT.
const TokenCookie = "jm_token"

// JWTAuth resolves the caller from the jm_token cookie, an Authorization
// bearer header or, for websocket upgrades, a token query parameter.
func JWTAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := tokenFrom(c)
		if tokenStr == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}

		claims, err := utils.ParseJWT(secret, tokenStr)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		c.Locals("user", claims)
		return c.Next()
	}
}

func tokenFrom(c *fiber.Ctx) string {
	if t := c.Cookies(TokenCookie); t != "" {
		return t
	}
	if h := c.Get(fiber.HeaderAuthorization); len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return c.Query("token")
}
