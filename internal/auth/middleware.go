package auth

import (
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const userIDKey = "user_id"

// RequireUser rejects requests without a valid bearer token and stores the
// token's user id in the request locals.
func RequireUser(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": ErrUnauthenticated.Error()})
		}

		claims, err := ValidateJWT(token, secret)
		if err != nil {
			log.Debug().Err(err).Str("path", c.Path()).Msg("rejected bearer token")
			msg := "invalid token"
			if errors.Is(err, ErrExpiredJWT) {
				msg = "token expired"
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
		}

		c.Locals(userIDKey, claims.UserID)
		return c.Next()
	}
}

// RequireAdminKey guards operator endpoints with a static key sent in
// X-Admin-Key. An empty key disables the endpoints entirely.
func RequireAdminKey(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if key == "" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin endpoints are disabled"})
		}
		got := c.Get("X-Admin-Key")
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
		}
		return c.Next()
	}
}

// UserID returns the user id stored by RequireUser, or "" when absent.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
