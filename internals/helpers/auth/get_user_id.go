package helperAuth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Locals keys hydrated by the JWT middleware.
const (
	LocUserID = "user_id"
	LocClaims = "jwt_claims"
)

// GetUserIDFromToken reads the authenticated user id from c.Locals.
// 401 when not logged in, 400 when the value is malformed.
func GetUserIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	v := c.Locals(LocUserID)
	if v == nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "User not logged in")
	}

	switch t := v.(type) {
	case uuid.UUID:
		if t == uuid.Nil {
			return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "User not logged in")
		}
		return t, nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "User not logged in")
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid user id in token")
		}
		return id, nil
	default:
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid user id in token")
	}
}
