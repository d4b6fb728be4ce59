package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	helperAuth "mektebim_backend/internals/helpers/auth"
)

type AuthJWTOpts struct {
	Secret              string
	AllowCookieFallback bool // use the access_token cookie when there is no Bearer header
}

// AuthJWT verifies the HMAC token and hydrates c.Locals with the claims
// the helpers expect (user_id at minimum).
func AuthJWT(o AuthJWTOpts) fiber.Handler {
	secret := strings.TrimSpace(o.Secret)
	if secret == "" {
		panic("AuthJWT: Secret is required")
	}

	return func(c *fiber.Ctx) error {
		raw := ""
		if authz := strings.TrimSpace(c.Get(fiber.HeaderAuthorization)); strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			raw = strings.TrimSpace(authz[7:])
		} else if o.AllowCookieFallback {
			raw = strings.TrimSpace(c.Cookies("access_token"))
		}
		if raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}

		tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !tok.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}

		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
		}

		c.Locals(helperAuth.LocClaims, claims)

		if sub, ok := claims["user_id"].(string); ok && strings.TrimSpace(sub) != "" {
			c.Locals(helperAuth.LocUserID, strings.TrimSpace(sub))
		} else if sub, ok := claims["sub"].(string); ok && strings.TrimSpace(sub) != "" {
			c.Locals(helperAuth.LocUserID, strings.TrimSpace(sub))
		}

		return c.Next()
	}
}
