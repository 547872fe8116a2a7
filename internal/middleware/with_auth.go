package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/coursehub-api/internal/apperror"
	"github.com/noah-isme/coursehub-api/internal/utils"
	"github.com/noah-isme/coursehub-api/pkg/token"
)

// AuthOptions configures the WithAuth helper.
type AuthOptions struct {
	// AllowQueryToken accepts ?token= when no Authorization header is sent.
	// Browsers cannot set headers on EventSource or WebSocket handshakes.
	AllowQueryToken bool
}

// WithAuth validates the access token and stores the caller identity in the
// user_id and user_role locals.
func WithAuth(tokens TokenParser, opts AuthOptions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok && opts.AllowQueryToken {
			tokenString = strings.TrimSpace(c.Query("token"))
			ok = tokenString != ""
		}
		if !ok {
			return unauthorized(c, "Not authorized, no token")
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			if errors.Is(err, token.ErrTokenExpired) {
				return unauthorized(c, "token expired")
			}
			return unauthorized(c, "Not authorized, token failed")
		}
		if claims.UserID == 0 {
			return unauthorized(c, "invalid token claims")
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("user_role", strings.ToLower(strings.TrimSpace(claims.Role)))

		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	const bearer = "bearer "
	header = strings.TrimSpace(header)
	if len(header) <= len(bearer) || !strings.EqualFold(header[:len(bearer)], bearer) {
		return "", false
	}

	tokenString := strings.TrimSpace(header[len(bearer):])
	return tokenString, tokenString != ""
}

func unauthorized(c *fiber.Ctx, message string) error {
	return utils.FailWithKind(c, fiber.StatusUnauthorized, string(apperror.KindUnauthorized), message, nil)
}
