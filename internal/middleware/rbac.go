package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/coursehub-api/internal/apperror"
	"github.com/noah-isme/coursehub-api/internal/models"
	"github.com/noah-isme/coursehub-api/internal/utils"
)

// RequireRole ensures that the authenticated user possesses one of the allowed roles.
func RequireRole(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		role, ok := models.ParseRole(normalizeRoleValue(c.Locals("user_role")))
		if !ok {
			return utils.FailWithKind(c, fiber.StatusForbidden, string(apperror.KindForbidden), "unknown role", nil)
		}
		if _, ok := allowed[role]; !ok {
			return utils.FailWithKind(c, fiber.StatusForbidden, string(apperror.KindForbidden), fmt.Sprintf("User role %s is not authorized to access this route", role), nil)
		}
		return c.Next()
	}
}

func normalizeRoleValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case fmt.Stringer:
		return strings.ToLower(strings.TrimSpace(v.String()))
	default:
		if value == nil {
			return ""
		}
		return strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", value)))
	}
}
