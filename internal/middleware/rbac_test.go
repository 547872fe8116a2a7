package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coursehub-api/internal/models"
)

func TestRequireRoleAllowsAuthorizedRoles(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_role", "Educator")
		return c.Next()
	})
	app.Use(RequireRole(models.RoleEducator, models.RoleCoordinator))
	app.Get("/grade", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/grade", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRoleRejectsUnauthorizedRoles(t *testing.T) {
	for _, role := range []string{"learner", "admin", ""} {
		app := fiber.New()
		app.Use(func(c *fiber.Ctx) error {
			c.Locals("user_role", role)
			return c.Next()
		})
		app.Use(RequireRole(models.RoleEducator, models.RoleCoordinator))
		app.Get("/grade", func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/grade", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusForbidden, resp.StatusCode, role)
	}
}
