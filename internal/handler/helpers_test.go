package handler

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coursehub-api/internal/apperror"
	"github.com/noah-isme/coursehub-api/internal/models"
	"github.com/noah-isme/coursehub-api/internal/utils"
	"github.com/noah-isme/coursehub-api/pkg/validation"
)

type gradePayload struct {
	Grade *float64 `json:"grade" validate:"required,gte=0,lte=100"`
}

func TestRespondErrorMapsKinds(t *testing.T) {
	v := validation.New()
	tooHigh := 120.0

	cases := []struct {
		name    string
		err     error
		status  int
		kind    string
		details map[string]interface{}
	}{
		{"validator", v.Struct(gradePayload{Grade: &tooHigh}), fiber.StatusBadRequest, "validation", nil},
		{"validation with fields", apperror.Validation("bad", apperror.FieldError{Field: "content", Message: "content is required"}), fiber.StatusBadRequest, "validation", map[string]interface{}{"content": "content is required"}},
		{"not found", apperror.NotFound("course not found"), fiber.StatusNotFound, "not_found", nil},
		{"unauthorized", apperror.Unauthorized("not yours"), fiber.StatusUnauthorized, "unauthorized", nil},
		{"forbidden", apperror.Forbidden("nope"), fiber.StatusForbidden, "forbidden", nil},
		{"duplicate", apperror.Duplicate("again"), fiber.StatusConflict, "duplicate_submission", nil},
		{"conflict", apperror.Conflict("taken"), fiber.StatusConflict, "conflict", nil},
		{"internal", apperror.Internal(errors.New("db down")), fiber.StatusInternalServerError, "internal", nil},
		{"unknown", errors.New("boom"), fiber.StatusInternalServerError, "internal", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return respondError(c, v, zerolog.Nop(), tc.err)
			})

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, tc.status, resp.StatusCode)

			var body utils.APIResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			require.False(t, body.Success)
			require.Equal(t, tc.kind, body.Kind)
			switch {
			case tc.name == "validator":
				require.Contains(t, body.Details, "grade")
			case tc.details == nil:
				require.Nil(t, body.Details)
			default:
				require.Equal(t, tc.details, body.Details)
			}
			if tc.status == fiber.StatusInternalServerError {
				require.Equal(t, "internal server error", body.Message)
			}
		})
	}
}

func TestActorFromContext(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(7))
		c.Locals("user_role", "Educator")
		actor := actorFromContext(c)
		require.Equal(t, uint(7), actor.ID)
		require.Equal(t, models.RoleEducator, actor.Role)
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}
