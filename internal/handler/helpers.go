package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/coursehub-api/internal/apperror"
	"github.com/noah-isme/coursehub-api/internal/authz"
	"github.com/noah-isme/coursehub-api/internal/middleware"
	"github.com/noah-isme/coursehub-api/internal/models"
	"github.com/noah-isme/coursehub-api/internal/utils"
	"github.com/noah-isme/coursehub-api/pkg/validation"
)

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
		if id, ok := v.(int); ok {
			if id < 0 {
				return 0
			}
			return uint(id)
		}
	}
	return 0
}

func userRoleFromContext(c *fiber.Ctx) string {
	if v := c.Locals("user_role"); v != nil {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}

// actorFromContext builds the authenticated actor. An unknown role is passed
// through as-is so the authorization rules reject it.
func actorFromContext(c *fiber.Ctx) authz.Actor {
	raw := userRoleFromContext(c)
	role, ok := models.ParseRole(raw)
	if !ok {
		role = models.Role(raw)
	}
	return authz.Actor{ID: userIDFromContext(c), Role: role}
}

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	value := strings.TrimSpace(c.Params(key))
	if value == "" {
		return 0, fmt.Errorf("missing %s", key)
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(parsed), nil
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func statusForKind(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindUnauthorized:
		return fiber.StatusUnauthorized
	case apperror.KindForbidden:
		return fiber.StatusForbidden
	case apperror.KindDuplicateSubmission, apperror.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError translates service errors into the JSON error envelope.
func respondError(c *fiber.Ctx, v *validation.Validator, logger zerolog.Logger, err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return utils.FailWithKind(c, fiber.StatusBadRequest, string(apperror.KindValidation), "validation failed", v.FieldErrors(err))
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		status := statusForKind(appErr.Kind)
		if status == fiber.StatusInternalServerError {
			requestLogger(logger, c).Error().Err(err).Str("path", c.Path()).Msg("request failed")
			return utils.FailWithKind(c, status, string(apperror.KindInternal), "internal server error", nil)
		}

		var details map[string]string
		if len(appErr.Fields) > 0 {
			details = make(map[string]string, len(appErr.Fields))
			for _, field := range appErr.Fields {
				details[field.Field] = field.Message
			}
		}
		return utils.FailWithKind(c, status, string(appErr.Kind), appErr.Message, details)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return utils.SendError(c, fiberErr.Code, fiberErr.Message)
	}

	requestLogger(logger, c).Error().Err(err).Str("path", c.Path()).Msg("internal server error")
	return utils.FailWithKind(c, fiber.StatusInternalServerError, string(apperror.KindInternal), "internal server error", nil)
}

func badRequest(c *fiber.Ctx, message string) error {
	return utils.FailWithKind(c, fiber.StatusBadRequest, string(apperror.KindValidation), message, nil)
}

// ErrorHandler renders errors that escape route handlers (unknown routes,
// oversized bodies, panics turned into errors) with the JSON envelope.
func ErrorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return utils.SendError(c, fiberErr.Code, fiberErr.Message)
		}

		requestLogger(logger, c).Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
		return utils.FailWithKind(c, fiber.StatusInternalServerError, string(apperror.KindInternal), "internal server error", nil)
	}
}
