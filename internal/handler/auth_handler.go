package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/coursehub-api/internal/dto"
	"github.com/noah-isme/coursehub-api/internal/service"
	"github.com/noah-isme/coursehub-api/internal/utils"
	"github.com/noah-isme/coursehub-api/pkg/validation"
)

// AuthHandler exposes registration, login and the current profile.
type AuthHandler struct {
	service   service.AuthService
	validator *validation.Validator
	logger    zerolog.Logger
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(service service.AuthService, validator *validation.Validator, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register binds the auth routes. The limiter guards the credential
// endpoints; protected authenticates /me.
func (h *AuthHandler) Register(router fiber.Router, protected, limiter fiber.Handler) {
	router.Post("/register", limiter, h.register)
	router.Post("/login", limiter, h.login)
	router.Get("/me", protected, h.me)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request body")
	}

	result, err := h.service.Register(c.UserContext(), payload)
	if err != nil {
		return respondError(c, h.validator, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "registration successful", result)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request body")
	}

	result, err := h.service.Login(c.UserContext(), payload)
	if err != nil {
		return respondError(c, h.validator, h.logger, err)
	}

	return utils.SendSuccess(c, "login successful", result)
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	profile, err := h.service.Me(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return respondError(c, h.validator, h.logger, err)
	}

	return utils.SendSuccess(c, "profile retrieved", profile)
}
