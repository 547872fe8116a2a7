package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/coursehub-api/internal/dto"
	"github.com/noah-isme/coursehub-api/internal/service"
	"github.com/noah-isme/coursehub-api/internal/utils"
	"github.com/noah-isme/coursehub-api/pkg/validation"
)

// UserHandler serves account administration and the self-service profile.
type UserHandler struct {
	service   service.UserService
	validator *validation.Validator
	logger    zerolog.Logger
}

// NewUserHandler constructs a user handler.
func NewUserHandler(service service.UserService, validator *validation.Validator, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "user_handler").Logger(),
	}
}

// Register binds the user routes. Profile routes come first so that
// "/profile" is never captured by ":id".
func (h *UserHandler) Register(router fiber.Router) {
	router.Put("/profile", h.updateProfile)
	router.Put("/profile/password", h.changePassword)
	router.Put("/profile/image", h.updateProfileImage)

	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *UserHandler) list(c *fiber.Ctx) error {
	var query dto.UserListQuery
	if err := c.QueryParser(&query); err != nil {
		return badRequest(c, "invalid query parameters")
	}

	users, err := h.service.List(c.UserContext(), actorFromContext(c), query)
	if err != nil {
		return respondError(c, h.validator, h.logger, err)
	}

	return utils.OK(c, users, "users retrieved", fiber.Map{"count": len(users)})
}

func (h *UserHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	user, err := h.service.Get(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return respondError(c, h.validator, h.logger, err)
	}

	return utils.SendSuccess(c, "user retrieved", user)
}

func (h *UserHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var payload dto.UserUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request body")
	}

	user, err := h.service.Update(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		return respondError(c, h.validator, h.logger, err)
	}

	return utils.SendSuccess(c, "user updated", user)
}

func (h *UserHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	deleted, err := h.service.Delete(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return respondError(c, h.validator, h.logger, err)
	}

	return utils.SendSuccess(c, "user deleted", deleted)
}

func (h *UserHandler) updateProfile(c *fiber.Ctx) error {
	var payload dto.ProfileUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request body")
	}

	user, err := h.service.UpdateProfile(c.UserContext(), userIDFromContext(c), payload)
	if err != nil {
		return respondError(c, h.validator, h.logger, err)
	}

	return utils.SendSuccess(c, "profile updated", user)
}

func (h *UserHandler) changePassword(c *fiber.Ctx) error {
	var payload dto.PasswordChangeRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := h.service.ChangePassword(c.UserContext(), userIDFromContext(c), payload); err != nil {
		return respondError(c, h.validator, h.logger, err)
	}

	return utils.SendSuccess(c, "password updated", nil)
}

func (h *UserHandler) updateProfileImage(c *fiber.Ctx) error {
	file, err := c.FormFile("profileImage")
	if err != nil {
		return respondError(c, h.validator, h.logger, service.ErrUploadRequired)
	}

	user, err := h.service.UpdateProfileImage(c.UserContext(), userIDFromContext(c), file)
	if err != nil {
		return respondError(c, h.validator, h.logger, err)
	}

	return utils.SendSuccess(c, "profile image updated", user)
}
