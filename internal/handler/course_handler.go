package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/coursehub-api/internal/authz"
	"github.com/noah-isme/coursehub-api/internal/dto"
	"github.com/noah-isme/coursehub-api/internal/service"
	"github.com/noah-isme/coursehub-api/internal/utils"
	"github.com/noah-isme/coursehub-api/pkg/validation"
)

// CourseHandler manages course endpoints.
type CourseHandler struct {
	service   service.CourseService
	validator *validation.Validator
	logger    zerolog.Logger
}

// NewCourseHandler builds a course handler instance.
func NewCourseHandler(service service.CourseService, validator *validation.Validator, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "course_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group. The catalog is
// public; everything else runs behind protected.
func (h *CourseHandler) Register(router fiber.Router, protected fiber.Handler) {
	router.Get("", h.list)
	router.Get("/:id", protected, h.get)
	router.Post("", protected, h.create)
	router.Put("/:id", protected, h.update)
	router.Delete("/:id", protected, h.delete)
	router.Post("/:id/assign-educator", protected, h.assignEducator)
	router.Post("/:id/unassign-educator", protected, h.unassignEducator)
	router.Post("/:id/enroll", protected, h.enroll)
	router.Put("/:id/thumbnail", protected, h.updateThumbnail)
}

func (h *CourseHandler) list(c *fiber.Ctx) error {
	courses, err := h.service.List(c.UserContext())
	if err != nil {
		return respondError(c, h.validator, h.logger, err)
	}

	return utils.OK(c, courses, "courses retrieved", fiber.Map{"count": len(courses)})
}

func (h *CourseHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	course, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.validator, h.logger, err)
	}

	return utils.SendSuccess(c, "course retrieved", course)
}

func (h *CourseHandler) create(c *fiber.Ctx) error {
	var payload dto.CourseCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request body")
	}

	course, err := h.service.Create(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.validator, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "course created", course)
}

func (h *CourseHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var payload dto.CourseUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request body")
	}

	course, err := h.service.Update(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		return respondError(c, h.validator, h.logger, err)
	}

	return utils.SendSuccess(c, "course updated", course)
}

func (h *CourseHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	deleted, err := h.service.Delete(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return respondError(c, h.validator, h.logger, err)
	}

	return utils.SendSuccess(c, "course deleted", deleted)
}

func (h *CourseHandler) assignEducator(c *fiber.Ctx) error {
	return h.changeEducator(c, h.service.AssignEducator, "educator assigned")
}

func (h *CourseHandler) unassignEducator(c *fiber.Ctx) error {
	return h.changeEducator(c, h.service.UnassignEducator, "educator unassigned")
}

type educatorChange func(ctx context.Context, actor authz.Actor, courseID, educatorID uint) (dto.CourseResponse, error)

func (h *CourseHandler) changeEducator(c *fiber.Ctx, apply educatorChange, message string) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var payload dto.EducatorAssignmentRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return respondError(c, h.validator, h.logger, err)
	}

	course, err := apply(c.UserContext(), actorFromContext(c), id, payload.EducatorID)
	if err != nil {
		return respondError(c, h.validator, h.logger, err)
	}

	return utils.SendSuccess(c, message, course)
}

func (h *CourseHandler) enroll(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	course, err := h.service.Enroll(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return respondError(c, h.validator, h.logger, err)
	}

	return utils.SendSuccess(c, "enrolled", course)
}

func (h *CourseHandler) updateThumbnail(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	file, err := c.FormFile("thumbnail")
	if err != nil {
		return respondError(c, h.validator, h.logger, service.ErrUploadRequired)
	}

	course, err := h.service.UpdateThumbnail(c.UserContext(), actorFromContext(c), id, file)
	if err != nil {
		return respondError(c, h.validator, h.logger, err)
	}

	return utils.SendSuccess(c, "thumbnail updated", course)
}
