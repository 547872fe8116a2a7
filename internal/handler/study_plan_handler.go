package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/coursehub-api/internal/dto"
	"github.com/noah-isme/coursehub-api/internal/service"
	"github.com/noah-isme/coursehub-api/internal/utils"
	"github.com/noah-isme/coursehub-api/pkg/validation"
)

// StudyPlanHandler manages weekly study plan endpoints.
type StudyPlanHandler struct {
	service   service.StudyPlanService
	validator *validation.Validator
	logger    zerolog.Logger
}

// NewStudyPlanHandler builds a study plan handler.
func NewStudyPlanHandler(service service.StudyPlanService, validator *validation.Validator, logger zerolog.Logger) *StudyPlanHandler {
	return &StudyPlanHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "study_plan_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *StudyPlanHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("/:courseId", h.listByCourse)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *StudyPlanHandler) create(c *fiber.Ctx) error {
	var payload dto.StudyPlanCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request body")
	}

	plan, err := h.service.Create(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.validator, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "study plan created", plan)
}

func (h *StudyPlanHandler) listByCourse(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return badRequest(c, err.Error())
	}

	plans, err := h.service.ListByCourse(c.UserContext(), courseID)
	if err != nil {
		return respondError(c, h.validator, h.logger, err)
	}

	return utils.SendSuccess(c, "study plans retrieved", plans)
}

func (h *StudyPlanHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var payload dto.StudyPlanUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request body")
	}

	plan, err := h.service.Update(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		return respondError(c, h.validator, h.logger, err)
	}

	return utils.SendSuccess(c, "study plan updated", plan)
}

func (h *StudyPlanHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	deleted, err := h.service.Delete(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return respondError(c, h.validator, h.logger, err)
	}

	return utils.SendSuccess(c, "study plan deleted", deleted)
}
