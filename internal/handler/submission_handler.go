package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/coursehub-api/internal/dto"
	"github.com/noah-isme/coursehub-api/internal/service"
	"github.com/noah-isme/coursehub-api/internal/utils"
	"github.com/noah-isme/coursehub-api/pkg/validation"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SubmissionHandler manages submission endpoints.
type SubmissionHandler struct {
	service   service.SubmissionService
	gradebook service.GradebookService
	validator *validation.Validator
	logger    zerolog.Logger
}

// NewSubmissionHandler builds a submission handler instance.
func NewSubmissionHandler(service service.SubmissionService, gradebook service.GradebookService, validator *validation.Validator, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service:   service,
		gradebook: gradebook,
		validator: validator,
		logger:    logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Put("/:id/grade", h.grade)
	router.Get("/assignment/:assignmentId", h.listByAssignment)
	router.Get("/assignment/:assignmentId/my-submission", h.mySubmission)
	router.Get("/assignment/:assignmentId/export", h.export)
	router.Get("/:id", h.get)
}

func (h *SubmissionHandler) create(c *fiber.Ctx) error {
	var payload dto.SubmissionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request body")
	}

	submission, err := h.service.Submit(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.validator, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission created", submission)
}

func (h *SubmissionHandler) grade(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var payload dto.GradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return respondError(c, h.validator, h.logger, err)
	}

	submission, err := h.service.Grade(c.UserContext(), actorFromContext(c), id, *payload.Grade, payload.Feedback)
	if err != nil {
		return respondError(c, h.validator, h.logger, err)
	}

	return utils.SendSuccess(c, "submission graded", submission)
}

func (h *SubmissionHandler) listByAssignment(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "assignmentId")
	if err != nil {
		return badRequest(c, err.Error())
	}

	submissions, err := h.service.ListByAssignment(c.UserContext(), actorFromContext(c), assignmentID)
	if err != nil {
		return respondError(c, h.validator, h.logger, err)
	}

	return utils.OK(c, submissions, "submissions retrieved", fiber.Map{"count": len(submissions)})
}

// mySubmission answers with data: null when the caller has not submitted yet.
func (h *SubmissionHandler) mySubmission(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "assignmentId")
	if err != nil {
		return badRequest(c, err.Error())
	}

	submission, err := h.service.MySubmission(c.UserContext(), actorFromContext(c), assignmentID)
	if err != nil {
		return respondError(c, h.validator, h.logger, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "submission retrieved",
		"data":    submission,
	})
}

func (h *SubmissionHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	submission, err := h.service.Get(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return respondError(c, h.validator, h.logger, err)
	}

	return utils.SendSuccess(c, "submission retrieved", submission)
}

func (h *SubmissionHandler) export(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "assignmentId")
	if err != nil {
		return badRequest(c, err.Error())
	}

	buffer, filename, err := h.gradebook.Export(c.UserContext(), actorFromContext(c), assignmentID)
	if err != nil {
		return respondError(c, h.validator, h.logger, err)
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Status(fiber.StatusOK).Send(buffer.Bytes())
}
