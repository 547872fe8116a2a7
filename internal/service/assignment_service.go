package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/coursehub-api/internal/apperror"
	"github.com/noah-isme/coursehub-api/internal/authz"
	"github.com/noah-isme/coursehub-api/internal/dto"
	"github.com/noah-isme/coursehub-api/internal/models"
	"github.com/noah-isme/coursehub-api/internal/observability"
	"github.com/noah-isme/coursehub-api/internal/repository"
)

const dateOnlyLayout = "2006-01-02"

// AssignmentService exposes assignment domain use cases.
type AssignmentService interface {
	ListByCourse(ctx context.Context, actor authz.Actor, courseID uint) ([]dto.AssignmentResponse, error)
	Get(ctx context.Context, actor authz.Actor, id uint) (dto.AssignmentResponse, error)
	Create(ctx context.Context, actor authz.Actor, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	Update(ctx context.Context, actor authz.Actor, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, actor authz.Actor, id uint) (dto.DeletedResponse, error)
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	courses     repository.CourseRepository
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssignmentService builds a new assignment service.
func NewAssignmentService(assignments repository.AssignmentRepository, courses repository.CourseRepository, validate *validator.Validate, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		assignments: assignments,
		courses:     courses,
		validator:   validate,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		now:         time.Now,
	}
}

func (s *assignmentService) ListByCourse(ctx context.Context, actor authz.Actor, courseID uint) ([]dto.AssignmentResponse, error) {
	assignments, err := s.assignments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return dto.NewAssignmentResponseSlice(assignments, authz.CanSeeAnswerKey(actor)), nil
}

func (s *assignmentService) Get(ctx context.Context, actor authz.Actor, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		return dto.AssignmentResponse{}, notFoundOr(err, ErrAssignmentNotFound)
	}
	return dto.NewAssignmentResponse(assignment, authz.CanSeeAnswerKey(actor)), nil
}

func (s *assignmentService) Create(ctx context.Context, actor authz.Actor, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	course, err := s.courses.FindByID(ctx, payload.CourseID)
	if err != nil {
		return dto.AssignmentResponse{}, notFoundOr(err, ErrCourseNotFound)
	}
	if err := authz.CanManageCourseContent(actor, course); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment := models.Assignment{
		CourseID:    payload.CourseID,
		Title:       strings.TrimSpace(payload.Title),
		Description: strings.TrimSpace(payload.Description),
		Type:        models.AssignmentType(payload.Type),
	}

	if assignment.IsQuiz() {
		questions := dto.ToQuestions(payload.Questions)
		if err := validateQuestions(questions); err != nil {
			return dto.AssignmentResponse{}, err
		}
		assignment.Questions = questions
	}

	dueDate, err := s.parseDueDate(payload.DueDate)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	assignment.DueDate = dueDate

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	observability.Logger(ctx, s.logger).Info().
		Uint("assignment_id", assignment.ID).
		Uint("course_id", assignment.CourseID).
		Str("type", string(assignment.Type)).
		Int("questions", len(assignment.Questions)).
		Msg("assignment created")

	return dto.NewAssignmentResponse(assignment, true), nil
}

func (s *assignmentService) Update(ctx context.Context, actor authz.Actor, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.findManaged(ctx, actor, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if payload.Title != nil {
		assignment.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.Description != nil {
		assignment.Description = strings.TrimSpace(*payload.Description)
	}
	if payload.Type != nil {
		assignment.Type = models.AssignmentType(*payload.Type)
	}
	if payload.Questions != nil {
		assignment.Questions = dto.ToQuestions(payload.Questions)
	}

	if assignment.IsQuiz() {
		if err := validateQuestions(assignment.Questions); err != nil {
			return dto.AssignmentResponse{}, err
		}
	} else {
		assignment.Questions = nil
	}

	if payload.DueDate != nil {
		dueDate, err := s.parseDueDate(*payload.DueDate)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		assignment.DueDate = dueDate
	}

	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	observability.Logger(ctx, s.logger).Info().Uint("assignment_id", assignment.ID).Msg("assignment updated")
	return dto.NewAssignmentResponse(assignment, true), nil
}

func (s *assignmentService) Delete(ctx context.Context, actor authz.Actor, id uint) (dto.DeletedResponse, error) {
	if _, err := s.findManaged(ctx, actor, id); err != nil {
		return dto.DeletedResponse{}, err
	}

	if err := s.assignments.Delete(ctx, id); err != nil {
		return dto.DeletedResponse{}, notFoundOr(err, ErrAssignmentNotFound)
	}

	observability.Logger(ctx, s.logger).Info().Uint("assignment_id", id).Msg("assignment deleted")
	return dto.DeletedResponse{ID: id}, nil
}

func (s *assignmentService) findManaged(ctx context.Context, actor authz.Actor, id uint) (models.Assignment, error) {
	assignment, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		return models.Assignment{}, notFoundOr(err, ErrAssignmentNotFound)
	}

	course, err := s.courses.FindByID(ctx, assignment.CourseID)
	if err != nil {
		return models.Assignment{}, notFoundOr(err, ErrCourseNotFound)
	}
	if err := authz.CanManageCourseContent(actor, course); err != nil {
		return models.Assignment{}, err
	}
	return assignment, nil
}

// parseDueDate accepts RFC3339 timestamps or plain dates. A plain date means
// the end of that day in UTC, so "today" is still a valid deadline.
func (s *assignmentService) parseDueDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)

	dueDate, err := time.Parse(time.RFC3339, value)
	if err != nil {
		day, dayErr := time.Parse(dateOnlyLayout, value)
		if dayErr != nil {
			return time.Time{}, ErrInvalidDueDate
		}
		dueDate = day.Add(24*time.Hour - time.Second)
	}

	if dueDate.Before(s.now()) {
		return time.Time{}, ErrDueDateInPast
	}
	return dueDate.UTC(), nil
}

// validateQuestions enforces the quiz shape: at least one question, each with
// text, four non-blank options and an answer index inside them.
func validateQuestions(questions []models.Question) error {
	if len(questions) == 0 {
		return ErrQuizQuestionsRequired
	}

	for i, q := range questions {
		field := fmt.Sprintf("questions[%d]", i)
		switch {
		case strings.TrimSpace(q.QuestionText) == "":
			return questionError(field+".questionText", i, "question text is required")
		case len(q.Options) != models.QuizOptionCount:
			return questionError(field+".options", i, fmt.Sprintf("must have exactly %d options", models.QuizOptionCount))
		case q.CorrectAnswer < 0 || q.CorrectAnswer >= models.QuizOptionCount:
			return questionError(field+".correctAnswer", i, "valid correct answer (0-3) is required")
		}
		for _, option := range q.Options {
			if strings.TrimSpace(option) == "" {
				return questionError(field+".options", i, "all options must be filled")
			}
		}
	}
	return nil
}

func questionError(field string, index int, message string) error {
	text := fmt.Sprintf("question %d: %s", index+1, message)
	return apperror.Validation(text, apperror.FieldError{Field: field, Message: message})
}
