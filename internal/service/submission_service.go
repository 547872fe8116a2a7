package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/coursehub-api/internal/authz"
	"github.com/noah-isme/coursehub-api/internal/dto"
	"github.com/noah-isme/coursehub-api/internal/models"
	"github.com/noah-isme/coursehub-api/internal/observability"
	"github.com/noah-isme/coursehub-api/internal/repository"
)

// SubmissionService accepts learner work, auto-grades quizzes and records
// manual grades.
type SubmissionService interface {
	Submit(ctx context.Context, actor authz.Actor, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	Grade(ctx context.Context, actor authz.Actor, id uint, grade float64, feedback string) (dto.SubmissionResponse, error)
	ListByAssignment(ctx context.Context, actor authz.Actor, assignmentID uint) ([]dto.SubmissionResponse, error)
	MySubmission(ctx context.Context, actor authz.Actor, assignmentID uint) (*dto.SubmissionResponse, error)
	Get(ctx context.Context, actor authz.Actor, id uint) (dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(submissions repository.SubmissionRepository, assignments repository.AssignmentRepository, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: submissions,
		assignments: assignments,
		validator:   validate,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/coursehub-api/internal/service/submission"),
		now:         time.Now,
	}
}

func (s *submissionService) Submit(ctx context.Context, actor authz.Actor, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submission.create", trace.WithAttributes(
		attribute.Int("submission.assignment_id", int(payload.AssignmentID)),
		attribute.Int("submission.student_id", int(actor.ID)),
	))
	defer span.End()

	if err := authz.CanSubmit(actor); err != nil {
		return dto.SubmissionResponse{}, err
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.assignments.FindByID(ctx, payload.AssignmentID)
	if err != nil {
		return dto.SubmissionResponse{}, notFoundOr(err, ErrAssignmentNotFound)
	}

	if _, err := s.submissions.GetByAssignmentAndStudent(ctx, assignment.ID, actor.ID); err == nil {
		observability.Submissions().WithLabelValues(string(assignment.Type), "duplicate").Inc()
		return dto.SubmissionResponse{}, ErrDuplicateSubmission
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.SubmissionResponse{}, err
	}

	submission := models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    actor.ID,
		Status:       models.SubmissionStatusSubmitted,
	}

	if assignment.IsQuiz() {
		if len(assignment.Questions) == 0 {
			observability.Submissions().WithLabelValues(string(assignment.Type), "rejected").Inc()
			return dto.SubmissionResponse{}, ErrQuizHasNoQuestions
		}
		if payload.QuizAnswers == nil {
			observability.Submissions().WithLabelValues(string(assignment.Type), "rejected").Inc()
			return dto.SubmissionResponse{}, ErrQuizAnswersRequired
		}

		score, correct := ScoreQuiz(assignment.Questions, payload.QuizAnswers)
		gradedAt := s.now().UTC()
		submission.QuizAnswers = payload.QuizAnswers
		submission.Score = &score
		submission.Grade = &score
		submission.Status = models.SubmissionStatusGraded
		submission.GradedAt = &gradedAt

		span.SetAttributes(attribute.Int("quiz.correct", correct), attribute.Float64("quiz.score", score))
	} else {
		content := strings.TrimSpace(payload.Content)
		if content == "" {
			observability.Submissions().WithLabelValues(string(assignment.Type), "rejected").Inc()
			return dto.SubmissionResponse{}, ErrContentRequired
		}
		submission.Content = content
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			observability.Submissions().WithLabelValues(string(assignment.Type), "duplicate").Inc()
			return dto.SubmissionResponse{}, ErrDuplicateSubmission
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "create submission")
		return dto.SubmissionResponse{}, err
	}

	observability.Submissions().WithLabelValues(string(assignment.Type), "accepted").Inc()
	if submission.Score != nil {
		observability.QuizScores().Observe(*submission.Score)
	}

	observability.Logger(ctx, s.logger).Info().
		Uint("submission_id", submission.ID).
		Uint("assignment_id", assignment.ID).
		Uint("student_id", actor.ID).
		Str("type", string(assignment.Type)).
		Msg("submission received")

	submission.Assignment = assignment
	return dto.NewSubmissionResponse(submission), nil
}

// Grade overwrites any previous grade, including quiz auto-grades.
func (s *submissionService) Grade(ctx context.Context, actor authz.Actor, id uint, grade float64, feedback string) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submission.grade", trace.WithAttributes(
		attribute.Int("submission.id", int(id)),
		attribute.Float64("submission.grade", grade),
	))
	defer span.End()

	if err := authz.CanGrade(actor); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, notFoundOr(err, ErrSubmissionNotFound)
	}

	gradedAt := s.now().UTC()
	graderID := actor.ID
	submission.Grade = &grade
	submission.Feedback = strings.TrimSpace(feedback)
	submission.Status = models.SubmissionStatusGraded
	submission.GradedAt = &gradedAt
	submission.GradedBy = &graderID

	if err := s.submissions.Update(ctx, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update grade")
		return dto.SubmissionResponse{}, err
	}

	observability.Gradings().Inc()
	observability.Logger(ctx, s.logger).Info().
		Uint("submission_id", submission.ID).
		Uint("graded_by", graderID).
		Float64("grade", grade).
		Msg("submission graded")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) ListByAssignment(ctx context.Context, actor authz.Actor, assignmentID uint) ([]dto.SubmissionResponse, error) {
	if err := authz.CanGrade(actor); err != nil {
		return nil, err
	}
	if _, err := s.assignments.FindByID(ctx, assignmentID); err != nil {
		return nil, notFoundOr(err, ErrAssignmentNotFound)
	}

	submissions, err := s.submissions.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionResponseSlice(submissions), nil
}

// MySubmission returns the caller's submission or nil when there is none yet.
func (s *submissionService) MySubmission(ctx context.Context, actor authz.Actor, assignmentID uint) (*dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByAssignmentAndStudent(ctx, assignmentID, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	response := dto.NewSubmissionResponse(submission)
	return &response, nil
}

func (s *submissionService) Get(ctx context.Context, actor authz.Actor, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, notFoundOr(err, ErrSubmissionNotFound)
	}
	if err := authz.CanViewSubmission(actor, submission); err != nil {
		return dto.SubmissionResponse{}, err
	}
	return dto.NewSubmissionResponse(submission), nil
}

// ScoreQuiz returns the percentage of questions answered correctly and the raw
// count. Missing, null and out-of-range answers count as wrong; extra answers
// are ignored.
func ScoreQuiz(questions []models.Question, answers []*int) (float64, int) {
	if len(questions) == 0 {
		return 0, 0
	}

	correct := 0
	for i, question := range questions {
		if i >= len(answers) || answers[i] == nil {
			continue
		}
		if *answers[i] == question.CorrectAnswer {
			correct++
		}
	}

	return float64(correct) / float64(len(questions)) * 100, correct
}
