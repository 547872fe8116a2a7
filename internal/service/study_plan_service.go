package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/coursehub-api/internal/authz"
	"github.com/noah-isme/coursehub-api/internal/dto"
	"github.com/noah-isme/coursehub-api/internal/models"
	"github.com/noah-isme/coursehub-api/internal/observability"
	"github.com/noah-isme/coursehub-api/internal/repository"
)

// StudyPlanService manages weekly course content.
type StudyPlanService interface {
	ListByCourse(ctx context.Context, courseID uint) ([]dto.StudyPlanResponse, error)
	Create(ctx context.Context, actor authz.Actor, payload dto.StudyPlanCreateRequest) (dto.StudyPlanResponse, error)
	Update(ctx context.Context, actor authz.Actor, id uint, payload dto.StudyPlanUpdateRequest) (dto.StudyPlanResponse, error)
	Delete(ctx context.Context, actor authz.Actor, id uint) (dto.DeletedResponse, error)
}

type studyPlanService struct {
	plans     repository.StudyPlanRepository
	courses   repository.CourseRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewStudyPlanService constructs a StudyPlanService.
func NewStudyPlanService(plans repository.StudyPlanRepository, courses repository.CourseRepository, validate *validator.Validate, logger zerolog.Logger) StudyPlanService {
	return &studyPlanService{
		plans:     plans,
		courses:   courses,
		validator: validate,
		logger:    logger.With().Str("component", "study_plan_service").Logger(),
	}
}

func (s *studyPlanService) ListByCourse(ctx context.Context, courseID uint) ([]dto.StudyPlanResponse, error) {
	plans, err := s.plans.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return dto.NewStudyPlanResponseSlice(plans), nil
}

func (s *studyPlanService) Create(ctx context.Context, actor authz.Actor, payload dto.StudyPlanCreateRequest) (dto.StudyPlanResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudyPlanResponse{}, err
	}
	if err := s.authorize(ctx, actor, payload.CourseID); err != nil {
		return dto.StudyPlanResponse{}, err
	}

	plan := models.StudyPlan{
		CourseID:  payload.CourseID,
		Week:      payload.Week,
		Topic:     strings.TrimSpace(payload.Topic),
		Content:   strings.TrimSpace(payload.Content),
		Resources: strings.TrimSpace(payload.Resources),
	}
	if err := s.plans.Create(ctx, &plan); err != nil {
		return dto.StudyPlanResponse{}, err
	}

	observability.Logger(ctx, s.logger).Info().Uint("study_plan_id", plan.ID).Uint("course_id", plan.CourseID).Int("week", plan.Week).Msg("study plan created")
	return dto.NewStudyPlanResponse(plan), nil
}

func (s *studyPlanService) Update(ctx context.Context, actor authz.Actor, id uint, payload dto.StudyPlanUpdateRequest) (dto.StudyPlanResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudyPlanResponse{}, err
	}

	plan, err := s.plans.FindByID(ctx, id)
	if err != nil {
		return dto.StudyPlanResponse{}, notFoundOr(err, ErrStudyPlanNotFound)
	}
	if err := s.authorize(ctx, actor, plan.CourseID); err != nil {
		return dto.StudyPlanResponse{}, err
	}

	if payload.Week != nil {
		plan.Week = *payload.Week
	}
	if payload.Topic != nil {
		plan.Topic = strings.TrimSpace(*payload.Topic)
	}
	if payload.Content != nil {
		plan.Content = strings.TrimSpace(*payload.Content)
	}
	if payload.Resources != nil {
		plan.Resources = strings.TrimSpace(*payload.Resources)
	}

	if err := s.plans.Update(ctx, &plan); err != nil {
		return dto.StudyPlanResponse{}, err
	}
	return dto.NewStudyPlanResponse(plan), nil
}

func (s *studyPlanService) Delete(ctx context.Context, actor authz.Actor, id uint) (dto.DeletedResponse, error) {
	plan, err := s.plans.FindByID(ctx, id)
	if err != nil {
		return dto.DeletedResponse{}, notFoundOr(err, ErrStudyPlanNotFound)
	}
	if err := s.authorize(ctx, actor, plan.CourseID); err != nil {
		return dto.DeletedResponse{}, err
	}

	if err := s.plans.Delete(ctx, id); err != nil {
		return dto.DeletedResponse{}, notFoundOr(err, ErrStudyPlanNotFound)
	}

	observability.Logger(ctx, s.logger).Info().Uint("study_plan_id", id).Msg("study plan deleted")
	return dto.DeletedResponse{ID: id}, nil
}

func (s *studyPlanService) authorize(ctx context.Context, actor authz.Actor, courseID uint) error {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return notFoundOr(err, ErrCourseNotFound)
	}
	return authz.CanManageCourseContent(actor, course)
}
