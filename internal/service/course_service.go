package service

import (
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/coursehub-api/internal/apperror"
	"github.com/noah-isme/coursehub-api/internal/authz"
	"github.com/noah-isme/coursehub-api/internal/dto"
	"github.com/noah-isme/coursehub-api/internal/models"
	"github.com/noah-isme/coursehub-api/internal/observability"
	"github.com/noah-isme/coursehub-api/internal/repository"
)

const courseCatalogCacheKey = "courses:catalog"

// CourseService manages courses, their educators and enrollments.
type CourseService interface {
	List(ctx context.Context) ([]dto.CourseResponse, error)
	Get(ctx context.Context, id uint) (dto.CourseResponse, error)
	Create(ctx context.Context, actor authz.Actor, payload dto.CourseCreateRequest) (dto.CourseResponse, error)
	Update(ctx context.Context, actor authz.Actor, id uint, payload dto.CourseUpdateRequest) (dto.CourseResponse, error)
	Delete(ctx context.Context, actor authz.Actor, id uint) (dto.DeletedResponse, error)
	AssignEducator(ctx context.Context, actor authz.Actor, courseID, educatorID uint) (dto.CourseResponse, error)
	UnassignEducator(ctx context.Context, actor authz.Actor, courseID, educatorID uint) (dto.CourseResponse, error)
	Enroll(ctx context.Context, actor authz.Actor, courseID uint) (dto.CourseResponse, error)
	UpdateThumbnail(ctx context.Context, actor authz.Actor, courseID uint, file *multipart.FileHeader) (dto.CourseResponse, error)
}

type courseService struct {
	courses       repository.CourseRepository
	users         repository.UserRepository
	notifications NotificationService
	images        ImageService
	cache         *redis.Client
	cacheTTL      time.Duration
	validator     *validator.Validate
	logger        zerolog.Logger
}

// NewCourseService constructs a CourseService. The redis client is optional.
func NewCourseService(courses repository.CourseRepository, users repository.UserRepository, notifications NotificationService, images ImageService, cache *redis.Client, ttl time.Duration, validate *validator.Validate, logger zerolog.Logger) CourseService {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &courseService{
		courses:       courses,
		users:         users,
		notifications: notifications,
		images:        images,
		cache:         cache,
		cacheTTL:      ttl,
		validator:     validate,
		logger:        logger.With().Str("component", "course_service").Logger(),
	}
}

func (s *courseService) List(ctx context.Context) ([]dto.CourseResponse, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, courseCatalogCacheKey).Result(); err == nil {
			var response []dto.CourseResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				observability.CourseCache().WithLabelValues("hit").Inc()
				return response, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			observability.Logger(ctx, s.logger).Warn().Err(err).Msg("failed to read course cache")
		}
		observability.CourseCache().WithLabelValues("miss").Inc()
	}

	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, err
	}
	response := dto.NewCourseResponseSlice(courses)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, courseCatalogCacheKey, payload, s.cacheTTL).Err(); err != nil {
				observability.Logger(ctx, s.logger).Warn().Err(err).Msg("failed to store course cache")
			}
		}
	}

	return response, nil
}

func (s *courseService) Get(ctx context.Context, id uint) (dto.CourseResponse, error) {
	course, err := s.find(ctx, id)
	if err != nil {
		return dto.CourseResponse{}, err
	}
	return dto.NewCourseResponse(course), nil
}

// Create persists the course and then notifies every learner. A failed
// fan-out is reported but the course stays.
func (s *courseService) Create(ctx context.Context, actor authz.Actor, payload dto.CourseCreateRequest) (dto.CourseResponse, error) {
	if err := authz.CanCreateCourse(actor); err != nil {
		return dto.CourseResponse{}, err
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	course := models.Course{
		Title:         strings.TrimSpace(payload.Title),
		Description:   strings.TrimSpace(payload.Description),
		Category:      strings.TrimSpace(payload.Category),
		Thumbnail:     strings.TrimSpace(payload.Thumbnail),
		CoordinatorID: actor.ID,
	}
	if course.Category == "" {
		course.Category = models.DefaultCourseCategory
	}
	if course.Thumbnail == "" {
		course.Thumbnail = models.DefaultCourseThumbnail
	}
	if payload.Price != nil {
		course.Price = *payload.Price
	}

	if err := s.courses.Create(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}
	s.invalidateCatalog(ctx)

	observability.Logger(ctx, s.logger).Info().Uint("course_id", course.ID).Uint("coordinator_id", actor.ID).Msg("course created")

	if _, err := s.notifications.NotifyCourseCreated(ctx, course); err != nil {
		observability.Logger(ctx, s.logger).Error().Err(err).Uint("course_id", course.ID).Msg("course created but learner notifications failed")
		return dto.CourseResponse{}, apperror.Internal(err)
	}

	created, err := s.find(ctx, course.ID)
	if err != nil {
		return dto.CourseResponse{}, err
	}
	return dto.NewCourseResponse(created), nil
}

func (s *courseService) Update(ctx context.Context, actor authz.Actor, id uint, payload dto.CourseUpdateRequest) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	course, err := s.findOwned(ctx, actor, id)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	if payload.Title != nil {
		course.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.Description != nil {
		course.Description = strings.TrimSpace(*payload.Description)
	}
	if payload.Category != nil {
		course.Category = strings.TrimSpace(*payload.Category)
		if course.Category == "" {
			course.Category = models.DefaultCourseCategory
		}
	}
	if payload.Price != nil {
		course.Price = *payload.Price
	}
	if payload.Thumbnail != nil {
		course.Thumbnail = strings.TrimSpace(*payload.Thumbnail)
		if course.Thumbnail == "" {
			course.Thumbnail = models.DefaultCourseThumbnail
		}
	}

	if err := s.courses.Update(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}
	s.invalidateCatalog(ctx)

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Delete(ctx context.Context, actor authz.Actor, id uint) (dto.DeletedResponse, error) {
	course, err := s.findOwned(ctx, actor, id)
	if err != nil {
		return dto.DeletedResponse{}, err
	}

	if err := s.courses.Delete(ctx, id); err != nil {
		return dto.DeletedResponse{}, notFoundOr(err, ErrCourseNotFound)
	}
	s.invalidateCatalog(ctx)

	if s.images != nil {
		s.images.Remove(ctx, course.Thumbnail)
	}

	observability.Logger(ctx, s.logger).Info().Uint("course_id", id).Uint("coordinator_id", actor.ID).Msg("course deleted")
	return dto.DeletedResponse{ID: id}, nil
}

// AssignEducator appends the educator and notifies them. Re-assigning an
// existing educator changes nothing and sends nothing.
func (s *courseService) AssignEducator(ctx context.Context, actor authz.Actor, courseID, educatorID uint) (dto.CourseResponse, error) {
	course, err := s.findOwned(ctx, actor, courseID)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	educator, err := s.users.FindByID(ctx, educatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrInvalidEducator
		}
		return dto.CourseResponse{}, err
	}
	if educator.Role != models.RoleEducator {
		return dto.CourseResponse{}, ErrInvalidEducator
	}

	if course.HasEducator(educatorID) {
		return dto.NewCourseResponse(course), nil
	}

	if err := s.courses.AddEducator(ctx, &course, &educator); err != nil {
		return dto.CourseResponse{}, err
	}
	s.invalidateCatalog(ctx)

	if err := s.notifications.NotifyEducatorAssigned(ctx, educatorID, course); err != nil {
		observability.Logger(ctx, s.logger).Error().Err(err).Uint("course_id", courseID).Uint("educator_id", educatorID).Msg("educator assigned but notification failed")
		return dto.CourseResponse{}, apperror.Internal(err)
	}

	return s.Get(ctx, courseID)
}

func (s *courseService) UnassignEducator(ctx context.Context, actor authz.Actor, courseID, educatorID uint) (dto.CourseResponse, error) {
	course, err := s.findOwned(ctx, actor, courseID)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	if course.HasEducator(educatorID) {
		if err := s.courses.RemoveEducator(ctx, &course, educatorID); err != nil {
			return dto.CourseResponse{}, err
		}
		s.invalidateCatalog(ctx)
	}

	return s.Get(ctx, courseID)
}

// Enroll adds the calling learner to the course; enrolling twice is a no-op.
func (s *courseService) Enroll(ctx context.Context, actor authz.Actor, courseID uint) (dto.CourseResponse, error) {
	if err := authz.CanEnroll(actor); err != nil {
		return dto.CourseResponse{}, err
	}

	course, err := s.find(ctx, courseID)
	if err != nil {
		return dto.CourseResponse{}, err
	}
	if course.HasStudent(actor.ID) {
		return dto.NewCourseResponse(course), nil
	}

	learner, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return dto.CourseResponse{}, notFoundOr(err, ErrUserNotFound)
	}

	if err := s.courses.AddStudent(ctx, &course, &learner); err != nil {
		return dto.CourseResponse{}, err
	}

	s.invalidateCatalog(ctx)
	observability.Logger(ctx, s.logger).Info().Uint("course_id", courseID).Uint("learner_id", actor.ID).Msg("learner enrolled")
	return s.Get(ctx, courseID)
}

func (s *courseService) UpdateThumbnail(ctx context.Context, actor authz.Actor, courseID uint, file *multipart.FileHeader) (dto.CourseResponse, error) {
	course, err := s.findOwned(ctx, actor, courseID)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	url, err := s.images.Store(ctx, file)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	previous := course.Thumbnail
	course.Thumbnail = url
	if err := s.courses.Update(ctx, &course); err != nil {
		s.images.Remove(ctx, url)
		return dto.CourseResponse{}, err
	}
	s.invalidateCatalog(ctx)

	if previous != url {
		s.images.Remove(ctx, previous)
	}
	return dto.NewCourseResponse(course), nil
}

func (s *courseService) find(ctx context.Context, id uint) (models.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return models.Course{}, notFoundOr(err, ErrCourseNotFound)
	}
	return course, nil
}

func (s *courseService) findOwned(ctx context.Context, actor authz.Actor, id uint) (models.Course, error) {
	course, err := s.find(ctx, id)
	if err != nil {
		return models.Course{}, err
	}
	if err := authz.CanMutateCourse(actor, course); err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (s *courseService) invalidateCatalog(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, courseCatalogCacheKey).Err(); err != nil {
		observability.Logger(ctx, s.logger).Warn().Err(err).Msg("failed to invalidate course cache")
	}
}
