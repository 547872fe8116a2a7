package service

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/coursehub-api/internal/authz"
	"github.com/noah-isme/coursehub-api/internal/dto"
	"github.com/noah-isme/coursehub-api/internal/models"
	"github.com/noah-isme/coursehub-api/internal/observability"
	"github.com/noah-isme/coursehub-api/internal/repository"
)

// UserService covers coordinator administration and self-service profile edits.
type UserService interface {
	List(ctx context.Context, actor authz.Actor, query dto.UserListQuery) ([]dto.UserResponse, error)
	Get(ctx context.Context, actor authz.Actor, id uint) (dto.UserResponse, error)
	Update(ctx context.Context, actor authz.Actor, id uint, payload dto.UserUpdateRequest) (dto.UserResponse, error)
	Delete(ctx context.Context, actor authz.Actor, id uint) (dto.DeletedResponse, error)
	UpdateProfile(ctx context.Context, userID uint, payload dto.ProfileUpdateRequest) (dto.UserResponse, error)
	ChangePassword(ctx context.Context, userID uint, payload dto.PasswordChangeRequest) error
	UpdateProfileImage(ctx context.Context, userID uint, file *multipart.FileHeader) (dto.UserResponse, error)
}

type userService struct {
	users     repository.UserRepository
	images    ImageService
	validator *validator.Validate
	logger    zerolog.Logger
	hashCost  int
}

// NewUserService constructs a UserService.
func NewUserService(users repository.UserRepository, images ImageService, validate *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		users:     users,
		images:    images,
		validator: validate,
		logger:    logger.With().Str("component", "user_service").Logger(),
		hashCost:  bcrypt.DefaultCost,
	}
}

func (s *userService) List(ctx context.Context, actor authz.Actor, query dto.UserListQuery) ([]dto.UserResponse, error) {
	if err := authz.CanAdministerUsers(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(query); err != nil {
		return nil, err
	}

	filter := repository.UserFilter{}
	if role, ok := models.ParseRole(query.Role); ok {
		filter.Role = &role
	}

	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponseSlice(users), nil
}

func (s *userService) Get(ctx context.Context, actor authz.Actor, id uint) (dto.UserResponse, error) {
	if err := authz.CanAdministerUsers(actor); err != nil {
		return dto.UserResponse{}, err
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return dto.UserResponse{}, notFoundOr(err, ErrUserNotFound)
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) Update(ctx context.Context, actor authz.Actor, id uint, payload dto.UserUpdateRequest) (dto.UserResponse, error) {
	if err := authz.CanAdministerUsers(actor); err != nil {
		return dto.UserResponse{}, err
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return dto.UserResponse{}, notFoundOr(err, ErrUserNotFound)
	}

	if payload.Name != nil {
		user.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.Email != nil {
		email := normalizeEmail(*payload.Email)
		if email != user.Email {
			if existing, err := s.users.FindByEmail(ctx, email); err == nil && existing.ID != user.ID {
				return dto.UserResponse{}, ErrEmailTaken
			} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.UserResponse{}, err
			}
			user.Email = email
		}
	}
	if payload.Role != nil {
		role, ok := models.ParseRole(*payload.Role)
		if !ok {
			return dto.UserResponse{}, ErrInvalidRole
		}
		user.Role = role
	}

	if err := s.users.Update(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.UserResponse{}, ErrEmailTaken
		}
		return dto.UserResponse{}, err
	}

	observability.Logger(ctx, s.logger).Info().Uint("user_id", user.ID).Uint("actor_id", actor.ID).Msg("user updated")
	return dto.NewUserResponse(user), nil
}

func (s *userService) Delete(ctx context.Context, actor authz.Actor, id uint) (dto.DeletedResponse, error) {
	if err := authz.CanDeleteUser(actor, id); err != nil {
		return dto.DeletedResponse{}, err
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return dto.DeletedResponse{}, notFoundOr(err, ErrUserNotFound)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return dto.DeletedResponse{}, notFoundOr(err, ErrUserNotFound)
	}

	if s.images != nil {
		s.images.Remove(ctx, user.ProfileImage)
	}

	observability.Logger(ctx, s.logger).Info().Uint("user_id", id).Uint("actor_id", actor.ID).Msg("user deleted")
	return dto.DeletedResponse{ID: id}, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint, payload dto.ProfileUpdateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return dto.UserResponse{}, notFoundOr(err, ErrUserNotFound)
	}

	if payload.Name != nil {
		user.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.Phone != nil {
		user.Phone = strings.TrimSpace(*payload.Phone)
	}
	if payload.Education != nil {
		user.Education = strings.TrimSpace(*payload.Education)
	}

	if err := s.users.Update(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) ChangePassword(ctx context.Context, userID uint, payload dto.PasswordChangeRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return notFoundOr(err, ErrUserNotFound)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.NewPassword), s.hashCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)

	if err := s.users.Update(ctx, &user); err != nil {
		return err
	}

	observability.Logger(ctx, s.logger).Info().Uint("user_id", userID).Msg("password changed")
	return nil
}

// UpdateProfileImage stores the new image first and only then drops the old one.
func (s *userService) UpdateProfileImage(ctx context.Context, userID uint, file *multipart.FileHeader) (dto.UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return dto.UserResponse{}, notFoundOr(err, ErrUserNotFound)
	}

	url, err := s.images.Store(ctx, file)
	if err != nil {
		return dto.UserResponse{}, err
	}

	previous := user.ProfileImage
	user.ProfileImage = url
	if err := s.users.Update(ctx, &user); err != nil {
		s.images.Remove(ctx, url)
		return dto.UserResponse{}, err
	}

	if previous != "" && previous != url {
		s.images.Remove(ctx, previous)
	}
	return dto.NewUserResponse(user), nil
}
