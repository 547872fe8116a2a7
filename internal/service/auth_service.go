package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/coursehub-api/internal/dto"
	"github.com/noah-isme/coursehub-api/internal/models"
	"github.com/noah-isme/coursehub-api/internal/observability"
	"github.com/noah-isme/coursehub-api/internal/repository"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID uint, role string) (string, error)
}

// AuthService handles signup, login and the bootstrap coordinator.
type AuthService interface {
	Register(ctx context.Context, payload dto.RegisterRequest) (dto.AuthResponse, error)
	Login(ctx context.Context, payload dto.LoginRequest) (dto.AuthResponse, error)
	Me(ctx context.Context, userID uint) (dto.UserResponse, error)
	EnsureCoordinator(ctx context.Context, name, email, password string) error
}

type authService struct {
	users                  repository.UserRepository
	tokens                 TokenIssuer
	validator              *validator.Validate
	logger                 zerolog.Logger
	allowCoordinatorSignup bool
	hashCost               int
}

// NewAuthService constructs an AuthService.
func NewAuthService(users repository.UserRepository, tokens TokenIssuer, allowCoordinatorSignup bool, validate *validator.Validate, logger zerolog.Logger) AuthService {
	return &authService{
		users:                  users,
		tokens:                 tokens,
		validator:              validate,
		logger:                 logger.With().Str("component", "auth_service").Logger(),
		allowCoordinatorSignup: allowCoordinatorSignup,
		hashCost:               bcrypt.DefaultCost,
	}
}

func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	role := models.RoleLearner
	if payload.Role != "" {
		parsed, ok := models.ParseRole(payload.Role)
		if !ok {
			return dto.AuthResponse{}, ErrInvalidRole
		}
		role = parsed
	}
	if role == models.RoleCoordinator && !s.allowCoordinatorSignup {
		return dto.AuthResponse{}, ErrCoordinatorSignupDisabled
	}

	user, err := s.createUser(ctx, payload.Name, payload.Email, payload.Password, role)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	observability.Logger(ctx, s.logger).Info().Uint("user_id", user.ID).Str("role", user.Role.String()).Msg("user registered")

	return s.authenticate(user)
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	user, err := s.users.FindByEmail(ctx, normalizeEmail(payload.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AuthResponse{}, ErrInvalidCredentials
		}
		return dto.AuthResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		return dto.AuthResponse{}, ErrInvalidCredentials
	}

	return s.authenticate(user)
}

func (s *authService) Me(ctx context.Context, userID uint) (dto.UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return dto.UserResponse{}, notFoundOr(err, ErrUserNotFound)
	}
	return dto.NewUserResponse(user), nil
}

// EnsureCoordinator seeds a coordinator account when the email is unused.
func (s *authService) EnsureCoordinator(ctx context.Context, name, email, password string) error {
	email = normalizeEmail(email)
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if strings.TrimSpace(name) == "" {
		name = "Coordinator"
	}

	user, err := s.createUser(ctx, name, email, password, models.RoleCoordinator)
	if err != nil {
		return err
	}

	observability.Logger(ctx, s.logger).Info().Uint("user_id", user.ID).Msg("bootstrap coordinator created")
	return nil
}

func (s *authService) createUser(ctx context.Context, name, email, password string, role models.Role) (models.User, error) {
	email = normalizeEmail(email)
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return models.User{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, err
	}

	return user, nil
}

func (s *authService) authenticate(user models.User) (dto.AuthResponse, error) {
	signed, err := s.tokens.Issue(user.ID, user.Role.String())
	if err != nil {
		return dto.AuthResponse{}, err
	}
	return dto.AuthResponse{Token: signed, User: dto.NewUserResponse(user)}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
