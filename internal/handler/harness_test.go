package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/coursehub-api/internal/config"
	"github.com/noah-isme/coursehub-api/internal/database"
	"github.com/noah-isme/coursehub-api/internal/handler"
	"github.com/noah-isme/coursehub-api/internal/middleware"
	"github.com/noah-isme/coursehub-api/internal/models"
	"github.com/noah-isme/coursehub-api/internal/repository"
	"github.com/noah-isme/coursehub-api/internal/router"
	"github.com/noah-isme/coursehub-api/internal/service"
	"github.com/noah-isme/coursehub-api/pkg/localstore"
	"github.com/noah-isme/coursehub-api/pkg/token"
	"github.com/noah-isme/coursehub-api/pkg/validation"
)

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Kind    string            `json:"kind"`
	Data    json.RawMessage   `json:"data"`
	Details map[string]string `json:"details"`
}

type testApp struct {
	app           *fiber.App
	db            *gorm.DB
	tokens        *token.Manager
	users         repository.UserRepository
	notifications service.NotificationService
}

func setupApp(t *testing.T) *testApp {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect("sqlite", fmt.Sprintf("file:http_%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano()))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	store, err := localstore.New(t.TempDir(), "/uploads")
	require.NoError(t, err)

	logger := zerolog.New(io.Discard)
	validator := validation.New()
	tokens := token.NewManager("test-secret", time.Hour)

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	images := service.NewImageService(store, 2, logger)
	notifications := service.NewNotificationService(repository.NewNotificationRepository(db), userRepo, nil, "", nil, validator.Validate, logger)

	app := fiber.New(fiber.Config{ErrorHandler: handler.ErrorHandler(logger)})
	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, config.Config{AppName: "Test", AppEnv: "test"}, router.Dependencies{
		AuthHandler:         handler.NewAuthHandler(service.NewAuthService(userRepo, tokens, false, validator.Validate, logger), validator, logger),
		UserHandler:         handler.NewUserHandler(service.NewUserService(userRepo, images, validator.Validate, logger), validator, logger),
		CourseHandler:       handler.NewCourseHandler(service.NewCourseService(courseRepo, userRepo, notifications, images, nil, time.Minute, validator.Validate, logger), validator, logger),
		StudyPlanHandler:    handler.NewStudyPlanHandler(service.NewStudyPlanService(repository.NewStudyPlanRepository(db), courseRepo, validator.Validate, logger), validator, logger),
		AssignmentHandler:   handler.NewAssignmentHandler(service.NewAssignmentService(assignmentRepo, courseRepo, validator.Validate, logger), validator, logger),
		SubmissionHandler:   handler.NewSubmissionHandler(service.NewSubmissionService(submissionRepo, assignmentRepo, validator.Validate, logger), service.NewGradebookService(submissionRepo, assignmentRepo, logger), validator, logger),
		NotificationHandler: handler.NewNotificationHandler(notifications, validator, logger, 50*time.Millisecond),
		JWTMiddleware:       middleware.JWTProtected(tokens),
		StreamMiddleware:    middleware.WithAuth(tokens, middleware.AuthOptions{AllowQueryToken: true}),
		UploadDir:           store.Dir(),
	})

	return &testApp{app: app, db: db, tokens: tokens, users: userRepo, notifications: notifications}
}

// seedUser stores an account directly and returns it with a signed token.
func (a *testApp) seedUser(t *testing.T, name string, role models.Role) (models.User, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Name:         name,
		Email:        strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		PasswordHash: string(hash),
		Role:         role,
	}
	require.NoError(t, a.users.Create(context.Background(), &user))

	signed, err := a.tokens.Issue(user.ID, string(role))
	require.NoError(t, err)
	return user, signed
}

func (a *testApp) do(t *testing.T, method, path, bearer string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	}
	return resp, decoded
}

func decodeData(t *testing.T, env envelope, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, target))
}
