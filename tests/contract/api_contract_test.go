package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coursehub-api/internal/authz"
	"github.com/noah-isme/coursehub-api/internal/config"
	"github.com/noah-isme/coursehub-api/internal/dto"
	"github.com/noah-isme/coursehub-api/internal/handler"
	"github.com/noah-isme/coursehub-api/internal/router"
	"github.com/noah-isme/coursehub-api/internal/service"
	"github.com/noah-isme/coursehub-api/pkg/validation"
)

var contractTime = time.Date(2024, time.March, 4, 9, 30, 0, 0, time.UTC)

type stubCourseService struct {
	service.CourseService
	courses []dto.CourseResponse
}

func (s stubCourseService) List(context.Context) ([]dto.CourseResponse, error) {
	return s.courses, nil
}

type stubSubmissionService struct {
	service.SubmissionService
}

func (stubSubmissionService) Submit(_ context.Context, actor authz.Actor, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	if payload.AssignmentID == 404 {
		return dto.SubmissionResponse{}, service.ErrAssignmentNotFound
	}
	if payload.AssignmentID == 409 {
		return dto.SubmissionResponse{}, service.ErrDuplicateSubmission
	}

	score := 50.0
	gradedAt := contractTime
	return dto.SubmissionResponse{
		ID:           1,
		AssignmentID: payload.AssignmentID,
		StudentID:    actor.ID,
		QuizAnswers:  payload.QuizAnswers,
		Score:        &score,
		Grade:        &score,
		Status:       "graded",
		GradedAt:     &gradedAt,
		CreatedAt:    contractTime,
		UpdatedAt:    contractTime,
		Assignment:   &dto.AssignmentLite{ID: payload.AssignmentID, Title: "Quiz", Type: "quiz", DueDate: contractTime.AddDate(0, 0, 7)},
	}, nil
}

type stubNotificationService struct {
	service.NotificationService
}

func (stubNotificationService) List(_ context.Context, userID uint, _ dto.NotificationListQuery) ([]dto.NotificationResponse, error) {
	return []dto.NotificationResponse{
		{ID: 2, UserID: userID, Message: `New course alert: "Go" is now available in Software Development!`, Type: "info", CreatedAt: contractTime},
		{ID: 1, UserID: userID, Message: `You have been assigned as an educator for the course "Go"`, Type: "success", CreatedAt: contractTime},
	}, nil
}

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()

	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", name))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + filepath.ToSlash(schemaPath))
	require.NoError(t, err)
	return schema
}

func setupContractApp() *fiber.App {
	logger := zerolog.Nop()
	validator := validation.New()

	courses := stubCourseService{courses: []dto.CourseResponse{{
		ID:               1,
		Title:            "Go Fundamentals",
		Description:      "Types and interfaces",
		Category:         "Development",
		CategoryLabel:    "Software Development",
		IsFree:           true,
		Thumbnail:        "https://placehold.co/600x400",
		CoordinatorID:    1,
		Coordinator:      dto.UserSummary{ID: 1, Name: "Cora", Email: "cora@example.com"},
		Educators:        []dto.UserSummary{{ID: 2, Name: "Ed", Email: "ed@example.com"}},
		EnrolledStudents: []uint{3},
		CreatedAt:        contractTime,
		UpdatedAt:        contractTime,
	}}}

	app := fiber.New(fiber.Config{ErrorHandler: handler.ErrorHandler(logger)})
	router.Register(app, config.Config{AppName: "Contract"}, router.Dependencies{
		CourseHandler:       handler.NewCourseHandler(courses, validator, logger),
		SubmissionHandler:   handler.NewSubmissionHandler(stubSubmissionService{}, nil, validator, logger),
		NotificationHandler: handler.NewNotificationHandler(stubNotificationService{}, validator, logger, time.Second),
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals("user_id", uint(3))
			c.Locals("user_role", "learner")
			return c.Next()
		},
	})
	return app
}

func fetch(t *testing.T, app *fiber.App, method, path, body string) (int, interface{}) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload interface{}
	require.NoError(t, json.Unmarshal(raw, &payload))
	return resp.StatusCode, payload
}

func TestCourseCatalogContract(t *testing.T) {
	schema := compileSchema(t, "course_list.schema.json")

	status, payload := fetch(t, setupContractApp(), http.MethodGet, "/api/courses", "")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, schema.Validate(payload))
}

func TestSubmissionContract(t *testing.T) {
	schema := compileSchema(t, "submission.schema.json")

	status, payload := fetch(t, setupContractApp(), http.MethodPost, "/api/submissions", `{"assignmentId": 7, "quizAnswers": [1, null]}`)
	require.Equal(t, http.StatusCreated, status)
	require.NoError(t, schema.Validate(payload))
}

func TestNotificationListContract(t *testing.T) {
	schema := compileSchema(t, "notification.schema.json")

	status, payload := fetch(t, setupContractApp(), http.MethodGet, "/api/notifications", "")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, schema.Validate(payload))
}

func TestErrorEnvelopeContract(t *testing.T) {
	schema := compileSchema(t, "error.schema.json")
	app := setupContractApp()

	cases := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{http.MethodPost, "/api/submissions", `{"assignmentId": 404, "quizAnswers": []}`, http.StatusNotFound},
		{http.MethodPost, "/api/submissions", `{"assignmentId": 409, "quizAnswers": []}`, http.StatusConflict},
		{http.MethodPost, "/api/submissions", `{"assignmentId": `, http.StatusBadRequest},
		{http.MethodGet, "/api/courses/abc", "", http.StatusBadRequest},
		{http.MethodGet, "/api/unknown", "", http.StatusNotFound},
	}

	for _, tc := range cases {
		status, payload := fetch(t, app, tc.method, tc.path, tc.body)
		require.Equal(t, tc.status, status, tc.path)
		require.NoError(t, schema.Validate(payload), tc.path)
	}
}
