package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/coursehub-api/internal/authz"
	"github.com/noah-isme/coursehub-api/internal/database"
	"github.com/noah-isme/coursehub-api/internal/models"
	"github.com/noah-isme/coursehub-api/internal/repository"
	"github.com/noah-isme/coursehub-api/pkg/validation"
)

var fixedNow = time.Date(2024, time.March, 4, 9, 30, 0, 0, time.UTC)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testValidator() *validator.Validate {
	return validation.New().Validate
}

// testEnv wires real repositories against an in-memory sqlite database.
type testEnv struct {
	db            *gorm.DB
	users         repository.UserRepository
	courses       repository.CourseRepository
	plans         repository.StudyPlanRepository
	assignments   repository.AssignmentRepository
	submissions   repository.SubmissionRepository
	notifications repository.NotificationRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect("sqlite", fmt.Sprintf("file:svc_%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano()))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return &testEnv{
		db:            db,
		users:         repository.NewUserRepository(db),
		courses:       repository.NewCourseRepository(db),
		plans:         repository.NewStudyPlanRepository(db),
		assignments:   repository.NewAssignmentRepository(db),
		submissions:   repository.NewSubmissionRepository(db),
		notifications: repository.NewNotificationRepository(db),
	}
}

func (e *testEnv) seedUser(t *testing.T, name string, role models.Role) models.User {
	t.Helper()
	user := models.User{
		Name:         name,
		Email:        strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		PasswordHash: "not-a-real-hash",
		Role:         role,
	}
	require.NoError(t, e.users.Create(context.Background(), &user))
	return user
}

func (e *testEnv) seedCourse(t *testing.T, coordinator models.User, educators ...models.User) models.Course {
	t.Helper()
	course := models.Course{
		Title:         "Go Fundamentals",
		Description:   "Types, interfaces and concurrency",
		Category:      models.DefaultCourseCategory,
		Thumbnail:     models.DefaultCourseThumbnail,
		CoordinatorID: coordinator.ID,
	}
	require.NoError(t, e.courses.Create(context.Background(), &course))
	for i := range educators {
		require.NoError(t, e.courses.AddEducator(context.Background(), &course, &educators[i]))
	}

	loaded, err := e.courses.FindByID(context.Background(), course.ID)
	require.NoError(t, err)
	return loaded
}

func (e *testEnv) seedQuiz(t *testing.T, course models.Course, answers ...int) models.Assignment {
	t.Helper()
	questions := make([]models.Question, 0, len(answers))
	for i, answer := range answers {
		questions = append(questions, models.Question{
			QuestionText:  fmt.Sprintf("Question %d", i+1),
			Options:       []string{"a", "b", "c", "d"},
			CorrectAnswer: answer,
		})
	}

	assignment := models.Assignment{
		CourseID:    course.ID,
		Title:       "Quiz",
		Description: "Pick the right option",
		DueDate:     fixedNow.Add(72 * time.Hour),
		Type:        models.AssignmentTypeQuiz,
		Questions:   questions,
	}
	require.NoError(t, e.assignments.Create(context.Background(), &assignment))
	return assignment
}

func (e *testEnv) seedTask(t *testing.T, course models.Course) models.Assignment {
	t.Helper()
	assignment := models.Assignment{
		CourseID:    course.ID,
		Title:       "Essay",
		Description: "Explain goroutines",
		DueDate:     fixedNow.Add(72 * time.Hour),
		Type:        models.AssignmentTypeTask,
	}
	require.NoError(t, e.assignments.Create(context.Background(), &assignment))
	return assignment
}

func actorOf(user models.User) authz.Actor {
	return authz.Actor{ID: user.ID, Role: user.Role}
}

func intPtr(value int) *int {
	return &value
}

func floatPtr(value float64) *float64 {
	return &value
}

func stringPtr(value string) *string {
	return &value
}
