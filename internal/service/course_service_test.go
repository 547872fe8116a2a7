package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coursehub-api/internal/apperror"
	"github.com/noah-isme/coursehub-api/internal/authz"
	"github.com/noah-isme/coursehub-api/internal/dto"
	"github.com/noah-isme/coursehub-api/internal/models"
)

type failingNotifier struct {
	NotificationService
	err error
}

func (f failingNotifier) NotifyCourseCreated(ctx context.Context, course models.Course) (int, error) {
	return 0, f.err
}

func setupCourseService(t *testing.T, cache *redis.Client) (*testEnv, CourseService, *storageStub) {
	t.Helper()
	env := newTestEnv(t)
	storage := &storageStub{}
	notifications := NewNotificationService(env.notifications, env.users, nil, "", nil, testValidator(), testLogger())
	svc := NewCourseService(env.courses, env.users, notifications, NewImageService(storage, 2, testLogger()), cache, time.Minute, testValidator(), testLogger())
	return env, svc, storage
}

func TestCourseCreateNotifiesEveryLearner(t *testing.T) {
	env, svc, _ := setupCourseService(t, nil)
	coordinator := env.seedUser(t, "Cora", models.RoleCoordinator)
	env.seedUser(t, "Ed", models.RoleEducator)
	learners := []models.User{
		env.seedUser(t, "Lia", models.RoleLearner),
		env.seedUser(t, "Leo", models.RoleLearner),
		env.seedUser(t, "Lou", models.RoleLearner),
	}

	created, err := svc.Create(context.Background(), actorOf(coordinator), dto.CourseCreateRequest{
		Title:       "Go Fundamentals",
		Description: "Types and interfaces",
	})
	require.NoError(t, err)
	require.Equal(t, models.DefaultCourseCategory, created.Category)
	require.Equal(t, "Software Development", created.CategoryLabel)
	require.Equal(t, models.DefaultCourseThumbnail, created.Thumbnail)
	require.True(t, created.IsFree)
	require.Equal(t, coordinator.ID, created.CoordinatorID)

	for _, learner := range learners {
		items, err := env.notifications.ListByUser(context.Background(), learner.ID, 10, 0)
		require.NoError(t, err)
		require.Len(t, items, 1)
		require.Equal(t, `New course alert: "Go Fundamentals" is now available in Software Development!`, items[0].Message)
		require.Equal(t, models.NotificationTypeInfo, items[0].Type)
		require.False(t, items[0].IsRead)
	}

	items, err := env.notifications.ListByUser(context.Background(), coordinator.ID, 10, 0)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestCourseCreateRequiresCoordinator(t *testing.T) {
	env, svc, _ := setupCourseService(t, nil)
	educator := env.seedUser(t, "Ed", models.RoleEducator)

	_, err := svc.Create(context.Background(), actorOf(educator), dto.CourseCreateRequest{Title: "Go", Description: "x"})
	require.ErrorIs(t, err, authz.ErrCoordinatorOnly)
}

func TestCourseCreateKeepsCourseWhenFanOutFails(t *testing.T) {
	env := newTestEnv(t)
	notifier := failingNotifier{err: errors.New("broker down")}
	svc := NewCourseService(env.courses, env.users, notifier, nil, nil, time.Minute, testValidator(), testLogger())
	coordinator := env.seedUser(t, "Cora", models.RoleCoordinator)

	_, err := svc.Create(context.Background(), actorOf(coordinator), dto.CourseCreateRequest{Title: "Go 101", Description: "x"})
	require.True(t, apperror.Is(err, apperror.KindInternal))

	courses, err := env.courses.List(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 1)
}

func TestCourseDeleteOnlyByOwner(t *testing.T) {
	env, svc, _ := setupCourseService(t, nil)
	owner := env.seedUser(t, "Cora", models.RoleCoordinator)
	otherCoordinator := env.seedUser(t, "Carl", models.RoleCoordinator)
	educator := env.seedUser(t, "Ed", models.RoleEducator)
	course := env.seedCourse(t, owner, educator)

	_, err := svc.Delete(context.Background(), actorOf(otherCoordinator), course.ID)
	require.ErrorIs(t, err, authz.ErrNotCourseOwner)
	require.True(t, apperror.Is(err, apperror.KindUnauthorized))

	_, err = svc.Delete(context.Background(), actorOf(educator), course.ID)
	require.ErrorIs(t, err, authz.ErrNotCourseOwner)

	deleted, err := svc.Delete(context.Background(), actorOf(owner), course.ID)
	require.NoError(t, err)
	require.Equal(t, course.ID, deleted.ID)

	_, err = svc.Get(context.Background(), course.ID)
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCourseUpdatePartial(t *testing.T) {
	env, svc, _ := setupCourseService(t, nil)
	owner := env.seedUser(t, "Cora", models.RoleCoordinator)
	course := env.seedCourse(t, owner)

	updated, err := svc.Update(context.Background(), actorOf(owner), course.ID, dto.CourseUpdateRequest{
		Category: stringPtr("Business"),
		Price:    floatPtr(49.5),
	})
	require.NoError(t, err)
	require.Equal(t, "Go Fundamentals", updated.Title)
	require.Equal(t, "Business & Finance", updated.CategoryLabel)
	require.False(t, updated.IsFree)
}

func TestCourseAssignEducatorNotifiesOnce(t *testing.T) {
	env, svc, _ := setupCourseService(t, nil)
	owner := env.seedUser(t, "Cora", models.RoleCoordinator)
	educator := env.seedUser(t, "Ed", models.RoleEducator)
	learner := env.seedUser(t, "Lia", models.RoleLearner)
	course := env.seedCourse(t, owner)

	_, err := svc.AssignEducator(context.Background(), actorOf(owner), course.ID, learner.ID)
	require.ErrorIs(t, err, ErrInvalidEducator)

	_, err = svc.AssignEducator(context.Background(), actorOf(owner), course.ID, 999)
	require.ErrorIs(t, err, ErrInvalidEducator)

	assigned, err := svc.AssignEducator(context.Background(), actorOf(owner), course.ID, educator.ID)
	require.NoError(t, err)
	require.Len(t, assigned.Educators, 1)
	require.Equal(t, educator.ID, assigned.Educators[0].ID)

	again, err := svc.AssignEducator(context.Background(), actorOf(owner), course.ID, educator.ID)
	require.NoError(t, err)
	require.Len(t, again.Educators, 1)

	items, err := env.notifications.ListByUser(context.Background(), educator.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, `You have been assigned as an educator for the course "Go Fundamentals"`, items[0].Message)
	require.Equal(t, models.NotificationTypeSuccess, items[0].Type)

	removed, err := svc.UnassignEducator(context.Background(), actorOf(owner), course.ID, educator.ID)
	require.NoError(t, err)
	require.Empty(t, removed.Educators)
}

func TestCourseEnrollIsIdempotent(t *testing.T) {
	env, svc, _ := setupCourseService(t, nil)
	owner := env.seedUser(t, "Cora", models.RoleCoordinator)
	learner := env.seedUser(t, "Lia", models.RoleLearner)
	course := env.seedCourse(t, owner)

	_, err := svc.Enroll(context.Background(), actorOf(owner), course.ID)
	require.ErrorIs(t, err, authz.ErrLearnerOnly)

	first, err := svc.Enroll(context.Background(), actorOf(learner), course.ID)
	require.NoError(t, err)
	require.Equal(t, []uint{learner.ID}, first.EnrolledStudents)

	second, err := svc.Enroll(context.Background(), actorOf(learner), course.ID)
	require.NoError(t, err)
	require.Equal(t, []uint{learner.ID}, second.EnrolledStudents)

	_, err = svc.Enroll(context.Background(), actorOf(learner), 404)
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCourseCatalogCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	env, svc, _ := setupCourseService(t, client)
	owner := env.seedUser(t, "Cora", models.RoleCoordinator)
	env.seedCourse(t, owner)

	listed, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.True(t, mr.Exists(courseCatalogCacheKey))

	cached, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, listed[0].ID, cached[0].ID)

	_, err = svc.Create(context.Background(), actorOf(owner), dto.CourseCreateRequest{Title: "Rust", Description: "Ownership"})
	require.NoError(t, err)
	require.False(t, mr.Exists(courseCatalogCacheKey))

	refreshed, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, refreshed, 2)
}

func TestCourseThumbnailReplacesPrevious(t *testing.T) {
	env, svc, storage := setupCourseService(t, nil)
	owner := env.seedUser(t, "Cora", models.RoleCoordinator)
	course := env.seedCourse(t, owner)

	updated, err := svc.UpdateThumbnail(context.Background(), actorOf(owner), course.ID, buildFileHeader(t, "cover.png", pngHeader))
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/cover.png", updated.Thumbnail)
	require.Equal(t, []string{models.DefaultCourseThumbnail}, storage.deleted)
}
