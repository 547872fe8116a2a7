package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/coursehub-api/internal/authz"
	"github.com/noah-isme/coursehub-api/internal/dto"
	"github.com/noah-isme/coursehub-api/internal/models"
)

func setupUserService(t *testing.T) (*testEnv, UserService, *storageStub) {
	t.Helper()
	env := newTestEnv(t)
	storage := &storageStub{}
	svc := NewUserService(env.users, NewImageService(storage, 2, testLogger()), testValidator(), testLogger())
	if concrete, ok := svc.(*userService); ok {
		concrete.hashCost = bcrypt.MinCost
	}
	return env, svc, storage
}

func TestUserServiceAdministrationRequiresCoordinator(t *testing.T) {
	env, svc, _ := setupUserService(t)
	educator := env.seedUser(t, "Ed", models.RoleEducator)
	learner := env.seedUser(t, "Lia", models.RoleLearner)

	_, err := svc.List(context.Background(), actorOf(educator), dto.UserListQuery{})
	require.ErrorIs(t, err, authz.ErrCoordinatorOnly)

	_, err = svc.Update(context.Background(), actorOf(learner), educator.ID, dto.UserUpdateRequest{Name: stringPtr("Nope")})
	require.ErrorIs(t, err, authz.ErrCoordinatorOnly)

	_, err = svc.Delete(context.Background(), actorOf(educator), learner.ID)
	require.ErrorIs(t, err, authz.ErrCoordinatorOnly)
}

func TestUserServiceListFiltersByRole(t *testing.T) {
	env, svc, _ := setupUserService(t)
	coordinator := env.seedUser(t, "Cora", models.RoleCoordinator)
	env.seedUser(t, "Ed", models.RoleEducator)
	env.seedUser(t, "Lia", models.RoleLearner)
	env.seedUser(t, "Leo", models.RoleLearner)

	all, err := svc.List(context.Background(), actorOf(coordinator), dto.UserListQuery{})
	require.NoError(t, err)
	require.Len(t, all, 4)

	learners, err := svc.List(context.Background(), actorOf(coordinator), dto.UserListQuery{Role: "learner"})
	require.NoError(t, err)
	require.Len(t, learners, 2)
	for _, user := range learners {
		require.Equal(t, "Student", user.RoleLabel)
	}
}

func TestUserServiceUpdateChangesRoleAndEmail(t *testing.T) {
	env, svc, _ := setupUserService(t)
	coordinator := env.seedUser(t, "Cora", models.RoleCoordinator)
	learner := env.seedUser(t, "Lia", models.RoleLearner)
	env.seedUser(t, "Taken", models.RoleLearner)

	_, err := svc.Update(context.Background(), actorOf(coordinator), learner.ID, dto.UserUpdateRequest{Email: stringPtr("taken@example.com")})
	require.ErrorIs(t, err, ErrEmailTaken)

	updated, err := svc.Update(context.Background(), actorOf(coordinator), learner.ID, dto.UserUpdateRequest{
		Email: stringPtr(" Lia.New@Example.com"),
		Role:  stringPtr("educator"),
	})
	require.NoError(t, err)
	require.Equal(t, "lia.new@example.com", updated.Email)
	require.Equal(t, string(models.RoleEducator), updated.Role)
	require.Equal(t, "Instructor", updated.RoleLabel)

	_, err = svc.Update(context.Background(), actorOf(coordinator), 999, dto.UserUpdateRequest{Name: stringPtr("Ghost")})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserServiceDelete(t *testing.T) {
	env, svc, storage := setupUserService(t)
	coordinator := env.seedUser(t, "Cora", models.RoleCoordinator)
	learner := env.seedUser(t, "Lia", models.RoleLearner)
	learner.ProfileImage = "https://cdn.example.com/lia.png"
	require.NoError(t, env.users.Update(context.Background(), &learner))

	_, err := svc.Delete(context.Background(), actorOf(coordinator), coordinator.ID)
	require.ErrorIs(t, err, authz.ErrSelfDeletion)

	deleted, err := svc.Delete(context.Background(), actorOf(coordinator), learner.ID)
	require.NoError(t, err)
	require.Equal(t, learner.ID, deleted.ID)
	require.Equal(t, []string{"https://cdn.example.com/lia.png"}, storage.deleted)

	_, err = svc.Delete(context.Background(), actorOf(coordinator), learner.ID)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserServiceProfileAndPassword(t *testing.T) {
	env, svc, _ := setupUserService(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("old-secret"), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{Name: "Lia", Email: "lia@example.com", PasswordHash: string(hash), Role: models.RoleLearner}
	require.NoError(t, env.users.Create(context.Background(), &user))

	profile, err := svc.UpdateProfile(context.Background(), user.ID, dto.ProfileUpdateRequest{
		Phone:     stringPtr(" +62 811 "),
		Education: stringPtr("Computer Science"),
	})
	require.NoError(t, err)
	require.Equal(t, "+62 811", profile.Phone)
	require.Equal(t, "Computer Science", profile.Education)
	require.Equal(t, "Lia", profile.Name)

	err = svc.ChangePassword(context.Background(), user.ID, dto.PasswordChangeRequest{CurrentPassword: "nope", NewPassword: "new-secret"})
	require.ErrorIs(t, err, ErrWrongPassword)

	require.NoError(t, svc.ChangePassword(context.Background(), user.ID, dto.PasswordChangeRequest{CurrentPassword: "old-secret", NewPassword: "new-secret"}))

	stored, err := env.users.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("new-secret")))
}

func TestUserServiceProfileImageReplacesPrevious(t *testing.T) {
	env, svc, storage := setupUserService(t)
	user := env.seedUser(t, "Lia", models.RoleLearner)

	first, err := svc.UpdateProfileImage(context.Background(), user.ID, buildFileHeader(t, "first.png", pngHeader))
	require.NoError(t, err)
	require.Contains(t, first.ProfileImage, "first")
	require.Empty(t, storage.deleted)

	second, err := svc.UpdateProfileImage(context.Background(), user.ID, buildFileHeader(t, "second.png", pngHeader))
	require.NoError(t, err)
	require.Contains(t, second.ProfileImage, "second")
	require.Equal(t, []string{first.ProfileImage}, storage.deleted)
}
