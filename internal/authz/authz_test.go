package authz

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coursehub-api/internal/apperror"
	"github.com/noah-isme/coursehub-api/internal/models"
)

func TestCanMutateCourse(t *testing.T) {
	course := models.Course{ID: 1, CoordinatorID: 10, Educators: []models.User{{ID: 20}}}

	require.NoError(t, CanMutateCourse(Actor{ID: 10, Role: models.RoleCoordinator}, course))

	err := CanMutateCourse(Actor{ID: 11, Role: models.RoleCoordinator}, course)
	require.ErrorIs(t, err, ErrNotCourseOwner)
	require.True(t, apperror.Is(err, apperror.KindUnauthorized))

	require.ErrorIs(t, CanMutateCourse(Actor{ID: 20, Role: models.RoleEducator}, course), ErrNotCourseOwner)
	require.ErrorIs(t, CanMutateCourse(Actor{ID: 10, Role: models.RoleLearner}, course), ErrNotCourseOwner)
	require.ErrorIs(t, CanMutateCourse(Actor{ID: 10, Role: "guest"}, course), ErrUnknownRole)
}

func TestCanManageCourseContent(t *testing.T) {
	course := models.Course{ID: 1, CoordinatorID: 10, Educators: []models.User{{ID: 20}}}

	require.NoError(t, CanManageCourseContent(Actor{ID: 99, Role: models.RoleCoordinator}, course))
	require.NoError(t, CanManageCourseContent(Actor{ID: 20, Role: models.RoleEducator}, course))

	err := CanManageCourseContent(Actor{ID: 21, Role: models.RoleEducator}, course)
	require.ErrorIs(t, err, ErrNotCourseStaff)
	require.True(t, apperror.Is(err, apperror.KindForbidden))

	require.ErrorIs(t, CanManageCourseContent(Actor{ID: 20, Role: models.RoleLearner}, course), ErrNotCourseStaff)
}

func TestSubmissionRules(t *testing.T) {
	learner := Actor{ID: 5, Role: models.RoleLearner}
	educator := Actor{ID: 6, Role: models.RoleEducator}
	coordinator := Actor{ID: 7, Role: models.RoleCoordinator}

	require.NoError(t, CanSubmit(learner))
	require.ErrorIs(t, CanSubmit(educator), ErrLearnerOnly)
	require.ErrorIs(t, CanSubmit(coordinator), ErrLearnerOnly)

	require.NoError(t, CanGrade(educator))
	require.NoError(t, CanGrade(coordinator))
	require.ErrorIs(t, CanGrade(learner), ErrStaffOnly)

	own := models.Submission{StudentID: 5}
	other := models.Submission{StudentID: 8}
	require.NoError(t, CanViewSubmission(learner, own))
	require.ErrorIs(t, CanViewSubmission(learner, other), ErrStaffOnly)
	require.NoError(t, CanViewSubmission(educator, other))

	require.False(t, CanSeeAnswerKey(learner))
	require.True(t, CanSeeAnswerKey(educator))
}

func TestUserAdministration(t *testing.T) {
	coordinator := Actor{ID: 1, Role: models.RoleCoordinator}
	educator := Actor{ID: 2, Role: models.RoleEducator}

	require.NoError(t, CanAdministerUsers(coordinator))
	require.ErrorIs(t, CanAdministerUsers(educator), ErrCoordinatorOnly)

	require.NoError(t, CanDeleteUser(coordinator, 2))
	require.ErrorIs(t, CanDeleteUser(coordinator, 1), ErrSelfDeletion)
	require.ErrorIs(t, CanDeleteUser(educator, 2), ErrSelfDeletion)
	require.True(t, apperror.Is(CanDeleteUser(educator, 2), apperror.KindValidation))
	require.ErrorIs(t, CanDeleteUser(educator, 1), ErrCoordinatorOnly)
}
