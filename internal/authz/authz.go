// Package authz holds the role and ownership rules applied to every
// mutating operation. The checks are pure: they only look at the actor and
// the ownership fields of the resource.
package authz

import (
	"github.com/noah-isme/coursehub-api/internal/apperror"
	"github.com/noah-isme/coursehub-api/internal/models"
)

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID   uint
	Role models.Role
}

var (
	ErrNotCourseOwner  = apperror.Unauthorized("only the course coordinator can modify this course")
	ErrNotCourseStaff  = apperror.Forbidden("only the course coordinator or an assigned educator can manage this content")
	ErrLearnerOnly     = apperror.Forbidden("only learners can perform this action")
	ErrStaffOnly       = apperror.Forbidden("only educators and coordinators can perform this action")
	ErrCoordinatorOnly = apperror.Forbidden("coordinator access required")
	ErrSelfDeletion    = apperror.Validation("you cannot delete your own account")
	ErrUnknownRole     = apperror.Forbidden("unknown role")
)

// CanMutateCourse allows update, delete and educator (un)assignment for the
// owning coordinator only.
func CanMutateCourse(actor Actor, course models.Course) error {
	switch actor.Role {
	case models.RoleCoordinator:
		if course.CoordinatorID == actor.ID {
			return nil
		}
		return ErrNotCourseOwner
	case models.RoleEducator, models.RoleLearner:
		return ErrNotCourseOwner
	default:
		return ErrUnknownRole
	}
}

// CanManageCourseContent gates study plan and assignment writes. Any
// coordinator passes; educators must be assigned to the course.
func CanManageCourseContent(actor Actor, course models.Course) error {
	switch actor.Role {
	case models.RoleCoordinator:
		return nil
	case models.RoleEducator:
		if course.HasEducator(actor.ID) {
			return nil
		}
		return ErrNotCourseStaff
	case models.RoleLearner:
		return ErrNotCourseStaff
	default:
		return ErrUnknownRole
	}
}

// CanCreateCourse allows coordinators to open new courses.
func CanCreateCourse(actor Actor) error {
	return CanAdministerUsers(actor)
}

// CanSubmit allows learners only.
func CanSubmit(actor Actor) error {
	switch actor.Role {
	case models.RoleLearner:
		return nil
	case models.RoleEducator, models.RoleCoordinator:
		return ErrLearnerOnly
	default:
		return ErrUnknownRole
	}
}

// CanEnroll allows learners to enroll themselves.
func CanEnroll(actor Actor) error {
	return CanSubmit(actor)
}

// CanGrade covers grading and listing all submissions of an assignment.
// Grading is not scoped to the educator's own courses.
func CanGrade(actor Actor) error {
	switch actor.Role {
	case models.RoleEducator, models.RoleCoordinator:
		return nil
	case models.RoleLearner:
		return ErrStaffOnly
	default:
		return ErrUnknownRole
	}
}

// CanViewSubmission lets the submitting learner or any staff member read a submission.
func CanViewSubmission(actor Actor, submission models.Submission) error {
	switch actor.Role {
	case models.RoleEducator, models.RoleCoordinator:
		return nil
	case models.RoleLearner:
		if submission.StudentID == actor.ID {
			return nil
		}
		return ErrStaffOnly
	default:
		return ErrUnknownRole
	}
}

// CanSeeAnswerKey reports whether quiz correct answers may be returned to the actor.
func CanSeeAnswerKey(actor Actor) bool {
	switch actor.Role {
	case models.RoleEducator, models.RoleCoordinator:
		return true
	case models.RoleLearner:
		return false
	default:
		return false
	}
}

// CanAdministerUsers allows coordinators to list, edit and delete any user.
func CanAdministerUsers(actor Actor) error {
	switch actor.Role {
	case models.RoleCoordinator:
		return nil
	case models.RoleEducator, models.RoleLearner:
		return ErrCoordinatorOnly
	default:
		return ErrUnknownRole
	}
}

// CanDeleteUser rejects self-deletion before the coordinator check so the
// dedicated error surfaces for every role.
func CanDeleteUser(actor Actor, targetID uint) error {
	if actor.ID == targetID {
		return ErrSelfDeletion
	}
	return CanAdministerUsers(actor)
}
