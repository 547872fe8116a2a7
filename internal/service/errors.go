package service

import (
	"errors"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/noah-isme/coursehub-api/internal/apperror"
)

var (
	ErrUserNotFound              = apperror.NotFound("user not found")
	ErrCourseNotFound            = apperror.NotFound("course not found")
	ErrStudyPlanNotFound         = apperror.NotFound("study plan not found")
	ErrAssignmentNotFound        = apperror.NotFound("assignment not found")
	ErrSubmissionNotFound        = apperror.NotFound("submission not found")
	ErrEmailTaken                = apperror.Conflict("email is already registered")
	ErrInvalidCredentials        = apperror.Unauthorized("invalid email or password")
	ErrCoordinatorSignupDisabled = apperror.Forbidden("coordinator accounts cannot be self-registered")
	ErrWrongPassword             = apperror.Validation("current password is incorrect", apperror.FieldError{Field: "currentPassword", Message: "current password is incorrect"})
	ErrInvalidRole               = apperror.Validation("invalid role", apperror.FieldError{Field: "role", Message: "role must be one of learner, educator, coordinator"})
	ErrInvalidEducator           = apperror.Validation("invalid educator", apperror.FieldError{Field: "educatorId", Message: "user does not exist or is not an educator"})
	ErrDuplicateSubmission       = apperror.Duplicate("you have already submitted this assignment")
	ErrQuizHasNoQuestions        = apperror.Validation("quiz has no questions")
	ErrContentRequired           = apperror.Validation("content is required", apperror.FieldError{Field: "content", Message: "content is required for task submissions"})
	ErrQuizAnswersRequired       = apperror.Validation("quiz answers are required", apperror.FieldError{Field: "quizAnswers", Message: "quizAnswers must be an array"})
	ErrQuizQuestionsRequired     = apperror.Validation("quiz must have at least one question", apperror.FieldError{Field: "questions", Message: "at least one question is required"})
	ErrInvalidDueDate            = apperror.Validation("invalid due date", apperror.FieldError{Field: "dueDate", Message: "dueDate must be RFC3339 or YYYY-MM-DD"})
	ErrDueDateInPast             = apperror.Validation("due date cannot be in the past", apperror.FieldError{Field: "dueDate", Message: "dueDate cannot be in the past"})
	ErrUploadRequired            = apperror.Validation("image file is required")
	ErrUploadTooLarge            = apperror.Validation("file exceeds maximum allowed size")
	ErrUploadTypeNotAllowed      = apperror.Validation("only jpeg, png and gif images are allowed")
)

// notFoundOr maps gorm.ErrRecordNotFound to the given sentinel.
func notFoundOr(err error, sentinel *apperror.Error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// sanitizeText strips markup from free text while keeping plain characters readable.
func sanitizeText(policy *bluemonday.Policy, value string) string {
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(value)))
}
