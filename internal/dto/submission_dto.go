package dto

import (
	"time"

	"github.com/noah-isme/coursehub-api/internal/models"
)

// SubmissionCreateRequest carries either task content or quiz answers. A nil
// QuizAnswers means the field was absent; null entries count as unanswered.
type SubmissionCreateRequest struct {
	AssignmentID uint   `json:"assignmentId" validate:"required,gt=0"`
	Content      string `json:"content" validate:"max=20000"`
	QuizAnswers  []*int `json:"quizAnswers"`
}

// GradeRequest is used to grade a task submission.
type GradeRequest struct {
	Grade    *float64 `json:"grade" validate:"required,gte=0,lte=100"`
	Feedback string   `json:"feedback" validate:"max=5000"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID           uint            `json:"id"`
	AssignmentID uint            `json:"assignmentId"`
	StudentID    uint            `json:"studentId"`
	Content      string          `json:"content"`
	QuizAnswers  []*int          `json:"quizAnswers"`
	Score        *float64        `json:"score"`
	Grade        *float64        `json:"grade"`
	Feedback     string          `json:"feedback"`
	Status       string          `json:"status"`
	GradedBy     *uint           `json:"gradedBy"`
	GradedAt     *time.Time      `json:"gradedAt"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
	Assignment   *AssignmentLite `json:"assignment,omitempty"`
	Student      *UserSummary    `json:"student,omitempty"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	answers := []*int(model.QuizAnswers)
	if answers == nil {
		answers = []*int{}
	}

	response := SubmissionResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		StudentID:    model.StudentID,
		Content:      model.Content,
		QuizAnswers:  answers,
		Score:        model.Score,
		Grade:        model.Grade,
		Feedback:     model.Feedback,
		Status:       string(model.Status),
		GradedBy:     model.GradedBy,
		GradedAt:     model.GradedAt,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}

	if model.Assignment.ID != 0 {
		response.Assignment = &AssignmentLite{
			ID:      model.Assignment.ID,
			Title:   model.Assignment.Title,
			Type:    string(model.Assignment.Type),
			DueDate: model.Assignment.DueDate,
		}
	}
	if model.Student.ID != 0 {
		student := NewUserSummary(model.Student)
		response.Student = &student
	}

	return response
}

// NewSubmissionResponseSlice converts a list of submissions.
func NewSubmissionResponseSlice(items []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewSubmissionResponse(item))
	}
	return responses
}
