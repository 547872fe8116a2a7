package dto

import (
	"time"

	"github.com/noah-isme/coursehub-api/internal/models"
)

// QuestionRequest is one quiz question as sent by educators.
type QuestionRequest struct {
	QuestionText  string   `json:"questionText" validate:"required"`
	Options       []string `json:"options" validate:"len=4,dive,required"`
	CorrectAnswer *int     `json:"correctAnswer" validate:"required,gte=0,lte=3"`
}

// AssignmentCreateRequest defines the payload for creating a task or quiz.
// DueDate accepts RFC3339 or YYYY-MM-DD.
type AssignmentCreateRequest struct {
	CourseID    uint              `json:"courseId" validate:"required,gt=0"`
	Title       string            `json:"title" validate:"required,max=255"`
	Description string            `json:"description" validate:"required"`
	DueDate     string            `json:"dueDate" validate:"required"`
	Type        string            `json:"type" validate:"required,oneof=task quiz"`
	Questions   []QuestionRequest `json:"questions" validate:"omitempty,dive"`
}

// AssignmentUpdateRequest only touches provided fields. A non-nil Questions
// replaces the whole question list.
type AssignmentUpdateRequest struct {
	Title       *string           `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string           `json:"description" validate:"omitempty,min=1"`
	DueDate     *string           `json:"dueDate" validate:"omitempty,min=1"`
	Type        *string           `json:"type" validate:"omitempty,oneof=task quiz"`
	Questions   []QuestionRequest `json:"questions" validate:"omitempty,dive"`
}

// QuestionResponse hides the correct answer unless the reader may see it.
type QuestionResponse struct {
	QuestionText  string   `json:"questionText"`
	Options       []string `json:"options"`
	CorrectAnswer *int     `json:"correctAnswer,omitempty"`
}

// AssignmentResponse is returned to API clients.
type AssignmentResponse struct {
	ID            uint               `json:"id"`
	CourseID      uint               `json:"courseId"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	DueDate       time.Time          `json:"dueDate"`
	Type          string             `json:"type"`
	Questions     []QuestionResponse `json:"questions"`
	QuestionCount int                `json:"questionCount"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// AssignmentLite summarizes an assignment in submission responses.
type AssignmentLite struct {
	ID      uint      `json:"id"`
	Title   string    `json:"title"`
	Type    string    `json:"type"`
	DueDate time.Time `json:"dueDate"`
}

// ToQuestions converts request questions into the stored form.
func ToQuestions(items []QuestionRequest) []models.Question {
	questions := make([]models.Question, 0, len(items))
	for _, item := range items {
		question := models.Question{QuestionText: item.QuestionText, Options: append([]string(nil), item.Options...)}
		if item.CorrectAnswer != nil {
			question.CorrectAnswer = *item.CorrectAnswer
		}
		questions = append(questions, question)
	}
	return questions
}

// NewAssignmentResponse converts an assignment model.
func NewAssignmentResponse(model models.Assignment, includeAnswers bool) AssignmentResponse {
	questions := make([]QuestionResponse, 0, len(model.Questions))
	for _, q := range model.Questions {
		item := QuestionResponse{QuestionText: q.QuestionText, Options: q.Options}
		if includeAnswers {
			answer := q.CorrectAnswer
			item.CorrectAnswer = &answer
		}
		questions = append(questions, item)
	}

	return AssignmentResponse{
		ID:            model.ID,
		CourseID:      model.CourseID,
		Title:         model.Title,
		Description:   model.Description,
		DueDate:       model.DueDate,
		Type:          string(model.Type),
		Questions:     questions,
		QuestionCount: len(model.Questions),
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

// NewAssignmentResponseSlice converts a list of assignments.
func NewAssignmentResponseSlice(items []models.Assignment, includeAnswers bool) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewAssignmentResponse(item, includeAnswers))
	}
	return responses
}
