package dto

import (
	"time"

	"github.com/noah-isme/coursehub-api/internal/models"
)

// StudyPlanCreateRequest adds a week entry to a course.
type StudyPlanCreateRequest struct {
	CourseID  uint   `json:"courseId" validate:"required,gt=0"`
	Week      int    `json:"week" validate:"required,gte=1,lte=520"`
	Topic     string `json:"topic" validate:"required,max=255"`
	Content   string `json:"content" validate:"required"`
	Resources string `json:"resources" validate:"omitempty,max=512"`
}

// StudyPlanUpdateRequest only touches provided fields.
type StudyPlanUpdateRequest struct {
	Week      *int    `json:"week" validate:"omitempty,gte=1,lte=520"`
	Topic     *string `json:"topic" validate:"omitempty,min=1,max=255"`
	Content   *string `json:"content" validate:"omitempty,min=1"`
	Resources *string `json:"resources" validate:"omitempty,max=512"`
}

// StudyPlanResponse is the serialized study plan.
type StudyPlanResponse struct {
	ID        uint      `json:"id"`
	CourseID  uint      `json:"courseId"`
	Week      int       `json:"week"`
	Topic     string    `json:"topic"`
	Content   string    `json:"content"`
	Resources string    `json:"resources"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewStudyPlanResponse converts a study plan model.
func NewStudyPlanResponse(model models.StudyPlan) StudyPlanResponse {
	return StudyPlanResponse{
		ID:        model.ID,
		CourseID:  model.CourseID,
		Week:      model.Week,
		Topic:     model.Topic,
		Content:   model.Content,
		Resources: model.Resources,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// NewStudyPlanResponseSlice converts a list of study plans.
func NewStudyPlanResponseSlice(items []models.StudyPlan) []StudyPlanResponse {
	responses := make([]StudyPlanResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewStudyPlanResponse(item))
	}
	return responses
}
