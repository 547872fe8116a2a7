package dto

import (
	"time"

	"github.com/noah-isme/coursehub-api/internal/models"
)

// CourseCreateRequest is submitted by coordinators.
type CourseCreateRequest struct {
	Title       string   `json:"title" validate:"required,min=3,max=255"`
	Description string   `json:"description" validate:"required"`
	Category    string   `json:"category" validate:"omitempty,max=64"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Thumbnail   string   `json:"thumbnail" validate:"omitempty,url,max=512"`
}

// CourseUpdateRequest only touches provided fields.
type CourseUpdateRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string  `json:"description" validate:"omitempty,min=1"`
	Category    *string  `json:"category" validate:"omitempty,max=64"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Thumbnail   *string  `json:"thumbnail" validate:"omitempty,url,max=512"`
}

// EducatorAssignmentRequest names the educator to (un)assign.
type EducatorAssignmentRequest struct {
	EducatorID uint `json:"educatorId" validate:"required,gt=0"`
}

// CourseResponse is the public course representation.
type CourseResponse struct {
	ID               uint          `json:"id"`
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	Category         string        `json:"category"`
	CategoryLabel    string        `json:"categoryLabel"`
	Price            float64       `json:"price"`
	IsFree           bool          `json:"isFree"`
	Thumbnail        string        `json:"thumbnail"`
	CoordinatorID    uint          `json:"coordinatorId"`
	Coordinator      UserSummary   `json:"coordinator"`
	Educators        []UserSummary `json:"educators"`
	EnrolledStudents []uint        `json:"enrolledStudents"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// NewCourseResponse converts a course model with whatever associations were loaded.
func NewCourseResponse(model models.Course) CourseResponse {
	enrolled := make([]uint, 0, len(model.EnrolledStudents))
	for _, student := range model.EnrolledStudents {
		enrolled = append(enrolled, student.ID)
	}

	return CourseResponse{
		ID:               model.ID,
		Title:            model.Title,
		Description:      model.Description,
		Category:         model.Category,
		CategoryLabel:    models.CategoryLabel(model.Category),
		Price:            model.Price,
		IsFree:           model.IsFree(),
		Thumbnail:        model.Thumbnail,
		CoordinatorID:    model.CoordinatorID,
		Coordinator:      NewUserSummary(model.Coordinator),
		Educators:        newUserSummaries(model.Educators),
		EnrolledStudents: enrolled,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}
}

// NewCourseResponseSlice converts a list of courses.
func NewCourseResponseSlice(items []models.Course) []CourseResponse {
	responses := make([]CourseResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewCourseResponse(item))
	}
	return responses
}
