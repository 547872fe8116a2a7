package models

import (
	"time"

	"gorm.io/datatypes"
)

// AssignmentType distinguishes manually graded tasks from auto-graded quizzes.
type AssignmentType string

const (
	AssignmentTypeTask AssignmentType = "task"
	AssignmentTypeQuiz AssignmentType = "quiz"
)

// QuizOptionCount is the number of options every quiz question carries.
const QuizOptionCount = 4

// Question is a single multiple-choice entry of a quiz.
type Question struct {
	QuestionText  string   `json:"questionText"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// Assignment represents a task or quiz attached to a course.
type Assignment struct {
	ID          uint                          `gorm:"primaryKey" json:"id"`
	CourseID    uint                          `gorm:"not null;index" json:"courseId"`
	Title       string                        `gorm:"size:255;not null" json:"title"`
	Description string                        `gorm:"type:text" json:"description"`
	DueDate     time.Time                     `gorm:"not null" json:"dueDate"`
	Type        AssignmentType                `gorm:"size:16;not null" json:"type"`
	Questions   datatypes.JSONSlice[Question] `json:"questions"`
	CreatedAt   time.Time                     `json:"createdAt"`
	UpdatedAt   time.Time                     `json:"updatedAt"`
}

// IsQuiz reports whether the assignment is auto-graded.
func (a Assignment) IsQuiz() bool {
	return a.Type == AssignmentTypeQuiz
}

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.DueDate)
}
