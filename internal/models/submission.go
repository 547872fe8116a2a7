package models

import (
	"time"

	"gorm.io/datatypes"
)

// SubmissionStatus tracks whether a submission still awaits grading.
type SubmissionStatus string

const (
	// SubmissionStatusSubmitted indicates the submission has been received but not graded.
	SubmissionStatusSubmitted SubmissionStatus = "submitted"
	// SubmissionStatusGraded indicates the submission has been evaluated.
	SubmissionStatusGraded SubmissionStatus = "graded"
)

// Submission is a learner's single answer to an assignment. The composite
// unique index makes (assignment, student) the authoritative duplicate check.
type Submission struct {
	ID           uint                      `gorm:"primaryKey" json:"id"`
	AssignmentID uint                      `gorm:"not null;uniqueIndex:idx_submission_assignment_student" json:"assignmentId"`
	StudentID    uint                      `gorm:"not null;uniqueIndex:idx_submission_assignment_student;index" json:"studentId"`
	Content      string                    `gorm:"type:text" json:"content"`
	QuizAnswers  datatypes.JSONSlice[*int] `json:"quizAnswers"`
	Score        *float64                  `json:"score"`
	Grade        *float64                  `json:"grade"`
	Feedback     string                    `gorm:"type:text" json:"feedback"`
	Status       SubmissionStatus          `gorm:"size:32;not null;default:submitted" json:"status"`
	GradedBy     *uint                     `json:"gradedBy"`
	GradedAt     *time.Time                `json:"gradedAt"`
	CreatedAt    time.Time                 `json:"createdAt"`
	UpdatedAt    time.Time                 `json:"updatedAt"`
	Assignment   Assignment                `json:"assignment"`
	Student      User                      `json:"student"`
}

// IsGraded reports whether the submission has a final grade.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded
}
