package models

import "time"

// StudyPlan is a week-tagged content entry within a course.
type StudyPlan struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CourseID  uint      `gorm:"not null;index" json:"courseId"`
	Week      int       `gorm:"not null" json:"week"`
	Topic     string    `gorm:"size:255;not null" json:"topic"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Resources string    `gorm:"size:1024" json:"resources"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
