package models

import "time"

const (
	// DefaultCourseCategory is applied when a course is created without a category.
	DefaultCourseCategory = "Development"
	// DefaultCourseThumbnail is shown until a thumbnail is uploaded.
	DefaultCourseThumbnail = "https://via.placeholder.com/300?text=Course"
)

// Course is owned by one coordinator and lists its educators and enrolled learners.
type Course struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Title            string    `gorm:"size:255;not null" json:"title"`
	Description      string    `gorm:"type:text;not null" json:"description"`
	Category         string    `gorm:"size:64;not null;default:Development" json:"category"`
	Price            float64   `gorm:"not null;default:0" json:"price"`
	Thumbnail        string    `gorm:"size:512" json:"thumbnail"`
	CoordinatorID    uint      `gorm:"not null;index" json:"coordinatorId"`
	Coordinator      User      `json:"coordinator"`
	Educators        []User    `gorm:"many2many:course_educators" json:"educators"`
	EnrolledStudents []User    `gorm:"many2many:course_enrollments" json:"enrolledStudents"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// IsFree reports whether the course has no price.
func (c Course) IsFree() bool {
	return c.Price == 0
}

// HasEducator reports whether userID is assigned as an educator.
func (c Course) HasEducator(userID uint) bool {
	for _, educator := range c.Educators {
		if educator.ID == userID {
			return true
		}
	}
	return false
}

// HasStudent reports whether userID is enrolled.
func (c Course) HasStudent(userID uint) bool {
	for _, student := range c.EnrolledStudents {
		if student.ID == userID {
			return true
		}
	}
	return false
}

// EducatorIDs returns the ids of the assigned educators.
func (c Course) EducatorIDs() []uint {
	ids := make([]uint, 0, len(c.Educators))
	for _, educator := range c.Educators {
		ids = append(ids, educator.ID)
	}
	return ids
}

// CategoryLabel maps the stored category to its display label.
func CategoryLabel(category string) string {
	switch category {
	case "Development":
		return "Software Development"
	case "Design":
		return "Graphic Design"
	case "Business":
		return "Business & Finance"
	default:
		return category
	}
}
