package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/coursehub-api/internal/models"
)

var membershipTables = []string{"course_educators", "course_enrollments"}

// CourseRepository defines persistence for courses and their membership lists.
type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	FindByID(ctx context.Context, id uint) (models.Course, error)
	List(ctx context.Context) ([]models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id uint) error
	AddEducator(ctx context.Context, course *models.Course, educator *models.User) error
	RemoveEducator(ctx context.Context, course *models.Course, educatorID uint) error
	AddStudent(ctx context.Context, course *models.Course, student *models.User) error
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository constructs a GORM-backed course repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(course).Error
}

func (r *courseRepository) FindByID(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).
		Preload("Coordinator").
		Preload("Educators").
		Preload("EnrolledStudents").
		First(&course, id).Error; err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (r *courseRepository) List(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := r.db.WithContext(ctx).
		Preload("Coordinator").
		Preload("Educators").
		Order("created_at DESC").
		Order("id DESC").
		Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

// Update writes the scalar course fields. Membership lists change only through
// the dedicated methods.
func (r *courseRepository) Update(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(course).Error
}

// Delete removes the course and everything that belongs to it.
func (r *courseRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Course{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		assignmentIDs := tx.Model(&models.Assignment{}).Select("id").Where("course_id = ?", id)
		if err := tx.Where("assignment_id IN (?)", assignmentIDs).Delete(&models.Submission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&models.Assignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&models.StudyPlan{}).Error; err != nil {
			return err
		}

		for _, table := range membershipTables {
			if err := tx.Exec("DELETE FROM "+table+" WHERE course_id = ?", id).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *courseRepository) AddEducator(ctx context.Context, course *models.Course, educator *models.User) error {
	return r.db.WithContext(ctx).Model(course).Association("Educators").Append(educator)
}

func (r *courseRepository) RemoveEducator(ctx context.Context, course *models.Course, educatorID uint) error {
	return r.db.WithContext(ctx).Model(course).Association("Educators").Delete(&models.User{ID: educatorID})
}

func (r *courseRepository) AddStudent(ctx context.Context, course *models.Course, student *models.User) error {
	return r.db.WithContext(ctx).Model(course).Association("EnrolledStudents").Append(student)
}
