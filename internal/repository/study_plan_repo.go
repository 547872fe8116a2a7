package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/coursehub-api/internal/models"
)

// StudyPlanRepository defines persistence for weekly course content.
type StudyPlanRepository interface {
	Create(ctx context.Context, plan *models.StudyPlan) error
	FindByID(ctx context.Context, id uint) (models.StudyPlan, error)
	ListByCourse(ctx context.Context, courseID uint) ([]models.StudyPlan, error)
	Update(ctx context.Context, plan *models.StudyPlan) error
	Delete(ctx context.Context, id uint) error
}

type studyPlanRepository struct {
	db *gorm.DB
}

// NewStudyPlanRepository constructs a GORM-backed study plan repository.
func NewStudyPlanRepository(db *gorm.DB) StudyPlanRepository {
	return &studyPlanRepository{db: db}
}

func (r *studyPlanRepository) Create(ctx context.Context, plan *models.StudyPlan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *studyPlanRepository) FindByID(ctx context.Context, id uint) (models.StudyPlan, error) {
	var plan models.StudyPlan
	if err := r.db.WithContext(ctx).First(&plan, id).Error; err != nil {
		return models.StudyPlan{}, err
	}
	return plan, nil
}

func (r *studyPlanRepository) ListByCourse(ctx context.Context, courseID uint) ([]models.StudyPlan, error) {
	var plans []models.StudyPlan
	if err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("week ASC").
		Order("created_at ASC").
		Order("id ASC").
		Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *studyPlanRepository) Update(ctx context.Context, plan *models.StudyPlan) error {
	return r.db.WithContext(ctx).Save(plan).Error
}

func (r *studyPlanRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.StudyPlan{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
