package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/coursehub-api/internal/models"
)

// UserFilter narrows user listings.
type UserFilter struct {
	Role *models.Role
}

// UserRepository defines persistence for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context, filter UserFilter) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	FindLearnersInBatches(ctx context.Context, batchSize int, fn func(batch []models.User) error) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs a GORM-backed user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]models.User, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})
	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}

	var users []models.User
	if err := query.Order("created_at DESC").Order("id DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// Delete removes the account together with its course memberships and notifications.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.User{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		for _, table := range membershipTables {
			if err := tx.Exec("DELETE FROM "+table+" WHERE user_id = ?", id).Error; err != nil {
				return err
			}
		}

		return tx.Where("user_id = ?", id).Delete(&models.Notification{}).Error
	})
}

// FindLearnersInBatches walks every learner in id order, handing fn one batch at a time.
func (r *userRepository) FindLearnersInBatches(ctx context.Context, batchSize int, fn func(batch []models.User) error) error {
	if batchSize <= 0 {
		batchSize = 500
	}

	var batch []models.User
	result := r.db.WithContext(ctx).
		Select("id", "name", "email", "role").
		Where("role = ?", models.RoleLearner).
		FindInBatches(&batch, batchSize, func(_ *gorm.DB, _ int) error {
			return fn(batch)
		})
	return result.Error
}
