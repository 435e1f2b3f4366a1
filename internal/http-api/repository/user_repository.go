package repository

import (
	"context"

	"yamdb/internal/http-api/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, search string, page Pagination) ([]models.User, int64, error)
}

// userRepository is the GORM implementation of UserRepository.
type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return translate("create user", conn(ctx, r.db).Create(user).Error)
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return translate("update user", conn(ctx, r.db).Save(user).Error)
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	result := conn(ctx, r.db).Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		return translate("delete user", result.Error)
	}
	if result.RowsAffected == 0 {
		return translate("delete user", gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	// return nil on error, never a zero-value user the caller could mistake for a hit
	if err := conn(ctx, r.db).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate("find user by username", err)
	}
	return &user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := conn(ctx, r.db).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate("find user by id", err)
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := conn(ctx, r.db).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate("find user by email", err)
	}
	return &user, nil
}

// List returns users ordered by username, optionally filtered by a username substring.
func (r *userRepository) List(ctx context.Context, search string, page Pagination) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	q := conn(ctx, r.db).Model(&models.User{})
	if search != "" {
		q = q.Where("username ILIKE ?", containsPattern(search))
	}
	// new session so Count and Find each start from the same filters
	q = q.Session(&gorm.Session{})

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate("count users", err)
	}
	if err := page.apply(q.Order("username asc")).Find(&users).Error; err != nil {
		return nil, 0, translate("list users", err)
	}
	return users, total, nil
}
