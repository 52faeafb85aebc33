package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/forgo/huddle/api/internal/database"
	"github.com/forgo/huddle/api/internal/model"
)

// UserRepository handles user data access
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user together with any photos attached to it
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		err = database.TranslateError(err)
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.first(ctx, "email = ?", email)
}

// GetByUsername retrieves a user by exact username match, photos included
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.first(ctx, "user_name = ?", username)
}

func (r *UserRepository) first(ctx context.Context, query string, arg any) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Photos", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where(query, arg).
		First(&user).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return &user, nil
}

// UpdateProfile writes the profile fields of a user and returns the number
// of rows affected. A nil bio clears the stored value.
func (r *UserRepository) UpdateProfile(ctx context.Context, id, displayName string, bio *string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"display_name": displayName,
			"bio":          bio,
			"updated_at":   time.Now().UTC(),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("update profile: %w", database.TranslateError(result.Error))
	}
	return result.RowsAffected, nil
}

// Count returns the number of registered users
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
