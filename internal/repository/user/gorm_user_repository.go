// File: internal/repository/user/gorm_user_repository.go
package user

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"github.com/iyunix/go-llamachat/internal/domain"
)

var ErrUserNotFound = errors.New("user not found")

type gormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("user cannot be nil")
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		slog.Error("[UserRepository] database error creating user", "error", err)
		return nil, errors.New("database error creating user")
	}
	return user, nil
}

func (r *gormUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	if id == 0 {
		return nil, ErrUserNotFound
	}
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	return r.handleFindError(err, &user, "FindByID")
}

func (r *gormUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	return r.handleFindError(err, &user, "FindByUsername")
}

// FindByUsernameOrEmail is used to reject duplicate registrations.
func (r *gormUserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", username, email).
		First(&user).Error
	return r.handleFindError(err, &user, "FindByUsernameOrEmail")
}

// Delete removes the user along with all of their threads and messages.
func (r *gormUserRepository) Delete(ctx context.Context, userID uint) error {
	if userID == 0 {
		return ErrUserNotFound
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&domain.Thread{}).Select("id").Where("user_id = ?", userID)
		if err := tx.Where("thread_id IN (?)", owned).Delete(&domain.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&domain.Thread{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&domain.User{}, userID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return err
		}
		slog.Error("[UserRepository] database error deleting user", "user_id", userID, "error", err)
		return errors.New("database error deleting user")
	}
	return nil
}

func (r *gormUserRepository) handleFindError(err error, user *domain.User, operation string) (*domain.User, error) {
	if err == nil {
		return user, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	slog.Error("[UserRepository] query failed", "operation", operation, "error", err)
	return nil, errors.New("database query failed")
}
