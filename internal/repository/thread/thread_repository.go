// File: internal/repository/thread/thread_repository.go
package thread

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/iyunix/go-llamachat/internal/domain"
)

var ErrThreadNotFound = errors.New("thread not found")

type gormThreadRepository struct {
	db *gorm.DB
}

func NewThreadRepository(db *gorm.DB) ThreadRepository {
	return &gormThreadRepository{db: db}
}

// Create validates and inserts a thread. An empty title becomes the default.
func (r *gormThreadRepository) Create(ctx context.Context, thread *domain.Thread) (*domain.Thread, error) {
	if thread == nil || thread.UserID == 0 {
		return nil, errors.New("user ID is required")
	}
	if strings.TrimSpace(thread.Title) == "" {
		thread.Title = domain.DefaultThreadTitle
	}
	if utf8.RuneCountInString(thread.Title) > domain.MaxThreadTitleLength {
		return nil, errors.New("title must be 50 characters or less")
	}

	if err := r.db.WithContext(ctx).Create(thread).Error; err != nil {
		slog.Error("[ThreadRepository] database error creating thread", "user_id", thread.UserID, "error", err)
		return nil, errors.New("database error creating thread")
	}

	slog.Debug("[ThreadRepository] thread created", "thread_id", thread.ID, "user_id", thread.UserID)
	return thread, nil
}

func (r *gormThreadRepository) FindByID(ctx context.Context, id uint) (*domain.Thread, error) {
	if id == 0 {
		return nil, ErrThreadNotFound
	}

	var thread domain.Thread
	err := r.db.WithContext(ctx).First(&thread, id).Error
	return r.handleFindError(err, &thread, "FindByID")
}

// FindOwned returns ErrThreadNotFound both for a missing thread and for one
// owned by someone else.
func (r *gormThreadRepository) FindOwned(ctx context.Context, threadID, userID uint) (*domain.Thread, error) {
	if threadID == 0 || userID == 0 {
		return nil, ErrThreadNotFound
	}

	thread, err := r.FindByID(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !thread.IsOwnedBy(userID) {
		slog.Debug("[ThreadRepository] thread not owned by caller", "thread_id", threadID, "user_id", userID)
		return nil, ErrThreadNotFound
	}
	return thread, nil
}

// FindByUserID lists a user's threads, most recently active first.
func (r *gormThreadRepository) FindByUserID(ctx context.Context, userID uint) ([]domain.Thread, error) {
	if userID == 0 {
		return nil, errors.New("invalid user ID")
	}

	var threads []domain.Thread
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC, id DESC").
		Find(&threads).Error
	if err != nil {
		slog.Error("[ThreadRepository] database error listing threads", "user_id", userID, "error", err)
		return nil, errors.New("database error fetching threads")
	}
	return threads, nil
}

func (r *gormThreadRepository) UpdateTitle(ctx context.Context, threadID, userID uint, title string) error {
	if threadID == 0 || userID == 0 {
		return ErrThreadNotFound
	}
	if utf8.RuneCountInString(title) > domain.MaxThreadTitleLength {
		return errors.New("title must be 50 characters or less")
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Thread{}).
		Where("id = ? AND user_id = ?", threadID, userID).
		Updates(map[string]interface{}{"title": title, "updated_at": time.Now()})
	if result.Error != nil {
		slog.Error("[ThreadRepository] database error renaming thread", "thread_id", threadID, "error", result.Error)
		return errors.New("database error updating thread title")
	}
	if result.RowsAffected == 0 {
		return ErrThreadNotFound
	}
	return nil
}

// TouchUpdatedAt bumps the thread's last-activity timestamp.
func (r *gormThreadRepository) TouchUpdatedAt(ctx context.Context, threadID uint) error {
	if threadID == 0 {
		return ErrThreadNotFound
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Thread{}).
		Where("id = ?", threadID).
		UpdateColumn("updated_at", time.Now())
	if result.Error != nil {
		slog.Error("[ThreadRepository] database error updating timestamp", "thread_id", threadID, "error", result.Error)
		return errors.New("database error updating thread timestamp")
	}
	if result.RowsAffected == 0 {
		return ErrThreadNotFound
	}
	return nil
}

// Delete removes an owned thread together with all of its messages.
func (r *gormThreadRepository) Delete(ctx context.Context, threadID, userID uint) error {
	if threadID == 0 || userID == 0 {
		return ErrThreadNotFound
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var thread domain.Thread
		if err := tx.Where("id = ? AND user_id = ?", threadID, userID).First(&thread).Error; err != nil {
			return err
		}
		if err := tx.Where("thread_id = ?", thread.ID).Delete(&domain.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&thread).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrThreadNotFound
		}
		slog.Error("[ThreadRepository] database error deleting thread", "thread_id", threadID, "user_id", userID, "error", err)
		return errors.New("database error deleting thread")
	}

	slog.Debug("[ThreadRepository] thread deleted", "thread_id", threadID, "user_id", userID)
	return nil
}

// DeleteAllByUserID removes every thread of a user and their messages and
// reports how many threads were deleted.
func (r *gormThreadRepository) DeleteAllByUserID(ctx context.Context, userID uint) (int64, error) {
	if userID == 0 {
		return 0, errors.New("invalid user ID")
	}

	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&domain.Thread{}).Select("id").Where("user_id = ?", userID)
		if err := tx.Where("thread_id IN (?)", owned).Delete(&domain.Message{}).Error; err != nil {
			return err
		}
		result := tx.Where("user_id = ?", userID).Delete(&domain.Thread{})
		deleted = result.RowsAffected
		return result.Error
	})
	if err != nil {
		slog.Error("[ThreadRepository] database error in bulk delete", "user_id", userID, "error", err)
		return 0, errors.New("database error in bulk thread deletion")
	}

	slog.Debug("[ThreadRepository] bulk deleted threads", "user_id", userID, "count", deleted)
	return deleted, nil
}

func (r *gormThreadRepository) handleFindError(err error, thread *domain.Thread, operation string) (*domain.Thread, error) {
	if err == nil {
		return thread, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrThreadNotFound
	}

	slog.Error("[ThreadRepository] query failed", "operation", operation, "error", err)
	return nil, errors.New("database query failed")
}
