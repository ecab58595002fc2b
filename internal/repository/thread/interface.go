package thread

import (
	"context"

	"github.com/iyunix/go-llamachat/internal/domain"
)

// ThreadRepository handles thread data operations. Every method that takes a
// userID scopes the query to threads owned by that user.
type ThreadRepository interface {
	Create(ctx context.Context, thread *domain.Thread) (*domain.Thread, error)
	FindByID(ctx context.Context, id uint) (*domain.Thread, error)
	FindOwned(ctx context.Context, threadID, userID uint) (*domain.Thread, error)
	FindByUserID(ctx context.Context, userID uint) ([]domain.Thread, error)
	UpdateTitle(ctx context.Context, threadID, userID uint, title string) error
	TouchUpdatedAt(ctx context.Context, threadID uint) error
	Delete(ctx context.Context, threadID, userID uint) error
	DeleteAllByUserID(ctx context.Context, userID uint) (int64, error)
}
