// File: internal/domain/thread.go
package domain

import "time"

// DefaultThreadTitle is assigned to every thread on creation.
const DefaultThreadTitle = "New Chat"

// MaxThreadTitleLength is measured in characters, not bytes.
const MaxThreadTitleLength = 50

// Thread is a single conversation owned by exactly one user.
type Thread struct {
	ID        uint   `gorm:"primarykey"`
	UserID    uint   `gorm:"not null;index"`
	Title     string `gorm:"size:50;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Messages  []Message `gorm:"constraint:OnDelete:CASCADE"`
}

// IsOwnedBy reports whether userID owns the thread.
func (t *Thread) IsOwnedBy(userID uint) bool {
	return t != nil && userID != 0 && t.UserID == userID
}
