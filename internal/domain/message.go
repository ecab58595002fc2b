// File: internal/domain/message.go
package domain

import "time"

// Sender tags who produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Valid reports whether s is one of the persisted sender tags.
func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderBot
}

// Message is one immutable turn inside a thread. Messages are ordered by
// CreatedAt, with ID as the tiebreaker.
type Message struct {
	ID        uint   `gorm:"primarykey"`
	ThreadID  uint   `gorm:"not null;index"`
	Sender    Sender `gorm:"size:10;not null"`
	Content   string `gorm:"type:text;not null"`
	CreatedAt time.Time
}
