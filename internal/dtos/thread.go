package dtos

import (
	"time"

	"github.com/iyunix/go-llamachat/internal/domain"
)

type ThreadResponse struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type ThreadListResponse struct {
	Threads []ThreadResponse `json:"threads"`
}

type MessageResponse struct {
	Sender    domain.Sender `json:"sender"`
	Content   string        `json:"content"`
	HTML      string        `json:"html,omitempty"`
	CreatedAt string        `json:"created_at"`
}

type MessageListResponse struct {
	Messages []MessageResponse `json:"messages"`
}

// MessageRequest is the body of the response and stream endpoints.
type MessageRequest struct {
	Message string `json:"message"`
}

type TitleRequest struct {
	Title string `json:"title"`
}

type CreateThreadResponse struct {
	ThreadID uint `json:"thread_id"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

func ToThreadResponse(t domain.Thread) ThreadResponse {
	return ThreadResponse{
		ID:        t.ID,
		Title:     t.Title,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
		UpdatedAt: t.UpdatedAt.Format(time.RFC3339),
	}
}

func ToThreadList(threads []domain.Thread) ThreadListResponse {
	out := ThreadListResponse{Threads: make([]ThreadResponse, 0, len(threads))}
	for _, t := range threads {
		out.Threads = append(out.Threads, ToThreadResponse(t))
	}
	return out
}

func ToMessageResponse(m domain.Message) MessageResponse {
	return MessageResponse{
		Sender:    m.Sender,
		Content:   m.Content,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}
