// File: internal/dtos/user.go
package dtos

import (
	"time"

	"github.com/iyunix/go-llamachat/internal/domain"
)

// UserResponseDTO defines what fields to expose in user API responses.
type UserResponseDTO struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

// RegisterRequestDTO is the payload for POST /accounts/register.
type RegisterRequestDTO struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequestDTO is the payload for POST /accounts/login.
type LoginRequestDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponseDTO carries the session token for non-browser clients.
type LoginResponseDTO struct {
	Token string          `json:"token"`
	User  UserResponseDTO `json:"user"`
}

// AuthStatusDTO answers GET /accounts/status.
type AuthStatusDTO struct {
	Authenticated bool             `json:"authenticated"`
	User          *UserResponseDTO `json:"user,omitempty"`
}

func ToUserResponse(u *domain.User) UserResponseDTO {
	return UserResponseDTO{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}
