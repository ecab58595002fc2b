// File: internal/services/user_services/auth_service.go
package user_services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/iyunix/go-llamachat/internal/auth"
	"github.com/iyunix/go-llamachat/internal/domain"
	"github.com/iyunix/go-llamachat/internal/repository/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("username or email already exists")
)

// ValidationError reports unacceptable registration input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var usernamePattern = regexp.MustCompile(`^[\w.@+-]{3,150}$`)

type AuthService struct {
	userRepo     user.UserRepository
	jwtSecretKey []byte
	logger       Logger
}

func NewAuthService(userRepo user.UserRepository, jwtSecretKey string, logger Logger) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		jwtSecretKey: []byte(jwtSecretKey),
		logger:       logger,
	}
}

// Register creates an account. Username and email must both be unused.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if err := validateRegistrationInput(username, email, password); err != nil {
		s.logger.Warn("registration validation failed",
			"username", mask(username),
			"error", err.Error())
		return nil, err
	}

	existing, err := s.userRepo.FindByUsernameOrEmail(ctx, username, email)
	if err == nil && existing != nil {
		s.logger.Warn("registration failed - user already exists",
			"username", mask(username),
			"existing_user_id", existing.ID)
		return nil, ErrUserExists
	}
	if err != nil && !errors.Is(err, user.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	u := &domain.User{Username: username, Email: email}
	if err := u.HashPassword(password); err != nil {
		return nil, &ValidationError{Field: "password", Message: err.Error()}
	}

	created, err := s.userRepo.Create(ctx, u)
	if err != nil {
		s.logger.Error("user creation failed",
			"error", err,
			"username", mask(username))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered successfully",
		"username", mask(username),
		"user_id", created.ID)
	return created, nil
}

func validateRegistrationInput(username, email, password string) error {
	if !usernamePattern.MatchString(username) {
		return &ValidationError{Field: "username", Message: "must be 3-150 characters of letters, digits and @.+-_"}
	}
	candidate := domain.User{Username: username, Email: email}
	if err := candidate.IsValid(); err != nil {
		return &ValidationError{Field: "email", Message: err.Error()}
	}
	if len(password) < 8 {
		return &ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}

// Login authenticates a user and returns a JWT token
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	if username == "" || password == "" {
		s.logger.Warn("login attempt with empty credentials",
			"has_username", username != "",
			"has_password", password != "")
		return nil, "", ErrInvalidCredentials
	}

	u, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			s.logger.Warn("login failed - user not found", "username", mask(username))
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to load user: %w", err)
	}

	if err := u.ValidatePassword(password); err != nil {
		s.logger.Warn("login failed - invalid password",
			"username", mask(username),
			"user_id", u.ID)
		return nil, "", ErrInvalidCredentials
	}

	token, err := auth.GenerateJWT(u.ID, s.jwtSecretKey)
	if err != nil {
		s.logger.Error("JWT token generation failed", "error", err, "user_id", u.ID)
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("login successful", "username", mask(username), "user_id", u.ID)
	return u, token, nil
}

// ValidateJWTToken validates a JWT token and returns the user ID
func (s *AuthService) ValidateJWTToken(tokenString string) (uint, error) {
	if tokenString == "" {
		return 0, errors.New("empty token")
	}
	userID, err := auth.ValidateToken(tokenString, s.jwtSecretKey)
	if err != nil {
		return 0, fmt.Errorf("invalid token: %w", err)
	}
	return userID, nil
}

// GetUser returns the account behind an authenticated session.
func (s *AuthService) GetUser(ctx context.Context, userID uint) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

// DeleteAccount removes the user together with all their threads and messages.
func (s *AuthService) DeleteAccount(ctx context.Context, userID uint) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		s.logger.Error("account deletion failed", "user_id", userID, "error", err)
		return err
	}
	s.logger.Info("account deleted", "user_id", userID)
	return nil
}
