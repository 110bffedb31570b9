package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"workorder-service/internal/model"
	"workorder-service/internal/repository"
	"workorder-service/internal/service/workorder"
	"workorder-service/pkg/rbac"
	"workorder-service/pkg/util"
)

// Service issues tokens and manages accounts.
type Service struct {
	users     *repository.UserRepository
	jwtSecret string
	logger    *zap.Logger
}

func NewService(users *repository.UserRepository, jwtSecret string, logger *zap.Logger) *Service {
	return &Service{users: users, jwtSecret: jwtSecret, logger: logger}
}

// RegisterInput carries a signup request.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

// Register creates an account with the default user role.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, workorder.Validation("register", "a valid email is required")
	}
	if len(in.Password) < 8 {
		return nil, workorder.Validation("register", "password must be at least 8 characters")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, workorder.Validation("register", "email is already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := util.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &model.User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(in.DisplayName),
		Role:         rbac.RoleUser,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered", zap.Int64("user_id", u.ID))
	return u, nil
}

// Login checks credentials and returns a signed token. Bad email and bad
// password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, workorder.Unauthorized("login", "invalid email or password")
		}
		return "", nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !util.CheckPassword(password, u.PasswordHash) {
		return "", nil, workorder.Unauthorized("login", "invalid email or password")
	}

	token, err := util.GenerateJWT(u.ID, u.Role, s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.Info("User logged in", zap.Int64("user_id", u.ID))
	return token, u, nil
}

// GetUser returns the account behind a token's user id.
func (s *Service) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, workorder.NotFound("getUser", fmt.Sprintf("user %d does not exist", userID))
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return u, nil
}
