package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// UserService authenticates and manages the staff accounts that edit the books.
type UserService interface {
	// Authenticate returns the active user matching username and password,
	// or ErrUnauthorized.
	Authenticate(ctx context.Context, username, password string) (*User, error)
	CreateUser(ctx context.Context, username, password, role string) (*User, error)
	GetUser(ctx context.Context, userID int) (*User, error)
}

type userService struct {
	store Store
}

// NewUserService constructs a UserService over store.
func NewUserService(store Store) UserService {
	return &userService{store: store}
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to look up user %q: %w", username, err)
	}
	if !u.IsActive {
		return nil, ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	return u, nil
}

func (s *userService) CreateUser(ctx context.Context, username, password, role string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ValidationError{Field: "username", Message: "is required"}
	}
	if len(password) < 8 {
		return nil, ValidationError{Field: "password", Message: "must be at least 8 characters"}
	}
	if role == "" {
		role = RoleStaff
	}
	if role != RoleAdmin && role != RoleStaff {
		return nil, ValidationError{Field: "role", Message: fmt.Sprintf("unknown role %q", role)}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	u := &User{Username: username, PasswordHash: string(hash), Role: role, IsActive: true}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create user %q: %w", username, err)
	}
	return u, nil
}

func (s *userService) GetUser(ctx context.Context, userID int) (*User, error) {
	return s.store.GetUserByID(ctx, userID)
}
