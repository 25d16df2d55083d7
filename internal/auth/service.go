package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/ezzystore/ezzystore/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Lookup fetches the user behind a session id, rejecting inactive accounts.
func (s *Service) Lookup(ctx context.Context, id int64) (*User, error) {
	if id == 0 {
		return nil, shared.ErrInvalidCredentials
	}
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, shared.ErrForbidden
	}
	return user, nil
}
