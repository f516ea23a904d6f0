package user

import (
	"context"
	"errors"
	"time"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores a new user. Emails are unique case-insensitively.
func (s *Service) Create(ctx context.Context, name, email, passwordHash string, verified bool) (User, error) {
	u := &User{
		Name:         name,
		Email:        normalizeEmail(email),
		PasswordHash: passwordHash,
		IsVerified:   verified,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return *u, nil
}

func (s *Service) EmailTaken(ctx context.Context, email string) (bool, error) {
	_, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.GetByEmail(ctx, normalizeEmail(email))
}

func (s *Service) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return s.repo.UpdatePassword(ctx, id, passwordHash)
}

func (s *Service) SetOTP(ctx context.Context, id, otpHash string, expiresAt time.Time) error {
	return s.repo.SetOTP(ctx, id, otpHash, expiresAt)
}

func (s *Service) ClearOTP(ctx context.Context, id string) error {
	return s.repo.ClearOTP(ctx, id)
}

func (s *Service) SetTwoFactor(ctx context.Context, id string, enabled bool) error {
	return s.repo.SetTwoFactor(ctx, id, enabled)
}
