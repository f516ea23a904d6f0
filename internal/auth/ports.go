package auth

import (
	"context"
	"time"

	"arttimeline/internal/user"
)

// Users is the slice of the user service the flows need.
type Users interface {
	Create(ctx context.Context, name, email, passwordHash string, verified bool) (user.User, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetOTP(ctx context.Context, id, otpHash string, expiresAt time.Time) error
	ClearOTP(ctx context.Context, id string) error
	SetTwoFactor(ctx context.Context, id string, enabled bool) error
}

type Blacklist interface {
	AddToken(ctx context.Context, jti, userID string, expiresAt time.Time) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}
