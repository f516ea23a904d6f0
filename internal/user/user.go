package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

type User struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	Email                string     `json:"email"`
	PasswordHash         string     `json:"-"`
	IsVerified           bool       `json:"is_verified"`
	TwoFactorEnabled     bool       `json:"two_factor_enabled"`
	TwoFactorConfirmedAt *time.Time `json:"two_factor_confirmed_at,omitempty"`
	OTPHash              string     `json:"-"`
	OTPExpiresAt         *time.Time `json:"-"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// OTPValid reports whether a stored code is still usable at now.
func (u User) OTPValid(now time.Time) bool {
	return u.OTPHash != "" && u.OTPExpiresAt != nil && now.Before(*u.OTPExpiresAt)
}
