package user

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo is an in-process Repository used by tests of packages that
// depend on users.
type MemoryRepo struct {
	mu    sync.Mutex
	users map[string]User
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: make(map[string]User)}
}

func (r *MemoryRepo) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	email := normalizeEmail(u.Email)
	for _, existing := range r.users {
		if existing.Email == email {
			return ErrEmailTaken
		}
	}
	now := time.Now()
	u.ID = uuid.NewString()
	u.Email = email
	u.CreatedAt, u.UpdatedAt = now, now
	r.users[u.ID] = *u
	return nil
}

func (r *MemoryRepo) GetByEmail(_ context.Context, email string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email = normalizeEmail(email)
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *MemoryRepo) GetByID(_ context.Context, id string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *MemoryRepo) update(id string, fn func(*User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	fn(&u)
	u.UpdatedAt = time.Now()
	r.users[id] = u
	return nil
}

func (r *MemoryRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	return r.update(id, func(u *User) { u.PasswordHash = passwordHash })
}

func (r *MemoryRepo) SetOTP(_ context.Context, id, otpHash string, expiresAt time.Time) error {
	return r.update(id, func(u *User) {
		u.OTPHash = otpHash
		u.OTPExpiresAt = &expiresAt
	})
}

func (r *MemoryRepo) ClearOTP(_ context.Context, id string) error {
	return r.update(id, func(u *User) {
		u.OTPHash = ""
		u.OTPExpiresAt = nil
	})
}

func (r *MemoryRepo) SetTwoFactor(_ context.Context, id string, enabled bool) error {
	return r.update(id, func(u *User) {
		u.TwoFactorEnabled = enabled
		if enabled {
			now := time.Now()
			u.TwoFactorConfirmedAt = &now
		} else {
			u.TwoFactorConfirmedAt = nil
		}
	})
}
