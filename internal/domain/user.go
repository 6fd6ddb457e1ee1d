// Package domain
package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrAccountNotFound    = errors.New("account not found")
)

type User struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Password      string    `json:"-"`
	EmailVerified bool      `json:"email_verified"`
	Image         string    `json:"image,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Account links an external identity to a user.
type Account struct {
	UserID            int64
	Provider          string
	ProviderAccountID string
	CreatedAt         time.Time
}

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, user *User) error
}

type AccountRepository interface {
	GetByProvider(ctx context.Context, provider, providerAccountID string) (*Account, error)
	Create(ctx context.Context, account *Account) error
}
