package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

type Session struct {
	ID        uuid.UUID `json:"id"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type SessionRepository interface {
	Create(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// SessionCache fronts SessionRepository for per-request lookups.
// Get returns ErrSessionNotFound on a miss.
type SessionCache interface {
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	Set(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id uuid.UUID) error
}
