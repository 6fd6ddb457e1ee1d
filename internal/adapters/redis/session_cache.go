package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"gatehouse/internal/domain"
)

type SessionCache struct {
	redis  *redis.Client
	prefix string
	now    func() time.Time
}

func NewSessionCache(r *redis.Client) *SessionCache {
	return &SessionCache{
		redis:  r,
		prefix: "session:",
		now:    time.Now,
	}
}

func (c *SessionCache) key(id uuid.UUID) string {
	return c.prefix + id.String()
}

func (c *SessionCache) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	val, err := c.redis.Get(ctx, c.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session cache get failed: %w", err)
	}

	var s domain.Session
	if err := json.Unmarshal(val, &s); err != nil {
		return nil, fmt.Errorf("session cache unmarshal failed: %w", err)
	}

	return &s, nil
}

// Set stores the session until it expires. Already expired sessions are not cached.
func (c *SessionCache) Set(ctx context.Context, s *domain.Session) error {
	ttl := s.ExpiresAt.Sub(c.now())
	if ttl <= 0 {
		return c.Delete(ctx, s.ID)
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session cache marshal failed: %w", err)
	}

	if err := c.redis.Set(ctx, c.key(s.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("session cache set failed: %w", err)
	}

	return nil
}

func (c *SessionCache) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.redis.Del(ctx, c.key(id)).Err(); err != nil {
		return fmt.Errorf("session cache delete failed: %w", err)
	}
	return nil
}
