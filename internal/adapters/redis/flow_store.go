package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"gatehouse/internal/domain"
)

const DefaultFlowTTL = 5 * time.Minute

// FlowStore keeps in-flight OAuth authorizations. Each state can be taken once.
type FlowStore struct {
	redis  *redis.Client
	prefix string
	ttl    time.Duration
}

func NewFlowStore(r *redis.Client, ttl time.Duration) *FlowStore {
	if ttl <= 0 {
		ttl = DefaultFlowTTL
	}
	return &FlowStore{
		redis:  r,
		prefix: "oauth:flow:",
		ttl:    ttl,
	}
}

func (s *FlowStore) Save(ctx context.Context, flow domain.OAuthFlow) error {
	if flow.State == "" {
		return fmt.Errorf("flow store: missing state")
	}

	data, err := json.Marshal(flow)
	if err != nil {
		return fmt.Errorf("flow store marshal failed: %w", err)
	}

	if err := s.redis.Set(ctx, s.prefix+flow.State, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("flow store set failed: %w", err)
	}

	return nil
}

func (s *FlowStore) Take(ctx context.Context, state string) (*domain.OAuthFlow, error) {
	if state == "" {
		return nil, domain.ErrInvalidOAuthState
	}

	val, err := s.redis.GetDel(ctx, s.prefix+state).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrInvalidOAuthState
	}
	if err != nil {
		return nil, fmt.Errorf("flow store getdel failed: %w", err)
	}

	var flow domain.OAuthFlow
	if err := json.Unmarshal(val, &flow); err != nil {
		return nil, fmt.Errorf("flow store unmarshal failed: %w", err)
	}

	return &flow, nil
}
