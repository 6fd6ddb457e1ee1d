package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// AuditStream appends JSON records to capped redis streams.
type AuditStream struct {
	redis *redis.Client
}

func NewAuditStream(r *redis.Client) *AuditStream {
	return &AuditStream{redis: r}
}

func (a *AuditStream) Append(ctx context.Context, stream string, payload any, maxLen int64) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("audit marshal failed: %w", err)
	}

	id, err := a.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{
			"data": data,
		},
		MaxLen: maxLen,
	}).Result()
	if err != nil {
		return "", fmt.Errorf("audit xadd failed: %w", err)
	}

	return id, nil
}
