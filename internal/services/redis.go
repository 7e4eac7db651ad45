package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// InitRedis initializes the Redis client
func InitRedis(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	client := redis.NewClient(opt)

	// Test the connection
	ctx := context.Background()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return client, nil
}

// ResetTokenConsumer marks password-reset token ids as spent. The key
// only needs to outlive the token itself, so entries expire with the
// token TTL.
type ResetTokenConsumer struct {
	redis *redis.Client
}

func NewResetTokenConsumer(client *redis.Client) *ResetTokenConsumer {
	return &ResetTokenConsumer{redis: client}
}

// Consume claims a jti. SETNX makes the claim atomic: the first caller
// wins, every later caller for the same jti gets false.
func (c *ResetTokenConsumer) Consume(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	return c.redis.SetNX(ctx, "pw_reset:jti:"+jti, "1", ttl).Result()
}
