package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConsumer(t *testing.T) (*ResetTokenConsumer, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewResetTokenConsumer(client), mr
}

func TestConsumeFirstUseWins(t *testing.T) {
	consumer, _ := newTestConsumer(t)
	ctx := context.Background()

	first, err := consumer.Consume(ctx, "jti-1", 10*time.Minute)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := consumer.Consume(ctx, "jti-1", 10*time.Minute)
	require.NoError(t, err)
	assert.False(t, second, "a replayed jti must be rejected")
}

func TestConsumeIndependentTokens(t *testing.T) {
	consumer, _ := newTestConsumer(t)
	ctx := context.Background()

	a, err := consumer.Consume(ctx, "jti-a", 10*time.Minute)
	require.NoError(t, err)
	b, err := consumer.Consume(ctx, "jti-b", 10*time.Minute)
	require.NoError(t, err)
	assert.True(t, a)
	assert.True(t, b)
}

func TestConsumeEntryExpiresWithToken(t *testing.T) {
	consumer, mr := newTestConsumer(t)
	ctx := context.Background()

	_, err := consumer.Consume(ctx, "jti-ttl", 10*time.Minute)
	require.NoError(t, err)

	// Once past the token TTL the entry is garbage anyway; the token it
	// guarded can no longer verify.
	mr.FastForward(11 * time.Minute)

	again, err := consumer.Consume(ctx, "jti-ttl", 10*time.Minute)
	require.NoError(t, err)
	assert.True(t, again)
}
