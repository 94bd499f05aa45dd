package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Samikshyapaudel0/complanify-cms/config"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewClient(&config.RedisConfig{Addr: mr.Addr()}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestNewClient_Unreachable(t *testing.T) {
	_, err := NewClient(&config.RedisConfig{Addr: "127.0.0.1:1"}, zap.NewNop())
	assert.Error(t, err)
}

func TestBlacklistToken(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.BlacklistToken(ctx, "jti-1", time.Minute))

	ok, err := c.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.IsBlacklisted(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = c.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, ok, "过期后应自动移出黑名单")
}

func TestBlacklistToken_ExpiredTokenIgnored(t *testing.T) {
	c, mr := newTestClient(t)

	require.NoError(t, c.BlacklistToken(context.Background(), "jti-old", 0))
	assert.False(t, mr.Exists(blacklistPrefix+"jti-old"))
}

func TestCheckRateLimit(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := c.CheckRateLimit(ctx, "rl:login:1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "第 %d 次请求应放行", i+1)
	}

	allowed, err := c.CheckRateLimit(ctx, "rl:login:1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed, "超过窗口上限应拒绝")

	allowed, err = c.CheckRateLimit(ctx, "rl:login:5.6.7.8", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed, "不同 key 互不影响")
}
