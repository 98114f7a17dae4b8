package ratelimit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bonesdao/onboarding/internal/mocks"
	"github.com/bonesdao/onboarding/internal/ratelimit"
)

type testLimiter struct {
	clock       *mocks.MockClock
	redis       *mocks.MockRedisClient
	distributed *mocks.MockRedisRateLimiter
	now         time.Time
}

func newTestLimiter(t *testing.T) *testLimiter {
	ctrl := gomock.NewController(t)
	tl := &testLimiter{
		clock:       mocks.NewMockClock(ctrl),
		redis:       mocks.NewMockRedisClient(ctrl),
		distributed: mocks.NewMockRedisRateLimiter(ctrl),
		now:         time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	tl.clock.EXPECT().Now().DoAndReturn(func() time.Time { return tl.now }).AnyTimes()
	return tl
}

func rules() map[string]ratelimit.Rule {
	return map[string]ratelimit.Rule{
		ratelimit.RouteLogin: {RequestsPerMinute: 60, Burst: 2},
	}
}

func TestLocalLimiter(t *testing.T) {
	tl := newTestLimiter(t)
	l, err := ratelimit.New(ratelimit.Config{Rules: rules()}, nil, tl.clock)
	require.NoError(t, err)
	ctx := context.Background()

	d, err := l.Allow(ctx, ratelimit.RouteLogin, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 60, d.Limit)
	assert.Equal(t, 1, d.Remaining)
	assert.False(t, d.Degraded)

	d, _ = l.Allow(ctx, ratelimit.RouteLogin, "10.0.0.1")
	assert.True(t, d.Allowed)

	d, _ = l.Allow(ctx, ratelimit.RouteLogin, "10.0.0.1")
	assert.False(t, d.Allowed)
	assert.Equal(t, time.Second, d.RetryAfter)

	// other clients have their own budget
	d, _ = l.Allow(ctx, ratelimit.RouteLogin, "10.0.0.2")
	assert.True(t, d.Allowed)

	// unguarded routes are never limited
	d, _ = l.Allow(ctx, ratelimit.RouteSubmit, "10.0.0.1")
	assert.True(t, d.Allowed)

	tl.now = tl.now.Add(time.Second)
	d, _ = l.Allow(ctx, ratelimit.RouteLogin, "10.0.0.1")
	assert.True(t, d.Allowed)

	assert.NoError(t, l.Close())
}

func TestDistributedLimiter(t *testing.T) {
	tl := newTestLimiter(t)
	tl.redis.EXPECT().NewRateLimiter().Return(tl.distributed)
	tl.redis.EXPECT().Ping(gomock.Any()).Return(nil)

	l, err := ratelimit.New(ratelimit.Config{Rules: rules(), KeyPrefix: "test:"}, tl.redis, tl.clock)
	require.NoError(t, err)

	limit := redis_rate.Limit{Rate: 60, Burst: 2, Period: time.Minute}
	gomock.InOrder(
		tl.distributed.EXPECT().Allow(gomock.Any(), "test:login:10.0.0.1", limit).
			Return(&redis_rate.Result{Limit: limit, Allowed: 1, Remaining: 1, RetryAfter: -1}, nil),
		tl.distributed.EXPECT().Allow(gomock.Any(), "test:login:10.0.0.1", limit).
			Return(&redis_rate.Result{Limit: limit, Allowed: 0, Remaining: 0, RetryAfter: 3 * time.Second}, nil),
	)

	d, err := l.Allow(context.Background(), ratelimit.RouteLogin, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, ratelimit.Decision{Allowed: true, Limit: 60, Remaining: 1}, d)

	d, err = l.Allow(context.Background(), ratelimit.RouteLogin, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, ratelimit.Decision{Limit: 60, RetryAfter: 3 * time.Second}, d)

	tl.redis.EXPECT().Close().Return(nil)
	assert.NoError(t, l.Close())
}

func TestRedisFailureFallsBackToLocal(t *testing.T) {
	tl := newTestLimiter(t)
	tl.redis.EXPECT().NewRateLimiter().Return(tl.distributed)
	tl.redis.EXPECT().Ping(gomock.Any()).Return(nil)

	l, err := ratelimit.New(ratelimit.Config{Rules: rules(), RedisBackoff: 10 * time.Second}, tl.redis, tl.clock)
	require.NoError(t, err)
	ctx := context.Background()

	tl.distributed.EXPECT().Allow(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("connection refused")).Times(1)

	d, err := l.Allow(ctx, ratelimit.RouteLogin, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.True(t, d.Degraded)

	// within the backoff redis is not asked again
	d, err = l.Allow(ctx, ratelimit.RouteLogin, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, d.Degraded)

	tl.now = tl.now.Add(10 * time.Second)
	tl.distributed.EXPECT().Allow(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&redis_rate.Result{Allowed: 1, Remaining: 1}, nil)

	d, err = l.Allow(ctx, ratelimit.RouteLogin, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.False(t, d.Degraded)
}

func TestRedisUnreachableAtStartup(t *testing.T) {
	tl := newTestLimiter(t)
	tl.redis.EXPECT().NewRateLimiter().Return(tl.distributed)
	tl.redis.EXPECT().Ping(gomock.Any()).Return(errors.New("dial tcp: timeout"))

	l, err := ratelimit.New(ratelimit.Config{Rules: rules()}, tl.redis, tl.clock)
	require.NoError(t, err)

	d, err := l.Allow(context.Background(), ratelimit.RouteLogin, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.True(t, d.Degraded)
}

func TestInvalidRule(t *testing.T) {
	tl := newTestLimiter(t)
	_, err := ratelimit.New(ratelimit.Config{Rules: map[string]ratelimit.Rule{
		ratelimit.RouteSubmit: {RequestsPerMinute: 0},
	}}, nil, tl.clock)
	assert.Error(t, err)
}
