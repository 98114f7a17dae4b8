package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/bonesdao/onboarding/internal/adapter"
	"github.com/bonesdao/onboarding/internal/logger"
)

// Routes guarded by the limiter
const (
	RouteSubmit = "submit"
	RouteStatus = "status"
	RouteLogin  = "login"
)

const (
	defaultKeyPrefix    = "onboarding:limiter:"
	defaultRedisBackoff = 10 * time.Second
	localIdleTTL        = 10 * time.Minute
	localPruneAt        = 10000
)

// Rule bounds the requests one client may make to a route
type Rule struct {
	RequestsPerMinute int
	// Burst defaults to RequestsPerMinute
	Burst int
}

// Config holds the limiter rules
type Config struct {
	KeyPrefix string
	Rules     map[string]Rule
	// RedisBackoff is how long counters stay local after a redis failure
	RedisBackoff time.Duration
}

// Decision is the outcome of one check
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
	// Degraded is set when redis is configured but the local fallback answered
	Degraded bool
}

// Limiter decides whether a client may call a route
//
//go:generate mockgen -source=limiter.go -destination=../mocks/ratelimit.go -package=mocks -mock_names=Limiter=MockRateLimiter
type Limiter interface {
	// Allow consumes one request of client's budget for route. Unknown routes are unlimited.
	Allow(ctx context.Context, route, client string) (Decision, error)
	// Close releases the redis connection, if any
	Close() error
}

type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiter struct {
	config      Config
	redis       adapter.RedisClient
	distributed adapter.RedisRateLimiter
	clock       adapter.Clock

	mu             sync.Mutex
	local          map[string]*localBucket
	redisDownUntil time.Time
}

// New creates a limiter. With a nil redis client counters are kept in process only.
func New(cfg Config, rc adapter.RedisClient, clock adapter.Clock) (Limiter, error) {
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid rate limit configuration: %w", err)
	}

	l := &limiter{
		config: cfg,
		redis:  rc,
		clock:  clock,
		local:  make(map[string]*localBucket),
	}

	if rc != nil {
		l.distributed = rc.NewRateLimiter()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rc.Ping(ctx); err != nil {
			l.markRedisDown(err)
		}
	}

	logger.Info("Rate limiter initialized",
		zap.Int("routes", len(cfg.Rules)),
		zap.Bool("distributed", rc != nil))

	return l, nil
}

func validateConfig(cfg *Config) error {
	for route, rule := range cfg.Rules {
		if rule.RequestsPerMinute <= 0 {
			return fmt.Errorf("route %s: requests_per_minute must be positive", route)
		}
		if rule.Burst <= 0 {
			rule.Burst = rule.RequestsPerMinute
		}
		cfg.Rules[route] = rule
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = defaultKeyPrefix
	}
	if cfg.RedisBackoff <= 0 {
		cfg.RedisBackoff = defaultRedisBackoff
	}
	return nil
}

func (l *limiter) Allow(ctx context.Context, route, client string) (Decision, error) {
	rule, ok := l.config.Rules[route]
	if !ok {
		return Decision{Allowed: true}, nil
	}

	if l.distributed != nil && l.redisUsable() {
		res, err := l.distributed.Allow(ctx, l.config.KeyPrefix+route+":"+client, redis_rate.Limit{
			Rate:   rule.RequestsPerMinute,
			Burst:  rule.Burst,
			Period: time.Minute,
		})
		if err == nil {
			d := Decision{
				Allowed:   res.Allowed > 0,
				Limit:     rule.RequestsPerMinute,
				Remaining: res.Remaining,
			}
			if !d.Allowed {
				d.RetryAfter = res.RetryAfter
			}
			return d, nil
		}
		if ctx.Err() != nil {
			return Decision{}, ctx.Err()
		}
		l.markRedisDown(err)
	}

	return l.allowLocal(route, client, rule), nil
}

func (l *limiter) redisUsable() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return !l.clock.Now().Before(l.redisDownUntil)
}

func (l *limiter) markRedisDown(err error) {
	l.mu.Lock()
	l.redisDownUntil = l.clock.Now().Add(l.config.RedisBackoff)
	l.mu.Unlock()

	logger.Warn("Redis rate limiter unavailable, using local counters",
		zap.Duration("retry_in", l.config.RedisBackoff),
		zap.Error(err))
}

// allowLocal applies the rule with an in-process token bucket per client
func (l *limiter) allowLocal(route, client string, rule Rule) Decision {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	key := route + ":" + client
	b, ok := l.local[key]
	if !ok {
		if len(l.local) >= localPruneAt {
			l.pruneLocked(now)
		}
		b = &localBucket{
			limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rule.RequestsPerMinute)), rule.Burst),
		}
		l.local[key] = b
	}
	b.lastSeen = now

	d := Decision{
		Limit:    rule.RequestsPerMinute,
		Degraded: l.distributed != nil,
	}
	r := b.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		d.RetryAfter = delay
		return d
	}
	d.Allowed = true
	d.Remaining = int(b.limiter.TokensAt(now))
	return d
}

func (l *limiter) pruneLocked(now time.Time) {
	for key, b := range l.local {
		if now.Sub(b.lastSeen) > localIdleTTL {
			delete(l.local, key)
		}
	}
}

func (l *limiter) Close() error {
	if l.redis == nil {
		return nil
	}
	return l.redis.Close()
}
