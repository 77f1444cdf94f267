package utils

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrTooManyAttempts  = errors.New("too many login attempts")
	ErrRedisUnavailable = errors.New("redis unavailable")
)

// OpenRedisPool initializes a Redis connection pool
func OpenRedisPool(ctx context.Context, dsn string) (*redis.Client, error) {
	opt, err := redis.ParseURL(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	opt.PoolSize = 100
	opt.MinIdleConns = 2
	opt.DialTimeout = 5 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)
	if err = client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return client, nil
}

// LoginLimiter counts failed logins per account and per client address in fixed
// windows. Once either counter reaches the limit, Check refuses until the window ends.
type LoginLimiter struct {
	redis       redis.UniversalClient
	maxFailures int
	window      time.Duration
}

func NewLoginLimiter(client redis.UniversalClient, maxFailures int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		redis:       client,
		maxFailures: maxFailures,
		window:      window,
	}
}

func (l *LoginLimiter) Check(ctx context.Context, email, ip string) error {
	for _, key := range l.keys(email, ip) {
		count, err := l.redis.Get(ctx, key).Int64()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		if count >= int64(l.maxFailures) {
			return ErrTooManyAttempts
		}
	}
	return nil
}

func (l *LoginLimiter) RecordFailure(ctx context.Context, email, ip string) error {
	for _, key := range l.keys(email, ip) {
		count, err := l.redis.Incr(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		if count == 1 {
			if err := l.redis.Expire(ctx, key, l.window).Err(); err != nil {
				return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
			}
		}
	}
	return nil
}

// Reset clears the account counter after a successful login. The address counter
// is left to expire on its own.
func (l *LoginLimiter) Reset(ctx context.Context, email, _ string) error {
	if err := l.redis.Del(ctx, loginEmailKey(email)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (l *LoginLimiter) keys(email, ip string) []string {
	keys := []string{loginEmailKey(email)}
	if ip != "" {
		keys = append(keys, loginIPKey(ip))
	}
	return keys
}

func loginEmailKey(email string) string {
	return "login:fail:" + strings.ToLower(strings.TrimSpace(email))
}

func loginIPKey(ip string) string {
	return "login:failip:" + ip
}
