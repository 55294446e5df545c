// Package ratelimit throttles failed logins with fixed-window counters in
// Redis. One counter is kept per username and client address pair; a
// successful login clears it.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/newsnow/internal/common"
	"github.com/redis/go-redis/v9"
)

var ErrRedisUnavailable = errors.New("redis unavailable")

const keyPrefix = "newsnow:login:"

type Limiter struct {
	redis       redis.UniversalClient
	maxAttempts int
	window      time.Duration
}

// New returns a limiter allowing maxAttempts failures per window.
func New(client redis.UniversalClient, maxAttempts int, window time.Duration) *Limiter {
	return &Limiter{redis: client, maxAttempts: maxAttempts, window: window}
}

// Dial connects to addr and checks the connection.
func Dial(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return client, nil
}

func key(username, ip string) string {
	return keyPrefix + strings.ToLower(username) + "|" + ip
}

// Check returns common.ErrorTooManyRequests when the pair has used up its
// failure budget for the current window.
func (l *Limiter) Check(ctx context.Context, username, ip string) error {
	n, err := l.redis.Get(ctx, key(username, ip)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	if n >= l.maxAttempts {
		return common.ErrorTooManyRequests
	}
	return nil
}

// Fail records a failed attempt. The window starts at the first failure.
func (l *Limiter) Fail(ctx context.Context, username, ip string) error {
	k := key(username, ip)

	n, err := l.redis.Incr(ctx, k).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	if n == 1 {
		if err := l.redis.Expire(ctx, k, l.window).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}
	return nil
}

func (l *Limiter) Reset(ctx context.Context, username, ip string) error {
	if err := l.redis.Del(ctx, key(username, ip)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
