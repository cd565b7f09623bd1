package ratelimit

import (
	"context"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Connect returns a client for addr, or nil when addr is empty or the server
// does not answer a ping. Callers treat a nil client as "no limiting".
func Connect(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}

// Limiter is a fixed-window counter in Redis using INCR/EXPIRE.
// Keys look like <prefix>:<window_seconds>:<identifier>.
type Limiter struct {
	client *redis.Client
	prefix string
	max    int
	window time.Duration
}

func New(client *redis.Client, prefix string, max int, window time.Duration) *Limiter {
	return &Limiter{client: client, prefix: prefix, max: max, window: window}
}

// Enabled reports whether the limiter has a Redis client behind it.
func (l *Limiter) Enabled() bool {
	return l != nil && l.client != nil && l.max > 0
}

// Allow counts one hit for ident and reports whether it is within the limit.
// Without Redis every hit is allowed. On Redis errors the hit is allowed and
// the error returned.
func (l *Limiter) Allow(ctx context.Context, ident string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}

	key := l.prefix + ":" + strconv.FormatInt(int64(l.window.Seconds()), 10) + ":" + ident
	val, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return true, err
	}
	if val == 1 {
		l.client.Expire(ctx, key, l.window)
	}
	return val <= int64(l.max), nil
}
