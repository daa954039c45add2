package engagement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultScope       = "default"
	defaultRedisPrefix = "engagement"
)

// redisAPI is the subset of go-redis used here; *redis.Client satisfies it.
type redisAPI interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RedisKV namespaces keys as "prefix:scope:key" so one server can hold many
// durable scopes.
type RedisKV struct {
	client redisAPI
	prefix string
	scope  string
}

func NewRedisKV(client redisAPI, prefix, scope string) (*RedisKV, error) {
	if client == nil {
		return nil, errors.New("engagement: redis client must not be nil")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	scope = strings.TrimSpace(scope)
	if scope == "" {
		scope = defaultScope
	}
	return &RedisKV{client: client, prefix: prefix, scope: scope}, nil
}

func (r *RedisKV) key(k string) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, r.scope, k)
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("engagement: redis get %q: %w", key, err)
	}
	return v, true, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("engagement: redis set %q: %w", key, err)
	}
	return nil
}
