package app

import (
	"context"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"

	"character-chat/internal/config"
	"character-chat/internal/engagement"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// OpenGate builds the engagement gate over the configured durable scope. The
// returned closer releases the backing store.
func OpenGate(ctx context.Context, cfg config.Config) (*engagement.Gate, io.Closer, error) {
	kv, closer, err := openKV(cfg)
	if err != nil {
		return nil, nil, err
	}
	store, err := engagement.NewKVStore(kv)
	if err != nil {
		closer.Close()
		return nil, nil, fmt.Errorf("app: engagement store: %w", err)
	}
	gate, err := engagement.Open(ctx, store)
	if err != nil {
		closer.Close()
		return nil, nil, fmt.Errorf("app: engagement gate: %w", err)
	}
	return gate, closer, nil
}

func openKV(cfg config.Config) (engagement.KV, io.Closer, error) {
	noop := closerFunc(func() error { return nil })
	switch cfg.EngagementBackend {
	case config.EngagementMemory:
		return engagement.NewMemoryKV(), noop, nil
	case config.EngagementFile:
		kv, err := engagement.NewFileKV(cfg.EngagementPath)
		if err != nil {
			return nil, nil, fmt.Errorf("app: engagement file: %w", err)
		}
		return kv, noop, nil
	case config.EngagementSQLite:
		kv, err := engagement.OpenSQLiteKV(cfg.EngagementPath, cfg.EngagementScope)
		if err != nil {
			return nil, nil, fmt.Errorf("app: engagement sqlite: %w", err)
		}
		return kv, kv, nil
	case config.EngagementRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		kv, err := engagement.NewRedisKV(client, "", cfg.EngagementScope)
		if err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("app: engagement redis: %w", err)
		}
		return kv, client, nil
	}
	return nil, nil, fmt.Errorf("app: unknown engagement backend %q", cfg.EngagementBackend)
}
