package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const defaultRedisChannel = "lntracker:changes"

// Redis keeps keys as plain strings and announces every Set on a pub/sub
// channel so other processes can follow changes.
type Redis struct {
	rdb     *redis.Client
	channel string
}

func NewRedis(ctx context.Context, addr, channel string) (*Redis, error) {
	if addr == "" {
		return nil, errors.New("redis store: empty address")
	}
	if channel == "" {
		channel = defaultRedisChannel
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis store: ping %s: %w", addr, err)
	}

	return &Redis{rdb: rdb, channel: channel}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis store: get %q: %w", key, err)
	}

	return v, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis store: set %q: %w", key, err)
	}
	if err := r.rdb.Publish(ctx, r.channel, key).Err(); err != nil {
		return fmt.Errorf("redis store: publish %q: %w", key, err)
	}

	return nil
}

func (r *Redis) Watch(ctx context.Context) (<-chan Change, error) {
	sub := r.rdb.Subscribe(ctx, r.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("redis store: subscribe %s: %w", r.channel, err)
	}

	out := make(chan Change, 16)
	go func() {
		defer close(out)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- Change{Keys: []string{msg.Payload}, Area: "redis"}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
