// Package store provides the key/value persistence backends the library
// is saved into. Values are opaque bytes; a missing key reads as nil.
package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown store backend")

// Store is an asynchronous get/set key/value store.
type Store interface {
	// Get returns the value for key, or nil when the key is not set.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Change reports keys whose values changed and the area they live in.
type Change struct {
	Keys []string
	Area string
}

// Watcher is implemented by stores that can push change notifications.
// The channel is closed when ctx ends or the store is closed.
type Watcher interface {
	Watch(ctx context.Context) (<-chan Change, error)
}

// Options selects and configures a backend.
type Options struct {
	Backend      string
	Path         string
	SQLitePath   string
	RedisAddr    string
	RedisChannel string
}

// Open builds the backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", "file":
		return NewFile(opts.Path)
	case "sqlite":
		return NewSQLite(ctx, opts.SQLitePath)
	case "redis":
		return NewRedis(ctx, opts.RedisAddr, opts.RedisChannel)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
