// Package store persists compositing graph snapshots between passes.
//
// A [Store] is a byte-oriented key/value backend. [FileStore] keeps one JSON
// envelope per key under a directory, [RedisStore] keeps snapshots in Redis
// and [NullStore] discards everything. [LoadGraph] and [SaveGraph] move
// [nodegraph.Graph] values through any backend using the graphio snapshot
// format and report each operation to the observability store hooks.
//
// Keys come from a [Keyer], so deployments can namespace snapshots with
// [NewScopedKeyer]:
//
//	s, err := store.Open("redis://localhost:6379/0")
//	...
//	key := store.NewDefaultKeyer().GraphKey("shot_010")
//	g, found, err := store.LoadGraph(ctx, s, key)
package store

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/flashaov/pkg/errors"
)

// Store is a snapshot backend. Get reports a miss as (nil, false, nil).
// A ttl of zero keeps the entry until it is deleted.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error

	// Backend names the implementation in logs and hooks.
	Backend() string
}

// Open returns the store described by url:
//
//	""                  NullStore
//	redis://, rediss:// RedisStore
//	file://dir, dir     FileStore rooted at dir
func Open(url string) (Store, error) {
	if err := ValidateURL(url); err != nil {
		return nil, err
	}
	switch {
	case url == "":
		return NewNullStore(), nil
	case isRedisURL(url):
		return NewRedisStore(url)
	default:
		return NewFileStore(strings.TrimPrefix(url, "file://"))
	}
}

// ValidateURL checks that url names a supported backend.
func ValidateURL(url string) error {
	if err := errors.ValidateStoreURL(url); err != nil {
		return err
	}
	if url == "file://" {
		return errors.New(errors.ErrCodeInvalidConfig, "file store needs a directory")
	}
	return nil
}

func isRedisURL(url string) bool {
	return strings.HasPrefix(url, "redis://") || strings.HasPrefix(url, "rediss://")
}
