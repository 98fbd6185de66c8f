package store

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/flashaov/pkg/errors"
)

// RedisStore keeps snapshots in Redis. Transient network failures are
// retried with backoff; a missing key is a miss.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects lazily to the server named by a redis:// or
// rediss:// URL. Use [RedisStore.Ping] to check reachability up front.
func NewRedisStore(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse redis url")
	}
	return &RedisStore{client: redis.NewClient(opts), prefix: "flashaov:"}, nil
}

// Ping checks that the server is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "ping redis")
	}
	return nil
}

// Get fetches a snapshot.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := RetryWithBackoff(ctx, func() error {
		b, err := s.client.Get(ctx, s.prefix+key).Bytes()
		if err != nil {
			return classify(err)
		}
		data = b
		return nil
	})
	if stderrors.Is(err, ErrMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeStore, err, "get %s", key)
	}
	return data, true, nil
}

// Set stores a snapshot. A ttl of zero never expires.
func (s *RedisStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := RetryWithBackoff(ctx, func() error {
		return classify(s.client.Set(ctx, s.prefix+key, data, ttl).Err())
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "set %s", key)
	}
	return nil
}

// Delete removes a snapshot.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "delete %s", key)
	}
	return nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error { return s.client.Close() }

// Backend returns "redis".
func (s *RedisStore) Backend() string { return "redis" }

// classify maps redis.Nil to ErrMiss and marks everything else except
// context errors as retryable.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, redis.Nil):
		return ErrMiss
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return Retryable(err)
	}
}

var _ Store = (*RedisStore)(nil)
