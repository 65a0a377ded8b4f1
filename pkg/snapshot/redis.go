package snapshot

import (
	"context"
	stderrors "errors"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vango-dev/morph/internal/errors"
)

// RedisStore keeps snapshots in Redis under a key prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a store from an existing client.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// OpenRedisStore connects to the server at redisURL and checks it with PING.
func OpenRedisStore(ctx context.Context, redisURL, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.New("C003").WithDetailf("store.redis_url: %v", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, backendError("connect to redis", err)
	}
	return NewRedisStore(client, prefix), nil
}

// WithTTL expires snapshots d after their last Put. Zero keeps them forever.
func (s *RedisStore) WithTTL(d time.Duration) *RedisStore {
	s.ttl = d
	return s
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

// Put implements Store.
func (s *RedisStore) Put(ctx context.Context, id string, data []byte) error {
	if err := s.client.Set(ctx, s.key(id), data, s.ttl).Err(); err != nil {
		return backendError("redis set", err)
	}
	return nil
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, id string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, backendError("redis get", err)
	}
	return data, nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return backendError("redis del", err)
	}
	return nil
}

// List implements Store.
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	var ids []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, backendError("redis scan", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
