package store

import (
	"context"
	stderrors "errors"
	"slices"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/mindcraft/pkg/cache"
	"github.com/matzehuels/mindcraft/pkg/errors"
	"github.com/matzehuels/mindcraft/pkg/mapfile"
)

// redisKeyPrefix namespaces map keys within a shared Redis database.
const redisKeyPrefix = "mindcraft:map:"

// RedisStore keeps each map as a JSON string value.
type RedisStore struct {
	client *redis.Client
	opts   mapfile.Options
}

// NewRedisStore connects to the Redis server at uri and pings it, retrying
// transient failures with backoff.
func NewRedisStore(ctx context.Context, uri string, opts mapfile.Options) (*RedisStore, error) {
	ropts, err := redis.ParseURL(uri)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse redis URI")
	}
	client := redis.NewClient(ropts)

	err = cache.RetryWithBackoff(ctx, func() error {
		return cache.Retryable(client.Ping(ctx).Err())
	})
	if err != nil {
		client.Close()
		return nil, errors.Wrap(errors.ErrCodeIOFailure, err, "connect to redis at %s", ropts.Addr)
	}
	return &RedisStore{client: client, opts: opts}, nil
}

func redisKey(name string) string { return redisKeyPrefix + name }

func (s *RedisStore) Save(ctx context.Context, name string, doc *mapfile.Document) error {
	if err := errors.ValidateMapName(name); err != nil {
		return err
	}
	data, err := mapfile.Marshal(doc)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, redisKey(name), data, 0).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeIOFailure, err, "save map %q", name)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, name string) (*mapfile.Document, error) {
	data, err := s.client.Get(ctx, redisKey(name)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIOFailure, err, "load map %q", name)
	}
	return mapfile.Unmarshal(data, s.opts)
}

func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	var names []string
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		names = append(names, strings.TrimPrefix(iter.Val(), redisKeyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIOFailure, err, "list maps")
	}
	slices.Sort(names)
	// SCAN may return a key more than once.
	return slices.Compact(names), nil
}

func (s *RedisStore) Delete(ctx context.Context, name string) error {
	n, err := s.client.Del(ctx, redisKey(name)).Result()
	if err != nil {
		return errors.Wrap(errors.ErrCodeIOFailure, err, "delete map %q", name)
	}
	if n == 0 {
		return notFound(name)
	}
	return nil
}

func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
