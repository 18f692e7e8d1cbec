package sidechannel

import (
	"context"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/pkg/errors"
)

// RedisStore is the Redis-backed side channel used in production.
type RedisStore struct {
	pool *redis.Pool
}

// NewPool builds a Redis connection pool for the given address. The password may be
// empty.
func NewPool(address, password string) *redis.Pool {
	return &redis.Pool{
		MaxIdle:     10,
		IdleTimeout: 240 * time.Second,
		Dial: func() (redis.Conn, error) {
			options := []redis.DialOption{}
			if password != "" {
				options = append(options, redis.DialPassword(password))
			}
			return redis.Dial("tcp", address, options...)
		},
	}
}

// NewRedisStore returns a side channel store backed by the given Redis pool.
func NewRedisStore(pool *redis.Pool) *RedisStore {
	return &RedisStore{pool: pool}
}

// Put stores a value with a time to live using SETEX.
func (s *RedisStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return errors.Wrap(err, "unable to obtain a redis connection")
	}
	defer conn.Close()

	_, err = conn.Do("SETEX", key, int64(ttl.Seconds()), value)
	if err != nil {
		return errors.Wrapf(err, "unable to store the value for `%s`", key)
	}
	return nil
}

// Get retrieves the value stored under a key. A missing key is not an error.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return "", false, errors.Wrap(err, "unable to obtain a redis connection")
	}
	defer conn.Close()

	value, err := redis.String(conn.Do("GET", key))
	if err == redis.ErrNil {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "unable to retrieve the value for `%s`", key)
	}
	return value, true, nil
}

// RemainingTTL reports how long the value stored under a key has left to live. PTTL
// returns a negative value for missing keys and keys without an expiry; both are
// reported as absent because every side channel entry is written with a TTL.
func (s *RedisStore) RemainingTTL(ctx context.Context, key string) (time.Duration, bool, error) {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return 0, false, errors.Wrap(err, "unable to obtain a redis connection")
	}
	defer conn.Close()

	millis, err := redis.Int64(conn.Do("PTTL", key))
	if err != nil {
		return 0, false, errors.Wrapf(err, "unable to retrieve the TTL for `%s`", key)
	}
	if millis < 0 {
		return 0, false, nil
	}
	return time.Duration(millis) * time.Millisecond, true, nil
}
