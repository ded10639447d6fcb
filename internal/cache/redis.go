package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
)

const redisKeyPrefix = "folkart:"

// RedisStore keeps entries in Redis through a connection pool.
type RedisStore struct {
	pool *redis.Pool
}

// NewRedisStore creates a pooled store for the server at addr. No
// connection is made until first use.
func NewRedisStore(addr string, maxIdle int) *RedisStore {
	return newRedisStore(func() (redis.Conn, error) {
		return redis.Dial("tcp", addr,
			redis.DialConnectTimeout(2*time.Second),
			redis.DialReadTimeout(2*time.Second),
			redis.DialWriteTimeout(2*time.Second),
		)
	}, maxIdle)
}

func newRedisStore(dial func() (redis.Conn, error), maxIdle int) *RedisStore {
	if maxIdle <= 0 {
		maxIdle = 4
	}
	return &RedisStore{
		pool: &redis.Pool{
			Dial:        dial,
			MaxIdle:     maxIdle,
			IdleTimeout: 5 * time.Minute,
		},
	}
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	conn, err := r.pool.GetContext(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("redis connect: %w", err)
	}
	defer conn.Close()

	data, err := redis.Bytes(conn.Do("GET", redisKeyPrefix+key))
	if errors.Is(err, redis.ErrNil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return data, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	conn, err := r.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("redis connect: %w", err)
	}
	defer conn.Close()

	args := redis.Args{}.Add(redisKeyPrefix+key, value)
	if ttl > 0 {
		args = args.Add("PX", ttl.Milliseconds())
	}
	if _, err := conn.Do("SET", args...); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.pool.Close()
}
