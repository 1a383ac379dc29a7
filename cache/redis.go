package cache

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yatube/yatube/config"
)

// All page keys share one prefix so Flush can scan-delete them without
// touching anything else living in the same Redis database.
const pageKeyPrefix = "cache:page:"

// RedisStore keeps cached pages in Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisClient builds a Redis client from configuration.
func NewRedisClient(cfg config.AppConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.RedisHost, strconv.Itoa(cfg.RedisPort)),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// GetBytes returns cached bytes for a key.
func (r *RedisStore) GetBytes(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	b, err := r.client.Get(ctx, pageKeyPrefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

// SetBytes stores bytes with the given TTL. Failures are swallowed; the next
// request simply recomputes the page.
func (r *RedisStore) SetBytes(key string, b []byte, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = r.client.Set(ctx, pageKeyPrefix+key, b, ttl).Err()
}

// Flush deletes every page key using SCAN with pipelined deletes.
func (r *RedisStore) Flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	var cursor uint64
	for i := 0; i < 10; i++ { // limit rounds to avoid long loops
		keys, cur, err := r.client.Scan(ctx, cursor, pageKeyPrefix+"*", 1000).Result()
		if err != nil {
			break
		}
		cursor = cur
		if len(keys) > 0 {
			pipe := r.client.Pipeline()
			for _, k := range keys {
				pipe.Del(ctx, k)
			}
			_, _ = pipe.Exec(ctx)
		}
		if cursor == 0 {
			break
		}
	}
}
