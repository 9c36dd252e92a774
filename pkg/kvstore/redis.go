package kvstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps client state in Redis so sessions on multiple devices
// can share a notification log and preferences. Keys are namespaced with a
// prefix per client identity.
type RedisStore struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

// RedisConfig configures the Redis connection for client storage.
type RedisConfig struct {
	ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	KeyPrefix      string        `env:"REDIS_KEY_PREFIX" envDefault:"connectsphere"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"10s"`
	OpTimeout      time.Duration `env:"REDIS_OP_TIMEOUT" envDefault:"3s"`
}

// ErrRedisNotReady is returned when the Redis server cannot be reached.
var ErrRedisNotReady = errors.New("kvstore: redis is not ready")

// NewRedisStore connects to Redis using cfg and verifies the connection
// with a ping before returning.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	opt, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrRedisNotReady, err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Join(ErrRedisNotReady, err)
	}

	return &RedisStore{
		client:  client,
		prefix:  cfg.KeyPrefix,
		timeout: cfg.OpTimeout,
	}, nil
}

func (s *RedisStore) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

func (s *RedisStore) opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *RedisStore) Get(key string) (string, bool) {
	ctx, cancel := s.opCtx()
	defer cancel()

	v, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		return "", false
	}
	return v, true
}

func (s *RedisStore) Set(key, value string) error {
	ctx, cancel := s.opCtx()
	defer cancel()

	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return errors.Join(ErrFailedToWrite, err)
	}
	return nil
}

func (s *RedisStore) Delete(key string) error {
	ctx, cancel := s.opCtx()
	defer cancel()

	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return errors.Join(ErrFailedToDelete, err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
