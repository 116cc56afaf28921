package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/axgrid/aftercare/internal/config"
)

// ErrMiss — ключа нет в кэше.
var ErrMiss = errors.New("cache miss")

// Referrals — поколение данных по направлениям. Отчёты включают его в ключ,
// сервисы, меняющие направления, сдвигают его после коммита.
const Referrals = "referrals"

// Invalidator сдвигает поколение scope, после чего старые ключи больше не читаются.
type Invalidator interface {
	Invalidate(ctx context.Context, scope string) error
}

// Cache хранит JSON-результаты отчётов.
type Cache interface {
	Invalidator
	Get(ctx context.Context, key string, dst any) error
	Set(ctx context.Context, key string, v any) error
	// Generation возвращает текущее поколение scope; 0, если его ещё не сдвигали.
	Generation(ctx context.Context, scope string) (int64, error)
	Close() error
}

type redisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New возвращает redis-кэш или Nop, если REDIS_ADDR не задан.
func New(ctx context.Context, cfg config.RedisConfig) (Cache, error) {
	if cfg.Addr == "" {
		return Nop{}, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return NewRedis(rdb, cfg.TTL), nil
}

func NewRedis(rdb *redis.Client, ttl time.Duration) Cache {
	return &redisCache{rdb: rdb, ttl: ttl}
}

func (c *redisCache) Get(ctx context.Context, key string, dst any) error {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

func (c *redisCache) Set(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, c.ttl).Err()
}

func genKey(scope string) string {
	return "aftercare:gen:" + scope
}

func (c *redisCache) Generation(ctx context.Context, scope string) (int64, error) {
	n, err := c.rdb.Get(ctx, genKey(scope)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Invalidate — INCR без TTL: счётчик не должен откатываться назад.
func (c *redisCache) Invalidate(ctx context.Context, scope string) error {
	return c.rdb.Incr(ctx, genKey(scope)).Err()
}

func (c *redisCache) Close() error {
	return c.rdb.Close()
}

// Nop — кэш, который ничего не хранит.
type Nop struct{}

func (Nop) Get(context.Context, string, any) error            { return ErrMiss }
func (Nop) Set(context.Context, string, any) error            { return nil }
func (Nop) Generation(context.Context, string) (int64, error) { return 0, nil }
func (Nop) Invalidate(context.Context, string) error          { return nil }
func (Nop) Close() error                                      { return nil }
