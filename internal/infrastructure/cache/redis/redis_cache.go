package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss возвращается при отсутствии ключа; errors.Is-совместим
var ErrMiss = errors.New("redis cache: key not found")

// Cache - слой кеширования последнего результата run'а поверх Redis.
// Реализует port.Cache. Значения хранятся как JSON с общим TTL:
// протухший результат хуже, чем его отсутствие.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCache подключается к Redis и проверяет соединение ping'ом
func NewCache(host, port, password string, db int, ttl time.Duration) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(host, port),
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		MaxRetries:   3,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &Cache{rdb: rdb, ttl: ttl}, nil
}

// Get декодирует значение ключа в dest; промах - ErrMiss
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("redis get %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode cached value for %s: %w", key, err)
	}
	return nil
}

// Set кодирует значение в JSON и сохраняет с TTL кеша
func (c *Cache) Set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode value for %s: %w", key, err)
	}

	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete удаляет ключ; отсутствие ключа не ошибка
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Close закрывает пул соединений
func (c *Cache) Close() error {
	return c.rdb.Close()
}
