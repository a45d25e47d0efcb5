package redis

import (
	"context"
	"fmt"

	"github.com/gocrud/beans/starter/internal/named"
	"github.com/redis/go-redis/v9"
)

// RedisClientFactory Redis 客户端工厂
type RedisClientFactory struct {
	*named.Factory[*redis.Client]
}

// NewRedisClientFactory 创建客户端工厂
func NewRedisClientFactory() *RedisClientFactory {
	return &RedisClientFactory{named.NewFactory("redis client", func(_ context.Context, c *redis.Client) error {
		return c.Close()
	})}
}

// Register 创建 Redis 客户端，Ping 为 true 时检查连接
func (f *RedisClientFactory) Register(opts RedisClientOptions) error {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		PoolSize:     opts.PoolSize,
		MinIdleConns: opts.MinIdleConns,
		MaxRetries:   opts.MaxRetries,
	})

	if opts.Ping {
		ctx, cancel := context.WithTimeout(context.Background(), opts.DialTimeout)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return fmt.Errorf("failed to connect to redis '%s': %w", opts.Name, err)
		}
	}

	if err := f.Put(opts.Name, client); err != nil {
		_ = client.Close()
		return err
	}
	return nil
}
