package redis

import (
	"context"

	"github.com/gocrud/beans/app"
	"github.com/gocrud/beans/logging"
	"github.com/gocrud/beans/starter/internal/named"
)

// FactoryName 是 RedisClientFactory 的组件名称
const FactoryName = "redis-clients"

// Builder Redis 客户端配置构建器
type Builder struct {
	*named.Builder[RedisClientOptions]
}

// NewBuilder 创建 Redis 构建器
func NewBuilder() *Builder {
	return &Builder{named.NewBuilder("redis client", NewDefaultOptions)}
}

// AddClient 添加一个 Redis 客户端配置
func (b *Builder) AddClient(name string, configure func(*RedisClientOptions)) *Builder {
	b.Add(name, configure)
	return b
}

// Build 构建 Redis 客户端工厂，没有任何配置时返回 nil
func (b *Builder) Build(logger logging.Logger) (*RedisClientFactory, error) {
	configs, err := b.Configs()
	if err != nil || len(configs) == 0 {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	factory := NewRedisClientFactory()
	for _, opts := range configs {
		if err := factory.Register(*opts); err != nil {
			_ = factory.Close(context.Background())
			return nil, err
		}
		logger.Info("Redis client registered",
			logging.Field{Key: "name", Value: opts.Name},
			logging.Field{Key: "addr", Value: opts.Addr},
			logging.Field{Key: "db", Value: opts.DB})
	}
	return factory, nil
}

// BuilderOption 用于配置 Redis Builder
type BuilderOption func(*Builder)

// WithClient 添加 Redis 客户端配置
func WithClient(name string, opts ...func(*RedisClientOptions)) BuilderOption {
	return func(b *Builder) {
		b.AddClient(name, func(o *RedisClientOptions) {
			for _, opt := range opts {
				opt(o)
			}
		})
	}
}

// WithClientsFromConfig 从配置节读取客户端，每个子键是一个客户端
func WithClientsFromConfig(section string, opts ...func(*RedisClientOptions)) BuilderOption {
	return func(b *Builder) {
		named.FromConfig(b.Builder, section, func(name string, c ClientConfig) error {
			var applyErr error
			b.AddClient(name, func(o *RedisClientOptions) {
				applyErr = c.apply(o)
				for _, opt := range opts {
					opt(o)
				}
			})
			return applyErr
		})
	}
}

// New 创建 Redis 客户端并把每个 *redis.Client 以其名称注册为共享组件
func New(opts ...BuilderOption) app.Option {
	return app.Use(func(rt *app.Runtime) error {
		builder := NewBuilder()
		builder.Config = rt.Config
		for _, opt := range opts {
			opt(builder)
		}

		logger := rt.LoggerFactory.CreateLogger("redis")
		factory, err := builder.Build(logger)
		if err != nil || factory == nil {
			return err
		}
		return named.Install(rt, FactoryName, factory, factory.Factory, logger)
	})
}
