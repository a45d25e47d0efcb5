package mongodb

import (
	"context"

	"github.com/gocrud/beans/app"
	"github.com/gocrud/beans/logging"
	"github.com/gocrud/beans/starter/internal/named"
)

// FactoryName 是 MongoFactory 的组件名称
const FactoryName = "mongo-clients"

// Builder MongoDB 配置构建器
type Builder struct {
	*named.Builder[MongoOptions]
}

// NewBuilder 创建构建器
func NewBuilder() *Builder {
	return &Builder{named.NewBuilder("mongo client", NewDefaultOptions)}
}

// AddClient 添加 MongoDB 客户端配置
func (b *Builder) AddClient(name, uri string, configure func(*MongoOptions)) *Builder {
	b.Add(name, func(o *MongoOptions) {
		o.URI = uri
		if configure != nil {
			configure(o)
		}
	})
	return b
}

// Build 构建 MongoDB 工厂，没有任何配置时返回 nil
func (b *Builder) Build(logger logging.Logger) (*MongoFactory, error) {
	configs, err := b.Configs()
	if err != nil || len(configs) == 0 {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	factory := NewMongoFactory()
	for _, opts := range configs {
		if err := factory.Register(*opts); err != nil {
			_ = factory.Close(context.Background())
			return nil, err
		}
		logger.Info("Mongo client registered", logging.Field{Key: "name", Value: opts.Name})
	}
	return factory, nil
}

// BuilderOption 用于配置 MongoDB Builder
type BuilderOption func(*Builder)

// WithClient 添加 MongoDB 客户端配置
func WithClient(name, uri string, opts ...func(*MongoOptions)) BuilderOption {
	return func(b *Builder) {
		b.AddClient(name, uri, func(o *MongoOptions) {
			for _, opt := range opts {
				opt(o)
			}
		})
	}
}

// WithClientsFromConfig 从配置节读取客户端，每个子键是一个客户端
func WithClientsFromConfig(section string) BuilderOption {
	return func(b *Builder) {
		named.FromConfig(b.Builder, section, func(name string, c ClientConfig) error {
			var applyErr error
			b.Add(name, func(o *MongoOptions) { applyErr = c.apply(o) })
			return applyErr
		})
	}
}

// New 创建 MongoDB 客户端并把每个 *mongo.Client 以其名称注册为共享组件
func New(opts ...BuilderOption) app.Option {
	return app.Use(func(rt *app.Runtime) error {
		builder := NewBuilder()
		builder.Config = rt.Config
		for _, opt := range opts {
			opt(builder)
		}

		logger := rt.LoggerFactory.CreateLogger("mongodb")
		factory, err := builder.Build(logger)
		if err != nil || factory == nil {
			return err
		}
		return named.Install(rt, FactoryName, factory, factory.Factory, logger)
	})
}
