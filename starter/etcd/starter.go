package etcd

import (
	"context"

	"github.com/gocrud/beans/app"
	"github.com/gocrud/beans/logging"
	"github.com/gocrud/beans/starter/internal/named"
)

// FactoryName 是 EtcdClientFactory 的组件名称
const FactoryName = "etcd-clients"

// Builder etcd 客户端配置构建器
type Builder struct {
	*named.Builder[EtcdClientOptions]
}

// NewBuilder 创建构建器
func NewBuilder() *Builder {
	return &Builder{named.NewBuilder("etcd client", NewDefaultOptions)}
}

// AddClient 添加客户端配置
func (b *Builder) AddClient(name string, configure func(*EtcdClientOptions)) *Builder {
	b.Add(name, configure)
	return b
}

// Build 构建客户端工厂，没有任何配置时返回 nil
func (b *Builder) Build(logger logging.Logger) (*EtcdClientFactory, error) {
	configs, err := b.Configs()
	if err != nil || len(configs) == 0 {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	factory := NewEtcdClientFactory()
	for _, opts := range configs {
		if err := factory.Register(*opts); err != nil {
			_ = factory.Close(context.Background())
			return nil, err
		}
		logger.Info("Etcd client registered",
			logging.Field{Key: "name", Value: opts.Name},
			logging.Field{Key: "endpoints", Value: opts.Endpoints})
	}
	return factory, nil
}

// BuilderOption 用于配置 etcd Builder
type BuilderOption func(*Builder)

// WithClient 添加 etcd 客户端配置
func WithClient(name string, opts ...func(*EtcdClientOptions)) BuilderOption {
	return func(b *Builder) {
		b.AddClient(name, func(o *EtcdClientOptions) {
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
			b.AddClient(name, func(o *EtcdClientOptions) { applyErr = c.apply(o) })
			return applyErr
		})
	}
}

// New 创建 etcd 客户端并把每个 *clientv3.Client 以其名称注册为共享组件
func New(opts ...BuilderOption) app.Option {
	return app.Use(func(rt *app.Runtime) error {
		builder := NewBuilder()
		builder.Config = rt.Config
		for _, opt := range opts {
			opt(builder)
		}

		logger := rt.LoggerFactory.CreateLogger("etcd")
		factory, err := builder.Build(logger)
		if err != nil || factory == nil {
			return err
		}
		return named.Install(rt, FactoryName, factory, factory.Factory, logger)
	})
}
