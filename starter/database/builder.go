package database

import (
	"context"

	"github.com/gocrud/beans/logging"
	"github.com/gocrud/beans/starter/internal/named"
	"gorm.io/gorm"
)

// Builder 数据库配置构建器
type Builder struct {
	*named.Builder[DatabaseOptions]
}

// NewBuilder 创建构建器
func NewBuilder() *Builder {
	return &Builder{named.NewBuilder("database", defaultOptions)}
}

// AddDatabase 添加数据库配置
// name: 实例名称，同时也是组件名称
// dialector: GORM 驱动 (e.g. sqlite.Open(dsn))
func (b *Builder) AddDatabase(name string, dialector gorm.Dialector, configure func(*DatabaseOptions)) *Builder {
	b.Add(name, func(o *DatabaseOptions) {
		o.Dialector = dialector
		if configure != nil {
			configure(o)
		}
	})
	return b
}

// Build 构建数据库工厂，没有任何配置时返回 nil
func (b *Builder) Build(logger logging.Logger) (*DatabaseFactory, error) {
	configs, err := b.Configs()
	if err != nil || len(configs) == 0 {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	factory := NewDatabaseFactory()
	for _, opts := range configs {
		if err := factory.Register(*opts); err != nil {
			_ = factory.Close(context.Background())
			return nil, err
		}
		logger.Info("Database registered",
			logging.Field{Key: "name", Value: opts.Name},
			logging.Field{Key: "dialector", Value: opts.Dialector.Name()})
	}
	return factory, nil
}
