package database

import (
	"github.com/gocrud/beans/app"
	"github.com/gocrud/beans/starter/internal/named"
	"gorm.io/gorm"
)

// FactoryName 是 DatabaseFactory 的组件名称
const FactoryName = "databases"

// BuilderOption 用于配置 Database Builder
type BuilderOption func(*Builder)

// WithDatabase 添加数据库配置
func WithDatabase(name string, dialector gorm.Dialector, opts ...func(*DatabaseOptions)) BuilderOption {
	return func(b *Builder) {
		b.AddDatabase(name, dialector, chain(opts))
	}
}

// WithSQLiteFromConfig 从配置节读取 sqlite 数据库，每个子键是一个实例
func WithSQLiteFromConfig(section string, opts ...func(*DatabaseOptions)) BuilderOption {
	return func(b *Builder) {
		named.FromConfig(b.Builder, section, func(name string, c SQLiteConfig) error {
			var applyErr error
			b.Add(name, func(o *DatabaseOptions) {
				applyErr = c.apply(o)
				chain(opts)(o)
			})
			return applyErr
		})
	}
}

func chain(opts []func(*DatabaseOptions)) func(*DatabaseOptions) {
	return func(o *DatabaseOptions) {
		for _, opt := range opts {
			opt(o)
		}
	}
}

// New 打开数据库并把每个 *gorm.DB 以其名称注册为共享组件
func New(opts ...BuilderOption) app.Option {
	return app.Use(func(rt *app.Runtime) error {
		builder := NewBuilder()
		builder.Config = rt.Config
		for _, opt := range opts {
			opt(builder)
		}

		logger := rt.LoggerFactory.CreateLogger("database")
		factory, err := builder.Build(logger)
		if err != nil || factory == nil {
			return err
		}
		return named.Install(rt, FactoryName, factory, factory.Factory, logger)
	})
}
