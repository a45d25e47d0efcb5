package database

import (
	"context"
	"fmt"

	"github.com/gocrud/beans/starter/internal/named"
	"gorm.io/gorm"
)

// DatabaseFactory 持有所有已打开的数据库
type DatabaseFactory struct {
	*named.Factory[*gorm.DB]
}

// NewDatabaseFactory 创建数据库工厂
func NewDatabaseFactory() *DatabaseFactory {
	return &DatabaseFactory{named.NewFactory("database", func(_ context.Context, db *gorm.DB) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})}
}

// Register 打开数据库、配置连接池并执行自动迁移
func (f *DatabaseFactory) Register(opts DatabaseOptions) error {
	db, err := gorm.Open(opts.Dialector, opts.GormConfig)
	if err != nil {
		return fmt.Errorf("failed to open database '%s': %w", opts.Name, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB for '%s': %w", opts.Name, err)
	}
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(opts.MaxLifetime)

	if len(opts.AutoMigrate) > 0 {
		if err := db.AutoMigrate(opts.AutoMigrate...); err != nil {
			_ = sqlDB.Close()
			return fmt.Errorf("auto migrate failed for '%s': %w", opts.Name, err)
		}
	}

	if err := f.Put(opts.Name, db); err != nil {
		_ = sqlDB.Close()
		return err
	}
	return nil
}
