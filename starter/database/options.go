package database

import (
	"time"

	"github.com/gocrud/beans/starter/internal/named"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DatabaseOptions 数据库配置选项
type DatabaseOptions struct {
	Name         string         `validate:"required"`
	Dialector    gorm.Dialector `validate:"required"`
	GormConfig   *gorm.Config   `validate:"-"`
	MaxIdleConns int            `validate:"gte=0"`
	MaxOpenConns int            `validate:"gte=0"`
	MaxLifetime  time.Duration
	AutoMigrate  []any `validate:"-"` // 需要自动迁移的模型
}

func defaultOptions(name string) *DatabaseOptions {
	return &DatabaseOptions{
		Name:         name,
		GormConfig:   &gorm.Config{},
		MaxIdleConns: 10,
		MaxOpenConns: 100,
		MaxLifetime:  time.Hour,
	}
}

// SQLiteConfig 是配置文件中单个 sqlite 数据库的配置
//
//	databases:
//	  main:
//	    dsn: file::memory:?cache=shared
//	    max_open_conns: 5
//	    max_lifetime: 30m
type SQLiteConfig struct {
	DSN          string `json:"dsn"`
	MaxOpenConns int    `json:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns"`
	MaxLifetime  string `json:"max_lifetime"`
}

func (c SQLiteConfig) apply(o *DatabaseOptions) error {
	if c.DSN != "" {
		o.Dialector = sqlite.Open(c.DSN)
	}
	if c.MaxOpenConns > 0 {
		o.MaxOpenConns = c.MaxOpenConns
	}
	if c.MaxIdleConns > 0 {
		o.MaxIdleConns = c.MaxIdleConns
	}
	return named.ParseDuration(c.MaxLifetime, &o.MaxLifetime)
}
