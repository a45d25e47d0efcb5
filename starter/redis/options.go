package redis

import (
	"time"

	"github.com/gocrud/beans/starter/internal/named"
)

// RedisClientOptions Redis 客户端配置选项
type RedisClientOptions struct {
	Name         string        `validate:"required"`
	Addr         string        `validate:"required,hostname_port"`
	Password     string
	DB           int           `validate:"gte=0"`
	DialTimeout  time.Duration `validate:"gt=0"`
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int `validate:"gte=0"`
	MinIdleConns int `validate:"gte=0"`
	MaxRetries   int // -1 表示不重试
	Ping         bool
}

// NewDefaultOptions 创建默认配置
func NewDefaultOptions(name string) *RedisClientOptions {
	return &RedisClientOptions{
		Name:         name,
		Addr:         "localhost:6379",
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
		Ping:         true,
	}
}

// ClientConfig 是配置文件中单个客户端的配置，时长使用 "5s" 形式
//
//	redis:
//	  cache:
//	    addr: localhost:6379
//	    db: 1
//	    dial_timeout: 2s
type ClientConfig struct {
	Addr        string `json:"addr"`
	Password    string `json:"password"`
	DB          int    `json:"db"`
	PoolSize    int    `json:"pool_size"`
	DialTimeout string `json:"dial_timeout"`
	Ping        *bool  `json:"ping"`
}

func (c ClientConfig) apply(o *RedisClientOptions) error {
	if c.Addr != "" {
		o.Addr = c.Addr
	}
	o.Password = c.Password
	o.DB = c.DB
	if c.PoolSize > 0 {
		o.PoolSize = c.PoolSize
	}
	if c.Ping != nil {
		o.Ping = *c.Ping
	}
	return named.ParseDuration(c.DialTimeout, &o.DialTimeout)
}
