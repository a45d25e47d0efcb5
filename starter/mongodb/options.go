package mongodb

import (
	"time"

	"github.com/gocrud/beans/starter/internal/named"
)

// MongoOptions MongoDB 客户端配置选项
type MongoOptions struct {
	Name        string `validate:"required"`
	URI         string `validate:"required,startswith=mongodb"`
	Username    string
	Password    string
	MaxPoolSize uint64
	MinPoolSize uint64        `validate:"ltefield=MaxPoolSize"`
	Timeout     time.Duration `validate:"gt=0"`
	Ping        bool          // 注册时检查连接
}

// NewDefaultOptions 创建默认配置
func NewDefaultOptions(name string) *MongoOptions {
	return &MongoOptions{
		Name:        name,
		MaxPoolSize: 100,
		MinPoolSize: 5,
		Timeout:     10 * time.Second,
	}
}

// ClientConfig 是配置文件中单个客户端的配置
//
//	mongodb:
//	  catalog:
//	    uri: mongodb://localhost:27017
//	    max_pool_size: 20
//	    timeout: 3s
type ClientConfig struct {
	URI         string `json:"uri"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	MaxPoolSize uint64 `json:"max_pool_size"`
	MinPoolSize uint64 `json:"min_pool_size"`
	Timeout     string `json:"timeout"`
	Ping        bool   `json:"ping"`
}

func (c ClientConfig) apply(o *MongoOptions) error {
	o.URI = c.URI
	o.Username = c.Username
	o.Password = c.Password
	if c.MaxPoolSize > 0 {
		o.MaxPoolSize = c.MaxPoolSize
	}
	if c.MinPoolSize > 0 {
		o.MinPoolSize = c.MinPoolSize
	}
	o.Ping = c.Ping
	return named.ParseDuration(c.Timeout, &o.Timeout)
}
