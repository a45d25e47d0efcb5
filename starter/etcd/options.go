package etcd

import (
	"time"

	"github.com/gocrud/beans/starter/internal/named"
)

// EtcdClientOptions etcd 客户端配置选项
type EtcdClientOptions struct {
	Name               string        `validate:"required"`
	Endpoints          []string      `validate:"required,dive,required"`
	DialTimeout        time.Duration `validate:"gt=0"`
	Username           string
	Password           string
	AutoSyncInterval   time.Duration
	MaxCallSendMsgSize int `validate:"gte=0"`
	MaxCallRecvMsgSize int `validate:"gte=0"`
}

// NewDefaultOptions 创建默认配置
func NewDefaultOptions(name string) *EtcdClientOptions {
	return &EtcdClientOptions{
		Name:        name,
		Endpoints:   []string{"localhost:2379"},
		DialTimeout: 5 * time.Second,
	}
}

// ClientConfig 是配置文件中单个客户端的配置
//
//	etcd:
//	  registry:
//	    endpoints: [10.0.0.1:2379, 10.0.0.2:2379]
//	    dial_timeout: 3s
type ClientConfig struct {
	Endpoints        []string `json:"endpoints"`
	Username         string   `json:"username"`
	Password         string   `json:"password"`
	DialTimeout      string   `json:"dial_timeout"`
	AutoSyncInterval string   `json:"auto_sync_interval"`
}

func (c ClientConfig) apply(o *EtcdClientOptions) error {
	if len(c.Endpoints) > 0 {
		o.Endpoints = c.Endpoints
	}
	o.Username = c.Username
	o.Password = c.Password
	if err := named.ParseDuration(c.DialTimeout, &o.DialTimeout); err != nil {
		return err
	}
	return named.ParseDuration(c.AutoSyncInterval, &o.AutoSyncInterval)
}
