package etcd

import (
	"context"
	"fmt"

	"github.com/gocrud/beans/starter/internal/named"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// EtcdClientFactory etcd 客户端工厂
type EtcdClientFactory struct {
	*named.Factory[*clientv3.Client]
}

// NewEtcdClientFactory 创建客户端工厂
func NewEtcdClientFactory() *EtcdClientFactory {
	return &EtcdClientFactory{named.NewFactory("etcd client", func(_ context.Context, c *clientv3.Client) error {
		return c.Close()
	})}
}

// Register 创建 etcd 客户端，连接在首次请求时建立
func (f *EtcdClientFactory) Register(opts EtcdClientOptions) error {
	cfg := clientv3.Config{
		Endpoints:          opts.Endpoints,
		DialTimeout:        opts.DialTimeout,
		AutoSyncInterval:   opts.AutoSyncInterval,
		MaxCallSendMsgSize: opts.MaxCallSendMsgSize,
		MaxCallRecvMsgSize: opts.MaxCallRecvMsgSize,
	}
	if opts.Username != "" {
		cfg.Username = opts.Username
		cfg.Password = opts.Password
	}

	client, err := clientv3.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create etcd client '%s': %w", opts.Name, err)
	}
	if err := f.Put(opts.Name, client); err != nil {
		_ = client.Close()
		return err
	}
	return nil
}
