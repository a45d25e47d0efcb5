package etcd_test

import (
	"context"
	"testing"

	"github.com/gocrud/beans/app"
	"github.com/gocrud/beans/config"
	"github.com/gocrud/beans/di"
	"github.com/gocrud/beans/starter/etcd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clientv3 "go.etcd.io/etcd/client/v3"
)

type Registry struct {
	Master *clientv3.Client `di:"master"`
}

func TestEtcd_RegistersClients(t *testing.T) {
	cfg, err := config.NewConfigurationBuilder().
		AddInMemory(map[string]any{"beans": map[string]any{"loglevel": "error"}}).
		Build()
	require.NoError(t, err)

	rt, err := app.New(
		app.WithConfig(cfg),
		etcd.New(etcd.WithClient("master", func(o *etcd.EtcdClientOptions) {
			o.Endpoints = []string{"localhost:2379"}
		})),
		app.WithComponents(di.Describe[*Registry]("registry")),
	)
	require.NoError(t, err)

	reg, err := di.ResolveNamed[*Registry](rt.Container, "registry")
	require.NoError(t, err)
	assert.NotNil(t, reg.Master)
	assert.Equal(t, []string{"localhost:2379"}, reg.Master.Endpoints())

	master, err := di.ResolveNamed[*clientv3.Client](rt.Container, "master")
	require.NoError(t, err)
	assert.Same(t, reg.Master, master)

	assert.NoError(t, rt.Stop(context.Background()))
}

func TestBuilder_Errors(t *testing.T) {
	builder := etcd.NewBuilder()
	builder.AddClient("invalid", func(o *etcd.EtcdClientOptions) { o.Endpoints = nil })
	builder.AddClient("duplicate", nil)
	builder.AddClient("duplicate", nil)

	_, err := builder.Build(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Endpoints is required")
	assert.Contains(t, err.Error(), "already configured")
}

func TestEtcd_FromConfig(t *testing.T) {
	cfg, err := config.NewConfigurationBuilder().
		AddInMemory(map[string]any{
			"beans": map[string]any{"loglevel": "error"},
			"etcd": map[string]any{
				"registry": map[string]any{
					"endpoints":    []any{"10.0.0.1:2379", "10.0.0.2:2379"},
					"dial_timeout": "1s",
				},
			},
		}).
		Build()
	require.NoError(t, err)

	rt, err := app.New(app.WithConfig(cfg), etcd.New(etcd.WithClientsFromConfig("etcd")))
	require.NoError(t, err)

	factory, err := di.ResolveNamed[*etcd.EtcdClientFactory](rt.Container, etcd.FactoryName)
	require.NoError(t, err)
	assert.Equal(t, []string{"registry"}, factory.Names())

	client, err := factory.Get("registry")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1:2379", "10.0.0.2:2379"}, client.Endpoints())
	assert.NoError(t, rt.Stop(context.Background()))
}
