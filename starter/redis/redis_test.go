package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/gocrud/beans/app"
	"github.com/gocrud/beans/config"
	"github.com/gocrud/beans/di"
	"github.com/gocrud/beans/starter/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type SessionStore struct {
	Cache *goredis.Client `di:"cache"`
}

func quietConfig(t *testing.T) config.Configuration {
	t.Helper()
	cfg, err := config.NewConfigurationBuilder().
		AddInMemory(map[string]any{"beans": map[string]any{"loglevel": "error"}}).
		Build()
	require.NoError(t, err)
	return cfg
}

func TestRedis_RegistersClients(t *testing.T) {
	rt, err := app.New(
		app.WithConfig(quietConfig(t)),
		redis.New(
			redis.WithClient("cache", func(o *redis.RedisClientOptions) {
				o.Addr = "localhost:6390"
				o.DB = 2
				o.Ping = false
			}),
			redis.WithClient("queue", func(o *redis.RedisClientOptions) { o.Ping = false }),
		),
		app.WithComponents(di.Describe[*SessionStore]("sessions")),
	)
	require.NoError(t, err)

	store, err := di.ResolveNamed[*SessionStore](rt.Container, "sessions")
	require.NoError(t, err)
	require.NotNil(t, store.Cache)
	assert.Equal(t, "localhost:6390", store.Cache.Options().Addr)
	assert.Equal(t, 2, store.Cache.Options().DB)

	clients, err := di.ResolveAll[*goredis.Client](rt.Container)
	require.NoError(t, err)
	assert.Len(t, clients, 2)

	factory, err := di.ResolveNamed[*redis.RedisClientFactory](rt.Container, redis.FactoryName)
	require.NoError(t, err)
	queue, err := factory.Get("queue")
	require.NoError(t, err)
	assert.Same(t, clients["queue"], queue)

	require.NoError(t, rt.Stop(context.Background()))
	_, err = factory.Get("queue")
	assert.Error(t, err)
}

func TestRedis_PingFailure(t *testing.T) {
	_, err := app.New(
		app.WithConfig(quietConfig(t)),
		redis.New(redis.WithClient("cache", func(o *redis.RedisClientOptions) {
			o.Addr = "127.0.0.1:1"
			o.DialTimeout = 200 * time.Millisecond
			o.MaxRetries = -1
		})),
	)
	assert.ErrorContains(t, err, "failed to connect to redis 'cache'")
}

func TestBuilder_Errors(t *testing.T) {
	builder := redis.NewBuilder()
	builder.AddClient("invalid", func(o *redis.RedisClientOptions) { o.Addr = "" })
	builder.AddClient("duplicate", func(o *redis.RedisClientOptions) { o.Ping = false })
	builder.AddClient("duplicate", nil)

	_, err := builder.Build(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid redis client configuration for 'invalid': Addr is required")
	assert.Contains(t, err.Error(), "already configured")
}

func TestRedis_FromConfig(t *testing.T) {
	cfg, err := config.NewConfigurationBuilder().
		AddInMemory(map[string]any{
			"beans": map[string]any{"loglevel": "error"},
			"redis": map[string]any{
				"sessions": map[string]any{"addr": "localhost:6391", "db": 3, "dial_timeout": "250ms", "ping": false},
				"broken":   map[string]any{"addr": "localhost:6392", "dial_timeout": "soon", "ping": false},
			},
		}).
		Build()
	require.NoError(t, err)

	_, err = app.New(app.WithConfig(cfg), redis.New(redis.WithClientsFromConfig("redis")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis.broken")

	builder := redis.NewBuilder()
	builder.Config = cfg
	redis.WithClientsFromConfig("missing")(builder)
	factory, err := builder.Build(nil)
	assert.NoError(t, err)
	assert.Nil(t, factory)
}

func TestRedis_FromConfigRegisters(t *testing.T) {
	cfg, err := config.NewConfigurationBuilder().
		AddInMemory(map[string]any{
			"beans": map[string]any{"loglevel": "error"},
			"redis": map[string]any{
				"sessions": map[string]any{"addr": "localhost:6391", "db": 3, "dial_timeout": "250ms", "ping": false},
			},
		}).
		Build()
	require.NoError(t, err)

	rt, err := app.New(app.WithConfig(cfg), redis.New(redis.WithClientsFromConfig("redis")))
	require.NoError(t, err)

	client, err := di.ResolveNamed[*goredis.Client](rt.Container, "sessions")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6391", client.Options().Addr)
	assert.Equal(t, 3, client.Options().DB)
	assert.Equal(t, 250*time.Millisecond, client.Options().DialTimeout)
	assert.NoError(t, rt.Stop(context.Background()))
}
