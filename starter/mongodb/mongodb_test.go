package mongodb_test

import (
	"context"
	"testing"

	"github.com/gocrud/beans/app"
	"github.com/gocrud/beans/config"
	"github.com/gocrud/beans/di"
	"github.com/gocrud/beans/starter/mongodb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type Catalog struct {
	Client *mongo.Client `di:"catalog"`
}

func (c *Catalog) Products() *mongo.Collection {
	return c.Client.Database("shop").Collection("products")
}

func TestMongo_RegistersClients(t *testing.T) {
	cfg, err := config.NewConfigurationBuilder().
		AddInMemory(map[string]any{"beans": map[string]any{"loglevel": "error"}}).
		Build()
	require.NoError(t, err)

	rt, err := app.New(
		app.WithConfig(cfg),
		mongodb.New(mongodb.WithClient("catalog", "mongodb://localhost:27017/?directConnection=true")),
		app.WithComponents(di.Describe[*Catalog]("products")),
	)
	require.NoError(t, err)

	catalog, err := di.ResolveNamed[*Catalog](rt.Container, "products")
	require.NoError(t, err)
	require.NotNil(t, catalog.Client)
	assert.Equal(t, "products", catalog.Products().Name())

	factory, err := di.ResolveNamed[*mongodb.MongoFactory](rt.Container, mongodb.FactoryName)
	require.NoError(t, err)
	client, err := factory.Get("catalog")
	require.NoError(t, err)
	assert.Same(t, catalog.Client, client)

	assert.NoError(t, rt.Stop(context.Background()))
}

func TestBuilder_Errors(t *testing.T) {
	builder := mongodb.NewBuilder()
	builder.AddClient("invalid", "", nil)
	builder.AddClient("scheme", "localhost:27017", nil)
	builder.AddClient("pool", "mongodb://localhost:27017", func(o *mongodb.MongoOptions) {
		o.MaxPoolSize = 2
		o.MinPoolSize = 4
	})
	builder.AddClient("duplicate", "mongodb://localhost:27017", nil)
	builder.AddClient("duplicate", "mongodb://localhost:27017", nil)

	_, err := builder.Build(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "URI is required")
	assert.Contains(t, err.Error(), "URI failed on 'startswith'")
	assert.Contains(t, err.Error(), "MinPoolSize failed on 'ltefield'")
	assert.Contains(t, err.Error(), "already configured")
}

func TestMongo_FromConfig(t *testing.T) {
	cfg, err := config.NewConfigurationBuilder().
		AddInMemory(map[string]any{
			"beans": map[string]any{"loglevel": "error"},
			"mongodb": map[string]any{
				"orders":  map[string]any{"uri": "mongodb://localhost:27017", "timeout": "2s"},
				"archive": map[string]any{"uri": "mongodb://localhost:27018"},
			},
		}).
		Build()
	require.NoError(t, err)

	rt, err := app.New(app.WithConfig(cfg), mongodb.New(mongodb.WithClientsFromConfig("mongodb")))
	require.NoError(t, err)

	factory, err := di.ResolveNamed[*mongodb.MongoFactory](rt.Container, mongodb.FactoryName)
	require.NoError(t, err)
	assert.Equal(t, []string{"archive", "orders"}, factory.Names())

	clients, err := di.ResolveAll[*mongo.Client](rt.Container)
	require.NoError(t, err)
	assert.Len(t, clients, 2)
	assert.NoError(t, rt.Stop(context.Background()))
}
