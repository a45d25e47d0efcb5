package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/gocrud/beans/starter/internal/named"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoFactory MongoDB 客户端工厂
type MongoFactory struct {
	*named.Factory[*mongo.Client]
}

// NewMongoFactory 创建客户端工厂
func NewMongoFactory() *MongoFactory {
	return &MongoFactory{named.NewFactory("mongo client", disconnect)}
}

func disconnect(ctx context.Context, c *mongo.Client) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
	}
	return c.Disconnect(ctx)
}

// Register 创建 MongoDB 客户端，连接在首次操作时建立
func (f *MongoFactory) Register(opts MongoOptions) error {
	clientOpts := options.Client().
		ApplyURI(opts.URI).
		SetMaxPoolSize(opts.MaxPoolSize).
		SetMinPoolSize(opts.MinPoolSize).
		SetConnectTimeout(opts.Timeout).
		SetServerSelectionTimeout(opts.Timeout)
	if opts.Username != "" || opts.Password != "" {
		clientOpts.SetAuth(options.Credential{
			Username: opts.Username,
			Password: opts.Password,
		})
	}

	client, err := mongo.Connect(clientOpts)
	if err != nil {
		return fmt.Errorf("failed to create mongo client '%s': %w", opts.Name, err)
	}

	if opts.Ping {
		ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
		defer cancel()
		if err := client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(context.Background())
			return fmt.Errorf("failed to connect to mongo '%s': %w", opts.Name, err)
		}
	}

	if err := f.Put(opts.Name, client); err != nil {
		_ = client.Disconnect(context.Background())
		return err
	}
	return nil
}
