package named

import (
	"context"
	"fmt"

	"github.com/gocrud/beans/app"
	"github.com/gocrud/beans/logging"
)

// Install 把 factory 以 factoryName 注册到容器，每个客户端以其名称注册为共享组件，
// 并在应用停止时关闭全部客户端
func Install[C any](rt *app.Runtime, factoryName string, factory any, clients *Factory[C], logger logging.Logger) error {
	if err := rt.Container.RegisterInstance(factoryName, factory); err != nil {
		_ = clients.Close(context.Background())
		return err
	}

	var regErr error
	clients.Each(func(name string, c C) {
		if regErr == nil {
			regErr = rt.Container.RegisterInstance(name, c)
		}
	})
	if regErr != nil {
		_ = clients.Close(context.Background())
		return fmt.Errorf("%s: failed to register instance: %w", clients.kind, regErr)
	}

	rt.Lifecycle.OnStop(func(ctx context.Context) error {
		logger.Info(fmt.Sprintf("Closing %d %s clients", len(clients.Names()), clients.kind))
		if err := clients.Close(ctx); err != nil {
			logger.Error("Failed to close clients", logging.Field{Key: "error", Value: err})
			return err
		}
		return nil
	})
	return nil
}
