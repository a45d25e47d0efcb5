package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/gocrud/beans/config"
	"github.com/gocrud/beans/di"
	"github.com/gocrud/beans/hosting"
	"github.com/gocrud/beans/logging"
	"github.com/gocrud/beans/manifest"
	"github.com/gocrud/beans/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// 运行时自身以这些名称注册到容器
const (
	ConfigurationName = "configuration"
	LoggerName        = "logger"
)

// Runtime 持有容器以及围绕它的配置、日志、生命周期和托管服务
type Runtime struct {
	Config        config.Configuration
	Options       config.FactoryOptions
	LoggerFactory logging.LoggerFactory
	Logger        logging.Logger

	Factory   *di.Factory
	Container *di.SyncContainer
	Lifecycle *Lifecycle
	Types     *manifest.TypeTable

	// Registry 在启用指标且未指定注册器时创建
	Registry *prometheus.Registry
	Metrics  *metrics.Collector

	// ErrorHandler 接收托管服务的运行错误，默认写日志
	ErrorHandler func(err error)

	hosted       *hosting.HostedServiceManager
	watcher      *manifest.Watcher
	manifestPath string
	registerer   prometheus.Registerer
	modules      []Module

	cancel       context.CancelFunc
	shutdownCh   chan struct{}
	shutdownOnce sync.Once
}

// New 应用选项并创建容器，然后执行所有模块
func New(opts ...Option) (*Runtime, error) {
	rt := &Runtime{
		Types:      manifest.NewTypeTable(),
		shutdownCh: make(chan struct{}),
	}
	for _, opt := range opts {
		if err := opt(rt); err != nil {
			return nil, err
		}
	}
	if err := rt.bootstrap(); err != nil {
		return nil, err
	}
	return rt, nil
}

// bootstrap 依次准备配置、日志、指标和容器
func (rt *Runtime) bootstrap() error {
	if rt.Config == nil {
		cfg, err := config.NewConfigurationBuilder().
			AddYamlFile("appsettings.yaml", true).
			AddDotenv("APP").
			AddEnvironmentVariables("APP").
			Build()
		if err != nil {
			return fmt.Errorf("app: failed to load configuration: %w", err)
		}
		rt.Config = cfg
	}

	opts, err := config.BindFactoryOptions(rt.Config)
	if err != nil {
		return err
	}
	rt.Options = opts
	if rt.manifestPath == "" {
		rt.manifestPath = opts.Manifest
	}

	if rt.LoggerFactory == nil {
		factory, err := logging.NewLoggingBuilder().
			SetMinimumLevel(opts.Level()).
			AddConsole().
			Build()
		if err != nil {
			return fmt.Errorf("app: failed to build logger: %w", err)
		}
		rt.LoggerFactory = factory
	}
	rt.Logger = rt.LoggerFactory.CreateLogger("app")
	if rt.ErrorHandler == nil {
		rt.ErrorHandler = func(err error) {
			rt.Logger.Error("Runtime error", logging.Field{Key: "error", Value: err})
		}
	}
	rt.Lifecycle = NewLifecycle(rt.Logger)
	rt.hosted = hosting.NewHostedServiceManager(rt.Logger)

	factoryOpts := []di.FactoryOption{di.WithLogger(rt.LoggerFactory.CreateLogger("di"))}
	if opts.Metrics != "" {
		if rt.registerer == nil {
			rt.Registry = prometheus.NewRegistry()
			rt.registerer = rt.Registry
		}
		collector, err := metrics.NewCollector(opts.Metrics, rt.registerer)
		if err != nil {
			return fmt.Errorf("app: failed to register metrics: %w", err)
		}
		rt.Metrics = collector
		factoryOpts = append(factoryOpts, di.WithObserver(collector))
	}
	rt.Factory = di.NewFactory(factoryOpts...)
	rt.Container = di.Synchronized(rt.Factory)

	if err := rt.Container.RegisterInstance(ConfigurationName, rt.Config); err != nil {
		return err
	}
	if err := rt.Container.RegisterInstance(LoggerName, rt.Logger); err != nil {
		return err
	}

	if rt.manifestPath != "" {
		names, err := manifest.LoadFile(rt.Container, rt.manifestPath, rt.Types)
		if err != nil {
			return fmt.Errorf("app: %w", err)
		}
		rt.Logger.Info("Manifest loaded",
			logging.Field{Key: "path", Value: rt.manifestPath},
			logging.Field{Key: "components", Value: len(names)})

		if opts.Watch {
			rt.watcher = manifest.NewWatcher(rt.manifestPath, rt.Container, rt.Types, rt.Logger)
			rt.hosted.Add("manifest-watcher", rt.watcher)
		}
	}

	for _, module := range rt.modules {
		if err := module(rt); err != nil {
			return err
		}
	}
	return nil
}

// Start 校验容器、预先构建共享组件并启动托管服务
func (rt *Runtime) Start(ctx context.Context) error {
	if rt.Options.Strict {
		if err := rt.Container.Validate(); err != nil {
			return fmt.Errorf("app: validation failed: %w", err)
		}
	}
	if rt.Options.Eager {
		if err := rt.Container.PreInstantiate(); err != nil {
			return fmt.Errorf("app: pre-instantiation failed: %w", err)
		}
	}

	if err := rt.addHostedServices(); err != nil {
		return err
	}
	if err := rt.Lifecycle.Start(ctx); err != nil {
		return err
	}

	// 托管服务的上下文伴随应用运行，而不是 Start 的调用方
	serviceCtx, cancel := context.WithCancel(context.Background())
	rt.cancel = cancel
	errCh := rt.hosted.StartAll(serviceCtx)
	go func() {
		select {
		case err := <-errCh:
			rt.ErrorHandler(err)
			rt.Shutdown()
		case <-serviceCtx.Done():
		}
	}()

	rt.Logger.Info("Application started",
		logging.Field{Key: "factory", Value: rt.Factory.ID()},
		logging.Field{Key: "components", Value: len(rt.Container.Names())})
	return nil
}

// addHostedServices 按注册顺序添加容器中实现 HostedService 的组件
func (rt *Runtime) addHostedServices() error {
	services, err := di.ResolveAll[hosting.HostedService](rt.Container)
	if err != nil {
		return fmt.Errorf("app: failed to resolve hosted services: %w", err)
	}
	for _, name := range rt.Container.Names() {
		if svc, ok := services[name]; ok {
			rt.hosted.Add(name, svc)
		}
	}
	return nil
}

// Stop 停止托管服务，然后倒序执行停止钩子
func (rt *Runtime) Stop(ctx context.Context) error {
	rt.Logger.Info("Application stopping")
	if rt.cancel != nil {
		rt.cancel()
	}

	hostedErr := rt.hosted.StopAll(ctx)
	hookErr := rt.Lifecycle.Stop(ctx)
	_ = rt.LoggerFactory.Sync()

	if hostedErr != nil {
		return hostedErr
	}
	return hookErr
}

// Shutdown 请求应用退出
func (rt *Runtime) Shutdown() {
	rt.shutdownOnce.Do(func() { close(rt.shutdownCh) })
}

// Done 返回一个通道，当应用需要退出时该通道会关闭
func (rt *Runtime) Done() <-chan struct{} {
	return rt.shutdownCh
}

// Provide 注册组件 (语法糖)
func Provide[T any](rt *Runtime, name string, opts ...di.Option) error {
	return di.Register[T](rt.Container, name, opts...)
}
