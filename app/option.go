package app

import (
	"fmt"

	"github.com/gocrud/beans/config"
	"github.com/gocrud/beans/di"
	"github.com/gocrud/beans/logging"
	"github.com/gocrud/beans/manifest"
	"github.com/prometheus/client_golang/prometheus"
)

// Option 定义了修改 Runtime 状态的函数签名
type Option func(rt *Runtime) error

// Module 在容器创建后执行，用于注册组件和生命周期钩子
type Module func(rt *Runtime) error

// WithConfig 使用指定的配置替换默认配置
func WithConfig(cfg config.Configuration) Option {
	return func(rt *Runtime) error {
		rt.Config = cfg
		return nil
	}
}

// WithLoggerFactory 使用指定的日志工厂，默认根据 beans.loglevel 创建控制台日志
func WithLoggerFactory(factory logging.LoggerFactory) Option {
	return func(rt *Runtime) error {
		rt.LoggerFactory = factory
		return nil
	}
}

// WithManifest 指定组件清单文件，覆盖 beans.manifest
func WithManifest(path string) Option {
	return func(rt *Runtime) error {
		rt.manifestPath = path
		return nil
	}
}

// WithTypes 向清单类型表添加类型别名
func WithTypes(fn func(table *manifest.TypeTable) error) Option {
	return func(rt *Runtime) error {
		return fn(rt.Types)
	}
}

// WithRegisterer 指定指标的注册器，默认使用 Runtime 自己的 Registry
func WithRegisterer(registerer prometheus.Registerer) Option {
	return func(rt *Runtime) error {
		rt.registerer = registerer
		return nil
	}
}

// WithComponents 注册组件描述符
func WithComponents(descs ...*di.ComponentDescriptor) Option {
	return Use(func(rt *Runtime) error {
		for _, desc := range descs {
			if err := rt.Container.Register(desc); err != nil {
				return fmt.Errorf("app: %w", err)
			}
		}
		return nil
	})
}

// WithInstance 注册预先构建的共享实例
func WithInstance(name string, instance any) Option {
	return Use(func(rt *Runtime) error {
		return rt.Container.RegisterInstance(name, instance)
	})
}

// Use 添加模块（例如 starter），模块按添加顺序在容器创建后执行
func Use(modules ...Module) Option {
	return func(rt *Runtime) error {
		rt.modules = append(rt.modules, modules...)
		return nil
	}
}
