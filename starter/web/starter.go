package web

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gocrud/beans/app"
	"github.com/gocrud/beans/di"
	"github.com/gocrud/beans/metrics"
)

// HostName 是 Web 主机的组件名称
const HostName = "web-host"

// ComponentInfo 组件端点返回的条目
type ComponentInfo struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Scope string `json:"scope"`
	Lazy  bool   `json:"lazy"`
}

type settings struct {
	builderOpts    []func(*Builder)
	controllers    []*di.ComponentDescriptor
	metricsPath    string
	componentsPath string
}

// BuilderOption 用于配置 Web 主机
type BuilderOption func(*settings)

// WithAddress 设置监听地址，默认读取 web:address，缺省为 :8080
func WithAddress(addr string) BuilderOption {
	return func(s *settings) {
		s.builderOpts = append(s.builderOpts, func(b *Builder) { b.UseAddress(addr) })
	}
}

// WithMiddleware 添加全局中间件
func WithMiddleware(middleware ...gin.HandlerFunc) BuilderOption {
	return func(s *settings) {
		s.builderOpts = append(s.builderOpts, func(b *Builder) { b.Use(middleware...) })
	}
}

// WithRoutes 直接配置路由
func WithRoutes(fn func(router gin.IRouter)) BuilderOption {
	return func(s *settings) {
		s.builderOpts = append(s.builderOpts, func(b *Builder) { fn(b.Engine()) })
	}
}

// WithControllers 把控制器注册为组件
func WithControllers(descs ...*di.ComponentDescriptor) BuilderOption {
	return func(s *settings) {
		s.controllers = append(s.controllers, descs...)
	}
}

// WithMetrics 在 path 上暴露容器指标，需要启用 beans.metrics
func WithMetrics(path string) BuilderOption {
	return func(s *settings) {
		s.metricsPath = path
	}
}

// WithComponentsEndpoint 在 path 上以 JSON 列出容器中的组件
func WithComponentsEndpoint(path string) BuilderOption {
	return func(s *settings) {
		s.componentsPath = path
	}
}

// New 注册 Web 主机组件，运行时把它作为托管服务启动
func New(opts ...BuilderOption) app.Option {
	return app.Use(func(rt *app.Runtime) error {
		s := &settings{}
		for _, opt := range opts {
			opt(s)
		}

		logger := rt.LoggerFactory.CreateLogger("web")
		builder := NewBuilder()
		if addr := rt.Config.Get("web:address"); addr != "" {
			builder.UseAddress(addr)
		}
		builder.Use(RequestLogger(logger))
		for _, fn := range s.builderOpts {
			fn(builder)
		}

		if s.metricsPath != "" {
			if rt.Registry == nil {
				return fmt.Errorf("web: metrics endpoint requires beans.metrics to be set")
			}
			builder.Handle(http.MethodGet, s.metricsPath, gin.WrapH(metrics.Handler(rt.Registry)))
		}
		if s.componentsPath != "" {
			builder.Handle(http.MethodGet, s.componentsPath, componentsHandler(rt.Container))
		}

		for _, desc := range s.controllers {
			if err := rt.Container.Register(desc); err != nil {
				return fmt.Errorf("web: %w", err)
			}
		}

		host := builder.Build(rt.Container, logger)
		return rt.Container.RegisterInstance(HostName, host)
	})
}

func componentsHandler(c *di.SyncContainer) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		names := c.Names()
		infos := make([]ComponentInfo, 0, len(names))
		for _, name := range names {
			desc, ok := c.Descriptor(name)
			if !ok {
				continue
			}
			infos = append(infos, ComponentInfo{
				Name:  name,
				Type:  fmt.Sprint(desc.Type),
				Scope: desc.Scope.String(),
				Lazy:  desc.Lazy,
			})
		}
		ctx.JSON(http.StatusOK, infos)
	}
}
