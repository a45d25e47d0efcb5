package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gocrud/beans/di"
	"github.com/gocrud/beans/logging"
)

// Controller 控制器接口，容器中实现该接口的组件在主机启动时注册路由
type Controller interface {
	// MountRoutes 注册路由
	MountRoutes(router gin.IRouter)
}

// Host Web 主机
type Host struct {
	addr      string
	engine    *gin.Engine
	server    *http.Server
	logger    logging.Logger
	container di.Container

	mountOnce sync.Once
	mountErr  error
	mounted   []string

	mu        sync.RWMutex
	ready     chan struct{}
	readyOnce sync.Once
}

// Address 获取实际监听地址 (e.g., "127.0.0.1:50234")，仅在 Ready 关闭后有效
func (h *Host) Address() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.addr
}

// Ready 返回一个通道，开始监听后关闭
func (h *Host) Ready() <-chan struct{} {
	return h.ready
}

// Engine 获取 Gin 引擎
func (h *Host) Engine() *gin.Engine {
	return h.engine
}

// Controllers 返回已注册路由的控制器组件名称
func (h *Host) Controllers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]string(nil), h.mounted...)
}

// Mount 从容器解析控制器并注册路由，只执行一次
func (h *Host) Mount() error {
	h.mountOnce.Do(func() {
		controllers, err := di.ResolveAll[Controller](h.container)
		if err != nil {
			h.mountErr = err
			return
		}
		for _, name := range h.container.Names() {
			controller, ok := controllers[name]
			if !ok {
				continue
			}
			controller.MountRoutes(h.engine)
			h.mu.Lock()
			h.mounted = append(h.mounted, name)
			h.mu.Unlock()
			h.logger.Debug("Controller mounted", logging.Field{Key: "component", Value: name})
		}
	})
	return h.mountErr
}

// Start 启动 Web 主机，阻塞直到服务退出
func (h *Host) Start(ctx context.Context) error {
	if err := h.Mount(); err != nil {
		return fmt.Errorf("web: failed to map controllers: %w", err)
	}

	// 同步监听，确保端口可用
	ln, err := net.Listen("tcp", h.server.Addr)
	if err != nil {
		return fmt.Errorf("web: failed to listen on %s: %w", h.server.Addr, err)
	}

	h.mu.Lock()
	h.addr = ln.Addr().String()
	h.mu.Unlock()
	h.readyOnce.Do(func() { close(h.ready) })

	h.logger.Info("Web host started", logging.Field{Key: "address", Value: h.Address()})

	if err := h.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		h.logger.Error("Web host error", logging.Field{Key: "error", Value: err})
		return err
	}
	return nil
}

// Stop 停止 Web 主机
func (h *Host) Stop(ctx context.Context) error {
	h.logger.Info("Stopping web host")

	if err := h.server.Shutdown(ctx); err != nil {
		h.logger.Error("Failed to shutdown web host gracefully", logging.Field{Key: "error", Value: err})
		return err
	}

	h.logger.Info("Web host stopped")
	return nil
}
