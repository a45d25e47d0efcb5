package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocrud/beans/di"
	"github.com/gocrud/beans/logging"
	"github.com/google/uuid"
)

// RequestIDHeader 请求 ID 头
const RequestIDHeader = "X-Request-ID"

// Builder Web 主机构建器（基于 Gin）
type Builder struct {
	addr   string
	engine *gin.Engine
}

// NewBuilder 创建 Web 构建器
func NewBuilder() *Builder {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	// 默认中间件：恢复 panic
	engine.Use(gin.Recovery())

	return &Builder{addr: ":8080", engine: engine}
}

// UseAddress 设置监听地址
func (b *Builder) UseAddress(addr string) *Builder {
	b.addr = addr
	return b
}

// Use 使用全局中间件
func (b *Builder) Use(middleware ...gin.HandlerFunc) *Builder {
	b.engine.Use(middleware...)
	return b
}

// Handle 注册路由
func (b *Builder) Handle(method, path string, handlers ...gin.HandlerFunc) *Builder {
	b.engine.Handle(method, path, handlers...)
	return b
}

// Group 创建路由组
func (b *Builder) Group(relativePath string, handlers ...gin.HandlerFunc) *gin.RouterGroup {
	return b.engine.Group(relativePath, handlers...)
}

// NoRoute 处理 404
func (b *Builder) NoRoute(handlers ...gin.HandlerFunc) *Builder {
	b.engine.NoRoute(handlers...)
	return b
}

// Engine 获取 Gin 引擎（用于高级定制）
func (b *Builder) Engine() *gin.Engine {
	return b.engine
}

// Build 构建 Web 主机，控制器在启动时从 container 解析
func (b *Builder) Build(container di.Container, logger logging.Logger) *Host {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Host{
		engine:    b.engine,
		container: container,
		logger:    logger,
		ready:     make(chan struct{}),
		server: &http.Server{
			Addr:              b.addr,
			Handler:           b.engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// RequestLogger 记录请求日志并传递请求 ID
func RequestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		c.Next()

		logger.Debug("HTTP request",
			logging.Field{Key: "method", Value: c.Request.Method},
			logging.Field{Key: "path", Value: c.Request.URL.Path},
			logging.Field{Key: "status", Value: c.Writer.Status()},
			logging.Field{Key: "latency", Value: time.Since(start)},
			logging.Field{Key: "request_id", Value: requestID})
	}
}
