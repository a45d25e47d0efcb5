package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// ShutdownTimeout 是优雅关闭的超时时间
var ShutdownTimeout = 5 * time.Second

// Run 创建运行时并阻塞直到收到退出信号
func Run(opts ...Option) error {
	rt, err := New(opts...)
	if err != nil {
		return err
	}
	return rt.Run()
}

// Run 启动应用并阻塞，直到收到 SIGINT/SIGTERM 或 Shutdown 被调用
func (rt *Runtime) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := rt.Start(ctx); err != nil {
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
	case <-rt.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer shutdownCancel()
	return rt.Stop(shutdownCtx)
}
