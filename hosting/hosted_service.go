package hosting

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gocrud/beans/logging"
)

// HostedService 托管服务接口，容器中实现该接口的组件会随运行时启动和停止
type HostedService interface {
	// Start 启动服务。该方法应阻塞执行，直到 context 被取消或发生错误。
	// 框架会在独立的 goroutine 中调用此方法。
	Start(ctx context.Context) error

	// Stop 执行优雅关闭逻辑。
	Stop(ctx context.Context) error
}

type namedService struct {
	name    string
	service HostedService
}

// HostedServiceManager 托管服务管理器
type HostedServiceManager struct {
	services []namedService
	logger   logging.Logger
	mu       sync.RWMutex
	wg       sync.WaitGroup
}

// NewHostedServiceManager 创建托管服务管理器
func NewHostedServiceManager(logger logging.Logger) *HostedServiceManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &HostedServiceManager{logger: logger.WithCategory("hosting")}
}

// Add 添加托管服务，name 通常是服务的组件名称
func (m *HostedServiceManager) Add(name string, service HostedService) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.services = append(m.services, namedService{name: name, service: service})
}

// Len 返回已添加的服务数量
func (m *HostedServiceManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.services)
}

// StartAll 启动所有托管服务，每个服务在独立的 goroutine 中运行
// 返回的通道接收服务的非取消错误
func (m *HostedServiceManager) StartAll(ctx context.Context) <-chan error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	errCh := make(chan error, len(m.services))
	m.logger.Info(fmt.Sprintf("Starting %d hosted services", len(m.services)))

	for _, s := range m.services {
		m.wg.Add(1)
		go func(s namedService) {
			defer m.wg.Done()
			m.logger.Debug("Starting hosted service", logging.Field{Key: "service", Value: s.name})

			if err := s.service.Start(ctx); err != nil {
				// 区分正常的 context 取消和真正的错误
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					m.logger.Debug("Hosted service stopped (context done)", logging.Field{Key: "service", Value: s.name})
					return
				}
				m.logger.Error("Hosted service failed",
					logging.Field{Key: "service", Value: s.name},
					logging.Field{Key: "error", Value: err})
				errCh <- fmt.Errorf("hosted service %s: %w", s.name, err)
				return
			}
			m.logger.Info("Hosted service completed", logging.Field{Key: "service", Value: s.name})
		}(s)
	}
	return errCh
}

// StopAll 按添加顺序的逆序并发停止所有托管服务
func (m *HostedServiceManager) StopAll(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	m.logger.Info(fmt.Sprintf("Stopping %d hosted services", len(m.services)))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for i := len(m.services) - 1; i >= 0; i-- {
		wg.Add(1)
		go func(s namedService) {
			defer wg.Done()
			if err := s.service.Stop(ctx); err != nil {
				m.logger.Error("Failed to stop hosted service",
					logging.Field{Key: "service", Value: s.name},
					logging.Field{Key: "error", Value: err})
				mu.Lock()
				errs = append(errs, fmt.Errorf("hosted service %s: %w", s.name, err))
				mu.Unlock()
				return
			}
			m.logger.Debug("Hosted service stopped", logging.Field{Key: "service", Value: s.name})
		}(m.services[i])
	}
	wg.Wait()

	return errors.Join(errs...)
}

// Wait 等待所有服务的 Start 返回
func (m *HostedServiceManager) Wait() {
	m.wg.Wait()
}

// BackgroundService 后台服务基类，嵌入后只需实现具体的循环
type BackgroundService struct {
	name     string
	logger   logging.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
	doneOnce sync.Once
}

// NewBackgroundService 创建后台服务
func NewBackgroundService(name string, logger logging.Logger) *BackgroundService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &BackgroundService{
		name:   name,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Name 返回服务名称
func (s *BackgroundService) Name() string {
	return s.name
}

// Start 阻塞直到停止信号或上下文取消
func (s *BackgroundService) Start(ctx context.Context) error {
	defer s.Done()
	select {
	case <-s.stopCh:
	case <-ctx.Done():
	}
	return nil
}

// Stop 发出停止信号并等待服务结束
func (s *BackgroundService) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stopCh) })

	select {
	case <-s.doneCh:
		s.logger.Debug(fmt.Sprintf("BackgroundService '%s' stopped gracefully", s.name))
	case <-ctx.Done():
		s.logger.Warn(fmt.Sprintf("BackgroundService '%s' stop timeout", s.name))
		return ctx.Err()
	}
	return nil
}

// StopChan 返回停止通道，用于在 select 中监听
func (s *BackgroundService) StopChan() <-chan struct{} {
	return s.stopCh
}

// Done 标记服务完成
func (s *BackgroundService) Done() {
	s.doneOnce.Do(func() { close(s.doneCh) })
}
