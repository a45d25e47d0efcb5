package cron

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/gocrud/beans/di"
	"github.com/gocrud/beans/hosting"
	"github.com/gocrud/beans/logging"
	"github.com/robfig/cron/v3"
)

// Job 是可以由调度器按组件名称执行的组件
type Job interface {
	Run()
}

// jobDefinition 任务定义，handler 与 component 二选一
type jobDefinition struct {
	spec      string
	name      string
	handler   any
	component string
}

// Scheduler 定时任务托管服务，启动时把任务定义加入 cron
type Scheduler struct {
	*hosting.BackgroundService

	cron      *cron.Cron
	container di.Container
	logger    logging.Logger
	jobDefs   []jobDefinition
	jobs      map[string]cron.EntryID
	mu        sync.RWMutex
}

// Start 注册所有任务并运行调度器，阻塞直到 Stop 或上下文取消
func (s *Scheduler) Start(ctx context.Context) error {
	defer s.Done()

	if err := s.schedule(); err != nil {
		return err
	}
	s.logger.Info(fmt.Sprintf("Cron scheduler starting with %d jobs", len(s.jobs)))
	s.cron.Start()

	select {
	case <-s.StopChan():
	case <-ctx.Done():
	}

	// 等待正在执行的任务完成
	<-s.cron.Stop().Done()
	s.logger.Info("Cron scheduler stopped")
	return nil
}

func (s *Scheduler) schedule() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, def := range s.jobDefs {
		run, err := s.wrap(def)
		if err != nil {
			return fmt.Errorf("cron: job '%s': %w", def.name, err)
		}

		entryID, err := s.cron.AddFunc(def.spec, run)
		if err != nil {
			return fmt.Errorf("cron: failed to add job '%s': %w", def.name, err)
		}
		s.jobs[def.name] = entryID
		s.logger.Debug(fmt.Sprintf("Cron job '%s' registered with spec '%s'", def.name, def.spec))
	}
	s.jobDefs = nil
	return nil
}

// wrap 把任务定义转换为 cron 回调
func (s *Scheduler) wrap(def jobDefinition) (func(), error) {
	var job func()
	switch {
	case def.component != "":
		if !s.container.Contains(def.component) {
			return nil, fmt.Errorf("component '%s' is not registered", def.component)
		}
		job = s.componentJob(def.name, def.component)
	default:
		if fn, ok := def.handler.(func()); ok {
			job = fn
			break
		}
		wrapped, err := wrapHandlerWithDI(s.container, s.logger, def.handler)
		if err != nil {
			return nil, err
		}
		job = wrapped
	}

	return func() {
		s.logger.Debug(fmt.Sprintf("Cron job '%s' started", def.name))
		defer s.logger.Debug(fmt.Sprintf("Cron job '%s' completed", def.name))
		job()
	}, nil
}

// componentJob 每次执行时按名称获取组件，非共享组件每次得到新实例
func (s *Scheduler) componentJob(jobName, component string) func() {
	return func() {
		v, err := s.container.GetByName(component)
		if err == nil {
			v, err = di.Materialize(v)
		}
		if err != nil {
			s.logger.Error(fmt.Sprintf("Cron job '%s' failed to resolve component", jobName),
				logging.Field{Key: "component", Value: component},
				logging.Field{Key: "error", Value: err})
			return
		}

		switch job := v.(type) {
		case Job:
			job.Run()
		case func():
			job()
		default:
			s.logger.Error(fmt.Sprintf("Cron job '%s' component is not runnable", jobName),
				logging.Field{Key: "component", Value: component},
				logging.Field{Key: "type", Value: fmt.Sprintf("%T", v)})
		}
	}
}

// Remove 移除定时任务
func (s *Scheduler) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, exists := s.jobs[name]
	if !exists {
		return false
	}
	s.cron.Remove(entryID)
	delete(s.jobs, name)
	s.logger.Info(fmt.Sprintf("Cron job '%s' removed", name))
	return true
}

// Jobs 返回已调度的任务名称
func (s *Scheduler) Jobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// wrapHandlerWithDI 包装处理器，每次执行时按参数类型从容器解析依赖
func wrapHandlerWithDI(container di.Container, logger logging.Logger, handler any) (func(), error) {
	handlerValue := reflect.ValueOf(handler)
	if !handlerValue.IsValid() || handlerValue.Kind() != reflect.Func {
		return nil, fmt.Errorf("handler must be a function, got %T", handler)
	}
	handlerType := handlerValue.Type()

	return func() {
		args := make([]reflect.Value, handlerType.NumIn())
		for i := range args {
			paramType := handlerType.In(i)

			instance, err := container.GetByType(paramType)
			if err == nil {
				instance, err = di.Materialize(instance)
			}
			if err != nil {
				logger.Error(fmt.Sprintf("Failed to resolve parameter %d (%v) for cron job", i, paramType),
					logging.Field{Key: "error", Value: err})
				return
			}
			args[i] = reflect.ValueOf(instance)
		}

		handlerValue.Call(args)
	}, nil
}

// cronLogger 适配器：将框架日志接口适配到 cron 的日志接口
type cronLogger struct {
	logger logging.Logger
}

func newCronLogger(logger logging.Logger) cron.Logger {
	return &cronLogger{logger: logger}
}

func (l *cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, convertToFields(keysAndValues)...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...any) {
	fields := convertToFields(keysAndValues)
	fields = append(fields, logging.Field{Key: "error", Value: err})
	l.logger.Error(msg, fields...)
}

func convertToFields(keysAndValues []any) []logging.Field {
	fields := make([]logging.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields = append(fields, logging.Field{Key: fmt.Sprint(keysAndValues[i]), Value: keysAndValues[i+1]})
	}
	return fields
}
