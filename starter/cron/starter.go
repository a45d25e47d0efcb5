package cron

import (
	"errors"
	"fmt"
	"time"

	"github.com/gocrud/beans/app"
	"github.com/gocrud/beans/di"
	"github.com/gocrud/beans/hosting"
	"github.com/gocrud/beans/logging"
	"github.com/robfig/cron/v3"
)

// SchedulerName 是调度器的组件名称
const SchedulerName = "cron-scheduler"

// Builder Cron 配置构建器
type Builder struct {
	enableSeconds    bool
	enableCronLogger bool
	location         string
	jobs             []jobDefinition
	names            map[string]bool
	errors           []error
}

// NewBuilder 创建 Cron 构建器
func NewBuilder() *Builder {
	return &Builder{location: "UTC", names: make(map[string]bool)}
}

// WithSeconds 启用秒级精度
func (b *Builder) WithSeconds() *Builder {
	b.enableSeconds = true
	return b
}

// WithLocation 设置时区
func (b *Builder) WithLocation(location string) *Builder {
	b.location = location
	return b
}

// EnableCronLogger 启用 cron 库的内部调度日志
func (b *Builder) EnableCronLogger() *Builder {
	b.enableCronLogger = true
	return b
}

// AddJob 添加任务。handler 为 func() 时直接执行，
// 其他函数的参数在每次执行时按类型从容器解析
//
//	builder.AddJob("0 */5 * * * *", "sync-data", func(svc *DataService, logger logging.Logger) {
//	    svc.Sync()
//	})
func (b *Builder) AddJob(spec, name string, handler any) *Builder {
	if b.add(name) {
		b.jobs = append(b.jobs, jobDefinition{spec: spec, name: name, handler: handler})
	}
	return b
}

// AddComponentJob 添加任务，执行时按名称获取组件并调用其 Run 方法
func (b *Builder) AddComponentJob(spec, name, component string) *Builder {
	if b.add(name) {
		b.jobs = append(b.jobs, jobDefinition{spec: spec, name: name, component: component})
	}
	return b
}

func (b *Builder) add(name string) bool {
	if name == "" {
		b.errors = append(b.errors, fmt.Errorf("cron job name is required"))
		return false
	}
	if b.names[name] {
		b.errors = append(b.errors, fmt.Errorf("cron job '%s' already configured", name))
		return false
	}
	b.names[name] = true
	return true
}

// Build 构建调度器，任务在 Start 时才加入 cron
func (b *Builder) Build(container di.Container, logger logging.Logger) (*Scheduler, error) {
	if len(b.errors) > 0 {
		return nil, fmt.Errorf("cron configuration errors: %w", errors.Join(b.errors...))
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	location, err := time.LoadLocation(b.location)
	if err != nil {
		return nil, fmt.Errorf("cron: invalid location '%s': %w", b.location, err)
	}

	cronOpts := []cron.Option{
		cron.WithLocation(location),
		cron.WithChain(cron.Recover(newCronLogger(logger))),
	}
	if b.enableCronLogger {
		cronOpts = append(cronOpts, cron.WithLogger(newCronLogger(logger)))
	}
	if b.enableSeconds {
		cronOpts = append(cronOpts, cron.WithSeconds())
	}

	return &Scheduler{
		BackgroundService: hosting.NewBackgroundService(SchedulerName, logger),
		cron:              cron.New(cronOpts...),
		container:         container,
		logger:            logger,
		jobDefs:           append([]jobDefinition(nil), b.jobs...),
		jobs:              make(map[string]cron.EntryID),
	}, nil
}

// BuilderOption 用于配置 Cron Builder
type BuilderOption func(*Builder)

// WithSeconds 启用秒级精度
func WithSeconds() BuilderOption {
	return func(b *Builder) { b.WithSeconds() }
}

// WithLocation 设置时区
func WithLocation(location string) BuilderOption {
	return func(b *Builder) { b.WithLocation(location) }
}

// EnableCronLogger 启用 cron 库的内部调度日志
func EnableCronLogger() BuilderOption {
	return func(b *Builder) { b.EnableCronLogger() }
}

// AddJob 添加函数任务
func AddJob(spec, name string, handler any) BuilderOption {
	return func(b *Builder) { b.AddJob(spec, name, handler) }
}

// AddComponentJob 添加组件任务
func AddComponentJob(spec, name, component string) BuilderOption {
	return func(b *Builder) { b.AddComponentJob(spec, name, component) }
}

// New 注册调度器组件，运行时把它作为托管服务启动
func New(opts ...BuilderOption) app.Option {
	return app.Use(func(rt *app.Runtime) error {
		builder := NewBuilder()
		for _, opt := range opts {
			opt(builder)
		}

		scheduler, err := builder.Build(rt.Container, rt.LoggerFactory.CreateLogger("cron"))
		if err != nil {
			return err
		}
		return rt.Container.RegisterInstance(SchedulerName, scheduler)
	})
}
