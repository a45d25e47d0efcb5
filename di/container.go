package di

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/gocrud/beans/logging"
	"github.com/google/uuid"
)

// Container 是组件容器的接口。
type Container interface {
	// Register 注册组件描述符，名称重复时返回 ErrConflict。
	Register(desc *ComponentDescriptor) error

	// RegisterInstance 直接注册预构建的共享实例，跳过构造。
	RegisterInstance(name string, instance any) error

	// GetByName 按名称获取组件。共享组件返回实例，非共享组件返回 *UnsharedInstance。
	GetByName(name string) (any, error)

	// GetByType 获取第一个（按注册顺序）类型相关的组件。
	GetByType(typ reflect.Type) (any, error)

	// GetAllByType 获取所有类型相关的组件，按名称索引。
	GetAllByType(typ reflect.Type) (map[string]any, error)

	// Contains 判断名称是否已注册。
	Contains(name string) bool

	// Names 按注册顺序返回全部组件名称。
	Names() []string
}

// ObjectFactory 是通过 RegisterInstance 注册的工厂组件。
// 每次获取组件时返回 GetObject 的结果，而不是工厂本身。
type ObjectFactory interface {
	GetObject() (any, error)
	ObjectType() reflect.Type
}

// Factory 是 Container 的默认实现。
// Factory 不是并发安全的，并发场景请使用 Synchronized 包装。
type Factory struct {
	id            string
	descriptors   map[string]*ComponentDescriptor
	order         []string
	instances     map[string]any          // 原始实例，注入作用于它们
	exposed       map[string]any          // 对外暴露的实例（可能是代理）
	inProgress    map[string]reflect.Type // 正在解析构造参数的组件
	injecting     map[string]bool
	incomplete    map[string]bool // 已注册但注入失败，下次查找时重新注入
	materializing map[string]bool // 正在物化的非共享组件

	introspector Introspector
	logger       logging.Logger
	observers    []Observer
	lock         sync.Locker // 由 Synchronized 设置，非共享句柄使用
}

var _ Container = (*Factory)(nil)

// FactoryOption 配置 Factory。
type FactoryOption func(*Factory)

// WithLogger 设置日志记录器
func WithLogger(logger logging.Logger) FactoryOption {
	return func(f *Factory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithObserver 添加构建事件观察者
func WithObserver(observers ...Observer) FactoryOption {
	return func(f *Factory) {
		f.observers = append(f.observers, observers...)
	}
}

// WithIntrospector 替换默认的反射内省实现
func WithIntrospector(introspector Introspector) FactoryOption {
	return func(f *Factory) {
		if introspector != nil {
			f.introspector = introspector
		}
	}
}

// NewFactory 创建一个新的空容器。
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{
		id:            uuid.NewString(),
		descriptors:   make(map[string]*ComponentDescriptor),
		instances:     make(map[string]any),
		exposed:       make(map[string]any),
		inProgress:    make(map[string]reflect.Type),
		injecting:     make(map[string]bool),
		incomplete:    make(map[string]bool),
		materializing: make(map[string]bool),
		introspector:  ReflectIntrospector{},
		logger:        logging.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.WithFields(logging.Field{Key: "factory", Value: f.id})
	return f
}

// ID 返回容器的唯一标识
func (f *Factory) ID() string {
	return f.id
}

// Register 向容器添加组件描述符。
// 描述符被复制，依赖的目标类型根据构造函数、字段和方法的声明补全。
func (f *Factory) Register(desc *ComponentDescriptor) error {
	if desc == nil {
		return &BeanError{Kind: ErrInvalidDescriptor, Err: fmt.Errorf("nil descriptor")}
	}
	if _, exists := f.descriptors[desc.Name]; exists {
		return &BeanError{Kind: ErrConflict, Name: desc.Name}
	}

	d := desc.clone()
	if err := f.prepare(d); err != nil {
		return &BeanError{Kind: ErrInvalidDescriptor, Name: d.Name, Err: err}
	}

	f.descriptors[d.Name] = d
	f.order = append(f.order, d.Name)
	f.logger.Debug("component registered",
		logging.Field{Key: "name", Value: d.Name},
		logging.Field{Key: "type", Value: d.Type.String()},
		logging.Field{Key: "scope", Value: d.Scope.String()})
	return nil
}

// prepare 校验描述符并补全依赖的类型信息
func (f *Factory) prepare(d *ComponentDescriptor) error {
	if d.Name == "" {
		return fmt.Errorf("component name is required")
	}
	if d.Scope != ScopeShared && d.Scope != ScopeUnshared {
		return fmt.Errorf("unknown scope %v", d.Scope)
	}

	d.impl = d.Type
	if d.Constructor != nil {
		params, out, err := f.introspector.ConstructorParams(d.Constructor)
		if err != nil {
			return err
		}
		if d.Type == nil {
			d.Type = out
		}
		if !out.AssignableTo(d.Type) {
			return fmt.Errorf("constructor produces %v which is not assignable to %v", out, d.Type)
		}
		args, err := completeAll(d.ConstructorArgs, params)
		if err != nil {
			return fmt.Errorf("constructor: %w", err)
		}
		d.ConstructorArgs, d.ctorParams, d.impl = args, params, out
	} else if len(d.ConstructorArgs) > 0 {
		return fmt.Errorf("constructor arguments declared without a constructor")
	}
	if d.Type == nil {
		return fmt.Errorf("component type is required")
	}

	for i, fr := range d.Fields {
		slot, err := f.introspector.FieldType(d.impl, fr.Field)
		if err != nil {
			return err
		}
		req, err := fr.Requirement.complete(slot)
		if err != nil {
			return fmt.Errorf("field %s: %w", fr.Field, err)
		}
		d.Fields[i].Requirement = req
	}

	for i, mr := range d.Methods {
		params, err := f.introspector.MethodParams(d.impl, mr.Method)
		if err != nil {
			if mr.Required {
				return err
			}
			// 可选方法在注入阶段失败并被吸收
			continue
		}
		args, err := completeAll(mr.Args, params)
		if err != nil {
			return fmt.Errorf("method %s: %w", mr.Method, err)
		}
		d.Methods[i].Args = args
	}
	return nil
}

// completeAll 按位置补全依赖列表，reqs 为空时每个参数都自动解析
func completeAll(reqs []Requirement, params []reflect.Type) ([]Requirement, error) {
	if len(reqs) == 0 {
		reqs = make([]Requirement, len(params))
		for i := range reqs {
			reqs[i] = Auto()
		}
	}
	if len(reqs) != len(params) {
		return nil, fmt.Errorf("%d dependencies declared for %d parameters", len(reqs), len(params))
	}
	for i, req := range reqs {
		completed, err := req.complete(params[i])
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i, err)
		}
		reqs[i] = completed
	}
	return reqs, nil
}

// RegisterInstance 注册预构建的共享实例。
// 实现 ObjectFactory 的实例以 ObjectType 参与类型匹配，获取时返回 GetObject 的结果。
func (f *Factory) RegisterInstance(name string, instance any) error {
	if name == "" || instance == nil {
		return &BeanError{Kind: ErrInvalidDescriptor, Name: name, Err: fmt.Errorf("name and instance are required")}
	}
	if _, exists := f.descriptors[name]; exists {
		return &BeanError{Kind: ErrConflict, Name: name}
	}

	d := &ComponentDescriptor{Name: name, Type: reflect.TypeOf(instance), Scope: ScopeShared, prebuilt: true}
	if of, ok := instance.(ObjectFactory); ok {
		d.Type = of.ObjectType()
		d.objectMaker = true
	}
	d.impl = d.Type

	f.descriptors[name] = d
	f.order = append(f.order, name)
	f.instances[name] = instance
	f.exposed[name] = instance
	f.logger.Debug("instance registered",
		logging.Field{Key: "name", Value: name},
		logging.Field{Key: "type", Value: d.Type.String()})
	return nil
}

// GetByName 按名称获取组件。
func (f *Factory) GetByName(name string) (any, error) {
	desc, ok := f.descriptors[name]
	if !ok {
		return nil, &BeanError{Kind: ErrNotRegistered, Name: fmt.Sprintf("%q", name)}
	}
	return f.lookup(desc)
}

// GetByType 获取第一个与 typ 存在双向子类型关系的组件。
// 多个组件匹配时先注册者胜出。
func (f *Factory) GetByType(typ reflect.Type) (any, error) {
	desc := f.firstRelated(typ)
	if desc == nil {
		return nil, &BeanError{Kind: ErrNotRegistered, Name: fmt.Sprintf("of type %v", typ)}
	}
	return f.lookup(desc)
}

// GetAllByType 获取所有与 typ 相关的组件，共享组件会被立即构建。
func (f *Factory) GetAllByType(typ reflect.Type) (map[string]any, error) {
	result := make(map[string]any)
	for _, name := range f.order {
		desc := f.descriptors[name]
		if !related(desc.Type, typ) {
			continue
		}
		v, err := f.lookup(desc)
		if err != nil {
			return nil, err
		}
		result[name] = v
	}
	return result, nil
}

// Contains 判断名称是否已注册
func (f *Factory) Contains(name string) bool {
	_, ok := f.descriptors[name]
	return ok
}

// Names 按注册顺序返回组件名称
func (f *Factory) Names() []string {
	return append([]string(nil), f.order...)
}

// Descriptor 返回已注册描述符的副本
func (f *Factory) Descriptor(name string) (*ComponentDescriptor, bool) {
	d, ok := f.descriptors[name]
	if !ok {
		return nil, false
	}
	return d.clone(), true
}

// Instances 返回已创建的共享实例快照
func (f *Factory) Instances() map[string]any {
	snapshot := make(map[string]any, len(f.exposed))
	for name, v := range f.exposed {
		if !f.incomplete[name] {
			snapshot[name] = v
		}
	}
	return snapshot
}

// PreInstantiate 按注册顺序构建所有非 lazy 的共享组件。
func (f *Factory) PreInstantiate() error {
	for _, name := range f.order {
		desc := f.descriptors[name]
		if desc.Scope != ScopeShared || desc.Lazy || desc.prebuilt {
			continue
		}
		if _, err := f.lookup(desc); err != nil {
			return err
		}
	}
	return nil
}

// lookup 根据作用域返回组件实例或延迟句柄
func (f *Factory) lookup(desc *ComponentDescriptor) (any, error) {
	if desc.Scope == ScopeUnshared {
		h, err := f.newUnshared(desc)
		if err != nil {
			return nil, err
		}
		return h, nil
	}

	v, err := f.shared(desc)
	if err != nil {
		return nil, err
	}
	if desc.objectMaker {
		obj, err := v.(ObjectFactory).GetObject()
		if err != nil {
			return nil, &BeanError{Kind: ErrInstantiation, Name: desc.Name, Err: err}
		}
		return obj, nil
	}
	return v, nil
}

// shared 返回共享组件，必要时构建并注册
func (f *Factory) shared(desc *ComponentDescriptor) (any, error) {
	name := desc.Name
	if exposed, ok := f.exposed[name]; ok {
		if f.incomplete[name] && !f.injecting[name] {
			return f.reinject(desc, exposed)
		}
		if desc.Lazy && !desc.prebuilt && !f.injecting[name] {
			if err := f.inject(desc, f.instances[name]); err != nil {
				return nil, err
			}
		}
		return exposed, nil
	}

	start := time.Now()
	raw, err := f.build(desc)
	if err != nil {
		return nil, f.failed(name, err)
	}
	exposed, err := f.expose(desc, raw)
	if err != nil {
		return nil, f.failed(name, err)
	}

	// 注入前注册，字段和方法注入中的循环引用可以拿到这个实例
	f.instances[name] = raw
	f.exposed[name] = exposed

	if err := f.inject(desc, raw); err != nil {
		// 实例保留在注册表中，其他组件可能已持有它
		f.incomplete[name] = true
		return nil, f.failed(name, err)
	}

	f.created(name, desc.Scope, time.Since(start))
	return exposed, nil
}

// reinject 对注入失败的共享实例重新执行注入，成功前不返回它
func (f *Factory) reinject(desc *ComponentDescriptor, exposed any) (any, error) {
	start := time.Now()
	if err := f.inject(desc, f.instances[desc.Name]); err != nil {
		return nil, f.failed(desc.Name, err)
	}
	delete(f.incomplete, desc.Name)
	f.created(desc.Name, desc.Scope, time.Since(start))
	return exposed, nil
}

func (f *Factory) created(name string, scope ScopeType, elapsed time.Duration) {
	f.logger.Debug("component created",
		logging.Field{Key: "name", Value: name},
		logging.Field{Key: "scope", Value: scope.String()},
		logging.Field{Key: "elapsed", Value: elapsed})
	for _, o := range f.observers {
		o.OnCreated(name, scope, elapsed)
	}
}

// failed 通知观察者；依赖的失败已由依赖自身上报，不重复通知
func (f *Factory) failed(name string, err error) error {
	if be, ok := asBeanError(err); ok && be.Name != name {
		return err
	}
	f.logger.Debug("component failed",
		logging.Field{Key: "name", Value: name},
		logging.Field{Key: "error", Value: err.Error()})
	for _, o := range f.observers {
		o.OnFailed(name, err)
	}
	return err
}
