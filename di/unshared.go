package di

import (
	"reflect"
	"sync"
	"time"
)

// UnsharedInstance 是非共享组件的延迟实例句柄。
// 每次 Get 都重新执行构造和注入，得到互不共享状态的新实例。
type UnsharedInstance struct {
	factory *Factory
	desc    *ComponentDescriptor
	lock    sync.Locker
}

// Name 返回组件名称
func (h *UnsharedInstance) Name() string {
	return h.desc.Name
}

// Type 返回组件类型
func (h *UnsharedInstance) Type() reflect.Type {
	return h.desc.Type
}

// Args 解析构造参数。每次调用都重新解析，非共享依赖会得到新实例。
func (h *UnsharedInstance) Args() ([]any, error) {
	if h.lock != nil {
		h.lock.Lock()
		defer h.lock.Unlock()
	}

	values, err := h.factory.constructorArgs(h.desc)
	if err != nil {
		return nil, err
	}
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v.Interface()
	}
	return args, nil
}

// Get 物化一个新实例
func (h *UnsharedInstance) Get() (any, error) {
	if h.lock != nil {
		h.lock.Lock()
		defer h.lock.Unlock()
	}
	return h.factory.materialize(h.desc)
}

// newUnshared 创建延迟句柄。必需的构造依赖此时必须可以找到。
func (f *Factory) newUnshared(desc *ComponentDescriptor) (*UnsharedInstance, error) {
	for _, req := range desc.ConstructorArgs {
		if req.Required && f.target(req) == nil {
			return nil, &BeanError{Kind: ErrUnsatisfied, Name: desc.Name, Ref: req.String()}
		}
	}
	return &UnsharedInstance{factory: f, desc: desc, lock: f.lock}, nil
}

// materialize 构建并注入一个非共享组件的新实例，不写入实例注册表
func (f *Factory) materialize(desc *ComponentDescriptor) (any, error) {
	name := desc.Name
	if f.materializing[name] {
		return nil, &BeanError{Kind: ErrCircular, Name: name, Ref: name}
	}
	f.materializing[name] = true
	defer delete(f.materializing, name)

	start := time.Now()
	raw, err := f.build(desc)
	if err != nil {
		return nil, f.failed(name, err)
	}
	exposed, err := f.expose(desc, raw)
	if err != nil {
		return nil, f.failed(name, err)
	}
	if err := f.inject(desc, raw); err != nil {
		return nil, f.failed(name, err)
	}

	f.created(name, desc.Scope, time.Since(start))
	return exposed, nil
}
