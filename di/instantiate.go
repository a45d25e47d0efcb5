package di

import (
	"reflect"

	"github.com/gocrud/beans/aop"
	"github.com/gocrud/beans/logging"
)

// build 解析构造参数并创建原始实例
func (f *Factory) build(desc *ComponentDescriptor) (any, error) {
	// 构造参数解析期间经由字段或方法注入再次进入自身
	if _, busy := f.inProgress[desc.Name]; busy {
		return nil, &BeanError{Kind: ErrCircular, Name: desc.Name, Ref: desc.Name}
	}

	args, err := f.constructorArgs(desc)
	if err != nil {
		return nil, err
	}
	return f.instantiate(desc, args)
}

// constructorArgs 按顺序解析构造参数。
// 解析期间组件处于 in-progress 状态，任何依赖命中 in-progress 中的名称或相关类型即为循环引用。
func (f *Factory) constructorArgs(desc *ComponentDescriptor) ([]reflect.Value, error) {
	f.inProgress[desc.Name] = desc.Type
	defer delete(f.inProgress, desc.Name)

	args := make([]reflect.Value, len(desc.ConstructorArgs))
	for i, req := range desc.ConstructorArgs {
		if culprit, busy := f.underConstruction(req); busy {
			f.logger.Warn("circular reference",
				logging.Field{Key: "name", Value: desc.Name},
				logging.Field{Key: "ref", Value: culprit})
			return nil, &BeanError{Kind: ErrCircular, Name: desc.Name, Ref: culprit}
		}

		v, err := f.argument(desc.Name, req, desc.ctorParams[i])
		if err != nil {
			if be, ok := asBeanError(err); ok {
				return nil, be
			}
			return nil, &BeanError{Kind: ErrInstantiation, Name: desc.Name, Ref: req.String(), Err: err}
		}
		args[i] = v
	}
	return args, nil
}

// underConstruction 检查依赖是否指向正在构建的组件（名称相同或类型相关）
func (f *Factory) underConstruction(req Requirement) (string, bool) {
	if req.Name != "" {
		if _, busy := f.inProgress[req.Name]; busy {
			return req.Name, true
		}
	}
	for name, typ := range f.inProgress {
		if related(req.Type, typ) {
			return name, true
		}
	}
	return "", false
}

// argument 解析一个构造或方法参数；可选依赖未找到时返回零值
func (f *Factory) argument(owner string, req Requirement, slot reflect.Type) (reflect.Value, error) {
	dep, ok, err := f.resolve(req)
	if err != nil {
		return reflect.Value{}, err
	}
	if !ok {
		if req.Required {
			return reflect.Value{}, &BeanError{Kind: ErrUnsatisfied, Name: owner, Ref: req.String()}
		}
		return reflect.Zero(slot), nil
	}
	return f.slotValue(req, slot, dep)
}

// instantiate 调用构造函数（或零值构造）创建原始实例
func (f *Factory) instantiate(desc *ComponentDescriptor, args []reflect.Value) (any, error) {
	v, err := f.introspector.Construct(desc.Type, desc.Constructor, args)
	if err != nil {
		return nil, &BeanError{Kind: ErrInstantiation, Name: desc.Name, Err: err}
	}
	return v.Interface(), nil
}

// expose 为配置了顾问的组件创建代理替身
func (f *Factory) expose(desc *ComponentDescriptor, raw any) (any, error) {
	if !desc.proxied() {
		return raw, nil
	}
	p, err := aop.NewProxy(raw, desc.Advisors, desc.ProxyInterfaces...)
	if err != nil {
		return nil, &BeanError{Kind: ErrInstantiation, Name: desc.Name, Err: err}
	}
	if desc.ProxyAdapter != nil {
		return desc.ProxyAdapter(p), nil
	}
	return p, nil
}
