package di

import (
	"fmt"
	"reflect"
)

// resolve 解析依赖：先按名称，名称为空或未注册时按类型。
// 未找到时 ok 为 false；err 只表示找到的依赖构建失败。
func (f *Factory) resolve(req Requirement) (dep any, ok bool, err error) {
	desc := f.target(req)
	if desc == nil {
		return nil, false, nil
	}
	dep, err = f.lookup(desc)
	if err != nil {
		return nil, false, err
	}
	return dep, true, nil
}

// target 返回满足依赖的描述符，不触发构建
func (f *Factory) target(req Requirement) *ComponentDescriptor {
	if req.Name != "" {
		if desc, ok := f.descriptors[req.Name]; ok {
			return desc
		}
	}
	return f.firstRelated(req.Type)
}

// firstRelated 按注册顺序查找第一个类型相关的描述符
func (f *Factory) firstRelated(typ reflect.Type) *ComponentDescriptor {
	for _, name := range f.order {
		if desc := f.descriptors[name]; related(desc.Type, typ) {
			return desc
		}
	}
	return nil
}

// slotValue 把解析到的依赖转换为注入点需要的值。
// 非共享句柄注入到具体类型的注入点时会被物化，每个依赖方得到独立实例。
func (f *Factory) slotValue(req Requirement, slot reflect.Type, dep any) (reflect.Value, error) {
	if req.Deferred {
		return f.accessor(slot, dep)
	}
	if h, ok := dep.(*UnsharedInstance); ok && slot != unsharedType {
		v, err := f.materialize(h.desc)
		if err != nil {
			return reflect.Value{}, err
		}
		dep = v
	}
	return valueFor(slot, dep)
}

// accessor 构建 func() T 访问器。
// 共享依赖被直接捕获；非共享依赖在每次调用时物化一个新实例。
func (f *Factory) accessor(slot reflect.Type, dep any) (reflect.Value, error) {
	out := slot.Out(0)

	if h, ok := dep.(*UnsharedInstance); ok && out != unsharedType {
		if !related(h.Type(), out) {
			return reflect.Value{}, fmt.Errorf("%v is not assignable to %v", h.Type(), out)
		}
		return reflect.MakeFunc(slot, func([]reflect.Value) []reflect.Value {
			v, err := h.Get()
			if err != nil {
				panic(err)
			}
			rv, err := valueFor(out, v)
			if err != nil {
				panic(err)
			}
			return []reflect.Value{rv}
		}), nil
	}

	v, err := valueFor(out, dep)
	if err != nil {
		return reflect.Value{}, err
	}
	return reflect.MakeFunc(slot, func([]reflect.Value) []reflect.Value {
		return []reflect.Value{v}
	}), nil
}
