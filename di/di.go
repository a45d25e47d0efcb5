package di

import (
	"fmt"
	"reflect"
)

// Register 以类型 T 注册组件。
// T 为接口时需要通过 WithConstructor 指定构造函数。
func Register[T any](c Container, name string, opts ...Option) error {
	return c.Register(NewDescriptor(name, TypeOf[T](), opts...))
}

// MustRegister 与 Register 相同，失败时 panic。
func MustRegister[T any](c Container, name string, opts ...Option) {
	if err := Register[T](c, name, opts...); err != nil {
		panic(fmt.Sprintf("di: failed to register %s: %v", name, err))
	}
}

// Resolve 按类型 T 解析组件。非共享组件会被物化为新实例。
func Resolve[T any](c Container) (T, error) {
	v, err := c.GetByType(TypeOf[T]())
	if err != nil {
		var zero T
		return zero, err
	}
	return convert[T](v)
}

// ResolveNamed 按名称解析组件并转换为 T。
func ResolveNamed[T any](c Container, name string) (T, error) {
	v, err := c.GetByName(name)
	if err != nil {
		var zero T
		return zero, err
	}
	return convert[T](v)
}

// ResolveAll 解析所有与 T 相关的组件，按名称索引。
func ResolveAll[T any](c Container) (map[string]T, error) {
	all, err := c.GetAllByType(TypeOf[T]())
	if err != nil {
		return nil, err
	}
	result := make(map[string]T, len(all))
	for name, v := range all {
		if TypeOf[T]() != unsharedType {
			if v, err = Materialize(v); err != nil {
				return nil, err
			}
		}
		// 双向类型匹配可能命中父类型描述符，实例本身未必实现 T
		if t, ok := v.(T); ok {
			result[name] = t
		}
	}
	return result, nil
}

// MustResolve 与 Resolve 相同，失败时 panic。
func MustResolve[T any](c Container) T {
	v, err := Resolve[T](c)
	if err != nil {
		panic(fmt.Sprintf("di: failed to resolve %v: %v", TypeOf[T](), err))
	}
	return v
}

// Materialize 把 *UnsharedInstance 物化为实例，其他值原样返回。
func Materialize(v any) (any, error) {
	if h, ok := v.(*UnsharedInstance); ok {
		return h.Get()
	}
	return v, nil
}

func convert[T any](v any) (T, error) {
	var zero T
	if TypeOf[T]() != unsharedType {
		var err error
		if v, err = Materialize(v); err != nil {
			return zero, err
		}
	}

	if t, ok := v.(T); ok {
		return t, nil
	}
	return zero, fmt.Errorf("di: resolved value is %T, expected %v", v, reflect.TypeOf(&zero).Elem())
}
