package di

import (
	"fmt"
	"reflect"
	"unsafe"
)

// Introspector 是容器依赖的内省能力：枚举构造函数、字段和方法，
// 构造实例并动态设置字段、调用方法。
// 默认实现基于 reflect，可通过 WithIntrospector 替换（例如代码生成的注册表）。
type Introspector interface {
	// ConstructorParams 返回构造函数的参数类型和产出类型
	ConstructorParams(ctor any) (params []reflect.Type, out reflect.Type, err error)
	// Construct 使用构造函数（可为 nil）和位置参数创建 typ 的实例
	Construct(typ reflect.Type, ctor any, args []reflect.Value) (reflect.Value, error)
	// FieldType 返回 typ 上名为 field 的字段类型
	FieldType(typ reflect.Type, field string) (reflect.Type, error)
	// SetField 设置字段的值，允许未导出字段
	SetField(target reflect.Value, field string, value reflect.Value) error
	// MethodParams 返回方法的参数类型（不含接收者）
	MethodParams(typ reflect.Type, method string) ([]reflect.Type, error)
	// Invoke 调用方法，方法 panic 或返回非 nil error 时返回错误
	Invoke(target reflect.Value, method string, args []reflect.Value) error
}

// ReflectIntrospector 是基于 reflect 的默认 Introspector
type ReflectIntrospector struct{}

var _ Introspector = ReflectIntrospector{}

func (ReflectIntrospector) ConstructorParams(ctor any) ([]reflect.Type, reflect.Type, error) {
	fnType := reflect.TypeOf(ctor)
	if fnType == nil || fnType.Kind() != reflect.Func {
		return nil, nil, fmt.Errorf("constructor must be a function, got %T", ctor)
	}
	if fnType.IsVariadic() {
		return nil, nil, fmt.Errorf("variadic constructor %v is not supported", fnType)
	}
	switch {
	case fnType.NumOut() == 1 && fnType.Out(0) != errorType:
	case fnType.NumOut() == 2 && fnType.Out(1) == errorType:
	default:
		return nil, nil, fmt.Errorf("constructor %v must return T or (T, error)", fnType)
	}

	params := make([]reflect.Type, fnType.NumIn())
	for i := range params {
		params[i] = fnType.In(i)
	}
	return params, fnType.Out(0), nil
}

func (ReflectIntrospector) Construct(typ reflect.Type, ctor any, args []reflect.Value) (reflect.Value, error) {
	if ctor != nil {
		return constructorInvoker(ctor, args)
	}

	switch typ.Kind() {
	case reflect.Ptr:
		return reflect.New(typ.Elem()), nil
	case reflect.Interface:
		return reflect.Value{}, fmt.Errorf("interface type %v needs a constructor", typ)
	default:
		return reflect.New(typ).Elem(), nil
	}
}

func (ReflectIntrospector) FieldType(typ reflect.Type, field string) (reflect.Type, error) {
	if typ.Kind() != reflect.Ptr || typ.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("field injection needs a pointer to struct, got %v", typ)
	}
	f, ok := typ.Elem().FieldByName(field)
	if !ok {
		return nil, fmt.Errorf("%v has no field %s", typ, field)
	}
	return f.Type, nil
}

func (ReflectIntrospector) SetField(target reflect.Value, field string, value reflect.Value) (err error) {
	if target.Kind() != reflect.Ptr || target.IsNil() || target.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("field injection needs a non-nil pointer to struct, got %v", target.Type())
	}

	defer func() {
		// 经由 nil 嵌入指针访问字段时会 panic
		if r := recover(); r != nil {
			err = fmt.Errorf("set field %s: %v", field, r)
		}
	}()

	f := target.Elem().FieldByName(field)
	if !f.IsValid() {
		return fmt.Errorf("%v has no field %s", target.Type(), field)
	}
	if !value.IsValid() {
		value = reflect.Zero(f.Type())
	}
	if !value.Type().AssignableTo(f.Type()) {
		return fmt.Errorf("%v is not assignable to field %s (%v)", value.Type(), field, f.Type())
	}
	if !f.CanSet() {
		f = reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem()
	}
	f.Set(value)
	return nil
}

func (ReflectIntrospector) MethodParams(typ reflect.Type, method string) ([]reflect.Type, error) {
	m, ok := typ.MethodByName(method)
	if !ok {
		return nil, fmt.Errorf("%v has no method %s", typ, method)
	}

	// 非接口类型的方法签名第一个参数是接收者
	skip := 1
	if typ.Kind() == reflect.Interface {
		skip = 0
	}
	if m.Type.IsVariadic() {
		return nil, fmt.Errorf("variadic method %s is not supported", method)
	}
	params := make([]reflect.Type, 0, m.Type.NumIn()-skip)
	for i := skip; i < m.Type.NumIn(); i++ {
		params = append(params, m.Type.In(i))
	}
	return params, nil
}

func (ReflectIntrospector) Invoke(target reflect.Value, method string, args []reflect.Value) error {
	m := target.MethodByName(method)
	if !m.IsValid() {
		return fmt.Errorf("%v has no method %s", target.Type(), method)
	}
	_, err := call(m, args)
	return err
}
