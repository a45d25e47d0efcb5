package di

import (
	"fmt"
	"reflect"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// call 调用函数并统一处理 panic 和末尾的 error 返回值。
// 返回的结果中已去掉末尾的 error。
func call(fn reflect.Value, args []reflect.Value) (results []reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			results = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	results = fn.Call(args)

	// 检查 error
	if n := len(results); n > 0 && results[n-1].Type() == errorType {
		if last := results[n-1]; !last.IsNil() {
			return nil, last.Interface().(error)
		}
		results = results[:n-1]
	}
	return results, nil
}

// constructorInvoker 调用构造函数并检查返回值
func constructorInvoker(ctor any, args []reflect.Value) (reflect.Value, error) {
	results, err := call(reflect.ValueOf(ctor), args)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("constructor failed: %w", err)
	}
	if len(results) == 0 {
		return reflect.Value{}, fmt.Errorf("constructor returned no values")
	}

	// 检查 nil
	first := results[0]
	switch first.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Func, reflect.Chan:
		if first.IsNil() {
			return reflect.Value{}, fmt.Errorf("constructor returned nil instance")
		}
	}
	if first.Kind() == reflect.Interface {
		first = first.Elem()
	}
	return first, nil
}

// valueFor 把依赖实例转换为可以放入 slot 的 reflect.Value
func valueFor(slot reflect.Type, dep any) (reflect.Value, error) {
	if dep == nil {
		return reflect.Zero(slot), nil
	}
	v := reflect.ValueOf(dep)
	if !v.Type().AssignableTo(slot) {
		return reflect.Value{}, fmt.Errorf("%T is not assignable to %v", dep, slot)
	}
	return v, nil
}
