package di

import (
	"reflect"

	"github.com/gocrud/beans/aop"
)

// Option 配置组件描述符。
type Option func(*ComponentDescriptor)

// NewDescriptor 创建组件描述符，默认共享作用域。
func NewDescriptor(name string, typ reflect.Type, opts ...Option) *ComponentDescriptor {
	d := &ComponentDescriptor{Name: name, Type: typ, Scope: ScopeShared}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// WithScope 设置组件的作用域。
func WithScope(scope ScopeType) Option {
	return func(d *ComponentDescriptor) {
		d.Scope = scope
	}
}

// WithShared 将作用域设置为 Shared（默认）。
func WithShared() Option {
	return WithScope(ScopeShared)
}

// WithUnshared 将作用域设置为 Unshared，每次获取返回新的延迟实例句柄。
func WithUnshared() Option {
	return WithScope(ScopeUnshared)
}

// WithLazy 标记共享组件在每次获取时重新执行字段和方法注入。
func WithLazy() Option {
	return func(d *ComponentDescriptor) {
		d.Lazy = true
	}
}

// WithConstructor 指定构造函数。
// 省略 args 时每个参数都按声明类型自动解析。
func WithConstructor(fn any, args ...Requirement) Option {
	return func(d *ComponentDescriptor) {
		d.Constructor = fn
		d.ConstructorArgs = args
	}
}

// WithField 声明一个字段注入。
func WithField(field string, req Requirement) Option {
	return func(d *ComponentDescriptor) {
		d.Fields = append(d.Fields, FieldRequirement{Field: field, Requirement: req})
	}
}

// WithMethod 声明一个初始化方法注入。
// 省略 args 时每个参数都按声明类型自动解析。
func WithMethod(method string, required bool, args ...Requirement) Option {
	return func(d *ComponentDescriptor) {
		d.Methods = append(d.Methods, MethodRequirement{Method: method, Args: args, Required: required})
	}
}

// WithAdvisors 为组件添加顾问，获取组件时返回代理。
func WithAdvisors(advisors ...aop.Advisor) Option {
	return func(d *ComponentDescriptor) {
		d.Advisors = append(d.Advisors, advisors...)
	}
}

// WithProxy 指定代理实现的接口以及把 *aop.Proxy 转换为可调用替身的适配器。
// adapter 为 nil 时对外暴露 *aop.Proxy 本身。
func WithProxy(adapter func(p *aop.Proxy) any, interfaces ...reflect.Type) Option {
	return func(d *ComponentDescriptor) {
		d.ProxyAdapter = adapter
		d.ProxyInterfaces = append(d.ProxyInterfaces, interfaces...)
	}
}
