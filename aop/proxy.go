package aop

import (
	"errors"
	"fmt"
	"hash/fnv"
	"reflect"
)

var (
	ErrNoSuchMethod     = errors.New("aop: no such method")
	ErrInvalidAdvice    = errors.New("aop: value does not implement any advice interface")
	ErrNotImplemented   = errors.New("aop: target does not implement interface")
	ErrTargetPanic      = errors.New("aop: target method panicked")
	ErrArgumentMismatch = errors.New("aop: argument mismatch")
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Proxy 是目标实例的拦截分发器。
//
// Go 没有语言级动态代理，这里用方法名索引的分发表（vtable）代替：
// 调用方通过 Invoke 按方法名调用，Equals/HashCode/String 三个通用方法
// 直接处理，其余方法经过顾问链后再委托给目标实例。
// 需要以接口形式使用时，由手写或生成的适配器包装 Proxy。
type Proxy struct {
	target     any
	value      reflect.Value
	interfaces []reflect.Type
	vtable     map[string]reflect.Value
	advisors   []Advisor
}

// NewProxy 为 target 创建代理。
// interfaces 限定可分发的方法集合；为空时使用目标的全部导出方法。
func NewProxy(target any, advisors []Advisor, interfaces ...reflect.Type) (*Proxy, error) {
	if target == nil {
		return nil, fmt.Errorf("aop: proxy target is nil")
	}
	for _, a := range advisors {
		if !isAdvice(a.Advice()) {
			return nil, fmt.Errorf("%w: %T", ErrInvalidAdvice, a.Advice())
		}
	}

	val := reflect.ValueOf(target)
	typ := val.Type()
	vtable := make(map[string]reflect.Value)

	if len(interfaces) == 0 {
		for i := 0; i < typ.NumMethod(); i++ {
			vtable[typ.Method(i).Name] = val.Method(i)
		}
	}
	for _, iface := range interfaces {
		if iface.Kind() != reflect.Interface || !typ.Implements(iface) {
			return nil, fmt.Errorf("%w: %v does not implement %v", ErrNotImplemented, typ, iface)
		}
		for i := 0; i < iface.NumMethod(); i++ {
			name := iface.Method(i).Name
			vtable[name] = val.MethodByName(name)
		}
	}

	return &Proxy{
		target:     target,
		value:      val,
		interfaces: interfaces,
		vtable:     vtable,
		advisors:   advisors,
	}, nil
}

// Target 返回被代理的实例
func (p *Proxy) Target() any { return p.target }

// Interfaces 返回代理声明的接口类型
func (p *Proxy) Interfaces() []reflect.Type { return p.interfaces }

// HasMethod 判断方法是否可以经由代理分发
func (p *Proxy) HasMethod(method string) bool {
	_, ok := p.vtable[method]
	return ok
}

// Invoke 按方法名调用目标方法。
// 目标方法末尾的 error 返回值不会出现在结果切片中，而是作为 error 返回。
func (p *Proxy) Invoke(method string, args ...any) ([]any, error) {
	if results, ok := p.invokeUniversal(method, args); ok {
		return results, nil
	}

	fn, ok := p.vtable[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s on %T", ErrNoSuchMethod, method, p.target)
	}

	inv := &Invocation{Target: p.target, Method: method, Args: args}
	return p.dispatch(inv, fn)
}

func (p *Proxy) dispatch(inv *Invocation, fn reflect.Value) ([]any, error) {
	var (
		befores []BeforeAdvice
		afters  []AfterReturningAdvice
		throws  []ThrowsAdvice
		arounds []AroundAdvice
	)
	for _, a := range p.advisors {
		if !a.Matches(inv.Method) {
			continue
		}
		adv := a.Advice()
		if b, ok := adv.(BeforeAdvice); ok {
			befores = append(befores, b)
		}
		if ar, ok := adv.(AfterReturningAdvice); ok {
			afters = append(afters, ar)
		}
		if t, ok := adv.(ThrowsAdvice); ok {
			throws = append(throws, t)
		}
		if r, ok := adv.(AroundAdvice); ok {
			arounds = append(arounds, r)
		}
	}

	next := func() ([]any, error) {
		for _, b := range befores {
			if err := b.Before(inv); err != nil {
				return nil, err
			}
		}
		results, err := call(fn, inv.Args)
		if err != nil {
			for _, t := range throws {
				t.AfterThrowing(inv, err)
			}
			return results, err
		}
		for _, a := range afters {
			if err := a.AfterReturning(inv, results); err != nil {
				return results, err
			}
		}
		return results, nil
	}

	// 第一个环绕通知位于最外层
	for i := len(arounds) - 1; i >= 0; i-- {
		around, proceed := arounds[i], next
		next = func() ([]any, error) {
			return around.Around(inv, proceed)
		}
	}
	return next()
}

// invokeUniversal 处理 Equals / HashCode / String，不经过顾问链
func (p *Proxy) invokeUniversal(method string, args []any) ([]any, bool) {
	switch method {
	case "Equals":
		if len(args) != 1 {
			return nil, false
		}
		other := args[0]
		if op, ok := other.(*Proxy); ok {
			other = op.target
		}
		if m := p.value.MethodByName("Equals"); m.IsValid() {
			if results, err := call(m, []any{other}); err == nil {
				return results, true
			}
		}
		return []any{identical(p.target, other)}, true

	case "HashCode":
		if len(args) != 0 {
			return nil, false
		}
		if m := p.value.MethodByName("HashCode"); m.IsValid() {
			if results, err := call(m, nil); err == nil {
				return results, true
			}
		}
		h := fnv.New64a()
		if p.value.Kind() == reflect.Pointer {
			fmt.Fprintf(h, "%T@%p", p.target, p.target)
		} else {
			fmt.Fprintf(h, "%T:%v", p.target, p.target)
		}
		return []any{h.Sum64()}, true

	case "String":
		if len(args) != 0 {
			return nil, false
		}
		return []any{p.String()}, true
	}
	return nil, false
}

// String 返回目标的字符串表示
func (p *Proxy) String() string {
	if s, ok := p.target.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("Proxy[%T]", p.target)
}

func identical(a, b any) bool {
	ta := reflect.TypeOf(a)
	if ta == nil || ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

// call 通过反射调用方法，并把 panic 转换为 error
func call(fn reflect.Value, args []any) (results []any, err error) {
	defer func() {
		if r := recover(); r != nil {
			results = nil
			err = fmt.Errorf("%w: %v", ErrTargetPanic, r)
		}
	}()

	fnType := fn.Type()
	in, err := convertArgs(fnType, args)
	if err != nil {
		return nil, err
	}

	out := fn.Call(in)
	if n := len(out); n > 0 && out[n-1].Type() == errorType {
		if !out[n-1].IsNil() {
			err = out[n-1].Interface().(error)
		}
		out = out[:n-1]
	}

	results = make([]any, len(out))
	for i, v := range out {
		results[i] = v.Interface()
	}
	return results, err
}

func convertArgs(fnType reflect.Type, args []any) ([]reflect.Value, error) {
	numIn := fnType.NumIn()
	variadic := fnType.IsVariadic()
	if (!variadic && len(args) != numIn) || (variadic && len(args) < numIn-1) {
		return nil, fmt.Errorf("%w: want %d arguments, got %d", ErrArgumentMismatch, numIn, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var pt reflect.Type
		if variadic && i >= numIn-1 {
			pt = fnType.In(numIn - 1).Elem()
		} else {
			pt = fnType.In(i)
		}

		if arg == nil {
			in[i] = reflect.Zero(pt)
			continue
		}
		v := reflect.ValueOf(arg)
		switch {
		case v.Type().AssignableTo(pt):
			in[i] = v
		case v.Type().ConvertibleTo(pt):
			in[i] = v.Convert(pt)
		default:
			return nil, fmt.Errorf("%w: argument %d is %v, want %v", ErrArgumentMismatch, i, v.Type(), pt)
		}
	}
	return in, nil
}
