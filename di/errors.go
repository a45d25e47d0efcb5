package di

import (
	"errors"
	"fmt"
)

var (
	ErrConflict          = errors.New("di: component name conflict")
	ErrUnsatisfied       = errors.New("di: unsatisfied dependency")
	ErrCircular          = errors.New("di: circular reference")
	ErrInstantiation     = errors.New("di: instantiation failed")
	ErrFieldInjection    = errors.New("di: field injection failed")
	ErrMethodInjection   = errors.New("di: method injection failed")
	ErrNotRegistered     = errors.New("di: component not registered")
	ErrInvalidDescriptor = errors.New("di: invalid descriptor")
)

// BeanError 是容器返回的错误类型。
// Kind 为上面的哨兵错误之一，errors.Is 可以同时匹配 Kind 和底层原因。
type BeanError struct {
	Kind error
	Name string // 正在构建的组件
	Ref  string // 引发问题的依赖、字段或方法
	Err  error
}

func (e *BeanError) Error() string {
	var msg string
	switch e.Kind {
	case ErrConflict:
		msg = fmt.Sprintf("di: component %q already registered", e.Name)
	case ErrUnsatisfied:
		msg = fmt.Sprintf("di: component %q: no component matches dependency %s", e.Name, e.Ref)
	case ErrCircular:
		msg = fmt.Sprintf("di: circular reference: component %q requires %q which is under construction", e.Name, e.Ref)
	case ErrInstantiation:
		msg = fmt.Sprintf("di: failed to instantiate component %q", e.Name)
	case ErrFieldInjection:
		msg = fmt.Sprintf("di: failed to inject field %s of component %q", e.Ref, e.Name)
	case ErrMethodInjection:
		msg = fmt.Sprintf("di: failed to inject component %q by method %s", e.Name, e.Ref)
	case ErrNotRegistered:
		msg = fmt.Sprintf("di: component %s not registered", e.Name)
	case ErrInvalidDescriptor:
		msg = fmt.Sprintf("di: invalid descriptor %q", e.Name)
	default:
		msg = fmt.Sprintf("di: component %q", e.Name)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *BeanError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindOf 返回错误类别的短名称，用于日志和指标标签。
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrCircular):
		return "circular"
	case errors.Is(err, ErrUnsatisfied):
		return "unsatisfied"
	case errors.Is(err, ErrInstantiation):
		return "instantiation"
	case errors.Is(err, ErrFieldInjection):
		return "field_injection"
	case errors.Is(err, ErrMethodInjection):
		return "method_injection"
	case errors.Is(err, ErrNotRegistered):
		return "not_registered"
	case errors.Is(err, ErrInvalidDescriptor):
		return "invalid_descriptor"
	default:
		return "unknown"
	}
}

func asBeanError(err error) (*BeanError, bool) {
	var be *BeanError
	ok := errors.As(err, &be)
	return be, ok
}
