package di

import (
	"fmt"
	"reflect"
)

// Requirement 描述对另一个组件的依赖：按名称和/或按类型。
type Requirement struct {
	Name     string       // 目标组件名称，可为空
	Type     reflect.Type // 目标类型；为 nil 时注册阶段根据注入点推断
	Required bool         // 必需依赖找不到时报错，可选依赖保持未设置
	Deferred bool         // 以零参数访问器（func() T）的形式交付
}

// Provider 是延迟访问器。字段或参数声明为 Provider[T] 时自动按延迟方式注入。
type Provider[T any] func() T

// Ref 按名称引用依赖，名称找不到时回退到按类型查找。
func Ref(name string) Requirement {
	return Requirement{Name: name, Required: true}
}

// RefOf 按名称和类型 T 引用依赖
func RefOf[T any](name string) Requirement {
	return Requirement{Name: name, Type: TypeOf[T](), Required: true}
}

// ByType 仅按类型引用依赖
func ByType(typ reflect.Type) Requirement {
	return Requirement{Type: typ, Required: true}
}

// Auto 从注入点的声明类型推断依赖
func Auto() Requirement {
	return Requirement{Required: true}
}

// Optional 返回可选版本的依赖
func (r Requirement) Optional() Requirement {
	r.Required = false
	return r
}

// Lazily 返回以延迟访问器交付的依赖
func (r Requirement) Lazily() Requirement {
	r.Deferred = true
	return r
}

func (r Requirement) String() string {
	switch {
	case r.Name != "" && r.Type != nil:
		return fmt.Sprintf("%q (%v)", r.Name, r.Type)
	case r.Name != "":
		return fmt.Sprintf("%q", r.Name)
	case r.Type != nil:
		return r.Type.String()
	default:
		return "<unknown>"
	}
}

// complete 根据注入点类型补全依赖的目标类型。
// 延迟依赖的注入点必须是 func() T，目标类型取 T。
func (r Requirement) complete(slot reflect.Type) (Requirement, error) {
	if isProviderType(slot) {
		r.Deferred = true
	}
	if r.Deferred {
		if !isAccessorType(slot) {
			return r, fmt.Errorf("deferred dependency %s needs a func() T slot, got %v", r, slot)
		}
		if r.Type == nil {
			r.Type = slot.Out(0)
		}
		return r, nil
	}
	if r.Type == nil {
		r.Type = slot
	}
	return r, nil
}
