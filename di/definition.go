package di

import (
	"reflect"

	"github.com/gocrud/beans/aop"
)

// ScopeType 定义了组件实例的生命周期。
type ScopeType int

const (
	// ScopeShared 每个容器只创建一个实例，按名称缓存。
	ScopeShared ScopeType = iota
	// ScopeUnshared 每次请求返回新的延迟实例句柄，从不缓存。
	ScopeUnshared
)

func (s ScopeType) String() string {
	switch s {
	case ScopeShared:
		return "shared"
	case ScopeUnshared:
		return "unshared"
	default:
		return "unknown"
	}
}

// FieldRequirement 描述一个需要注入的结构体字段。
type FieldRequirement struct {
	Field string // 结构体字段名（允许未导出字段）
	Requirement
}

// MethodRequirement 描述一个需要调用的初始化方法（setter 风格）。
type MethodRequirement struct {
	Method   string
	Args     []Requirement
	Required bool // 为 false 时调用失败会被静默吸收
}

// ComponentDescriptor 包含构建和装配一个组件所需的全部元数据。
// 描述符只是数据，不包含行为。
type ComponentDescriptor struct {
	Name  string
	Type  reflect.Type
	Scope ScopeType
	Lazy  bool // 共享组件再次被获取时重新执行字段/方法注入

	// Constructor 为构造函数（func(...) T 或 func(...) (T, error)），
	// 为 nil 时使用类型的零值构造。
	Constructor     any
	ConstructorArgs []Requirement

	Fields  []FieldRequirement
	Methods []MethodRequirement

	// 代理配置：存在顾问或适配器时，组件对外暴露代理替身
	Advisors        []aop.Advisor
	ProxyInterfaces []reflect.Type
	ProxyAdapter    func(p *aop.Proxy) any

	ctorParams  []reflect.Type // 注册时由内省服务填充
	impl        reflect.Type   // 构造产出的具体类型，用于字段和方法内省
	prebuilt    bool           // RegisterInstance 注册的预构建实例
	objectMaker bool           // 预构建实例实现了 ObjectFactory
}

// clone 深拷贝描述符，注册时使用，避免调用方后续修改影响容器
func (d *ComponentDescriptor) clone() *ComponentDescriptor {
	c := *d
	c.ConstructorArgs = append([]Requirement(nil), d.ConstructorArgs...)
	c.Fields = append([]FieldRequirement(nil), d.Fields...)
	c.Methods = make([]MethodRequirement, len(d.Methods))
	for i, m := range d.Methods {
		m.Args = append([]Requirement(nil), m.Args...)
		c.Methods[i] = m
	}
	c.Advisors = append([]aop.Advisor(nil), d.Advisors...)
	c.ProxyInterfaces = append([]reflect.Type(nil), d.ProxyInterfaces...)
	c.ctorParams = append([]reflect.Type(nil), d.ctorParams...)
	return &c
}

func (d *ComponentDescriptor) proxied() bool {
	return len(d.Advisors) > 0 || d.ProxyAdapter != nil
}
