package di

import (
	"reflect"
	"strings"
)

// Describe 根据类型 T 的 `di` 结构体标签生成组件描述符。
//
// 标签格式："name,option1,option2"
//   - name 为空时按字段类型解析
//   - optional 或 ? 表示可选依赖
//   - lazy 表示以 func() T 访问器注入，字段类型需要是 func() T 或 di.Provider[T]
//
// 示例：
//
//	type OrderService struct {
//		Repo  *OrderRepo           `di:""`
//		Cache Cache                `di:"redis,optional"`
//		Audit di.Provider[*Audit]  `di:""`
//	}
//	desc := di.Describe[*OrderService]("orders", di.WithUnshared())
func Describe[T any](name string, opts ...Option) *ComponentDescriptor {
	return DescribeType(name, TypeOf[T](), opts...)
}

// DescribeType 与 Describe 相同，类型在运行时给出。
func DescribeType(name string, typ reflect.Type, opts ...Option) *ComponentDescriptor {
	d := NewDescriptor(name, typ)
	d.Fields = ScanFields(typ)
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ScanFields 解析 typ（结构体或结构体指针）上带 `di` 标签的字段。
func ScanFields(typ reflect.Type) []FieldRequirement {
	// 解包指针
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil
	}

	var fields []FieldRequirement
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		tagValue, hasTag := field.Tag.Lookup("di")
		if !hasTag || tagValue == "-" {
			continue
		}
		fields = append(fields, FieldRequirement{Field: field.Name, Requirement: parseTag(tagValue)})
	}
	return fields
}

func parseTag(tag string) Requirement {
	parts := strings.Split(tag, ",")
	req := Ref(strings.TrimSpace(parts[0]))

	// 处理 "di:?" 或 "di:optional" 的情况，此时 name 应为空
	if req.Name == "?" || req.Name == "optional" {
		req.Name = ""
		req.Required = false
	}

	for _, part := range parts[1:] {
		switch strings.TrimSpace(part) {
		case "optional", "?":
			req.Required = false
		case "lazy":
			req.Deferred = true
		}
	}
	return req
}
