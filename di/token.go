package di

import (
	"reflect"
	"strings"
)

// TypeOf 获取类型 T 的 reflect.Type（泛型辅助函数）
//
// 示例：
//
//	userServiceType := di.TypeOf[UserService]()
//	instance, _ := factory.GetByType(userServiceType)
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

var (
	pkgPath      = reflect.TypeOf(Requirement{}).PkgPath()
	unsharedType = reflect.TypeOf((*UnsharedInstance)(nil))
)

// related 判断两个类型是否存在双向的子类型关系：
// 请求父类型可以得到子类型实例，反之亦然。
func related(a, b reflect.Type) bool {
	if a == nil || b == nil {
		return false
	}
	return a == b || a.AssignableTo(b) || b.AssignableTo(a)
}

// isAccessorType 判断 t 是否为零参数、单返回值的函数类型
func isAccessorType(t reflect.Type) bool {
	return t != nil && t.Kind() == reflect.Func && t.NumIn() == 0 && t.NumOut() == 1 && !t.IsVariadic()
}

// isProviderType 判断 t 是否为 di.Provider[T] 的实例化类型
func isProviderType(t reflect.Type) bool {
	return isAccessorType(t) && t.PkgPath() == pkgPath && strings.HasPrefix(t.Name(), "Provider[")
}
