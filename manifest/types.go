package manifest

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/gocrud/beans/di"
)

// TypeEntry 是类型表中的一项
type TypeEntry struct {
	Type        reflect.Type
	Constructor any // 可选的构造函数
}

// TypeTable 把清单中的类型别名映射到 Go 类型，在程序启动时填充
type TypeTable struct {
	mu      sync.RWMutex
	entries map[string]TypeEntry
}

// NewTypeTable 创建空的类型表
func NewTypeTable() *TypeTable {
	return &TypeTable{entries: make(map[string]TypeEntry)}
}

// Add 添加类型别名，ctor 可以为 nil
func (t *TypeTable) Add(alias string, typ reflect.Type, ctor any) error {
	if alias == "" {
		return fmt.Errorf("manifest: empty type alias")
	}
	if typ == nil {
		return fmt.Errorf("manifest: type alias %q has no type", alias)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.entries[alias]; exists {
		return fmt.Errorf("manifest: type alias %q already registered", alias)
	}
	t.entries[alias] = TypeEntry{Type: typ, Constructor: ctor}
	return nil
}

// AddConstructor 添加由构造函数产出的类型，类型取构造函数的第一个返回值
func (t *TypeTable) AddConstructor(alias string, ctor any) error {
	fn := reflect.TypeOf(ctor)
	if fn == nil || fn.Kind() != reflect.Func || fn.NumOut() == 0 {
		return fmt.Errorf("manifest: constructor for %q must be a function returning a value, got %T", alias, ctor)
	}
	return t.Add(alias, fn.Out(0), ctor)
}

// Lookup 按别名查找
func (t *TypeTable) Lookup(alias string) (TypeEntry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	entry, ok := t.entries[alias]
	return entry, ok
}

// AddType 以类型 T 添加别名
func AddType[T any](t *TypeTable, alias string) error {
	return t.Add(alias, di.TypeOf[T](), nil)
}
