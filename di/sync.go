package di

import (
	"reflect"
	"sync"
)

// SyncContainer 用一把全局互斥锁串行化 Factory 的全部操作。
// in-progress 集合是循环检测的依据，不能并发修改。
//
// 通过它获取的 *UnsharedInstance 在 Get/Args 时也会持有同一把锁。
// 延迟访问器（func() T）不能在构造函数内部调用，否则会重复加锁。
type SyncContainer struct {
	mu      sync.Mutex
	factory *Factory
}

var _ Container = (*SyncContainer)(nil)

// Synchronized 包装 f。包装后不应再直接使用 f。
func Synchronized(f *Factory) *SyncContainer {
	s := &SyncContainer{factory: f}
	f.lock = &s.mu
	return s
}

// Factory 返回被包装的容器
func (s *SyncContainer) Factory() *Factory {
	return s.factory
}

func (s *SyncContainer) Register(desc *ComponentDescriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.factory.Register(desc)
}

func (s *SyncContainer) RegisterInstance(name string, instance any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.factory.RegisterInstance(name, instance)
}

func (s *SyncContainer) GetByName(name string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.factory.GetByName(name)
}

func (s *SyncContainer) GetByType(typ reflect.Type) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.factory.GetByType(typ)
}

func (s *SyncContainer) GetAllByType(typ reflect.Type) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.factory.GetAllByType(typ)
}

func (s *SyncContainer) Contains(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.factory.Contains(name)
}

func (s *SyncContainer) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.factory.Names()
}

func (s *SyncContainer) Validate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.factory.Validate()
}

func (s *SyncContainer) PreInstantiate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.factory.PreInstantiate()
}

func (s *SyncContainer) Descriptor(name string) (*ComponentDescriptor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.factory.Descriptor(name)
}
