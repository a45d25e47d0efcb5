// Package named 保存各 starter 共用的具名客户端工厂和配置构建器
package named

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Factory 按注册顺序保存具名客户端
type Factory[C any] struct {
	kind   string
	items  map[string]C
	order  []string
	closer func(ctx context.Context, c C) error
	mu     sync.RWMutex
}

// NewFactory 创建工厂，kind 用于错误信息，closer 在 Close 时逐个调用
func NewFactory[C any](kind string, closer func(ctx context.Context, c C) error) *Factory[C] {
	return &Factory[C]{kind: kind, items: make(map[string]C), closer: closer}
}

// Put 保存客户端，名称重复时返回错误
func (f *Factory[C]) Put(name string, c C) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.items[name]; exists {
		return fmt.Errorf("%s '%s' already registered", f.kind, name)
	}
	f.items[name] = c
	f.order = append(f.order, name)
	return nil
}

// Get 获取指定名称的客户端
func (f *Factory[C]) Get(name string) (C, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	c, exists := f.items[name]
	if !exists {
		var zero C
		return zero, fmt.Errorf("%s '%s' not found", f.kind, name)
	}
	return c, nil
}

// Names 按注册顺序返回客户端名称
func (f *Factory[C]) Names() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.order...)
}

// Each 按注册顺序遍历所有客户端
func (f *Factory[C]) Each(fn func(name string, c C)) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, name := range f.order {
		fn(name, f.items[name])
	}
}

// Close 按注册顺序关闭并清空所有客户端
func (f *Factory[C]) Close(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs []error
	for _, name := range f.order {
		if err := f.closer(ctx, f.items[name]); err != nil {
			errs = append(errs, fmt.Errorf("failed to close %s '%s': %w", f.kind, name, err))
		}
	}
	f.items = make(map[string]C)
	f.order = nil
	return errors.Join(errs...)
}
