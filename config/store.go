package config

import (
	"strings"
	"sync"
	"sync/atomic"
)

// valueStore 使用 atomic.Value 存储配置数据，Reload 时整体替换
type valueStore struct {
	value atomic.Value // stores map[string]any
}

func newValueStore() *valueStore {
	s := &valueStore{}
	s.value.Store(make(map[string]any))
	return s
}

func (s *valueStore) Load() map[string]any {
	return s.value.Load().(map[string]any)
}

func (s *valueStore) Store(data map[string]any) {
	s.value.Store(data)
}

// pathCache 缓存配置路径的解析结果
type pathCache struct {
	cache sync.Map
}

// Get 获取路径片段，支持 : 和 . 作为分隔符
func (c *pathCache) Get(path string) []string {
	if v, ok := c.cache.Load(path); ok {
		return v.([]string)
	}

	parts := strings.Split(strings.ReplaceAll(path, ":", "."), ".")
	c.cache.Store(path, parts)
	return parts
}

var segments = &pathCache{}
