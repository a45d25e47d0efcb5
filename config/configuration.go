package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"
)

// ErrKeyNotFound 表示配置键不存在
var ErrKeyNotFound = errors.New("config: key not found")

// Configuration 是只读的分层配置，键使用 "a:b:c" 或 "a.b.c"
type Configuration interface {
	// Get 获取配置值，不存在时返回空字符串
	Get(key string) string
	// GetWithDefault 获取配置值，不存在或为空时返回默认值
	GetWithDefault(key, defaultValue string) string
	GetInt(key string) (int, error)
	GetBool(key string) (bool, error)
	// GetDuration 读取 "1m30s" 形式的时长，数字按秒处理
	GetDuration(key string) (time.Duration, error)
	// GetSection 获取配置节，不存在时返回空配置
	GetSection(key string) Configuration
	// Bind 把 key 下的值绑定到 target，key 为空时绑定全部配置
	Bind(key string, target any) error
	// GetAll 返回全部配置的副本
	GetAll() map[string]any
}

// Reloadable 可以重新加载全部配置源的配置
type Reloadable interface {
	Configuration
	Reload() error
	OnReload(fn func())
}

// ConfigurationSource 配置源接口
type ConfigurationSource interface {
	Load() (map[string]any, error)
	Name() string
}

// ConfigurationBuilder 按添加顺序合并配置源，后添加的覆盖先添加的
type ConfigurationBuilder struct {
	sources []ConfigurationSource
	mu      sync.Mutex
}

// NewConfigurationBuilder 创建配置构建器
func NewConfigurationBuilder() *ConfigurationBuilder {
	return &ConfigurationBuilder{}
}

// Add 添加配置源
func (b *ConfigurationBuilder) Add(source ConfigurationSource) *ConfigurationBuilder {
	b.mu.Lock()
	b.sources = append(b.sources, source)
	b.mu.Unlock()
	return b
}

// Build 构建配置
func (b *ConfigurationBuilder) Build() (Configuration, error) {
	return b.BuildReloadable()
}

// BuildReloadable 构建可重新加载的配置
func (b *ConfigurationBuilder) BuildReloadable() (Reloadable, error) {
	b.mu.Lock()
	sources := append([]ConfigurationSource(nil), b.sources...)
	b.mu.Unlock()

	c := &configuration{store: newValueStore(), sources: sources}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// configuration 的读取不加锁，Reload 整体替换数据
type configuration struct {
	store     *valueStore
	sources   []ConfigurationSource
	callbacks []func()
	mu        sync.Mutex
}

func newSection(data map[string]any) *configuration {
	c := &configuration{store: newValueStore()}
	c.store.Store(data)
	return c
}

// Reload 重新读取所有配置源，任一源失败时保留旧数据
func (c *configuration) Reload() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sources == nil {
		return nil
	}

	merged := make(map[string]any)
	for _, source := range c.sources {
		data, err := source.Load()
		if err != nil {
			return fmt.Errorf("failed to load config source %s: %w", source.Name(), err)
		}
		mergeMaps(merged, data)
	}
	c.store.Store(merged)

	for _, fn := range c.callbacks {
		fn()
	}
	return nil
}

// OnReload 注册重新加载后的回调
func (c *configuration) OnReload(fn func()) {
	c.mu.Lock()
	c.callbacks = append(c.callbacks, fn)
	c.mu.Unlock()
}

func (c *configuration) Get(key string) string {
	switch v := c.lookup(key).(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func (c *configuration) GetWithDefault(key, defaultValue string) string {
	if v := c.Get(key); v != "" {
		return v
	}
	return defaultValue
}

func (c *configuration) GetInt(key string) (int, error) {
	v, err := c.scalar(key)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case string:
		return strconv.Atoi(n)
	}
	return 0, fmt.Errorf("config: %s: cannot convert %v to int", key, v)
}

func (c *configuration) GetBool(key string) (bool, error) {
	v, err := c.scalar(key)
	if err != nil {
		return false, err
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		return strconv.ParseBool(b)
	}
	return false, fmt.Errorf("config: %s: cannot convert %v to bool", key, v)
}

func (c *configuration) GetDuration(key string) (time.Duration, error) {
	v, err := c.scalar(key)
	if err != nil {
		return 0, err
	}
	switch d := v.(type) {
	case string:
		return time.ParseDuration(d)
	case int:
		return time.Duration(d) * time.Second, nil
	case float64:
		return time.Duration(d * float64(time.Second)), nil
	}
	return 0, fmt.Errorf("config: %s: cannot convert %v to duration", key, v)
}

func (c *configuration) scalar(key string) (any, error) {
	v := c.lookup(key)
	if v == nil {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return v, nil
}

func (c *configuration) GetSection(key string) Configuration {
	m, _ := c.lookup(key).(map[string]any)
	if m == nil {
		m = make(map[string]any)
	}
	return newSection(m)
}

// Bind 通过 JSON 往返把配置绑定到结构体，字段名匹配不区分大小写
func (c *configuration) Bind(key string, target any) error {
	data := c.lookup(key)
	if data == nil {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}
	return nil
}

func (c *configuration) GetAll() map[string]any {
	result := make(map[string]any)
	mergeMaps(result, c.store.Load())
	return result
}

// lookup 按路径逐级查找，key 为空时返回根节点
func (c *configuration) lookup(key string) any {
	var current any = c.store.Load()
	if key == "" {
		return current
	}
	for _, part := range segments.Get(key) {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = m[part]
	}
	return current
}

// mergeMaps 把 src 深度合并进 dst，嵌套的 map 会被复制而不是共享
func mergeMaps(dst, src map[string]any) {
	for k, v := range src {
		child, ok := v.(map[string]any)
		if !ok {
			dst[k] = v
			continue
		}
		target, ok := dst[k].(map[string]any)
		if !ok {
			target = make(map[string]any, len(child))
			dst[k] = target
		}
		mergeMaps(target, child)
	}
}
