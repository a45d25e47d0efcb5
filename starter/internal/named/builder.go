package named

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gocrud/beans/config"
)

var validate = validator.New()

// Builder 收集具名客户端配置，Add 时填充默认值并按 validate 标签校验
type Builder[O any] struct {
	// Config 供 FromConfig 类选项读取，由 starter 在运行时设置
	Config config.Configuration

	kind     string
	defaults func(name string) *O
	configs  []*O
	names    map[string]bool
	errs     []error
}

// NewBuilder 创建构建器，defaults 返回指定名称的默认配置
func NewBuilder[O any](kind string, defaults func(name string) *O) *Builder[O] {
	return &Builder[O]{kind: kind, defaults: defaults, names: make(map[string]bool)}
}

// Add 添加一个配置
func (b *Builder[O]) Add(name string, configure func(*O)) {
	if b.names[name] {
		b.Fail(fmt.Errorf("%s '%s' already configured", b.kind, name))
		return
	}

	opts := b.defaults(name)
	if configure != nil {
		configure(opts)
	}
	if err := Validate(opts); err != nil {
		b.Fail(fmt.Errorf("invalid %s configuration for '%s': %w", b.kind, name, err))
		return
	}

	b.names[name] = true
	b.configs = append(b.configs, opts)
}

// Fail 记录一个配置错误，Configs 时统一返回
func (b *Builder[O]) Fail(err error) {
	b.errs = append(b.errs, err)
}

// Configs 返回按添加顺序排列的配置
func (b *Builder[O]) Configs() ([]*O, error) {
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("%s configuration errors: %w", b.kind, errors.Join(b.errs...))
	}
	return b.configs, nil
}

// FromConfig 读取配置节，每个子键按名称排序后交给 add。节不存在时什么也不做
func FromConfig[T any, O any](b *Builder[O], section string, add func(name string, c T) error) {
	if b.Config == nil {
		b.Fail(fmt.Errorf("%s: section '%s': configuration is not available", b.kind, section))
		return
	}
	entries, err := config.Load[map[string]T](b.Config, section)
	if err != nil {
		if !errors.Is(err, config.ErrKeyNotFound) {
			b.Fail(fmt.Errorf("%s: section '%s': %w", b.kind, section, err))
		}
		return
	}
	for _, name := range slices.Sorted(maps.Keys(entries)) {
		if err := add(name, entries[name]); err != nil {
			b.Fail(fmt.Errorf("%s: section '%s.%s': %w", b.kind, section, name, err))
		}
	}
}

// ParseDuration 解析配置中的时长字符串，空字符串保留 dst 原值
func ParseDuration(s string, dst *time.Duration) error {
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

// Validate 按 validate 标签校验 v，错误信息使用字段名
func Validate(v any) error {
	err := validate.Struct(v)
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "gt":
			msgs = append(msgs, fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param()))
		case "gte", "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
