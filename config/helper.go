package config

import (
	"errors"
	"fmt"

	"github.com/gocrud/beans/logging"
)

// Load 加载并绑定指定节的配置到结构体 T
// section 为空时绑定整个配置
func Load[T any](cfg Configuration, section string) (T, error) {
	var t T
	err := cfg.Bind(section, &t)
	return t, err
}

// FactoryOptions 是 beans 节下的容器配置
//
//	beans:
//	  loglevel: debug
//	  eager: true
//	  strict: true
//	  manifest: components.yaml
//	  watch: false
//	  metrics: beans
type FactoryOptions struct {
	LogLevel string `json:"logLevel"` // 容器日志级别
	Eager    bool   `json:"eager"`    // 启动时构建所有非 lazy 的共享组件
	Strict   bool   `json:"strict"`   // 启动前静态校验依赖
	Manifest string `json:"manifest"` // 组件清单文件路径
	Watch    bool   `json:"watch"`    // 监听清单文件并注册新增组件
	Metrics  string `json:"metrics"`  // Prometheus 指标命名空间，为空时不采集
}

// DefaultFactoryOptions 返回默认配置
func DefaultFactoryOptions() FactoryOptions {
	return FactoryOptions{LogLevel: "info", Eager: true, Strict: true}
}

// BindFactoryOptions 读取 beans 节，缺失的键保持默认值
func BindFactoryOptions(cfg Configuration) (FactoryOptions, error) {
	opts := DefaultFactoryOptions()
	if err := cfg.Bind("beans", &opts); err != nil && !errors.Is(err, ErrKeyNotFound) {
		return opts, fmt.Errorf("config: failed to bind section 'beans': %w", err)
	}
	if _, err := logging.ParseLevel(opts.LogLevel); err != nil {
		return opts, fmt.Errorf("config: %w", err)
	}
	return opts, nil
}

// Level 返回解析后的日志级别
func (o FactoryOptions) Level() logging.LogLevel {
	level, err := logging.ParseLevel(o.LogLevel)
	if err != nil {
		return logging.LogLevelInfo
	}
	return level
}
