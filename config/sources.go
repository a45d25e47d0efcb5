package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	clientv3 "go.etcd.io/etcd/client/v3"
	"gopkg.in/yaml.v3"
)

// AddFile 添加文件配置源，格式由扩展名决定（.json 为 JSON，其余按 YAML）
func (b *ConfigurationBuilder) AddFile(path string, optional ...bool) *ConfigurationBuilder {
	format := FormatYAML
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = FormatJSON
	}
	return b.Add(&FileSource{Path: path, Format: format, Optional: len(optional) > 0 && optional[0]})
}

// AddJsonFile 添加 JSON 文件配置源
func (b *ConfigurationBuilder) AddJsonFile(path string, optional ...bool) *ConfigurationBuilder {
	return b.Add(&FileSource{Path: path, Format: FormatJSON, Optional: len(optional) > 0 && optional[0]})
}

// AddYamlFile 添加 YAML 文件配置源
func (b *ConfigurationBuilder) AddYamlFile(path string, optional ...bool) *ConfigurationBuilder {
	return b.Add(&FileSource{Path: path, Format: FormatYAML, Optional: len(optional) > 0 && optional[0]})
}

// AddEnvironmentVariables 添加环境变量配置源
func (b *ConfigurationBuilder) AddEnvironmentVariables(prefix string) *ConfigurationBuilder {
	return b.Add(&EnvironmentVariableSource{Prefix: prefix})
}

// AddDotenv 添加 .env 文件配置源，不存在的文件会被跳过
func (b *ConfigurationBuilder) AddDotenv(prefix string, paths ...string) *ConfigurationBuilder {
	return b.Add(&DotenvSource{Prefix: prefix, Paths: paths, Optional: true})
}

// AddInMemory 添加内存配置源
func (b *ConfigurationBuilder) AddInMemory(data map[string]any) *ConfigurationBuilder {
	return b.Add(&InMemorySource{Data: data})
}

// AddEtcd 添加 etcd 配置源，超时默认 5 秒
func (b *ConfigurationBuilder) AddEtcd(opts EtcdOptions) *ConfigurationBuilder {
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}
	return b.Add(&EtcdSource{Options: opts})
}

// 文件格式
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// FileSource 文件配置源
type FileSource struct {
	Path     string
	Format   string
	Optional bool // 文件不存在时返回空配置
}

func (s *FileSource) Name() string {
	return fmt.Sprintf("%sFile(%s)", strings.ToUpper(s.Format), s.Path)
}

func (s *FileSource) Load() (map[string]any, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if s.Optional && errors.Is(err, fs.ErrNotExist) {
			return make(map[string]any), nil
		}
		return nil, err
	}

	result := make(map[string]any)
	switch s.Format {
	case FormatJSON:
		err = json.Unmarshal(data, &result)
	case FormatYAML:
		err = yaml.Unmarshal(data, &result)
	default:
		return nil, fmt.Errorf("unsupported config format %q", s.Format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.Format, err)
	}
	if result == nil {
		// 空文件或只有注释
		result = make(map[string]any)
	}
	return result, nil
}

// EnvironmentVariableSource 环境变量配置源
// BEANS_LOGLEVEL=debug 映射为 beans:loglevel
type EnvironmentVariableSource struct {
	Prefix string
}

func (s *EnvironmentVariableSource) Name() string {
	return fmt.Sprintf("EnvironmentVariables(%s)", s.Prefix)
}

func (s *EnvironmentVariableSource) Load() (map[string]any, error) {
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		if key, value, ok := strings.Cut(kv, "="); ok {
			vars[key] = value
		}
	}
	return nest(vars, s.Prefix), nil
}

// DotenvSource .env 文件配置源，键的转换规则与环境变量相同
type DotenvSource struct {
	Prefix   string
	Paths    []string // 默认 .env
	Optional bool
}

func (s *DotenvSource) Name() string {
	return fmt.Sprintf("Dotenv(%s)", strings.Join(s.Paths, ","))
}

func (s *DotenvSource) Load() (map[string]any, error) {
	paths := s.Paths
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	result := make(map[string]any)
	for _, path := range paths {
		vars, err := godotenv.Read(path)
		if err != nil {
			if s.Optional && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		mergeMaps(result, nest(vars, s.Prefix))
	}
	return result, nil
}

// InMemorySource 内存配置源
type InMemorySource struct {
	Data map[string]any
}

func (s *InMemorySource) Name() string {
	return "InMemory"
}

func (s *InMemorySource) Load() (map[string]any, error) {
	result := make(map[string]any)
	mergeMaps(result, s.Data)
	return result, nil
}

// nest 把 PREFIX_A_B=value 形式的变量转换为 a:b 嵌套配置，不带前缀的变量被忽略
func nest(vars map[string]string, prefix string) map[string]any {
	result := make(map[string]any)
	for key, value := range vars {
		rest, ok := strings.CutPrefix(key, prefix)
		if !ok {
			continue
		}
		rest = strings.Trim(rest, "_")
		if rest == "" {
			continue
		}
		path := strings.Split(strings.ToLower(rest), "_")
		put(result, path, parseScalar(value))
	}
	return result
}

// put 沿 path 创建中间节点并写入值，路径上遇到非 map 节点时放弃
func put(data map[string]any, path []string, value any) {
	current := data
	for _, part := range path[:len(path)-1] {
		next, exists := current[part]
		if !exists {
			next = make(map[string]any)
			current[part] = next
		}
		m, ok := next.(map[string]any)
		if !ok {
			return
		}
		current = m
	}
	current[path[len(path)-1]] = value
}

// parseScalar 把字符串转换为整数、浮点数或布尔值，都不是时保留原样
func parseScalar(s string) any {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

// EtcdOptions etcd 配置源选项
type EtcdOptions struct {
	Endpoints   []string
	Username    string
	Password    string
	Prefix      string        // 键前缀，/app/db/host 在前缀 /app 下映射为 db:host
	Timeout     time.Duration // 读取超时
	DialTimeout time.Duration
}

// EtcdSource etcd 配置源
type EtcdSource struct {
	Options EtcdOptions
}

func (s *EtcdSource) Name() string {
	return fmt.Sprintf("Etcd(%v)", s.Options.Endpoints)
}

func (s *EtcdSource) Load() (map[string]any, error) {
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   s.Options.Endpoints,
		Username:    s.Options.Username,
		Password:    s.Options.Password,
		DialTimeout: s.Options.DialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}
	defer cli.Close()

	ctx, cancel := context.WithTimeout(context.Background(), s.Options.Timeout)
	defer cancel()

	prefix := s.Options.Prefix
	if prefix == "" {
		prefix = "/"
	}
	resp, err := cli.Get(ctx, prefix, clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("failed to get config from etcd: %w", err)
	}

	result := make(map[string]any)
	for _, kv := range resp.Kvs {
		key := strings.Trim(strings.TrimPrefix(string(kv.Key), s.Options.Prefix), "/")
		if key == "" {
			continue
		}
		put(result, strings.Split(key, "/"), decodeValue(kv.Value))
	}
	return result, nil
}

// decodeValue 依次尝试 JSON、YAML，都失败时保留原始字符串
func decodeValue(raw []byte) any {
	var value any
	if err := json.Unmarshal(raw, &value); err == nil {
		return value
	}
	if err := yaml.Unmarshal(raw, &value); err == nil && value != nil {
		return value
	}
	return string(raw)
}
