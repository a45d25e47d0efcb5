package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ConsoleLoggerOptions 控制台日志选项
type ConsoleLoggerOptions struct {
	IncludeTimestamp bool
	TimestampFormat  string
	ColorOutput      bool
	Output           io.Writer
}

// FileLoggerOptions 文件日志选项（JSON 格式，追加写入）
type FileLoggerOptions struct {
	Path string
}

// LoggingBuilder 日志构建器
type LoggingBuilder struct {
	cores        []func(level zap.AtomicLevel) (zapcore.Core, error)
	minimumLevel LogLevel
	mu           sync.RWMutex
}

// NewLoggingBuilder 创建日志构建器
func NewLoggingBuilder() *LoggingBuilder {
	return &LoggingBuilder{
		minimumLevel: LogLevelInfo,
	}
}

// SetMinimumLevel 设置最小日志级别
func (b *LoggingBuilder) SetMinimumLevel(level LogLevel) *LoggingBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.minimumLevel = level
	return b
}

// AddCore 添加自定义 zap core，仍受最小日志级别约束
func (b *LoggingBuilder) AddCore(core zapcore.Core) *LoggingBuilder {
	return b.add(func(level zap.AtomicLevel) (zapcore.Core, error) {
		return levelFilter{Core: core, level: level}, nil
	})
}

// AddConsole 添加控制台日志
func (b *LoggingBuilder) AddConsole(options ...ConsoleLoggerOptions) *LoggingBuilder {
	opts := ConsoleLoggerOptions{
		IncludeTimestamp: true,
		TimestampFormat:  "2006-01-02 15:04:05",
		ColorOutput:      true,
		Output:           os.Stdout,
	}
	if len(options) > 0 {
		opts = options[0]
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return b.add(func(level zap.AtomicLevel) (zapcore.Core, error) {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = encodeLevel(opts.ColorOutput)
		cfg.CallerKey = zapcore.OmitKey
		cfg.StacktraceKey = zapcore.OmitKey
		if opts.IncludeTimestamp {
			cfg.EncodeTime = zapcore.TimeEncoderOfLayout(opts.TimestampFormat)
		} else {
			cfg.TimeKey = zapcore.OmitKey
		}
		return zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.Lock(zapcore.AddSync(opts.Output)), level), nil
	})
}

// AddFile 添加文件日志
func (b *LoggingBuilder) AddFile(path string, options ...FileLoggerOptions) *LoggingBuilder {
	opts := FileLoggerOptions{Path: path}
	if len(options) > 0 {
		opts = options[0]
	}

	return b.add(func(level zap.AtomicLevel) (zapcore.Core, error) {
		file, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("logging: open %s: %w", opts.Path, err)
		}
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeLevel = encodeLevel(false)
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.NameKey = "category"
		return zapcore.NewCore(zapcore.NewJSONEncoder(cfg), zapcore.Lock(file), level), nil
	})
}

func (b *LoggingBuilder) add(core func(zap.AtomicLevel) (zapcore.Core, error)) *LoggingBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cores = append(b.cores, core)
	return b
}

// Build 构建日志工厂
func (b *LoggingBuilder) Build() (LoggerFactory, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	level := zap.NewAtomicLevelAt(b.minimumLevel.zap())
	cores := make([]zapcore.Core, 0, len(b.cores))
	for _, build := range b.cores {
		core, err := build(level)
		if err != nil {
			return nil, err
		}
		cores = append(cores, core)
	}

	return &loggerFactory{
		base:  zap.New(zapcore.NewTee(cores...)),
		level: level,
	}, nil
}

// encodeLevel 输出与 LogLevel.String 一致的级别名称，包括 TRACE
func encodeLevel(color bool) zapcore.LevelEncoder {
	return func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		name := fromZap(l).String()
		if color {
			name = colorize(fromZap(l), name)
		}
		enc.AppendString(name)
	}
}

// colorize 为日志级别添加颜色
func colorize(level LogLevel, text string) string {
	const (
		reset   = "\033[0m"
		gray    = "\033[90m"
		cyan    = "\033[36m"
		green   = "\033[32m"
		yellow  = "\033[33m"
		red     = "\033[31m"
		magenta = "\033[35m"
	)

	var color string
	switch level {
	case LogLevelTrace:
		color = gray
	case LogLevelDebug:
		color = cyan
	case LogLevelInfo:
		color = green
	case LogLevelWarn:
		color = yellow
	case LogLevelError:
		color = red
	case LogLevelFatal:
		color = magenta
	default:
		return text
	}
	return color + text + reset
}

// levelFilter 让外部 core 也遵循工厂的最小级别
type levelFilter struct {
	zapcore.Core
	level zap.AtomicLevel
}

func (c levelFilter) Enabled(l zapcore.Level) bool {
	return c.level.Enabled(l) && c.Core.Enabled(l)
}

func (c levelFilter) With(fields []zapcore.Field) zapcore.Core {
	return levelFilter{Core: c.Core.With(fields), level: c.level}
}

func (c levelFilter) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.level.Enabled(e.Level) {
		return ce
	}
	return c.Core.Check(e, ce)
}
