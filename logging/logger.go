package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel 日志级别
type LogLevel int

const (
	LogLevelTrace LogLevel = iota
	LogLevelDebug
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	LogLevelFatal
)

// String 返回日志级别的字符串表示
func (l LogLevel) String() string {
	switch l {
	case LogLevelTrace:
		return "TRACE"
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	case LogLevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel 解析日志级别名称（不区分大小写）
func ParseLevel(s string) (LogLevel, error) {
	for l := LogLevelTrace; l <= LogLevelFatal; l++ {
		if strings.EqualFold(s, l.String()) {
			return l, nil
		}
	}
	if strings.EqualFold(s, "warning") {
		return LogLevelWarn, nil
	}
	return LogLevelInfo, fmt.Errorf("logging: unknown level %q", s)
}

// traceLevel 是 zap 中低于 Debug 的自定义级别
const traceLevel = zapcore.DebugLevel - 1

func (l LogLevel) zap() zapcore.Level {
	switch l {
	case LogLevelTrace:
		return traceLevel
	case LogLevelDebug:
		return zapcore.DebugLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelError:
		return zapcore.ErrorLevel
	case LogLevelFatal:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func fromZap(l zapcore.Level) LogLevel {
	switch {
	case l < zapcore.DebugLevel:
		return LogLevelTrace
	case l == zapcore.DebugLevel:
		return LogLevelDebug
	case l == zapcore.InfoLevel:
		return LogLevelInfo
	case l == zapcore.WarnLevel:
		return LogLevelWarn
	case l < zapcore.FatalLevel:
		return LogLevelError
	default:
		return LogLevelFatal
	}
}

// Field 日志字段
type Field struct {
	Key   string
	Value any
}

// Logger 日志接口（类似于 .NET Core ILogger）
type Logger interface {
	Trace(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)
	Log(level LogLevel, msg string, fields ...Field)
	WithFields(fields ...Field) Logger
	WithCategory(category string) Logger
}

// LoggerFactory 日志工厂接口
type LoggerFactory interface {
	CreateLogger(category string) Logger
	SetMinimumLevel(level LogLevel)
	Sync() error
}

// loggerFactory 共享同一个 zap core 和可调整的级别
type loggerFactory struct {
	base  *zap.Logger
	level zap.AtomicLevel
}

func (f *loggerFactory) CreateLogger(category string) Logger {
	return newZapLogger(f.base, category)
}

func (f *loggerFactory) SetMinimumLevel(level LogLevel) {
	f.level.SetLevel(level.zap())
}

func (f *loggerFactory) Sync() error {
	return f.base.Sync()
}

// zapLogger 基于 zap 的 Logger 实现。
// base 携带字段但不带名称，类别通过 Named 附加。
type zapLogger struct {
	base     *zap.Logger
	named    *zap.Logger
	category string
}

func newZapLogger(base *zap.Logger, category string) *zapLogger {
	named := base
	if category != "" {
		named = base.Named(category)
	}
	return &zapLogger{base: base, named: named, category: category}
}

// FromZap 把现有的 *zap.Logger 包装为 Logger
func FromZap(z *zap.Logger) Logger {
	return newZapLogger(z, "")
}

// NewNop 返回丢弃所有日志的 Logger
func NewNop() Logger {
	return newZapLogger(zap.NewNop(), "")
}

func (l *zapLogger) Trace(msg string, fields ...Field) {
	l.Log(LogLevelTrace, msg, fields...)
}

func (l *zapLogger) Debug(msg string, fields ...Field) {
	l.Log(LogLevelDebug, msg, fields...)
}

func (l *zapLogger) Info(msg string, fields ...Field) {
	l.Log(LogLevelInfo, msg, fields...)
}

func (l *zapLogger) Warn(msg string, fields ...Field) {
	l.Log(LogLevelWarn, msg, fields...)
}

func (l *zapLogger) Error(msg string, fields ...Field) {
	l.Log(LogLevelError, msg, fields...)
}

// Fatal 记录日志后退出进程
func (l *zapLogger) Fatal(msg string, fields ...Field) {
	l.Log(LogLevelFatal, msg, fields...)
}

func (l *zapLogger) Log(level LogLevel, msg string, fields ...Field) {
	if ce := l.named.Check(level.zap(), msg); ce != nil {
		ce.Write(zapFields(fields)...)
	}
}

func (l *zapLogger) WithFields(fields ...Field) Logger {
	return newZapLogger(l.base.With(zapFields(fields)...), l.category)
}

func (l *zapLogger) WithCategory(category string) Logger {
	return newZapLogger(l.base, category)
}

func zapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		if err, ok := f.Value.(error); ok {
			out[i] = zap.NamedError(f.Key, err)
			continue
		}
		out[i] = zap.Any(f.Key, f.Value)
	}
	return out
}
