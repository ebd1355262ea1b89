// Package logging 提供统一的结构化日志（slog）封装，支持 OpenTelemetry 追踪上下文注入和日志文件切割。
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// defaultLogger 全局默认 Logger，单例。
	defaultLogger *Logger
	mu            sync.RWMutex
)

// Config 定义日志配置
type Config struct {
	Service    string `mapstructure:"service"`
	Module     string `mapstructure:"module"`
	Level      string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	File       string `mapstructure:"file"`        // 日志文件路径，为空则只输出到 stdout
	MaxSize    int    `mapstructure:"max_size"`    // 每个日志文件最大尺寸 (MB)
	MaxBackups int    `mapstructure:"max_backups"` // 保留旧日志文件的最大个数
	MaxAge     int    `mapstructure:"max_age"`     // 保留旧日志文件的最大天数
	Compress   bool   `mapstructure:"compress"`    // 是否压缩旧日志
	Console    bool   `mapstructure:"console"`     // 写文件的同时输出到 stdout
}

// Logger 封装 *slog.Logger，附带服务名、模块名和可在运行时调整的级别。
type Logger struct {
	*slog.Logger
	Service string
	Module  string
	level   *slog.LevelVar
}

// TraceHandler 从 context 中提取 trace_id 和 span_id 注入日志记录。
type TraceHandler struct {
	slog.Handler
}

// Handle 实现 slog.Handler。
func (h *TraceHandler) Handle(ctx context.Context, r slog.Record) error {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		)
	}
	return h.Handler.Handle(ctx, r)
}

// WithAttrs 保持装饰器不被 With 调用剥离。
func (h *TraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TraceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *TraceHandler) WithGroup(name string) slog.Handler {
	return &TraceHandler{Handler: h.Handler.WithGroup(name)}
}

// ParseLevel 未知级别按 info 处理。
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewFromConfig 创建 Logger，配置了 File 时使用 lumberjack 切割，Console 为 true 时同时输出到 stdout。
func NewFromConfig(cfg Config) *Logger {
	if cfg.File == "" {
		return NewWithWriter(cfg, os.Stdout)
	}
	writers := []io.Writer{&lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}}
	if cfg.Console {
		writers = append(writers, os.Stdout)
	}
	return NewWithWriter(cfg, writers...)
}

// NewWithWriter 输出到任意 writer，多个 writer 时每个目标各自一个 JSON handler。
func NewWithWriter(cfg Config, writers ...io.Writer) *Logger {
	level := new(slog.LevelVar)
	level.Set(ParseLevel(cfg.Level))

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Key = "timestamp"
			}
			return a
		},
	}

	handlers := make([]slog.Handler, 0, len(writers))
	for _, w := range writers {
		handlers = append(handlers, slog.NewJSONHandler(w, opts))
	}
	var handler slog.Handler
	switch len(handlers) {
	case 0:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	case 1:
		handler = handlers[0]
	default:
		handler = newMultiHandler(handlers...)
	}

	logger := slog.New(&TraceHandler{Handler: handler}).With(
		slog.String("service", cfg.Service),
		slog.String("module", cfg.Module),
	)

	return &Logger{
		Logger:  logger,
		Service: cfg.Service,
		Module:  cfg.Module,
		level:   level,
	}
}

// SetLevel 运行时调整级别，配置热更新时调用。
func (l *Logger) SetLevel(level string) {
	l.level.Set(ParseLevel(level))
}

// Level 当前级别。
func (l *Logger) Level() slog.Level {
	return l.level.Level()
}

// With 返回带附加属性的子 Logger，与父 Logger 共享级别。
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger:  l.Logger.With(args...),
		Service: l.Service,
		Module:  l.Module,
		level:   l.level,
	}
}

// SetDefault 设置全局默认 Logger 并接管 slog 默认输出。
func SetDefault(l *Logger) {
	mu.Lock()
	defaultLogger = l
	mu.Unlock()
	slog.SetDefault(l.Logger)
}

// InitLogger 按配置初始化全局默认 Logger。
func InitLogger(cfg Config) *Logger {
	l := NewFromConfig(cfg)
	SetDefault(l)
	return l
}

// Default 返回默认 Logger，未初始化时惰性创建。
func Default() *Logger {
	mu.RLock()
	l := defaultLogger
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if defaultLogger == nil {
		defaultLogger = NewFromConfig(Config{Service: "default", Module: "default", Level: "info"})
	}
	return defaultLogger
}

// SetLevel 调整默认 Logger 的级别。
func SetLevel(level string) {
	Default().SetLevel(level)
}

func Info(ctx context.Context, msg string, args ...any) {
	Default().InfoContext(ctx, msg, args...)
}

func Warn(ctx context.Context, msg string, args ...any) {
	Default().WarnContext(ctx, msg, args...)
}

func Error(ctx context.Context, msg string, args ...any) {
	Default().ErrorContext(ctx, msg, args...)
}

func Debug(ctx context.Context, msg string, args ...any) {
	Default().DebugContext(ctx, msg, args...)
}

// LogDuration 记录操作耗时
func LogDuration(ctx context.Context, operation string, args ...any) func() {
	start := time.Now()
	return func() {
		logArgs := append(args, "duration", time.Since(start))
		Info(ctx, fmt.Sprintf("%s finished", operation), logArgs...)
	}
}
