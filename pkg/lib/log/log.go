// Package log 提供 go-happyeyeballs 统一日志接口
//
// 基于 Go 标准库 log/slog 封装，提供按组件打标签的日志 API。
//
// 环境变量配置:
//
//	EYEBALLS_LOG_LEVEL=debug   # debug | info | warn | error
//	EYEBALLS_LOG_FORMAT=json   # text | json
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// 日志级别常量（从 slog 导出，方便使用）
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// 环境变量名
const (
	EnvLogLevel  = "EYEBALLS_LOG_LEVEL"
	EnvLogFormat = "EYEBALLS_LOG_FORMAT"
)

// Format 日志输出格式
type Format int

const (
	// FormatText 文本格式（默认）
	FormatText Format = iota
	// FormatJSON JSON 格式
	FormatJSON
)

// Options 日志初始化选项
type Options struct {
	Level  slog.Level
	Format Format
	Output io.Writer
}

// Setup 按选项重建默认 logger
//
// 所有通过 Logger() 获取的 LazyLogger 会立即使用新的 handler。
func Setup(opts Options) {
	w := opts.Output
	if w == nil {
		w = os.Stderr
	}
	hopts := &slog.HandlerOptions{Level: opts.Level}

	var h slog.Handler
	switch opts.Format {
	case FormatJSON:
		h = slog.NewJSONHandler(w, hopts)
	default:
		h = slog.NewTextHandler(w, hopts)
	}
	slog.SetDefault(slog.New(h))
}

// SetupFromEnv 从环境变量初始化默认 logger
//
// 未设置的变量使用 fallback 中的值。
func SetupFromEnv(fallback Options) {
	opts := fallback
	if v := os.Getenv(EnvLogLevel); v != "" {
		if level, ok := ParseLevel(v); ok {
			opts.Level = level
		}
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		if format, ok := ParseFormat(v); ok {
			opts.Format = format
		}
	}
	Setup(opts)
}

// ParseLevel 解析日志级别名称
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// ParseFormat 解析日志格式名称
func ParseFormat(name string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "text", "":
		return FormatText, true
	case "json":
		return FormatJSON, true
	default:
		return FormatText, false
	}
}

// Discard 返回丢弃所有输出的 logger，主要用于测试
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ============================================================================
//                              LazyLogger
// ============================================================================

// LazyLogger 懒加载 logger
//
// 每次日志调用时都从 slog.Default() 获取最新的 handler，
// 支持在运行时动态切换日志输出目标。
//
// 使用方式：
//
//	var logger = log.Logger("eyeballs/race")
//	logger.Debug("候选地址连接中", "addr", addr)
type LazyLogger struct {
	component string
}

// Logger 返回带组件名的 LazyLogger
func Logger(component string) *LazyLogger {
	return &LazyLogger{component: component}
}

func (l *LazyLogger) base() *slog.Logger {
	return slog.Default().With("component", l.component)
}

// Debug 输出 Debug 级别日志
func (l *LazyLogger) Debug(msg string, args ...any) {
	l.base().Debug(msg, args...)
}

// Info 输出 Info 级别日志
func (l *LazyLogger) Info(msg string, args ...any) {
	l.base().Info(msg, args...)
}

// Warn 输出 Warn 级别日志
func (l *LazyLogger) Warn(msg string, args ...any) {
	l.base().Warn(msg, args...)
}

// Error 输出 Error 级别日志
func (l *LazyLogger) Error(msg string, args ...any) {
	l.base().Error(msg, args...)
}

// DebugContext 带 context 的 Debug 日志
func (l *LazyLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.base().DebugContext(ctx, msg, args...)
}

// WarnContext 带 context 的 Warn 日志
func (l *LazyLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.base().WarnContext(ctx, msg, args...)
}

// With 添加额外的属性
func (l *LazyLogger) With(args ...any) *slog.Logger {
	return l.base().With(args...)
}

// Component 返回组件名
func (l *LazyLogger) Component() string {
	return l.component
}
