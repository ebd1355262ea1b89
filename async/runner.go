// Package async 提供带 panic 恢复的 goroutine 启动工具。
package async

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
)

var (
	// ErrPanicRecovered 表示异步任务中恢复的 panic。
	ErrPanicRecovered = errors.New("async task panic recovered")
)

// Runner 定义了安全的并发执行器接口。
type Runner interface {
	// Go 安全地启动一个 goroutine，自动处理 panic。
	Go(fn func())
	// GoWithContext 安全地启动一个 goroutine，并注入 context。
	GoWithContext(ctx context.Context, fn func(ctx context.Context))
}

type defaultRunner struct {
	logger func() *slog.Logger
}

// DefaultRunner 在 panic 时记录到当前的 slog 默认 Logger。
var DefaultRunner Runner = &defaultRunner{logger: slog.Default}

func (r *defaultRunner) Go(fn func()) {
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				r.logPanic(rec)
			}
		}()
		fn()
	}()
}

func (r *defaultRunner) GoWithContext(ctx context.Context, fn func(ctx context.Context)) {
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				r.logPanic(rec)
			}
		}()
		fn(ctx)
	}()
}

func (r *defaultRunner) logPanic(rec any) {
	err := fmt.Errorf("%w: %v", ErrPanicRecovered, rec)
	r.logger().Error("async task panic recovered", "error", err, "stack", string(debug.Stack()))
}

// SafeGo 是 DefaultRunner.Go 的快捷方式。
func SafeGo(fn func()) {
	DefaultRunner.Go(fn)
}

// Recover 同步执行 fn，把 panic 转换为包装了 ErrPanicRecovered 的错误。
// 用于 errgroup 等自行管理 goroutine 的场景。
func Recover(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Default().Error("task panic recovered", "panic", rec, "stack", string(debug.Stack()))
			err = fmt.Errorf("%w: %v", ErrPanicRecovered, rec)
		}
	}()
	return fn()
}
