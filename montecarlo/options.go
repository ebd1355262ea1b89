package montecarlo

import (
	"time"

	"github.com/wyfcoding/quant/logging"
)

// Option 定义引擎配置选项。
type Option func(*Engine)

// WithWorkers 设置并行 worker 数量，<= 0 时使用 GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithSeed 固定随机种子，worker i 使用 process.WorkerSeed(seed, i)，相同种子和 worker 数量下结果可复现.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.seed = seed
		e.seeded = true
	}
}

// WithValuationTime 固定估值时刻.
func WithValuationTime(t time.Time) Option {
	return func(e *Engine) {
		e.now = func() time.Time { return t }
	}
}

// WithClock 注入时钟，每次定价调用一次.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger 设置日志记录器.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithMetrics 注入引擎指标.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}
