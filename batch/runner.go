package batch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wyfcoding/quant/async"
	"github.com/wyfcoding/quant/config"
	"github.com/wyfcoding/quant/idgen"
	"github.com/wyfcoding/quant/logging"
	"github.com/wyfcoding/quant/metrics"
	"github.com/wyfcoding/quant/montecarlo"
	"github.com/wyfcoding/quant/worker"
	"github.com/wyfcoding/quant/xerrors"
)

// JobResult 单个任务的定价结果，Err 非空时 Result 为 nil.
type JobResult struct {
	Err       error
	Result    *montecarlo.Result
	RunID     string
	Name      string
	Benchmark float64
	HasBench  bool
}

// String 一行摘要，形如 "RUN1 atm-call USD 10.450583 se=0.4673 bs=10.4506".
func (r JobResult) String() string {
	if r.Err != nil {
		return fmt.Sprintf("%s %s error: %v", r.RunID, r.Name, r.Err)
	}
	line := fmt.Sprintf("%s %s %s se=%.4f", r.RunID, r.Name, r.Result.Price, r.Result.StandardError)
	if r.Result.VarianceFloors > 0 {
		line += fmt.Sprintf(" floors=%d", r.Result.VarianceFloors)
	}
	if r.HasBench {
		line += fmt.Sprintf(" bs=%.4f", r.Benchmark)
	}
	return line
}

// Runner 在固定大小的任务池中执行定价任务，每个任务内部再由引擎并行.
type Runner struct {
	engine atomic.Pointer[montecarlo.Engine]
	pool   *worker.Pool
	logger *logging.Logger
	now    func() time.Time
}

// RunnerOption 配置 Runner.
type RunnerOption func(*runnerOptions)

type runnerOptions struct {
	logger      *logging.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
	concurrency int
}

// WithConcurrency 同时执行的任务数.
func WithConcurrency(n int) RunnerOption {
	return func(o *runnerOptions) { o.concurrency = n }
}

// WithLogger 设置日志记录器.
func WithLogger(l *logging.Logger) RunnerOption {
	return func(o *runnerOptions) { o.logger = l }
}

// WithMetrics 为任务池注册 Prometheus 指标.
func WithMetrics(m *metrics.Metrics) RunnerOption {
	return func(o *runnerOptions) { o.metrics = m }
}

// WithClock 合约时间以该时钟为基准.
func WithClock(now func() time.Time) RunnerOption {
	return func(o *runnerOptions) { o.now = now }
}

// NewRunner 创建 Runner，使用完毕后调用 Close.
func NewRunner(engine *montecarlo.Engine, opts ...RunnerOption) *Runner {
	o := &runnerOptions{concurrency: 1, now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logging.Default()
	}
	if o.concurrency <= 0 {
		o.concurrency = 1
	}

	r := &Runner{
		logger: o.logger,
		now:    o.now,
		pool: worker.NewPool(
			worker.WithName("pricing-jobs"),
			worker.WithSize(o.concurrency),
			worker.WithQueueSize(o.concurrency),
			worker.WithLogger(o.logger.Logger),
			worker.WithMetrics(o.metrics),
		),
	}
	r.engine.Store(engine)
	return r
}

// UseEngine 替换后续任务使用的引擎，正在执行的任务不受影响.
func (r *Runner) UseEngine(engine *montecarlo.Engine) {
	r.engine.Store(engine)
}

// Run 执行全部任务，结果顺序与 jobs 一致. 单个任务失败不影响其他任务.
func (r *Runner) Run(ctx context.Context, jobs []config.JobConfig) []JobResult {
	runID := idgen.GenRunNo()
	results := make([]JobResult, len(jobs))
	defer logging.LogDuration(ctx, "pricing batch", "run_id", runID, "jobs", len(jobs))()

	var wg sync.WaitGroup
	for i, job := range jobs {
		results[i] = JobResult{RunID: runID, Name: job.Name}
		wg.Add(1)
		task := func(context.Context) {
			defer wg.Done()
			results[i] = r.runJob(ctx, runID, job)
		}
		if err := r.pool.Submit(task); err != nil {
			wg.Done()
			results[i].Err = err
		}
	}
	wg.Wait()
	return results
}

func (r *Runner) runJob(ctx context.Context, runID string, job config.JobConfig) JobResult {
	out := JobResult{RunID: runID, Name: job.Name}
	log := r.logger.With("run_id", runID, "job", job.Name)

	engine := r.engine.Load()
	err := async.Recover(func() error {
		proc, err := NewProcess(job.Process)
		if err != nil {
			return err
		}
		inst, err := NewInstrument(job.Instrument, r.now())
		if err != nil {
			return err
		}
		res, err := engine.Price(ctx, inst, proc, job.DiscountRate, job.Paths, job.Steps)
		if err != nil {
			return err
		}
		out.Result = res
		return nil
	})
	if err != nil {
		if _, ok := xerrors.FromError(err); !ok {
			err = xerrors.Internal("pricing job failed", err)
		}
		out.Err = err
		log.ErrorContext(ctx, "pricing job failed", "error", err)
		return out
	}

	out.Benchmark, out.HasBench = Benchmark(job)
	log.InfoContext(ctx, "pricing job finished", "price", out.Result.Price.String(),
		"std_error", out.Result.StandardError)
	return out
}

// Close 停止任务池.
func (r *Runner) Close() {
	r.pool.Stop()
}
