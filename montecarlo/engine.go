// Package montecarlo 组合随机过程与合约收益，用多条模拟路径估计现值.
package montecarlo

import (
	"context"
	"math"
	"runtime"
	"time"

	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/wyfcoding/quant/async"
	"github.com/wyfcoding/quant/instrument"
	"github.com/wyfcoding/quant/logging"
	"github.com/wyfcoding/quant/money"
	"github.com/wyfcoding/quant/process"
	"github.com/wyfcoding/quant/tracing"
	"github.com/wyfcoding/quant/xerrors"
)

// minParallelPaths 少于该路径数时只用一个 worker.
const minParallelPaths = 100

// Engine 蒙特卡洛定价引擎，可被多个 goroutine 并发使用.
type Engine struct {
	now     func() time.Time
	logger  *logging.Logger
	metrics *Metrics
	workers int
	seed    uint64
	seeded  bool
}

// NewEngine 创建引擎.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = NewEngine()

// MonteCarloPrice 使用默认引擎定价，只返回折现后的价格.
func MonteCarloPrice(ctx context.Context, inst instrument.Instrument, proc process.Simulator,
	annualDiscountRate float64, numberOfPaths, numberOfSteps int,
) (money.CashFlow, error) {
	res, err := defaultEngine.Price(ctx, inst, proc, annualDiscountRate, numberOfPaths, numberOfSteps)
	if err != nil {
		return money.CashFlow{}, err
	}
	return res.Price, nil
}

// partial 单个 worker 的累加结果.
type partial struct {
	sum    money.CashFlow
	stats  moments
	floors int
}

// Price 模拟 numberOfPaths 条路径并返回折现到估值时刻的平均收益.
// 任一路径出错时整个调用失败，不返回部分结果.
func (e *Engine) Price(ctx context.Context, inst instrument.Instrument, proc process.Simulator,
	annualDiscountRate float64, numberOfPaths, numberOfSteps int,
) (res *Result, err error) {
	procKind, instKind := kindOf(proc), kindOf(inst)
	start := time.Now()

	ctx, span := tracing.StartSpan(ctx, "montecarlo.Price")
	defer span.End()
	tracing.AddTag(ctx, "process", procKind)
	tracing.AddTag(ctx, "instrument", instKind)
	tracing.AddTag(ctx, "paths", numberOfPaths)
	tracing.AddTag(ctx, "steps", numberOfSteps)

	defer func() {
		if err != nil {
			tracing.SetError(ctx, err)
			e.observeFailure(err)
			e.log().ErrorContext(ctx, "monte carlo pricing failed",
				"process", procKind, "instrument", instKind, "error", err)
		}
	}()

	if numberOfPaths <= 0 {
		return nil, xerrors.Derive(xerrors.ErrZeroPaths, "paths=%d", numberOfPaths)
	}
	if numberOfSteps <= 0 {
		return nil, xerrors.Derive(xerrors.ErrZeroSteps, "steps=%d", numberOfSteps)
	}
	if err := ctx.Err(); err != nil {
		return nil, xerrors.Canceled(err)
	}

	workers := e.workerCount(numberOfPaths)
	parts, err := e.simulate(ctx, inst, proc, workers, numberOfPaths, numberOfSteps)
	if err != nil {
		return nil, err
	}

	// 固定按 worker 序号归并
	sum := parts[0].sum
	var pooled moments
	floors := 0
	for i, p := range parts {
		if i > 0 {
			if sum, err = sum.Add(p.sum); err != nil {
				return nil, err
			}
		}
		pooled.merge(p.stats)
		floors += p.floors
	}

	average, err := sum.Div(float64(numberOfPaths))
	if err != nil {
		return nil, err
	}
	valuation := e.now()
	price := average.ValueAtDate(valuation, annualDiscountRate)

	var stdErr float64
	if numberOfPaths > 1 {
		stdErr = stat.StdErr(pooled.stdDev(), float64(numberOfPaths)) *
			money.DiscountFactor(average.Settlement, valuation, annualDiscountRate)
	}

	res = &Result{
		Price:          price,
		StandardError:  stdErr,
		Paths:          numberOfPaths,
		Steps:          numberOfSteps,
		Workers:        workers,
		VarianceFloors: floors,
		Elapsed:        time.Since(start),
	}

	e.observe(res, procKind, instKind)
	tracing.AddTag(ctx, "price", price.Amount)
	if floors > 0 {
		e.log().WarnContext(ctx, "variance truncated at zero during simulation",
			"process", procKind, "floors", floors, "paths", numberOfPaths, "steps", numberOfSteps)
	}
	e.log().InfoContext(ctx, "monte carlo pricing finished",
		"process", procKind, "instrument", instKind, "price", price.String(),
		"std_error", stdErr, "workers", workers, "duration", res.Elapsed)

	return res, nil
}

// simulate 把路径按连续区间分给各 worker，第一个出错的 worker 取消其余 worker.
func (e *Engine) simulate(ctx context.Context, inst instrument.Instrument, proc process.Simulator,
	workers, numberOfPaths, numberOfSteps int,
) ([]partial, error) {
	parts := make([]partial, workers)
	g, gctx := errgroup.WithContext(ctx)

	base, rem := numberOfPaths/workers, numberOfPaths%workers
	for w := range workers {
		n := base
		if w < rem {
			n++
		}
		rnd := e.newRand(w)
		g.Go(func() error {
			return async.Recover(func() error {
				p, err := runWorker(gctx, inst, proc, rnd, n, numberOfSteps)
				if err != nil {
					return err
				}
				parts[w] = p
				return nil
			})
		})
	}

	if err := g.Wait(); err != nil {
		if _, ok := xerrors.FromError(err); !ok {
			return nil, xerrors.Internal("monte carlo worker failed", err)
		}
		return nil, err
	}
	return parts, nil
}

func runWorker(ctx context.Context, inst instrument.Instrument, proc process.Simulator,
	rnd *rand.Rand, paths, steps int,
) (partial, error) {
	statsProc, withStats := proc.(process.StatsSimulator)
	p := partial{stats: newMoments(min(paths, sampleChunk))}

	for i := range paths {
		if err := ctx.Err(); err != nil {
			return partial{}, xerrors.Canceled(err)
		}

		var path []float64
		if withStats {
			var st process.PathStats
			path, st = statsProc.GeneratePathWithStats(rnd, steps)
			p.floors += st.VarianceFloors
		} else {
			path = proc.GeneratePricePath(rnd, steps)
		}

		cf, err := inst.CalculatePayoff(path)
		if err != nil {
			return partial{}, err
		}
		if i == 0 {
			p.sum = cf
		} else if p.sum, err = p.sum.Add(cf); err != nil {
			return partial{}, err
		}
		p.stats.add(cf.Amount)
	}
	p.stats.flush()
	return p, nil
}

func (e *Engine) workerCount(paths int) int {
	if paths < minParallelPaths {
		return 1
	}
	w := e.workers
	if w <= 0 {
		w = runtime.GOMAXPROCS(0)
	}
	return max(1, min(w, paths))
}

func (e *Engine) newRand(worker int) *rand.Rand {
	if e.seeded {
		return process.NewSeededRand(process.WorkerSeed(e.seed, worker))
	}
	return process.NewRand()
}

func (e *Engine) log() *logging.Logger {
	if e.logger != nil {
		return e.logger
	}
	return logging.Default()
}

func (e *Engine) observe(res *Result, procKind, instKind string) {
	if e.metrics == nil {
		return
	}
	e.metrics.Paths.WithLabelValues(procKind, instKind).Add(float64(res.Paths))
	e.metrics.Duration.WithLabelValues(procKind, instKind).Observe(res.Elapsed.Seconds())
	if res.VarianceFloors > 0 {
		e.metrics.VarianceFloors.WithLabelValues(procKind).Add(float64(res.VarianceFloors))
	}
}

func (e *Engine) observeFailure(err error) {
	if e.metrics == nil {
		return
	}
	typ := xerrors.ErrUnknown
	if xe, ok := xerrors.FromError(err); ok {
		typ = xe.Type
	}
	e.metrics.Failures.WithLabelValues(typ.String()).Inc()
}

type kinder interface {
	Kind() string
}

func kindOf(v any) string {
	if k, ok := v.(kinder); ok {
		return k.Kind()
	}
	return "custom"
}

// Result 一次定价的结果与诊断信息.
type Result struct {
	Price          money.CashFlow // Settlement 为估值时刻
	StandardError  float64        // 折现后的标准误
	Paths          int
	Steps          int
	Workers        int
	VarianceFloors int
	Elapsed        time.Duration
}

// ConfidenceInterval 正态近似下的置信区间，z=1.96 对应 95%.
func (r *Result) ConfidenceInterval(z float64) (lo, hi float64) {
	half := math.Abs(z) * r.StandardError
	return r.Price.Amount - half, r.Price.Amount + half
}
