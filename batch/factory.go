// Package batch 把配置中的定价任务转换为随机过程与合约，并在任务池中批量定价.
package batch

import (
	"fmt"
	"strings"
	"time"

	"github.com/wyfcoding/quant/analytic"
	"github.com/wyfcoding/quant/config"
	"github.com/wyfcoding/quant/instrument"
	"github.com/wyfcoding/quant/money"
	"github.com/wyfcoding/quant/montecarlo"
	"github.com/wyfcoding/quant/process"
	"github.com/wyfcoding/quant/xerrors"
)

// NewProcess 按 kind 构造随机过程.
func NewProcess(cfg config.ProcessConfig) (process.Simulator, error) {
	if err := checkProcess(cfg); err != nil {
		return nil, err
	}
	switch strings.ToLower(cfg.Kind) {
	case "gbm":
		return process.NewGBMProcess(cfg.S0, cfg.R, cfg.Sigma, cfg.T), nil
	case "heston":
		return process.NewHestonProcess(process.HestonModel{
			S0:     cfg.S0,
			V0:     cfg.V0,
			R:      cfg.R,
			Kappa:  cfg.Kappa,
			Theta:  cfg.Theta,
			SigmaV: cfg.SigmaV,
			Rho:    cfg.Rho,
			T:      cfg.T,
		}), nil
	default:
		return nil, xerrors.Derive(xerrors.ErrUnsupportedProcess, "kind=%q", cfg.Kind)
	}
}

// checkProcess 拒绝会让路径退化为 NaN 或无意义的参数，未经 config.Validate 的调用方同样受保护.
func checkProcess(cfg config.ProcessConfig) error {
	var detail string
	switch {
	case cfg.S0 <= 0:
		detail = fmt.Sprintf("s0=%v must be positive", cfg.S0)
	case cfg.T <= 0:
		detail = fmt.Sprintf("t=%v must be positive", cfg.T)
	case cfg.Sigma < 0, cfg.V0 < 0, cfg.SigmaV < 0:
		detail = fmt.Sprintf("sigma=%v v0=%v sigma_v=%v must not be negative", cfg.Sigma, cfg.V0, cfg.SigmaV)
	case cfg.Rho < -1 || cfg.Rho > 1:
		detail = fmt.Sprintf("rho=%v out of [-1, 1]", cfg.Rho)
	default:
		return nil
	}
	return xerrors.InvalidArg("invalid process parameters").
		WithDetail("%s", detail).
		WithContext("kind", cfg.Kind)
}

// NewInstrument 按 kind 构造合约，行权和结算时间相对 now 计算.
func NewInstrument(cfg config.InstrumentConfig, now time.Time) (instrument.Instrument, error) {
	ccy, err := money.ParseCurrency(cfg.Currency)
	if err != nil {
		return nil, err
	}
	exercise := now.Add(cfg.ExerciseAfter)
	settlement := now.Add(cfg.SettlementAfter)

	kind := strings.ToLower(cfg.Kind)
	if kind == "expression" {
		return instrument.NewExpressionOption(cfg.Expression, cfg.Strike, exercise, settlement, ccy)
	}

	typ, err := instrument.ParseOptionType(cfg.OptionType)
	if err != nil {
		return nil, err
	}

	switch kind {
	case "vanilla":
		return instrument.NewVanillaOption(cfg.Strike, exercise, settlement, typ, ccy), nil
	case "barrier":
		bt, err := instrument.ParseBarrierType(cfg.BarrierType)
		if err != nil {
			return nil, err
		}
		return instrument.NewBarrierOption(cfg.Strike, exercise, settlement, typ, ccy,
			instrument.Barrier{Type: bt, Level: cfg.BarrierLevel}), nil
	default:
		return nil, xerrors.Derive(xerrors.ErrUnsupportedInstrument, "kind=%q", cfg.Kind)
	}
}

// Benchmark GBM 下欧式期权的 Black-Scholes 闭式价格 (连续复利，以过程利率折现).
// 其他组合没有闭式解，返回 false.
func Benchmark(job config.JobConfig) (float64, bool) {
	if !strings.EqualFold(job.Process.Kind, "gbm") || !strings.EqualFold(job.Instrument.Kind, "vanilla") {
		return 0, false
	}
	typ, err := instrument.ParseOptionType(job.Instrument.OptionType)
	if err != nil {
		return 0, false
	}
	res, err := analytic.BlackScholes(analytic.Inputs{
		Type:       typ,
		Spot:       job.Process.S0,
		Strike:     job.Instrument.Strike,
		Rate:       job.Process.R,
		Volatility: job.Process.Sigma,
		Expiry:     job.Process.T,
	})
	if err != nil {
		return 0, false
	}
	return res.Price, true
}

// NewEngine 按引擎配置创建定价引擎，Seed 为 0 时使用系统熵.
func NewEngine(cfg config.EngineConfig, opts ...montecarlo.Option) *montecarlo.Engine {
	base := []montecarlo.Option{montecarlo.WithWorkers(cfg.Workers)}
	if cfg.Seed != 0 {
		base = append(base, montecarlo.WithSeed(cfg.Seed))
	}
	return montecarlo.NewEngine(append(base, opts...)...)
}
