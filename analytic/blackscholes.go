// Package analytic 提供 Black-Scholes 闭式解与 CRR 二叉树定价，用作蒙特卡洛结果的基准.
// 这里统一使用连续复利 exp(-rT) 折现，与 money.CashFlow 的年复利不同.
package analytic

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/wyfcoding/quant/instrument"
	"github.com/wyfcoding/quant/xerrors"
)

const daysPerYear = 365.25

// Inputs 欧式期权定价输入.
type Inputs struct {
	Type       instrument.OptionType
	Spot       float64
	Strike     float64
	Rate       float64 // 连续复利无风险利率
	Volatility float64
	Expiry     float64 // 年
}

// Result 价格与一阶/二阶敏感度.
type Result struct {
	Price float64
	Delta float64
	Gamma float64
	Vega  float64
	Theta float64 // 每年
	Rho   float64
}

// YearsBetween 以 365.25 天为一年计算两个时刻间的年数.
func YearsBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24 / daysPerYear
}

func (in Inputs) validate() error {
	if in.Spot <= 0 || in.Strike <= 0 || in.Expiry <= 0 || in.Volatility <= 0 {
		return xerrors.Derive(xerrors.ErrInvalidInput, "spot=%g strike=%g expiry=%g vol=%g",
			in.Spot, in.Strike, in.Expiry, in.Volatility)
	}
	if in.Type != instrument.Call && in.Type != instrument.Put {
		return xerrors.Derive(xerrors.ErrInvalidOptionType, "type=%q", in.Type)
	}
	return nil
}

// BlackScholes 计算欧式期权价格及 Greeks.
func BlackScholes(in Inputs) (Result, error) {
	if err := in.validate(); err != nil {
		return Result{}, err
	}

	n := distuv.UnitNormal
	sqrtT := math.Sqrt(in.Expiry)
	d1 := (math.Log(in.Spot/in.Strike) + (in.Rate+in.Volatility*in.Volatility/2)*in.Expiry) / (in.Volatility * sqrtT)
	d2 := d1 - in.Volatility*sqrtT
	df := math.Exp(-in.Rate * in.Expiry)
	pdf := n.Prob(d1)

	res := Result{
		Gamma: pdf / (in.Spot * in.Volatility * sqrtT),
		Vega:  in.Spot * pdf * sqrtT,
	}
	decay := -in.Spot * pdf * in.Volatility / (2 * sqrtT)

	if in.Type == instrument.Call {
		res.Price = in.Spot*n.CDF(d1) - in.Strike*df*n.CDF(d2)
		res.Delta = n.CDF(d1)
		res.Theta = decay - in.Rate*in.Strike*df*n.CDF(d2)
		res.Rho = in.Strike * in.Expiry * df * n.CDF(d2)
	} else {
		res.Price = in.Strike*df*n.CDF(-d2) - in.Spot*n.CDF(-d1)
		res.Delta = n.CDF(d1) - 1
		res.Theta = decay + in.Rate*in.Strike*df*n.CDF(-d2)
		res.Rho = -in.Strike * in.Expiry * df * n.CDF(-d2)
	}
	return res, nil
}
