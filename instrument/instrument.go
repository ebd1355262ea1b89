// Package instrument 定义期权合约及其基于价格路径的收益计算。
package instrument

import (
	"math"
	"strings"
	"time"

	"github.com/wyfcoding/quant/money"
	"github.com/wyfcoding/quant/xerrors"
)

// Instrument 蒙特卡洛引擎所依赖的唯一合约抽象。
type Instrument interface {
	// CalculatePayoff 根据完整的价格路径计算结算现金流.
	CalculatePayoff(path []float64) (money.CashFlow, error)
	SettlementTime() time.Time
	UnderlyingCurrency() money.Currency
}

// OptionType 期权方向.
type OptionType string

const (
	Call OptionType = "CALL"
	Put  OptionType = "PUT"
)

// ParseOptionType 解析期权类型，忽略大小写.
func ParseOptionType(s string) (OptionType, error) {
	switch OptionType(strings.ToUpper(strings.TrimSpace(s))) {
	case Call:
		return Call, nil
	case Put:
		return Put, nil
	default:
		return "", xerrors.Derive(xerrors.ErrInvalidOptionType, "type=%q", s)
	}
}

// Payoff 欧式收益: 看涨 max(S-K, 0)，看跌 max(K-S, 0).
func Payoff(t OptionType, spot, strike float64) float64 {
	if t == Put {
		return math.Max(strike-spot, 0)
	}
	return math.Max(spot-strike, 0)
}

// OptionSpec 期权合约的公共条款.
type OptionSpec struct {
	ExerciseTime   time.Time
	SettlementTime time.Time
	Strike         float64
	Type           OptionType
	Currency       money.Currency
}

// cashFlow 以合约的币种和结算时间包装金额.
func (o OptionSpec) cashFlow(amount float64) money.CashFlow {
	return money.New(amount, o.Currency, o.SettlementTime)
}

func terminal(path []float64) (float64, error) {
	if len(path) == 0 {
		return 0, xerrors.Derive(xerrors.ErrEmptyPath, "path has no prices")
	}
	return path[len(path)-1], nil
}
