package instrument

import (
	"time"

	"github.com/wyfcoding/quant/money"
)

// VanillaOption 欧式期权，只看路径终点价格.
type VanillaOption struct {
	OptionSpec
}

// NewVanillaOption 创建欧式期权.
func NewVanillaOption(strike float64, exercise, settlement time.Time, t OptionType, currency money.Currency) *VanillaOption {
	return &VanillaOption{OptionSpec{
		Strike:         strike,
		ExerciseTime:   exercise,
		SettlementTime: settlement,
		Type:           t,
		Currency:       currency,
	}}
}

// Kind 合约名称.
func (o *VanillaOption) Kind() string { return "vanilla" }

// CalculatePayoff 计算终点收益.
func (o *VanillaOption) CalculatePayoff(path []float64) (money.CashFlow, error) {
	st, err := terminal(path)
	if err != nil {
		return money.CashFlow{}, err
	}
	return o.cashFlow(Payoff(o.Type, st, o.Strike)), nil
}

// SettlementTime 结算时间.
func (o *VanillaOption) SettlementTime() time.Time { return o.OptionSpec.SettlementTime }

// UnderlyingCurrency 标的币种.
func (o *VanillaOption) UnderlyingCurrency() money.Currency { return o.Currency }
