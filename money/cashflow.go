// Package money 提供带币种与结算时间的现金流值类型及其折现运算.
package money

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/quant/xerrors"
)

// secondsPerYear 折现使用的年长度 (365.25 天).
const secondsPerYear = 365.25 * 24 * 3600

// CashFlow 在某一结算时刻以某一币种支付的金额.
type CashFlow struct {
	Settlement time.Time
	Amount     float64
	Currency   Currency
}

// New 创建现金流.
func New(amount float64, currency Currency, settlement time.Time) CashFlow {
	return CashFlow{Amount: amount, Currency: currency, Settlement: settlement}
}

// Add 加法，要求币种与结算时间一致.
func (c CashFlow) Add(other CashFlow) (CashFlow, error) {
	if err := c.compatible(other); err != nil {
		return CashFlow{}, err
	}
	c.Amount += other.Amount
	return c, nil
}

// Sub 减法，要求币种与结算时间一致.
func (c CashFlow) Sub(other CashFlow) (CashFlow, error) {
	if err := c.compatible(other); err != nil {
		return CashFlow{}, err
	}
	c.Amount -= other.Amount
	return c, nil
}

// Mul 标量乘法.
func (c CashFlow) Mul(factor float64) CashFlow {
	c.Amount *= factor
	return c
}

// Div 标量除法，除数为零时返回 Validation 错误.
func (c CashFlow) Div(divisor float64) (CashFlow, error) {
	if divisor == 0 {
		return CashFlow{}, xerrors.Derive(xerrors.ErrDivideByZero, "amount=%g", c.Amount)
	}
	c.Amount /= divisor
	return c, nil
}

// Sum 按顺序累加一组现金流.
func Sum(flows ...CashFlow) (CashFlow, error) {
	if len(flows) == 0 {
		return CashFlow{}, xerrors.Derive(xerrors.ErrEmptySum, "no cashflows")
	}
	total := flows[0]
	for _, f := range flows[1:] {
		var err error
		if total, err = total.Add(f); err != nil {
			return CashFlow{}, err
		}
	}
	return total, nil
}

// DiscountFactor 从 settlement 折到 valuation 的复利折现因子 (1+r)^(-years).
// valuation 晚于 settlement 时 years 为负，得到复利终值因子.
func DiscountFactor(settlement, valuation time.Time, annualRate float64) float64 {
	seconds := float64(settlement.Unix() - valuation.Unix())
	years := seconds / secondsPerYear
	return math.Pow(1+annualRate, -years)
}

// ValueAtDate 将现金流以年复利 annualRate 折算到 valuation 时刻.
// 注意这里是离散复利，与 analytic 包的连续复利 exp(-rT) 不同.
func (c CashFlow) ValueAtDate(valuation time.Time, annualRate float64) CashFlow {
	return CashFlow{
		Amount:     c.Amount * DiscountFactor(c.Settlement, valuation, annualRate),
		Currency:   c.Currency,
		Settlement: valuation,
	}
}

// ConvertTo 按汇率换算为另一币种，结算时间不变.
func (c CashFlow) ConvertTo(currency Currency, rate float64) CashFlow {
	return CashFlow{Amount: c.Amount * rate, Currency: currency, Settlement: c.Settlement}
}

// Equal 金额、币种与结算时间均相同.
func (c CashFlow) Equal(other CashFlow) bool {
	return c.Amount == other.Amount && c.Currency == other.Currency && c.Settlement.Equal(other.Settlement)
}

// Decimal 返回金额的定点表示.
func (c CashFlow) Decimal() decimal.Decimal {
	return decimal.NewFromFloat(c.Amount)
}

// String 形如 "USD 10.450584".
func (c CashFlow) String() string {
	return c.Currency.String() + " " + c.Decimal().StringFixed(6)
}

func (c CashFlow) compatible(other CashFlow) error {
	if !c.Settlement.Equal(other.Settlement) {
		return xerrors.Derive(xerrors.ErrSettlementMismatch, "%s vs %s",
			c.Settlement.Format(time.RFC3339), other.Settlement.Format(time.RFC3339))
	}
	if c.Currency != other.Currency {
		return xerrors.Derive(xerrors.ErrCurrencyMismatch, "%s vs %s", c.Currency, other.Currency)
	}
	return nil
}
