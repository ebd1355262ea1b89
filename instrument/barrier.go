package instrument

import (
	"strings"
	"time"

	"github.com/wyfcoding/quant/money"
	"github.com/wyfcoding/quant/xerrors"
)

// BarrierType 障碍期权的方向与效果组合.
type BarrierType int

const (
	UpAndIn BarrierType = iota
	UpAndOut
	DownAndIn
	DownAndOut
)

var barrierNames = [...]string{"up_and_in", "up_and_out", "down_and_in", "down_and_out"}

func (b BarrierType) String() string {
	if b < 0 || int(b) >= len(barrierNames) {
		return "unknown"
	}
	return barrierNames[b]
}

// ParseBarrierType 接受 up_and_in / up-and-in / UpAndIn 等写法.
func ParseBarrierType(s string) (BarrierType, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "", "_", "", " ", "").Replace(norm)
	for i, name := range barrierNames {
		if strings.ReplaceAll(name, "_", "") == norm {
			return BarrierType(i), nil
		}
	}
	return 0, xerrors.Derive(xerrors.ErrInvalidBarrierType, "type=%q", s)
}

// Direction 障碍方向.
type Direction int

const (
	Up Direction = iota
	Down
)

// Effect 触碰障碍后的效果.
type Effect int

const (
	KnockIn Effect = iota
	KnockOut
)

// Barrier 障碍条款.
type Barrier struct {
	Type  BarrierType
	Level float64
}

func (b Barrier) Direction() Direction {
	if b.Type == UpAndIn || b.Type == UpAndOut {
		return Up
	}
	return Down
}

func (b Barrier) Effect() Effect {
	if b.Type == UpAndIn || b.Type == DownAndIn {
		return KnockIn
	}
	return KnockOut
}

// Crossed 离散监控: 路径上任一点触及障碍即视为穿越，等于障碍价也算.
func (b Barrier) Crossed(path []float64) bool {
	up := b.Direction() == Up
	for _, s := range path {
		if up && s >= b.Level {
			return true
		}
		if !up && s <= b.Level {
			return true
		}
	}
	return false
}

// BarrierOption 敲入/敲出期权.
type BarrierOption struct {
	OptionSpec
	Barrier Barrier
}

// NewBarrierOption 创建障碍期权.
func NewBarrierOption(strike float64, exercise, settlement time.Time, t OptionType, currency money.Currency, barrier Barrier) *BarrierOption {
	return &BarrierOption{
		OptionSpec: OptionSpec{
			Strike:         strike,
			ExerciseTime:   exercise,
			SettlementTime: settlement,
			Type:           t,
			Currency:       currency,
		},
		Barrier: barrier,
	}
}

// Kind 合约名称.
func (o *BarrierOption) Kind() string { return "barrier" }

// CalculatePayoff 生效时按终点价格给出普通期权收益，否则为 0.
func (o *BarrierOption) CalculatePayoff(path []float64) (money.CashFlow, error) {
	st, err := terminal(path)
	if err != nil {
		return money.CashFlow{}, err
	}

	crossed := o.Barrier.Crossed(path)
	active := crossed
	if o.Barrier.Effect() == KnockOut {
		active = !crossed
	}
	if !active {
		return o.cashFlow(0), nil
	}
	return o.cashFlow(Payoff(o.Type, st, o.Strike)), nil
}

func (o *BarrierOption) SettlementTime() time.Time { return o.OptionSpec.SettlementTime }

func (o *BarrierOption) UnderlyingCurrency() money.Currency { return o.Currency }
