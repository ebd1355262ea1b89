package instrument

import (
	"math"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/wyfcoding/quant/money"
	"github.com/wyfcoding/quant/xerrors"
)

// PathEnv 收益表达式可见的路径摘要.
type PathEnv struct {
	Final  float64
	Max    float64
	Min    float64
	Mean   float64
	Strike float64
	Steps  int
}

func newPathEnv(path []float64, strike float64) PathEnv {
	env := PathEnv{
		Final:  path[len(path)-1],
		Max:    path[0],
		Min:    path[0],
		Strike: strike,
		Steps:  len(path),
	}
	var sum float64
	for _, s := range path {
		env.Max = math.Max(env.Max, s)
		env.Min = math.Min(env.Min, s)
		sum += s
	}
	env.Mean = sum / float64(len(path))
	return env
}

// ExpressionOption 用 expr 表达式描述收益，例如亚式期权 "max(Mean - Strike, 0)".
// 表达式在构造时编译一次，之后可被多个 worker 并发执行.
type ExpressionOption struct {
	OptionSpec
	Expression string
	program    *vm.Program
}

// NewExpressionOption 编译收益表达式，编译失败返回 ErrInvalidExpression.
func NewExpressionOption(code string, strike float64, exercise, settlement time.Time, currency money.Currency) (*ExpressionOption, error) {
	program, err := expr.Compile(code, expr.Env(PathEnv{}), expr.AsFloat64())
	if err != nil {
		e := xerrors.Derive(xerrors.ErrInvalidExpression, "compile %q", code)
		e.Cause = err
		return nil, e
	}
	return &ExpressionOption{
		OptionSpec: OptionSpec{
			Strike:         strike,
			ExerciseTime:   exercise,
			SettlementTime: settlement,
			Currency:       currency,
		},
		Expression: code,
		program:    program,
	}, nil
}

// Kind 合约名称.
func (o *ExpressionOption) Kind() string { return "expression" }

// CalculatePayoff 对路径摘要求值.
func (o *ExpressionOption) CalculatePayoff(path []float64) (money.CashFlow, error) {
	if len(path) == 0 {
		return money.CashFlow{}, xerrors.Derive(xerrors.ErrEmptyPath, "path has no prices")
	}

	out, err := expr.Run(o.program, newPathEnv(path, o.Strike))
	if err != nil {
		e := xerrors.Derive(xerrors.ErrInvalidExpression, "run %q", o.Expression)
		e.Cause = err
		return money.CashFlow{}, e
	}
	amount, ok := out.(float64)
	if !ok || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return money.CashFlow{}, xerrors.Derive(xerrors.ErrInvalidExpression, "%q returned %v", o.Expression, out)
	}
	if amount < 0 {
		return money.CashFlow{}, xerrors.Derive(xerrors.ErrNegativePayoff, "%q returned %f", o.Expression, amount)
	}
	return o.cashFlow(amount), nil
}

func (o *ExpressionOption) SettlementTime() time.Time { return o.OptionSpec.SettlementTime }

func (o *ExpressionOption) UnderlyingCurrency() money.Currency { return o.Currency }
