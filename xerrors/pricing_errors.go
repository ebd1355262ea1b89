package xerrors

var (
	// ErrCurrencyMismatch 两笔现金流币种不同。
	ErrCurrencyMismatch = New(ErrValidation, 400101, "currency mismatch", "cannot operate on cashflows with different currencies", nil)
	// ErrSettlementMismatch 两笔现金流结算时间不同。
	ErrSettlementMismatch = New(ErrValidation, 400102, "settlement mismatch", "cannot operate on cashflows with different settlement dates", nil)
	// ErrDivideByZero 标量除数为零。
	ErrDivideByZero = New(ErrValidation, 400103, "divide by zero", "attempt to divide by zero", nil)

	// ErrInvalidCurrency 未知币种代码。
	ErrInvalidCurrency = New(ErrInvalidArg, 400201, "invalid currency", "unsupported ISO currency code", nil)
	// ErrInvalidOptionType 无效的期权类型。
	ErrInvalidOptionType = New(ErrInvalidArg, 400202, "invalid option type", "supported types: call, put", nil)
	// ErrInvalidBarrierType 无效的障碍类型。
	ErrInvalidBarrierType = New(ErrInvalidArg, 400203, "invalid barrier type", "supported types: up_and_in, up_and_out, down_and_in, down_and_out", nil)
	// ErrInvalidExpression 收益表达式无法编译或求值。
	ErrInvalidExpression = New(ErrInvalidArg, 400204, "invalid payoff expression", "expression must evaluate to a number", nil)
	// ErrInvalidInput 解析定价输入不合法。
	ErrInvalidInput = New(ErrInvalidArg, 400205, "invalid input", "spot, strike, expiry and volatility must be positive", nil)
	// ErrUnsupportedProcess 未知的随机过程类型。
	ErrUnsupportedProcess = New(ErrInvalidArg, 400206, "unsupported process", "supported processes: gbm, heston", nil)
	// ErrUnsupportedInstrument 未知的合约类型。
	ErrUnsupportedInstrument = New(ErrInvalidArg, 400207, "unsupported instrument", "supported instruments: vanilla, barrier, expression", nil)

	// ErrZeroPaths 路径数为零，平均值无定义。
	ErrZeroPaths = New(ErrDomain, 422101, "number of paths must be positive", "monte carlo average is undefined for zero paths", nil)
	// ErrZeroSteps 时间步数为零，路径为空。
	ErrZeroSteps = New(ErrDomain, 422102, "number of steps must be positive", "an empty price path has no terminal price", nil)
	// ErrEmptyPath 价格路径为空。
	ErrEmptyPath = New(ErrDomain, 422103, "empty price path", "payoff requires at least one simulated price", nil)
	// ErrEmptySum 对空集合求和。
	ErrEmptySum = New(ErrDomain, 422104, "empty cashflow sum", "at least one cashflow is required", nil)
	// ErrNegativePayoff 表达式收益为负。
	ErrNegativePayoff = New(ErrDomain, 422105, "negative payoff", "option payoff must be non-negative", nil)
)
