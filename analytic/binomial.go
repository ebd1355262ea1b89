package analytic

import (
	"math"

	"github.com/wyfcoding/quant/instrument"
	"github.com/wyfcoding/quant/xerrors"
)

// Binomial Cox-Ross-Rubinstein 二叉树欧式期权价格.
func Binomial(in Inputs, steps int) (float64, error) {
	if steps <= 0 {
		return 0, xerrors.Derive(xerrors.ErrZeroSteps, "binomial steps=%d", steps)
	}
	if err := in.validate(); err != nil {
		return 0, err
	}

	dt := in.Expiry / float64(steps)
	up := math.Exp(in.Volatility * math.Sqrt(dt))
	down := 1 / up
	growth := math.Exp(in.Rate * dt)
	p := (growth - down) / (up - down)
	disc := 1 / growth

	values := make([]float64, steps+1)
	for j := range values {
		spot := in.Spot * math.Pow(up, float64(j)) * math.Pow(down, float64(steps-j))
		values[j] = instrument.Payoff(in.Type, spot, in.Strike)
	}
	for i := steps - 1; i >= 0; i-- {
		for j := 0; j <= i; j++ {
			values[j] = disc * (p*values[j+1] + (1-p)*values[j])
		}
	}
	return values[0], nil
}
