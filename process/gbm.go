package process

import (
	"math"

	"golang.org/x/exp/rand"
)

// GBMProcess 几何布朗运动 dS = r·S·dt + σ·S·dW.
type GBMProcess struct {
	S0    float64 // 初始价格
	R     float64 // 无风险利率 (漂移)
	Sigma float64 // 波动率
	T     float64 // 期限 (年)
}

// NewGBMProcess 创建 GBM 过程.
func NewGBMProcess(s0, r, sigma, t float64) *GBMProcess {
	return &GBMProcess{S0: s0, R: r, Sigma: sigma, T: t}
}

// Kind 过程名称.
func (p *GBMProcess) Kind() string { return "gbm" }

// GeneratePricePath 模拟价格路径.
func (p *GBMProcess) GeneratePricePath(rnd *rand.Rand, numberOfSteps int) []float64 {
	if numberOfSteps <= 0 {
		return []float64{}
	}
	rnd = ensureRand(rnd)

	dt := p.T / float64(numberOfSteps)
	sqrtDt := math.Sqrt(dt)
	path := make([]float64, numberOfSteps)
	s := p.S0

	for i := range numberOfSteps {
		dw := rnd.NormFloat64() * sqrtDt
		s += p.R*s*dt + p.Sigma*s*dw
		path[i] = s
	}

	return path
}
