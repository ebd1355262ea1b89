package process

import (
	"math"

	"golang.org/x/exp/rand"
)

// HestonModel Heston 随机波动率模型参数.
// SigmaV 是方差过程的波动率 (vol of vol)，与 GBM 的 Sigma 含义不同。
type HestonModel struct {
	S0     float64 // 初始价格
	V0     float64 // 初始方差
	R      float64 // 无风险利率
	Kappa  float64 // 均值回复速度
	Theta  float64 // 长期方差
	SigmaV float64 // 方差的波动率
	Rho    float64 // 两个布朗运动的相关系数
	T      float64 // 期限 (年)
}

// HestonPath 一条完整的 Heston 模拟结果.
type HestonPath struct {
	Prices    []float64
	Variances []float64 // 每步价格更新所用的瞬时方差，均 >= 0
	Floors    int
}

// HestonProcess 使用完全截断 (full truncation) 的 Euler 离散.
type HestonProcess struct {
	Model HestonModel
}

// NewHestonProcess 创建 Heston 过程.
func NewHestonProcess(model HestonModel) *HestonProcess {
	return &HestonProcess{Model: model}
}

// Kind 过程名称.
func (p *HestonProcess) Kind() string { return "heston" }

// GeneratePricePath 模拟价格路径.
func (p *HestonProcess) GeneratePricePath(rnd *rand.Rand, numberOfSteps int) []float64 {
	return p.SimulatePath(rnd, numberOfSteps).Prices
}

// GeneratePathWithStats 模拟价格路径并报告方差截断次数.
func (p *HestonProcess) GeneratePathWithStats(rnd *rand.Rand, numberOfSteps int) ([]float64, PathStats) {
	hp := p.SimulatePath(rnd, numberOfSteps)
	return hp.Prices, PathStats{VarianceFloors: hp.Floors}
}

// SimulatePath 先更新方差并截断到 0，再用新方差更新价格.
// 截断是有意的建模选择，带来离散化偏差，次数记录在 Floors 中.
func (p *HestonProcess) SimulatePath(rnd *rand.Rand, numberOfSteps int) HestonPath {
	if numberOfSteps <= 0 {
		return HestonPath{Prices: []float64{}, Variances: []float64{}}
	}
	rnd = ensureRand(rnd)

	m := p.Model
	dt := m.T / float64(numberOfSteps)
	sqrtDt := math.Sqrt(dt)
	rhoBar := math.Sqrt(1 - m.Rho*m.Rho)

	out := HestonPath{
		Prices:    make([]float64, numberOfSteps),
		Variances: make([]float64, numberOfSteps),
	}
	s, v := m.S0, math.Max(m.V0, 0)

	for i := range numberOfSteps {
		z1 := rnd.NormFloat64()
		z2 := rnd.NormFloat64()
		dws := z1 * sqrtDt
		dwv := (m.Rho*z1 + rhoBar*z2) * sqrtDt

		v += m.Kappa*(m.Theta-v)*dt + m.SigmaV*math.Sqrt(v)*dwv
		if v < 0 {
			v = 0
			out.Floors++
		}
		s += m.R*s*dt + s*math.Sqrt(v)*dws

		out.Prices[i] = s
		out.Variances[i] = v
	}

	return out
}
