package montecarlo

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// sampleChunk 每个 worker 缓存的收益样本数，内存与路径总数无关.
const sampleChunk = 4096

// moments 收益金额的样本矩 (数量、均值、离差平方和 M2).
// 样本先攒成定长块交给 gonum 计算，块之间按并行方差公式合并.
type moments struct {
	buf  []float64
	n    int
	mean float64
	m2   float64
}

func newMoments(chunk int) moments {
	return moments{buf: make([]float64, 0, max(chunk, 1))}
}

func (m *moments) add(x float64) {
	m.buf = append(m.buf, x)
	if len(m.buf) == cap(m.buf) {
		m.flush()
	}
}

func (m *moments) flush() {
	if len(m.buf) == 0 {
		return
	}
	mean, m2 := m.buf[0], 0.0
	if len(m.buf) > 1 {
		var variance float64
		mean, variance = stat.MeanVariance(m.buf, nil)
		m2 = variance * float64(len(m.buf)-1)
	}
	m.merge(moments{n: len(m.buf), mean: mean, m2: m2})
	m.buf = m.buf[:0]
}

// merge 并入另一组矩，other 的缓存必须已 flush.
func (m *moments) merge(other moments) {
	if other.n == 0 {
		return
	}
	if m.n == 0 {
		m.n, m.mean, m.m2 = other.n, other.mean, other.m2
		return
	}
	n := m.n + other.n
	delta := other.mean - m.mean
	m.mean += delta * float64(other.n) / float64(n)
	m.m2 += other.m2 + delta*delta*float64(m.n)*float64(other.n)/float64(n)
	m.n = n
}

// stdDev 无偏样本标准差，少于两个样本时为 0.
func (m *moments) stdDev() float64 {
	if m.n < 2 {
		return 0
	}
	return math.Sqrt(m.m2 / float64(m.n-1))
}
