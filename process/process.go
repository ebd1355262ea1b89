// Package process 提供随机过程的离散化路径模拟（Euler–Maruyama）。
package process

import (
	crand "crypto/rand"
	"encoding/binary"
	"time"

	"golang.org/x/exp/rand"

	"github.com/wyfcoding/quant/cast"
)

// Simulator 生成一条离散价格路径。
// 返回 numberOfSteps 个价格，对应 T/n, 2T/n, ..., T 时刻，不含初始价格。
// rnd 为调用方独占的随机源；为 nil 时每次调用使用新的随机种子。
type Simulator interface {
	GeneratePricePath(rnd *rand.Rand, numberOfSteps int) []float64
}

// PathStats 单条路径的数值统计。
type PathStats struct {
	VarianceFloors int // 方差被截断为 0 的次数
}

// StatsSimulator 可额外报告路径统计的模拟器。
type StatsSimulator interface {
	Simulator
	GeneratePathWithStats(rnd *rand.Rand, numberOfSteps int) ([]float64, PathStats)
}

// NewRand 使用 crypto/rand 种子创建随机源.
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(EntropySeed()))
}

// NewSeededRand 使用固定种子创建随机源，用于可复现的模拟。
func NewSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// WorkerSeed 由基础种子和 worker 序号派生种子.
// 先混合 seed 再按序号步进，不同基础种子的 worker 流不会彼此错位重合.
func WorkerSeed(seed uint64, worker int) uint64 {
	return splitmix64(splitmix64(seed) + cast.IntToUint64(worker+1)*golden)
}

const golden = 0x9e3779b97f4a7c15

func splitmix64(z uint64) uint64 {
	z += golden
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// EntropySeed 从 crypto/rand 读取 64 位种子，失败时退化为纳秒时间戳.
func EntropySeed() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return cast.Int64ToUint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(b[:])
}

func ensureRand(rnd *rand.Rand) *rand.Rand {
	if rnd == nil {
		return NewRand()
	}
	return rnd
}
