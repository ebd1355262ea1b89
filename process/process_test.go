package process

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"
)

func TestGBMPathShape(t *testing.T) {
	p := NewGBMProcess(100, 0.05, 0.2, 1)
	path := p.GeneratePricePath(NewSeededRand(7), 365)
	if len(path) != 365 {
		t.Fatalf("expected 365 prices, got %d", len(path))
	}
	for i, s := range path {
		if s <= 0 || math.IsNaN(s) {
			t.Fatalf("price %d not positive: %f", i, s)
		}
	}
	if got := p.GeneratePricePath(nil, 0); len(got) != 0 {
		t.Errorf("zero steps should give empty path, got %d", len(got))
	}
	if got := p.GeneratePricePath(nil, 12); len(got) != 12 {
		t.Errorf("nil source should still simulate, got %d", len(got))
	}
}

func TestGBMDeterministicWithoutVolatility(t *testing.T) {
	p := NewGBMProcess(100, 0.05, 0, 2)
	n := 8
	path := p.GeneratePricePath(NewSeededRand(1), n)
	dt := p.T / float64(n)
	want := p.S0
	for i, s := range path {
		want *= 1 + p.R*dt
		if math.Abs(s-want) > 1e-9 {
			t.Fatalf("step %d: expected %f, got %f", i, want, s)
		}
	}
}

func TestGBMSeedReproducible(t *testing.T) {
	p := NewGBMProcess(100, 0.05, 0.2, 1)
	a := p.GeneratePricePath(NewSeededRand(42), 50)
	b := p.GeneratePricePath(NewSeededRand(42), 50)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed should reproduce path, diverged at %d", i)
		}
	}
}

func TestGBMTerminalMean(t *testing.T) {
	p := NewGBMProcess(100, 0.05, 0.2, 1)
	rnd := NewSeededRand(2024)
	const paths, steps = 20000, 12
	var sum, sumSq float64
	for range paths {
		path := p.GeneratePricePath(rnd, steps)
		s := path[len(path)-1]
		sum += s
		sumSq += s * s
	}
	mean := sum / paths
	stdErr := math.Sqrt((sumSq/paths-mean*mean)/paths) + 1e-12
	// Euler 离散下 E[S_T] = S0·(1+r·dt)^n
	want := p.S0 * math.Pow(1+p.R*p.T/steps, steps)
	if math.Abs(mean-want) > 5*stdErr {
		t.Errorf("terminal mean %f too far from %f (stderr %f)", mean, want, stdErr)
	}
}

func TestHestonVarianceNonNegative(t *testing.T) {
	// 2κθ < σv²，Feller 条件不成立，方差会频繁触及 0
	p := NewHestonProcess(HestonModel{S0: 100, V0: 0.04, R: 0.03, Kappa: 0.5, Theta: 0.04, SigmaV: 1.0, Rho: -0.7, T: 1})
	rnd := NewSeededRand(99)
	floors := 0
	for range 200 {
		hp := p.SimulatePath(rnd, 365)
		if len(hp.Prices) != 365 || len(hp.Variances) != 365 {
			t.Fatalf("unexpected path lengths %d/%d", len(hp.Prices), len(hp.Variances))
		}
		for i, v := range hp.Variances {
			if v < 0 || math.IsNaN(v) {
				t.Fatalf("variance at step %d is %f", i, v)
			}
		}
		for i, s := range hp.Prices {
			if math.IsNaN(s) {
				t.Fatalf("price at step %d is NaN", i)
			}
		}
		floors += hp.Floors
	}
	if floors == 0 {
		t.Errorf("expected variance flooring with Feller-violating parameters")
	}
}

func TestHestonStatsMatchSimulatePath(t *testing.T) {
	p := NewHestonProcess(HestonModel{S0: 100, V0: 0.04, R: 0.03, Kappa: 0.5, Theta: 0.04, SigmaV: 1.0, Rho: -0.7, T: 1})
	full := p.SimulatePath(NewSeededRand(5), 100)
	prices, stats := p.GeneratePathWithStats(NewSeededRand(5), 100)
	if stats.VarianceFloors != full.Floors {
		t.Errorf("floors mismatch: %d vs %d", stats.VarianceFloors, full.Floors)
	}
	for i := range prices {
		if prices[i] != full.Prices[i] {
			t.Fatalf("prices diverged at %d", i)
		}
	}
	var _ StatsSimulator = p
}

func TestHestonConstantVariance(t *testing.T) {
	// 方差从长期均值出发且无波动时保持不变
	p := NewHestonProcess(HestonModel{S0: 50, V0: 0.09, R: 0.01, Kappa: 2, Theta: 0.09, SigmaV: 0, Rho: 1, T: 0.5})
	hp := p.SimulatePath(NewSeededRand(3), 20)
	for i, v := range hp.Variances {
		if math.Abs(v-0.09) > 1e-12 {
			t.Fatalf("variance should stay at theta, step %d = %f", i, v)
		}
	}
	if hp.Floors != 0 {
		t.Errorf("no flooring expected")
	}
	if got := p.GeneratePricePath(nil, 0); len(got) != 0 {
		t.Errorf("zero steps should give empty path")
	}
}

func TestHestonConstantVarianceIsGBM(t *testing.T) {
	// SigmaV=0 且 V0=Theta 时价格步与 σ=sqrt(V0) 的 GBM 相同，驱动为每步第一个正态数
	m := HestonModel{S0: 100, V0: 0.04, R: 0.05, Kappa: 1.5, Theta: 0.04, SigmaV: 0, Rho: -0.5, T: 1}
	const steps = 250
	hp := NewHestonProcess(m).SimulatePath(NewSeededRand(17), steps)

	rnd := NewSeededRand(17)
	dt := m.T / steps
	sigma := math.Sqrt(m.V0)
	s := m.S0
	for i := range steps {
		z1 := rnd.NormFloat64()
		_ = rnd.NormFloat64()
		s += m.R*s*dt + s*sigma*z1*math.Sqrt(dt)
		if math.Abs(hp.Prices[i]-s) > 1e-9*s {
			t.Fatalf("step %d: heston %v, gbm %v", i, hp.Prices[i], s)
		}
	}
}

func TestHestonStepRecurrence(t *testing.T) {
	m := HestonModel{S0: 100, V0: 0.04, R: 0.03, Kappa: 2, Theta: 0.05, SigmaV: 0.5, Rho: -0.7, T: 1}
	const steps = 200
	hp := NewHestonProcess(m).SimulatePath(NewSeededRand(23), steps)

	rnd := NewSeededRand(23)
	dt := m.T / steps
	sqrtDt := math.Sqrt(dt)
	prevS, prevV := m.S0, m.V0
	for i := range steps {
		z1, z2 := rnd.NormFloat64(), rnd.NormFloat64()
		dwv := (m.Rho*z1 + math.Sqrt(1-m.Rho*m.Rho)*z2) * sqrtDt
		wantV := math.Max(prevV+m.Kappa*(m.Theta-prevV)*dt+m.SigmaV*math.Sqrt(prevV)*dwv, 0)
		if math.Abs(hp.Variances[i]-wantV) > 1e-12 {
			t.Fatalf("step %d: variance %v, want %v", i, hp.Variances[i], wantV)
		}
		// 价格步使用本步更新后的方差
		wantS := prevS + m.R*prevS*dt + prevS*math.Sqrt(hp.Variances[i])*z1*sqrtDt
		if math.Abs(hp.Prices[i]-wantS) > 1e-9*wantS {
			t.Fatalf("step %d: price %v, want %v", i, hp.Prices[i], wantS)
		}
		prevS, prevV = hp.Prices[i], hp.Variances[i]
	}
}

func TestHestonDriverCorrelation(t *testing.T) {
	// 满足 Feller 条件，从输出路径反推两个布朗增量
	m := HestonModel{S0: 100, V0: 0.05, R: 0.02, Kappa: 2, Theta: 0.05, SigmaV: 0.3, Rho: -0.7, T: 1}
	const steps = 20000
	hp := NewHestonProcess(m).SimulatePath(NewSeededRand(31), steps)
	dt := m.T / steps

	dws := make([]float64, 0, steps)
	dwv := make([]float64, 0, steps)
	prevS, prevV := m.S0, m.V0
	for i := range steps {
		s, v := hp.Prices[i], hp.Variances[i]
		if v > 0 && prevV > 0 {
			dws = append(dws, (s-prevS-m.R*prevS*dt)/(prevS*math.Sqrt(v)))
			dwv = append(dwv, (v-prevV-m.Kappa*(m.Theta-prevV)*dt)/(m.SigmaV*math.Sqrt(prevV)))
		}
		prevS, prevV = s, v
	}
	if len(dws) < steps/2 {
		t.Fatalf("too many floored steps: %d usable", len(dws))
	}

	if got := stat.Correlation(dws, dwv, nil); math.Abs(got-m.Rho) > 0.03 {
		t.Errorf("increment correlation %v, want about %v", got, m.Rho)
	}
	// 增量方差应为 dt
	if got := stat.Variance(dws, nil); math.Abs(got/dt-1) > 0.05 {
		t.Errorf("price increment variance %v, want about %v", got, dt)
	}
}

func TestWorkerSeed(t *testing.T) {
	if WorkerSeed(7, 1) == WorkerSeed(8, 0) {
		t.Error("adjacent base seeds must not share worker streams")
	}
	if WorkerSeed(42, 3) != WorkerSeed(42, 3) {
		t.Error("worker seed must be deterministic")
	}
	seen := make(map[uint64]bool)
	for seed := range uint64(64) {
		for w := range 64 {
			s := WorkerSeed(seed, w)
			if seen[s] {
				t.Fatalf("seed collision at base %d worker %d", seed, w)
			}
			seen[s] = true
		}
	}

	a := NewSeededRand(WorkerSeed(7, 1)).Uint64()
	b := NewSeededRand(WorkerSeed(8, 0)).Uint64()
	if a == b {
		t.Error("derived streams start identically")
	}
}

func TestKinds(t *testing.T) {
	if NewGBMProcess(1, 0, 0, 1).Kind() != "gbm" || NewHestonProcess(HestonModel{}).Kind() != "heston" {
		t.Errorf("unexpected kinds")
	}
	if EntropySeed() == EntropySeed() {
		t.Logf("entropy seeds collided, extremely unlikely")
	}
}
