package montecarlo

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/wyfcoding/quant/metrics"
)

// Metrics 引擎的 Prometheus 指标.
type Metrics struct {
	Paths          *prometheus.CounterVec
	VarianceFloors *prometheus.CounterVec
	Duration       *prometheus.HistogramVec
	Failures       *prometheus.CounterVec
}

// NewMetrics 在给定注册表上创建引擎指标，同一注册表只能调用一次.
func NewMetrics(m *metrics.Metrics) *Metrics {
	return &Metrics{
		Paths: m.NewCounterVec(prometheus.CounterOpts{
			Name: "montecarlo_paths_total",
			Help: "Total number of simulated paths",
		}, []string{"process", "instrument"}),
		VarianceFloors: m.NewCounterVec(prometheus.CounterOpts{
			Name: "montecarlo_variance_floors_total",
			Help: "Number of times a simulated variance was truncated at zero",
		}, []string{"process"}),
		Duration: m.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "montecarlo_pricing_duration_seconds",
			Help:    "Wall time of a pricing call",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"process", "instrument"}),
		Failures: m.NewCounterVec(prometheus.CounterOpts{
			Name: "montecarlo_pricing_failures_total",
			Help: "Failed pricing calls by error type",
		}, []string{"type"}),
	}
}
