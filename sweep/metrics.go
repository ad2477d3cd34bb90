package sweep

import (
	"errors"
	"time"

	"schrodinger/types"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 求解统计
type Metrics struct {
	solves  *prometheus.CounterVec
	seconds *prometheus.HistogramVec
	states  *prometheus.GaugeVec
}

// NewMetrics 创建并注册统计项, reg 为空时不注册
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schrodinger_solves_total",
			Help: "Number of bound-state solves by method, non-parabolicity and result.",
		}, []string{"method", "type", "result"}),
		seconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "schrodinger_solve_seconds",
			Help:    "Wall time of a single solve.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"method", "type"}),
		states: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "schrodinger_states_found",
			Help: "Bound states found by the most recent solve.",
		}, []string{"method", "type"}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.solves, m.seconds, m.states} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return nil, err
			}
		}
	}
	return m, nil
}

// result 结果分类
func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, types.ErrNoBoundStates):
		return "no_states"
	case errors.Is(err, types.ErrNotConverged):
		return "not_converged"
	case errors.Is(err, types.ErrSingularMatrix):
		return "singular"
	}
	return "error"
}

// observe 记录一次求解
func (m *Metrics) observe(method types.Method, kind types.NonParabolicity, d time.Duration, set *types.WavefunctionSet, err error) {
	if m == nil {
		return
	}
	ms, ks := method.String(), kind.String()
	m.solves.WithLabelValues(ms, ks, result(err)).Inc()
	m.seconds.WithLabelValues(ms, ks).Observe(d.Seconds())
	if set != nil {
		m.states.WithLabelValues(ms, ks).Set(float64(set.Len()))
	}
}
