package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder 签到判定指标
type Recorder struct {
	decisions *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	gateReads *prometheus.CounterVec
}

// New 创建并注册指标；reg 为 nil 时使用默认注册表
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	r := &Recorder{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "checkin_decisions_total",
			Help:      "Check-in admission decisions by outcome and reason.",
		}, []string{"path", "outcome", "reason"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "attendance",
			Name:      "checkin_decision_seconds",
			Help:      "Time spent producing a check-in decision.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"path"}),
		gateReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "session_gate_reads_total",
			Help:      "Session gate reads, labelled by whether an explicit record existed.",
		}, []string{"source"}),
	}

	reg.MustRegister(r.decisions, r.latency, r.gateReads)
	return r
}

// ObserveDecision 记录一次判定；nil Recorder 直接忽略
func (r *Recorder) ObserveDecision(path, outcome, reason string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.decisions.WithLabelValues(path, outcome, reason).Inc()
	r.latency.WithLabelValues(path).Observe(elapsed.Seconds())
}

// ObserveGateRead 记录时段开关读取来源：stored | default
func (r *Recorder) ObserveGateRead(source string) {
	if r == nil {
		return
	}
	r.gateReads.WithLabelValues(source).Inc()
}
