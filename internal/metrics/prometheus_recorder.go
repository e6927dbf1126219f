package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	resolveDuration *prom.HistogramVec
	outcomes        *prom.CounterVec
	fragments       prom.Histogram
	conflicts       *prom.CounterVec
	missingKeys     prom.Counter
}

// NewPrometheusRecorder constructs and registers the resolution metrics on reg.
// A nil reg gets a private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		resolveDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "buildplan",
			Name:      "resolve_duration_seconds",
			Help:      "Duration of configuration resolution",
			Buckets:   prom.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"policy"}),
		outcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "buildplan",
			Name:      "resolve_outcomes_total",
			Help:      "Resolution outcomes by policy and result",
		}, []string{"policy", "outcome"}),
		fragments: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "buildplan",
			Name:      "fragments_per_resolve",
			Help:      "Number of fragments merged per resolution",
			Buckets:   prom.LinearBuckets(1, 2, 8),
		}),
		conflicts: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "buildplan",
			Name:      "conflicts_total",
			Help:      "Conflicting keys detected under reject-on-conflict",
		}, []string{"key"}),
		missingKeys: prom.NewCounter(prom.CounterOpts{
			Namespace: "buildplan",
			Name:      "missing_required_keys_total",
			Help:      "Required keys found missing during validation",
		}),
	}
	reg.MustRegister(pr.resolveDuration, pr.outcomes, pr.fragments, pr.conflicts, pr.missingKeys)
	return pr
}

func (p *PrometheusRecorder) ObserveResolveDuration(policy string, d time.Duration) {
	if p == nil {
		return
	}
	p.resolveDuration.WithLabelValues(policy).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncResolveOutcome(policy string, outcome OutcomeLabel) {
	if p == nil {
		return
	}
	p.outcomes.WithLabelValues(policy, string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveFragments(n int) {
	if p == nil {
		return
	}
	p.fragments.Observe(float64(n))
}

func (p *PrometheusRecorder) IncConflict(key string) {
	if p == nil {
		return
	}
	p.conflicts.WithLabelValues(key).Inc()
}

func (p *PrometheusRecorder) AddMissingKeys(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.missingKeys.Add(float64(n))
}
