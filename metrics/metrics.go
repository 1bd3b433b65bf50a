// Package metrics records decision evaluations as Prometheus metrics.
//
// Register a Collector as the Observer of a dmn Evaluator:
//
//	m := metrics.New(prometheus.DefaultRegisterer)
//	ev := dmn.NewEvaluator(dmn.WithObserver(m))
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tablekit/dmn"
)

// Collector holds the evaluation metrics. It implements dmn.Observer.
type Collector struct {
	EvaluationsTotal   *prometheus.CounterVec
	EvaluationDuration *prometheus.HistogramVec
	RuleMatchesTotal   *prometheus.CounterVec
}

var _ dmn.Observer = (*Collector)(nil)

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Collector {
	return &Collector{
		EvaluationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dmn",
				Name:      "evaluations_total",
				Help:      "Total number of decision evaluations",
			},
			[]string{"decision", "result"}, // result=matched/no_match/<error class>
		),
		EvaluationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "dmn",
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of decision evaluations in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 16), // 10µs to 330ms
			},
			[]string{"decision"},
		),
		RuleMatchesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dmn",
				Name:      "rule_matches_total",
				Help:      "Total number of matching rules returned",
			},
			[]string{"decision", "rule"},
		),
	}
}

// DecisionEvaluated records one evaluation.
func (c *Collector) DecisionEvaluated(d *dmn.Decision, res *dmn.DecisionResult, err error, elapsed time.Duration) {
	c.EvaluationDuration.WithLabelValues(d.ID()).Observe(elapsed.Seconds())
	c.EvaluationsTotal.WithLabelValues(d.ID(), Result(res, err)).Inc()
	if res == nil {
		return
	}
	for _, r := range res.RuleResults {
		c.RuleMatchesTotal.WithLabelValues(d.ID(), r.RuleID).Inc()
	}
}

// Result classifies the outcome of an evaluation for the result label.
func Result(res *dmn.DecisionResult, err error) string {
	switch {
	case err == nil && len(res.RuleResults) > 0:
		return "matched"
	case err == nil:
		return "no_match"
	case errors.Is(err, dmn.ErrNotUnique):
		return "not_unique"
	case errors.Is(err, dmn.ErrUnsupportedHitPolicy):
		return "unsupported_hit_policy"
	case errors.Is(err, dmn.ErrInvalidVariables):
		return "invalid_variables"
	case errors.Is(err, dmn.ErrEvaluation):
		return "evaluation_error"
	}
	return "error"
}
