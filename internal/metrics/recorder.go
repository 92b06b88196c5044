package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"QueChoisir/internal/domain"
	"QueChoisir/internal/ports"
)

// Recorder exports analyzer call metrics to Prometheus.
type Recorder struct {
	analyses *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

var _ ports.AnalysisObserver = (*Recorder)(nil)

// NewRecorder creates the collectors and registers them on reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		analyses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quechoisir_analyses_total",
				Help: "Total number of product analyses by outcome and error kind",
			},
			[]string{"outcome", "kind"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quechoisir_analysis_duration_seconds",
				Help:    "Duration of reasoning service calls in seconds",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
			},
			[]string{"outcome"},
		),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "quechoisir_analyses_in_flight",
				Help: "Number of reasoning service calls currently outstanding",
			},
		),
	}

	for _, c := range []prometheus.Collector{r.analyses, r.duration, r.inFlight} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// AnalysisStarted increments the in-flight gauge.
func (r *Recorder) AnalysisStarted() {
	r.inFlight.Inc()
}

// AnalysisFinished records outcome and latency.
func (r *Recorder) AnalysisFinished(elapsed time.Duration, err error) {
	r.inFlight.Dec()

	outcome, kind := "success", ""
	if err != nil {
		outcome, kind = "failure", "unknown"
		var ae *domain.AnalysisError
		if errors.As(err, &ae) {
			kind = string(ae.Kind)
		}
	}

	r.analyses.WithLabelValues(outcome, kind).Inc()
	r.duration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}
